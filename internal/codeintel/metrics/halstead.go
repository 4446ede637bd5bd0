package metrics

import (
	"regexp"
	"strings"

	"github.com/codewatch-dev/codeintel/internal/codeintel/parse"
)

// operatorChars is the fixed operator set per §4.3.
const operatorChars = "()[]{}.,;+-*/%&|^!=<>?:~"

var (
	blockCommentRe = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	hashCommentRe  = regexp.MustCompile(`#[^\n]*`)
	stringLiteralRe = regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'` + "|`(?:[^`\\\\]|\\\\.)*`")
	wordRe          = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*|[0-9]+`)
)

// HalsteadMetrics holds the operator/operand software-science counts.
type HalsteadMetrics struct {
	UniqueOperators int // n1
	UniqueOperands  int // n2
	TotalOperators  int // N1
	TotalOperands   int // N2
	Volume          float64
}

// stripCommentsAndNormalizeStrings removes //, #, and /* */ comments
// (hash comments only for Python, since JS/TS use '#' in private field
// names) and replaces every string literal with the literal token
// "string", per §4.3's Halstead preprocessing rule.
func stripCommentsAndNormalizeStrings(content []byte, lang parse.Language) string {
	s := string(content)
	s = blockCommentRe.ReplaceAllString(s, " ")
	s = lineCommentRe.ReplaceAllString(s, " ")
	if lang == parse.LanguagePython {
		s = hashCommentRe.ReplaceAllString(s, " ")
	}
	s = stringLiteralRe.ReplaceAllString(s, `"string"`)
	return s
}

// ComputeHalstead tokenizes content into operators (from the fixed set)
// and operands (identifier/number-like words, including the normalized
// "string" token), after stripping comments.
func ComputeHalstead(content []byte, lang parse.Language) HalsteadMetrics {
	s := stripCommentsAndNormalizeStrings(content, lang)

	operatorCounts := make(map[byte]int)
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(operatorChars, s[i]) >= 0 {
			operatorCounts[s[i]]++
		}
	}

	operandCounts := make(map[string]int)
	for _, w := range wordRe.FindAllString(s, -1) {
		operandCounts[w]++
	}

	var n1, N1, n2, N2 int
	n1 = len(operatorCounts)
	for _, c := range operatorCounts {
		N1 += c
	}
	n2 = len(operandCounts)
	for _, c := range operandCounts {
		N2 += c
	}

	return HalsteadMetrics{
		UniqueOperators: n1,
		UniqueOperands:  n2,
		TotalOperators:  N1,
		TotalOperands:   N2,
		Volume:          halsteadVolume(n1, n2, N1, N2),
	}
}

func halsteadVolume(n1, n2, N1, N2 int) float64 {
	return float64(N1+N2) * log2(float64(n1+n2))
}
