// Package parse implements the parser & grammar registry (C1): mapping a
// file path to a language, parsing source text into a concrete syntax
// tree via tree-sitter, and reporting the syntactic error ratio.
package parse

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language is one of the grammar-registry language tags.
type Language string

const (
	LanguageTypeScript Language = "typescript"
	LanguageJavaScript Language = "javascript"
	LanguagePython     Language = "python"
)

// ParseResult wraps the raw concrete syntax tree together with the
// syntactic-error measurements C1 is responsible for.
type ParseResult struct {
	FilePath   string
	Language   Language
	Tree       *sitter.Tree
	Content    []byte
	HasErrors  bool
	ErrorRatio float64
}

// Close releases the underlying tree-sitter tree. Safe to call on a nil
// result.
func (r *ParseResult) Close() {
	if r != nil && r.Tree != nil {
		r.Tree.Close()
	}
}

// Stats accumulates running parse statistics across a Parser's lifetime,
// surfaced for the orchestrator to log after a full analysis.
type Stats struct {
	FilesParsed    int
	FilesFailed    int
	ErrorRatioSum  float64
}

// AverageErrorRatio returns the mean error ratio across successfully
// parsed files, or 0 if none have been parsed.
func (s Stats) AverageErrorRatio() float64 {
	if s.FilesParsed == 0 {
		return 0
	}
	return s.ErrorRatioSum / float64(s.FilesParsed)
}

// Parser owns one tree-sitter parser per supported grammar.
type Parser struct {
	mu         sync.Mutex
	jsParser   *sitter.Parser
	tsParser   *sitter.Parser
	tsxParser  *sitter.Parser
	pyParser   *sitter.Parser
	stats      Stats
}

// New constructs a Parser with every supported grammar initialized. Each
// analysis invocation should own its own Parser (see concurrency model).
func New() *Parser {
	jsParser := sitter.NewParser()
	jsParser.SetLanguage(javascript.GetLanguage())

	tsParser := sitter.NewParser()
	tsParser.SetLanguage(typescript.GetLanguage())

	tsxParser := sitter.NewParser()
	tsxParser.SetLanguage(tsx.GetLanguage())

	pyParser := sitter.NewParser()
	pyParser.SetLanguage(python.GetLanguage())

	return &Parser{
		jsParser:  jsParser,
		tsParser:  tsParser,
		tsxParser: tsxParser,
		pyParser:  pyParser,
	}
}

// SupportedLanguages lists the grammar-registry languages this parser
// knows about.
func (p *Parser) SupportedLanguages() []Language {
	return []Language{LanguageTypeScript, LanguageJavaScript, LanguagePython}
}

// DetectLanguage maps a file path to a language tag by extension. Unknown
// extensions default to javascript, matching the teacher's lenient file
// classification.
func DetectLanguage(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".ts", ".tsx":
		return LanguageTypeScript
	case ".js", ".jsx":
		return LanguageJavaScript
	case ".py":
		return LanguagePython
	default:
		return LanguageJavaScript
	}
}

// grammarFor returns the concrete sitter.Parser for path+language. The
// extension is consulted for the tsx dialect, which shares the typescript
// language tag but needs a distinct grammar.
func (p *Parser) grammarFor(path string, lang Language) *sitter.Parser {
	ext := strings.ToLower(filepath.Ext(path))
	switch lang {
	case LanguageTypeScript:
		if ext == ".tsx" {
			return p.tsxParser
		}
		return p.tsParser
	case LanguageJavaScript:
		return p.jsParser
	case LanguagePython:
		return p.pyParser
	default:
		return nil
	}
}

// Parse parses content at path, returning the raw tree plus error-ratio
// measurements. Unsupported languages never occur here because
// DetectLanguage always returns a supported tag; a nil grammar is
// reported as a fatal error to preserve the "unsupported language is
// fatal" policy for callers that bypass DetectLanguage.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*ParseResult, error) {
	lang := DetectLanguage(path)
	grammar := p.grammarFor(path, lang)
	if grammar == nil {
		return nil, fmt.Errorf("unsupported language for file: %s", path)
	}

	p.mu.Lock()
	tree, err := grammar.ParseCtx(ctx, nil, content)
	p.mu.Unlock()
	if err != nil {
		p.stats.FilesFailed++
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	ratio := errorRatio(tree.RootNode())
	p.stats.FilesParsed++
	p.stats.ErrorRatioSum += ratio

	return &ParseResult{
		FilePath:   path,
		Language:   lang,
		Tree:       tree,
		Content:    content,
		HasErrors:  ratio > 0,
		ErrorRatio: ratio,
	}, nil
}

// ParseIncremental attempts to reuse previousTree as an edit base. The
// smacker bindings don't expose tree-sitter's edit/incremental-reparse
// API, so this falls back to a full Parse, silently, matching the spec's
// "on any failure, fall back to full parse" policy.
func (p *Parser) ParseIncremental(ctx context.Context, previousTree *sitter.Tree, path string, content []byte) (*ParseResult, error) {
	return p.Parse(ctx, path, content)
}

// Stats returns a snapshot of this parser's running statistics.
func (p *Parser) Stats() Stats {
	return p.stats
}

// Close releases all grammar parsers.
func (p *Parser) Close() {
	p.jsParser.Close()
	p.tsParser.Close()
	p.tsxParser.Close()
	p.pyParser.Close()
}

// errorRatio walks the whole tree counting ERROR-tagged or missing nodes
// against the total node count.
func errorRatio(root *sitter.Node) float64 {
	if root == nil {
		return 0
	}
	var total, errs int
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		total++
		if n.IsError() || n.IsMissing() {
			errs++
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	if total == 0 {
		return 0
	}
	return float64(errs) / float64(total)
}
