package depgraph

import (
	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

// Build constructs a DependencyGraph from a set of file results, per the
// four-step algorithm in §4.5.
func Build(files []types.FileAnalysisResult, logger types.Logger) *types.DependencyGraph {
	if logger == nil {
		logger = noopLogger{}
	}
	graph := types.NewDependencyGraph()

	// Step 1: pre-seed one node per analyzed file.
	analyzed := make(map[string]string, len(files)) // path -> language
	for _, f := range files {
		graph.EnsureNode(f.FilePath)
		analyzed[f.FilePath] = f.Language
		logger.Debug("[Debug][DependencyGraph] added node", map[string]interface{}{"path": f.FilePath})
	}

	// Steps 2-3: resolve and insert edges.
	for _, f := range files {
		fromNode := graph.EnsureNode(f.FilePath)
		for _, rawDep := range f.Dependencies {
			resolved, ok := resolveSpecifier(rawDep, f.FilePath, f.Language)
			if !ok {
				graph.RecordExternalImport(rawDep, f.FilePath)
				continue // external package, not a graph node
			}
			if _, known := analyzed[resolved]; !known {
				logger.Debug("[Debug][DependencyGraph] dropped unresolved edge", map[string]interface{}{
					"from": f.FilePath, "raw": rawDep,
				})
				graph.RecordExternalImport(rawDep, f.FilePath)
				continue
			}
			toNode := graph.EnsureNode(resolved)
			addUnique(&fromNode.Imports, resolved)
			addUnique(&toNode.ImportedBy, f.FilePath)
		}
	}

	// Step 4: compute instability for every node.
	for _, node := range graph.Nodes {
		ca := len(node.ImportedBy)
		ce := len(node.Imports)
		instability := 0.0
		if ca+ce > 0 {
			instability = float64(ce) / float64(ca+ce)
		}
		node.Instability = &instability
	}

	return graph
}

func addUnique(list *[]string, value string) {
	for _, v := range *list {
		if v == value {
			return
		}
	}
	*list = append(*list, value)
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}
