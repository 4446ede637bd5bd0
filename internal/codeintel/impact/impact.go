// Package impact implements the impact & stability analyzer (C6):
// per-node stability metrics and per-file change-impact risk scores.
package impact

import (
	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

// ComputeStability returns one StabilityMetric per node in the graph.
func ComputeStability(graph *types.DependencyGraph) map[string]types.StabilityMetric {
	out := make(map[string]types.StabilityMetric, len(graph.Nodes))
	for path, node := range graph.Nodes {
		ca := len(node.ImportedBy)
		ce := len(node.Imports)
		stability := 0.0
		if ca+ce > 0 {
			stability = float64(ce) / float64(ca+ce)
		}
		out[path] = types.StabilityMetric{Ca: ca, Ce: ce, Stability: stability}
	}
	return out
}

// reachable is one BFS-discovered node: its path and hop distance from
// the origin file.
type reachable struct {
	path  string
	depth int
}

// impactedBy runs a BFS over the reverse edges (importedBy) starting at
// f, returning every reached node at depth > 0.
func impactedBy(graph *types.DependencyGraph, f string) []reachable {
	start, ok := graph.Nodes[f]
	if !ok {
		return nil
	}
	_ = start

	visited := map[string]bool{f: true}
	queue := []reachable{{path: f, depth: 0}}
	var out []reachable

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		node, ok := graph.Nodes[cur.path]
		if !ok {
			continue
		}
		for _, dependent := range node.ImportedBy {
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			r := reachable{path: dependent, depth: cur.depth + 1}
			out = append(out, r)
			queue = append(queue, r)
		}
	}
	return out
}

// ComputeRiskScores computes, for every file in the graph, the weighted
// reverse-reachability risk score: Σ over impacted nodes n of
// (1 - stability(n)) * 1/(depth(n)+1).
func ComputeRiskScores(graph *types.DependencyGraph, stability map[string]types.StabilityMetric) map[string]types.RiskScore {
	out := make(map[string]types.RiskScore, len(graph.Nodes))
	for path := range graph.Nodes {
		var score float64
		for _, r := range impactedBy(graph, path) {
			s := stability[r.path].Stability
			score += (1 - s) * (1.0 / float64(r.depth+1))
		}
		out[path] = types.RiskScore{FilePath: path, Score: score}
	}
	return out
}
