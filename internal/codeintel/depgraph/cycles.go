package depgraph

import (
	"sort"
	"strings"

	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

// GetCircularDependencies runs a DFS from every node with an explicit
// visit stack; a back-edge into a node currently on the stack yields a
// cycle, normalized to start at its lexicographically smallest element
// and deduplicated by joined-string form. Deterministic, O(V+E).
func GetCircularDependencies(graph *types.DependencyGraph) [][]string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string
	seen := make(map[string]bool)
	var cycles [][]string

	// Iterate nodes in sorted order for deterministic discovery order;
	// cycle normalization already makes the result set order-insensitive,
	// but a stable traversal keeps output reproducible across runs.
	nodePaths := make([]string, 0, len(graph.Nodes))
	for path := range graph.Nodes {
		nodePaths = append(nodePaths, path)
	}
	sort.Strings(nodePaths)

	var dfs func(path string)
	dfs = func(path string) {
		visited[path] = true
		onStack[path] = true
		stack = append(stack, path)

		node := graph.Nodes[path]
		neighbors := append([]string(nil), node.Imports...)
		sort.Strings(neighbors)
		for _, next := range neighbors {
			if onStack[next] {
				cycle := extractCycle(stack, next)
				normalized := normalizeCycle(cycle)
				key := strings.Join(normalized, "->")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, normalized)
				}
				continue
			}
			if !visited[next] {
				dfs(next)
			}
		}

		stack = stack[:len(stack)-1]
		onStack[path] = false
	}

	for _, path := range nodePaths {
		if !visited[path] {
			dfs(path)
		}
	}

	return cycles
}

// extractCycle slices stack from the node where it hit a back-edge
// through the current top, then closes the cycle by repeating that node.
func extractCycle(stack []string, backEdgeTarget string) []string {
	start := 0
	for i, p := range stack {
		if p == backEdgeTarget {
			start = i
			break
		}
	}
	cycle := append([]string(nil), stack[start:]...)
	cycle = append(cycle, backEdgeTarget)
	return cycle
}

// normalizeCycle rotates cycle (excluding its closing duplicate) so it
// begins at its lexicographically smallest element, then re-closes it.
func normalizeCycle(cycle []string) []string {
	if len(cycle) <= 1 {
		return cycle
	}
	open := cycle[:len(cycle)-1] // drop closing duplicate
	minIdx := 0
	for i, v := range open {
		if v < open[minIdx] {
			minIdx = i
		}
	}
	rotated := append(append([]string(nil), open[minIdx:]...), open[:minIdx]...)
	rotated = append(rotated, rotated[0])
	return rotated
}
