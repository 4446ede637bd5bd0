// Package depgraph implements the dependency graph builder (C5): resolving
// raw import strings to project-internal file paths, building a directed
// graph, computing per-node coupling, and detecting circular dependencies.
package depgraph

import (
	"path/filepath"
	"strings"
)

// resolveSpecifier turns a raw import specifier written in fromFile into
// a candidate project-relative path, per §4.5 step 2. lang is the
// importing file's language, used for extension inference. ok is false
// when the specifier is a bare package name (external) and therefore
// never a graph node.
func resolveSpecifier(spec, fromFile, lang string) (resolved string, ok bool) {
	switch {
	case strings.HasPrefix(spec, "."):
		dir := filepath.Dir(fromFile)
		resolved = filepath.Clean(filepath.Join(dir, spec))
	case strings.HasPrefix(spec, "/") || strings.HasPrefix(spec, "~"):
		resolved = spec
	default:
		return "", false
	}

	switch lang {
	case "typescript":
		if strings.HasSuffix(resolved, ".d") {
			resolved += ".ts"
		} else if filepath.Ext(resolved) == "" {
			resolved += ".ts"
		}
	case "javascript":
		if filepath.Ext(resolved) == "" {
			resolved += ".js"
		}
	}

	return resolved, true
}
