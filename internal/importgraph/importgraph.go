// Package importgraph builds the module dependency DAG from FileImport
// records and produces a topological build order, per spec.md §4.4/§4.5.
//
// The cycle detector is a three-color DFS, the same algorithm the teacher
// uses for infinite-type detection (depm/infinite.go), retargeted from
// "named type references named type" to "module imports module".
package importgraph

import (
	"strings"

	"novac/internal/diag"
	"novac/internal/parser"
)

type color int

const (
	white color = iota
	grey
	black
)

// Graph is the module import DAG: nodes are module names, edges are "A
// imports B", built from the union of every file's FileImport.Imports.
type Graph struct {
	edges map[string]map[string]struct{}
	order []string // insertion order, for deterministic traversal
}

// New builds a Graph from the accumulated FileImport records of a build.
// The module a file belongs to is an implicit node even if it has no
// imports of its own, so later traversal can find it.
func New(imports []*parser.FileImport) *Graph {
	g := &Graph{edges: make(map[string]map[string]struct{})}

	ensure := func(name string) {
		if _, ok := g.edges[name]; !ok {
			g.edges[name] = make(map[string]struct{})
			g.order = append(g.order, name)
		}
	}

	for _, fi := range imports {
		ensure(fi.ModuleName)
		for _, imp := range fi.Imports {
			ensure(imp)
			g.edges[fi.ModuleName][imp] = struct{}{}
		}
	}

	return g
}

// TopoSort returns module names such that a module appears only after
// every module it imports, or an ImportCycle diagnostic naming the cycle
// path from its entry point back to itself.
func (g *Graph) TopoSort() ([]string, error) {
	colors := make(map[string]color, len(g.order))
	for _, name := range g.order {
		colors[name] = white
	}

	var out []string
	var stack []string

	var visit func(name string) *diag.CompileError
	visit = func(name string) *diag.CompileError {
		switch colors[name] {
		case black:
			return nil
		case grey:
			entry := 0
			for i, n := range stack {
				if n == name {
					entry = i
					break
				}
			}
			cyclePath := append(append([]string{}, stack[entry:]...), name)
			return diag.New(diag.KindImportCycle, "import cycle detected: %s", strings.Join(cyclePath, " -> "))
		}

		colors[name] = grey
		stack = append(stack, name)

		deps := sortedKeys(g.edges[name])
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		colors[name] = black
		out = append(out, name)

		return nil
	}

	for _, name := range g.order {
		if colors[name] == white {
			if err := visit(name); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// sortedKeys returns the keys of a string set in deterministic order,
// matching the teacher's preference for stable, reproducible compiler
// output over map iteration order.
func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	// insertion-sort: these sets are small (a module's direct import
	// count), and avoids pulling in sort for one call site.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}

	return out
}
