package main

import (
	"fmt"
	"go/token"
	"strings"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/ssa"
)

// coroPackage is the import path this checker looks for suspension
// primitives in. It is a var, not a const, only so a test can point it
// at a fixture package.
var coroPackage = "github.com/gocoro/coro"

// suspensionRoots names the exact primitives that block a Frame's
// goroutine: the package funcs Await/DelegateSeq/Delegate, and the two
// handle methods Yield and Progress.
var suspensionRoots = map[string]bool{
	"Await":       true,
	"Delegate":    true,
	"DelegateSeq": true,
	"Yield":       true,
	"Progress":    true,
}

// functionColors mirrors the teacher compiler's coroc/compiler/color.go:
// a colored function is one that calls, directly or transitively, a
// suspension primitive.
type functionColors map[*ssa.Function]bool

func findSuspensionMisuse(cg *callgraph.Graph) []string {
	colors := colorFunctions(cg)

	var findings []string
	for fn := range colors {
		if fn.Object() == nil || !fn.Object().Exported() {
			continue
		}
		if isTaskOrGeneratorBody(fn) {
			continue
		}
		pos := fn.Prog.Fset.Position(fn.Pos())
		findings = append(findings, fmt.Sprintf("%s: exported func %s may suspend its caller's goroutine (calls a coro primitive transitively)", formatPos(pos), fn.String()))
	}
	return findings
}

func colorFunctions(cg *callgraph.Graph) functionColors {
	colors := functionColors{}
	for fn, node := range cg.Nodes {
		if fn == nil || !isSuspensionRoot(fn) {
			continue
		}
		for _, edge := range node.In {
			colorFunctions0(cg, colors, edge.Caller.Func)
		}
	}
	return colors
}

func colorFunctions0(cg *callgraph.Graph, colors functionColors, fn *ssa.Function) {
	if colors[fn] {
		return
	}
	colors[fn] = true
	node := cg.Nodes[fn]
	if node == nil {
		return
	}
	for _, edge := range node.In {
		colorFunctions0(cg, colors, edge.Caller.Func)
	}
}

func isSuspensionRoot(fn *ssa.Function) bool {
	if !suspensionRoots[fn.Name()] {
		return false
	}
	pkg := fn.Package()
	if pkg == nil || pkg.Pkg == nil {
		return false
	}
	return pkg.Pkg.Path() == coroPackage
}

// isTaskOrGeneratorBody excludes functions shaped like a TaskFunc or
// GeneratorFunc body: any function whose first parameter's type name
// contains TaskHandle or GeneratorHandle. Function literals never reach
// this check, since they have no exported object.
func isTaskOrGeneratorBody(fn *ssa.Function) bool {
	if fn.Signature.Params().Len() == 0 {
		return false
	}
	p := fn.Signature.Params().At(0).Type().String()
	return strings.Contains(p, "TaskHandle") || strings.Contains(p, "GeneratorHandle")
}

func formatPos(pos token.Position) string {
	return pos.String()
}
