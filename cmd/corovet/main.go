// Command corovet is a go-vet-style checker for packages that use
// github.com/gocoro/coro. It flags exported functions that transitively
// call a suspension primitive (Await, Delegate, DelegateSeq, or a
// TaskHandle/GeneratorHandle method) without themselves being the
// function literal passed to NewTask or NewGenerator: calling a
// suspension primitive from any other goroutine violates the
// single-resumer contract of a Frame.
//
// corovet is a conservative lint, not a soundness proof: it cannot see
// which goroutine a function actually runs on, only the static call
// graph, so it reports candidates for review rather than certain bugs.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa/ssautil"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage of corovet:\n")
	fmt.Fprintf(os.Stderr, "\tcorovet [packages]\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	patterns := flag.Args()
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	findings, err := run(patterns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "corovet: %s\n", err)
		os.Exit(1)
	}
	for _, f := range findings {
		fmt.Println(f)
	}
	if len(findings) > 0 {
		os.Exit(1)
	}
}

func run(patterns []string) ([]string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedTypes | packages.NeedTypesInfo |
			packages.NeedSyntax | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, err
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, fmt.Errorf("packages contained errors")
	}

	prog, _ := ssautil.AllPackages(pkgs, 0)
	prog.Build()

	cg := cha.CallGraph(prog)
	return findSuspensionMisuse(cg), nil
}
