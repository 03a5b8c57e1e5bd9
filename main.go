package main

import (
	"flag"
	"fmt"
	"os"

	"jelly/internal/diagnostics"
	"jelly/internal/workspace"
)

func main() {
	root := flag.String("root", ".", "workspace root directory")
	build := flag.String("build", "build", "build output directory")
	moduleName := flag.String("module", "program", "module name")
	entry := flag.String("entry", "main", "entry point function name")
	dumpAST := flag.Bool("dump-ast", false, "print the parsed AST and exit")
	dumpScopes := flag.Bool("dump-scopes", false, "print the scope tree after name resolution")
	checkOnly := flag.Bool("check", false, "stop after type checking")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: jelly [flags] file.jelly ...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	options := workspace.Options{
		WorkingDirectory: *root,
		BuildDirectory:   *build,
		ModuleName:       *moduleName,
		EntryPointName:   *entry,
		TypeCheckOnly:    *checkOnly,
	}
	if *dumpAST {
		options.DumpAST = os.Stdout
	}
	if *dumpScopes {
		options.DumpScopes = os.Stdout
	}

	diag := diagnostics.NewDiagnosticBag()
	ws := workspace.New(options, diag)

	for _, path := range flag.Args() {
		ws.AddSourceFile(path)
	}

	ws.Compile()
	diag.EmitAll()

	if diag.HasBlockingDiagnostics() {
		os.Exit(1)
	}
}
