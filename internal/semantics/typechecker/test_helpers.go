package typechecker

import (
	"testing"

	"jelly/internal/diagnostics"
	"jelly/internal/frontend/ast"
	"jelly/internal/frontend/lexer"
	"jelly/internal/frontend/parser"
	"jelly/internal/interner"
	"jelly/internal/semantics/resolver"
	"jelly/internal/semantics/table"
	"jelly/internal/tokens"
	"jelly/internal/types"
)

// checkResult bundles everything a test needs to inspect after running the
// full front-end over a source string.
type checkResult struct {
	module   *ast.ModuleDecl
	table    *table.SymbolTable
	interner *interner.Table
	diag     *diagnostics.DiagnosticBag
}

// check runs tokenize, parse, resolve and type-check over one source
// string, with "main" as the entry point name.
func check(t *testing.T, src string) checkResult {
	t.Helper()

	diag := diagnostics.NewDiagnosticBag()
	in := interner.NewTable()
	arena := ast.NewArena()

	toks := lexer.Tokenize(src, "test.jelly", diag)
	unit := parser.Parse(tokens.NewStream(toks), "test.jelly", arena, in, diag)
	if unit == nil {
		t.Fatal("parser returned no source unit")
	}

	module := ast.Alloc[ast.ModuleDecl](arena)
	module.Name = "test"
	module.EntryPointName = in.Intern("main")
	module.SourceUnits = []*ast.SourceUnit{unit}
	ast.SetParents(module)

	if diag.HasBlockingDiagnostics() {
		t.Fatalf("parse errors:\n%s", diag.EmitAllToString())
	}

	symbols := table.NewSymbolTable()
	typeContext := types.NewContext()
	resolver.ResolveModule(module, symbols, arena, typeContext, in, diag)
	ValidateModule(module, symbols, arena, typeContext, in, diag)

	return checkResult{module: module, table: symbols, interner: in, diag: diag}
}

func (r checkResult) errorCount() int {
	return r.diag.Count(diagnostics.Error) + r.diag.Count(diagnostics.Critical)
}

func (r checkResult) expectErrors(t *testing.T, want int) {
	t.Helper()
	if got := r.errorCount(); got != want {
		t.Errorf("error count = %d, want %d\n%s", got, want, r.diag.EmitAllToString())
	}
}

func (r checkResult) expectCode(t *testing.T, code string) {
	t.Helper()
	for _, d := range r.diag.Diagnostics() {
		if d.Code == code {
			return
		}
	}
	t.Errorf("no diagnostic with code %s\n%s", code, r.diag.EmitAllToString())
}
