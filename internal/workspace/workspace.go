// Package workspace drives a whole compilation: it discovers source files
// through #load directives, parses them into one module, and runs the
// resolve and type-check phases in order. No phase sees partial output of
// its successor; progression stops once a phase produced an Error or
// Critical diagnostic.
package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"jelly/internal/diagnostics"
	"jelly/internal/frontend/ast"
	"jelly/internal/frontend/lexer"
	"jelly/internal/frontend/parser"
	"jelly/internal/interner"
	"jelly/internal/semantics/resolver"
	"jelly/internal/semantics/table"
	"jelly/internal/semantics/typechecker"
	"jelly/internal/tokens"
	"jelly/internal/types"
)

// Options configures a workspace.
type Options struct {
	WorkingDirectory string
	BuildDirectory   string
	ModuleName       string
	EntryPointName   string // defaults to "main"
	DumpAST          io.Writer
	DumpScopes       io.Writer
	TypeCheckOnly    bool
}

// Workspace owns the per-module state: arena, interner, type table, symbol
// table and the load queue. It is confined to one goroutine; hosts that
// compile several modules concurrently create one workspace each.
type Workspace struct {
	options     Options
	arena       *ast.Arena
	interner    *interner.Table
	types       *types.Context
	table       *table.SymbolTable
	diagnostics *diagnostics.DiagnosticBag
	module      *ast.ModuleDecl

	sourceFilePaths []string // absolute paths of every file seen
	parseQueue      []string // workspace-relative paths waiting to be parsed
	sources         map[string]string
}

func New(options Options, diag *diagnostics.DiagnosticBag) *Workspace {
	if options.EntryPointName == "" {
		options.EntryPointName = "main"
	}
	if options.ModuleName == "" {
		options.ModuleName = "program"
	}
	return &Workspace{
		options:     options,
		arena:       ast.NewArena(),
		interner:    interner.NewTable(),
		types:       types.NewContext(),
		table:       table.NewSymbolTable(),
		diagnostics: diag,
		sources:     make(map[string]string),
	}
}

// Arena exposes the module arena so a host can release it after the
// back-end finished.
func (w *Workspace) Arena() *ast.Arena { return w.arena }

// Interner exposes the identifier table for diagnostics rendering and
// AST dumps.
func (w *Workspace) Interner() *interner.Table { return w.interner }

// SymbolTable exposes the scope tree built during resolution.
func (w *Workspace) SymbolTable() *table.SymbolTable { return w.table }

// AddSourceFile queues an initial source file, given relative to the
// working directory. Adding the same file twice is a diagnostic.
func (w *Workspace) AddSourceFile(path string) {
	absolute := filepath.Join(w.options.WorkingDirectory, path)
	if w.seen(absolute) {
		w.diagnostics.Add(
			diagnostics.NewError(fmt.Sprintf("cannot load source file at path '%s' twice", path)).
				WithCode(diagnostics.ErrDuplicateSource),
		)
		return
	}
	w.sourceFilePaths = append(w.sourceFilePaths, absolute)
	w.parseQueue = append(w.parseQueue, path)
}

// AddSourceContent registers in-memory content for a path, used instead of
// reading the file from disk.
func (w *Workspace) AddSourceContent(path, content string) {
	absolute := filepath.Join(w.options.WorkingDirectory, path)
	w.sources[absolute] = content
}

func (w *Workspace) seen(absolute string) bool {
	for _, existing := range w.sourceFilePaths {
		if existing == absolute {
			return true
		}
	}
	return false
}

// Compile runs the parse, resolve and type-check phases and returns the
// validated module root, or nil if a phase emitted blocking diagnostics.
func (w *Workspace) Compile() *ast.ModuleDecl {
	w.module = ast.Alloc[ast.ModuleDecl](w.arena)
	w.module.Name = w.options.ModuleName
	w.module.EntryPointName = w.interner.Intern(w.options.EntryPointName)

	// Parse phase: drain the queue, discovering new files through #load.
	for len(w.parseQueue) > 0 {
		path := w.parseQueue[0]
		w.parseQueue = w.parseQueue[1:]
		w.parseFile(path)
	}

	ast.SetParents(w.module)

	if w.options.DumpAST != nil {
		printer := ast.NewPrinter(w.interner)
		fmt.Fprintln(w.options.DumpAST, printer.Print(w.module))
		return nil
	}

	if w.diagnostics.HasBlockingDiagnostics() {
		return nil
	}

	// Name resolution phase.
	resolver.ResolveModule(w.module, w.table, w.arena, w.types, w.interner, w.diagnostics)

	if w.options.DumpScopes != nil {
		w.table.Dump(w.options.DumpScopes, w.interner)
	}

	if w.diagnostics.HasBlockingDiagnostics() {
		return nil
	}

	// Type checking phase.
	typechecker.ValidateModule(w.module, w.table, w.arena, w.types, w.interner, w.diagnostics)

	if w.diagnostics.HasBlockingDiagnostics() {
		return nil
	}

	if w.options.TypeCheckOnly {
		return w.module
	}

	if w.options.BuildDirectory != "" {
		if err := os.MkdirAll(w.options.BuildDirectory, 0o755); err != nil {
			w.diagnostics.Add(
				diagnostics.NewError(fmt.Sprintf("couldn't create build directory at path: '%s'", w.options.BuildDirectory)).
					WithCode(diagnostics.ErrBuildDirectory),
			)
			return nil
		}
	}

	return w.module
}

func (w *Workspace) parseFile(path string) {
	absolute := filepath.Join(w.options.WorkingDirectory, path)

	content, ok := w.sources[absolute]
	if !ok {
		data, err := os.ReadFile(absolute)
		if err != nil {
			w.diagnostics.Add(
				diagnostics.NewError(fmt.Sprintf("file not found: '%s'", path)).
					WithCode(diagnostics.ErrFileNotFound),
			)
			return
		}
		content = string(data)
	}

	toks := lexer.Tokenize(content, absolute, w.diagnostics)
	stream := tokens.NewStream(toks)
	unit := parser.Parse(stream, absolute, w.arena, w.interner, w.diagnostics)
	if unit == nil {
		return
	}

	w.module.SourceUnits = append(w.module.SourceUnits, unit)
	w.performLoads(path, unit)
}

// performLoads enqueues the target of every #load directive of the unit.
// Paths resolve relative to the including file, then against the workspace
// root. A file already parsed is skipped silently when re-seen here.
func (w *Workspace) performLoads(unitPath string, unit *ast.SourceUnit) {
	for _, node := range unit.Declarations {
		load, isLoad := node.(*ast.LoadDirective)
		if !isLoad {
			continue
		}

		relative := filepath.Join(filepath.Dir(unitPath), load.Path.StringValue)
		absolute := filepath.Join(w.options.WorkingDirectory, relative)

		if w.seen(absolute) {
			continue
		}
		w.sourceFilePaths = append(w.sourceFilePaths, absolute)
		w.parseQueue = append(w.parseQueue, relative)
	}
}
