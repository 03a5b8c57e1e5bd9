package workspace

import (
	"strings"
	"testing"

	"jelly/internal/diagnostics"
)

func newTestWorkspace(t *testing.T, sources map[string]string) (*Workspace, *diagnostics.DiagnosticBag) {
	t.Helper()
	diag := diagnostics.NewDiagnosticBag()
	ws := New(Options{WorkingDirectory: ".", ModuleName: "test", TypeCheckOnly: true}, diag)
	for path, content := range sources {
		ws.AddSourceContent(path, content)
	}
	return ws, diag
}

func TestSingleFileModule(t *testing.T) {
	ws, diag := newTestWorkspace(t, map[string]string{
		"main.jelly": `func main() -> Void { }`,
	})
	ws.AddSourceFile("main.jelly")

	module := ws.Compile()
	if module == nil {
		t.Fatalf("compilation failed:\n%s", diag.EmitAllToString())
	}
	if len(module.SourceUnits) != 1 {
		t.Errorf("source unit count = %d, want 1", len(module.SourceUnits))
	}
	if module.EntryPoint == nil {
		t.Error("entry point not located")
	}
}

func TestLoadGraphClosesOverLoads(t *testing.T) {
	ws, diag := newTestWorkspace(t, map[string]string{
		"main.jelly": `
#load "util.jelly"
func main() -> Void { helper() }
`,
		"util.jelly": `
#load "deep.jelly"
func helper() -> Void { deep() }
`,
		"deep.jelly": `func deep() -> Void { }`,
	})
	ws.AddSourceFile("main.jelly")

	module := ws.Compile()
	if module == nil {
		t.Fatalf("compilation failed:\n%s", diag.EmitAllToString())
	}
	if len(module.SourceUnits) != 3 {
		t.Errorf("source unit count = %d, want 3", len(module.SourceUnits))
	}
}

func TestLoadSeenTwiceIsSkippedSilently(t *testing.T) {
	ws, diag := newTestWorkspace(t, map[string]string{
		"main.jelly": `
#load "a.jelly"
#load "b.jelly"
func main() -> Void { }
`,
		"a.jelly": `#load "shared.jelly"` + "\n" + `var x: Int = 1`,
		"b.jelly": `#load "shared.jelly"` + "\n" + `var y: Int = 2`,
		"shared.jelly": `var shared: Int = 3`,
	})
	ws.AddSourceFile("main.jelly")

	module := ws.Compile()
	if module == nil {
		t.Fatalf("compilation failed:\n%s", diag.EmitAllToString())
	}
	if len(module.SourceUnits) != 4 {
		t.Errorf("source unit count = %d, want 4 (shared parsed once)", len(module.SourceUnits))
	}
	if diag.Count(diagnostics.Error) != 0 {
		t.Errorf("re-seen load should be skipped silently:\n%s", diag.EmitAllToString())
	}
}

func TestDuplicateInitialFileIsDiagnosed(t *testing.T) {
	ws, diag := newTestWorkspace(t, map[string]string{
		"main.jelly": `func main() -> Void { }`,
	})
	ws.AddSourceFile("main.jelly")
	ws.AddSourceFile("main.jelly")

	if diag.Count(diagnostics.Error) != 1 {
		t.Errorf("error count = %d, want 1", diag.Count(diagnostics.Error))
	}
}

func TestMissingFileIsDiagnosed(t *testing.T) {
	ws, diag := newTestWorkspace(t, nil)
	ws.AddSourceFile("does-not-exist.jelly")

	ws.Compile()
	if diag.Count(diagnostics.Error) != 1 {
		t.Errorf("error count = %d, want 1", diag.Count(diagnostics.Error))
	}
}

func TestEmptyFileProducesEmptyUnit(t *testing.T) {
	ws, diag := newTestWorkspace(t, map[string]string{
		"main.jelly":  `func main() -> Void { }`,
		"empty.jelly": ``,
	})
	ws.AddSourceFile("main.jelly")
	ws.AddSourceFile("empty.jelly")

	module := ws.Compile()
	if module == nil {
		t.Fatalf("compilation failed:\n%s", diag.EmitAllToString())
	}
	if len(module.SourceUnits) != 2 {
		t.Fatalf("source unit count = %d, want 2", len(module.SourceUnits))
	}
	for _, unit := range module.SourceUnits {
		if strings.HasSuffix(unit.FilePath, "empty.jelly") && len(unit.Declarations) != 0 {
			t.Error("empty file should produce an empty source unit")
		}
	}
}

func TestCrossFileReferencesResolve(t *testing.T) {
	ws, diag := newTestWorkspace(t, map[string]string{
		"main.jelly": `
#load "types.jelly"
var origin: Point
func main() -> Void { origin.x = 1 }
`,
		"types.jelly": `
struct Point {
    var x: Int
    var y: Int
}
`,
	})
	ws.AddSourceFile("main.jelly")

	module := ws.Compile()
	if module == nil {
		t.Fatalf("compilation failed:\n%s", diag.EmitAllToString())
	}
}

func TestPhaseGateStopsAfterParseErrors(t *testing.T) {
	ws, diag := newTestWorkspace(t, map[string]string{
		"main.jelly": `func main( -> Void { }`,
	})
	ws.AddSourceFile("main.jelly")

	module := ws.Compile()
	if module != nil {
		t.Error("compilation with parse errors should not produce a module")
	}
	if diag.Count(diagnostics.Error) == 0 {
		t.Error("expected parse errors")
	}
}

func TestCustomEntryPointName(t *testing.T) {
	diag := diagnostics.NewDiagnosticBag()
	ws := New(Options{WorkingDirectory: ".", EntryPointName: "start", TypeCheckOnly: true}, diag)
	ws.AddSourceContent("main.jelly", `func start() -> Void { }`)
	ws.AddSourceFile("main.jelly")

	module := ws.Compile()
	if module == nil {
		t.Fatalf("compilation failed:\n%s", diag.EmitAllToString())
	}
	if module.EntryPoint == nil {
		t.Error("custom-named entry point not located")
	}
}
