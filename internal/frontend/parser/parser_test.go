package parser

import (
	"testing"

	"jelly/internal/diagnostics"
	"jelly/internal/frontend/ast"
	"jelly/internal/frontend/lexer"
	"jelly/internal/interner"
	"jelly/internal/tokens"
)

type parseResult struct {
	unit     *ast.SourceUnit
	interner *interner.Table
	diag     *diagnostics.DiagnosticBag
}

func parseSource(t *testing.T, src string) parseResult {
	t.Helper()
	diag := diagnostics.NewDiagnosticBag()
	in := interner.NewTable()
	arena := ast.NewArena()
	toks := lexer.Tokenize(src, "test.jelly", diag)
	unit := Parse(tokens.NewStream(toks), "test.jelly", arena, in, diag)
	return parseResult{unit: unit, interner: in, diag: diag}
}

func parseExprFrom(t *testing.T, src string) (ast.Expression, parseResult) {
	t.Helper()
	result := parseSource(t, "func f() -> Void { "+src+" }")
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	fn, ok := result.unit.Declarations[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected function declaration, got %T", result.unit.Declarations[0])
	}
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("expected one statement, got %d", len(fn.Body.Statements))
	}
	expr, ok := fn.Body.Statements[0].(ast.Expression)
	if !ok {
		t.Fatalf("expected expression statement, got %T", fn.Body.Statements[0])
	}
	return expr, result
}

func TestEmptyFileProducesEmptySourceUnit(t *testing.T) {
	result := parseSource(t, "")
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Error("empty file should parse without errors")
	}
	if result.unit == nil {
		t.Fatal("expected a source unit")
	}
	if len(result.unit.Declarations) != 0 {
		t.Errorf("empty file should have no declarations, got %d", len(result.unit.Declarations))
	}
}

func TestParseLoadDirective(t *testing.T) {
	result := parseSource(t, `#load "util.jelly"`)
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	load, ok := result.unit.Declarations[0].(*ast.LoadDirective)
	if !ok {
		t.Fatalf("expected load directive, got %T", result.unit.Declarations[0])
	}
	if load.Path.StringValue != "util.jelly" {
		t.Errorf("path = %q", load.Path.StringValue)
	}
}

func TestParseEnumDecl(t *testing.T) {
	result := parseSource(t, `enum E { case A case B = 5 case C }`)
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	enum, ok := result.unit.Declarations[0].(*ast.EnumDecl)
	if !ok {
		t.Fatalf("expected enum declaration, got %T", result.unit.Declarations[0])
	}
	if len(enum.Elements) != 3 {
		t.Fatalf("element count = %d, want 3", len(enum.Elements))
	}
	if enum.Elements[0].Initializer != nil {
		t.Error("element A should have no initializer")
	}
	constant, ok := enum.Elements[1].Initializer.(*ast.ConstantExpr)
	if !ok || constant.IntValue != 5 {
		t.Error("element B should be initialized to the literal 5")
	}
}

func TestParseFunctionDecl(t *testing.T) {
	result := parseSource(t, `func add(a: Int, b: Int) -> Int { return a + b }`)
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	fn, ok := result.unit.Declarations[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected function declaration, got %T", result.unit.Declarations[0])
	}
	if fn.Kind != ast.FuncPlain {
		t.Errorf("kind = %s, want func", fn.Kind)
	}
	if len(fn.Parameters) != 2 {
		t.Fatalf("parameter count = %d, want 2", len(fn.Parameters))
	}
	if result.interner.Text(fn.Parameters[1].Name) != "b" {
		t.Errorf("second parameter = %q", result.interner.Text(fn.Parameters[1].Name))
	}
	if _, ok := fn.ReturnType.(*ast.OpaqueTypeRef); !ok {
		t.Errorf("return type should be an opaque reference, got %T", fn.ReturnType)
	}
}

func TestParseOperatorFunctionDecls(t *testing.T) {
	result := parseSource(t, `
prefix func -(value: Int) -> Int { return 0 - value }
infix func +(lhs: Int, rhs: Int) -> Int { return lhs }
`)
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	prefix := result.unit.Declarations[0].(*ast.FuncDecl)
	if prefix.Kind != ast.FuncPrefixOp {
		t.Errorf("kind = %s, want prefix func", prefix.Kind)
	}
	if result.interner.Text(prefix.Name) != "-" {
		t.Errorf("prefix function name = %q, want -", result.interner.Text(prefix.Name))
	}
	infix := result.unit.Declarations[1].(*ast.FuncDecl)
	if infix.Kind != ast.FuncInfixOp {
		t.Errorf("kind = %s, want infix func", infix.Kind)
	}
}

func TestParseForeignAndIntrinsicFunctions(t *testing.T) {
	result := parseSource(t, `
foreign func write(fd: Int, text: String) -> Int
intrinsic func trap() -> Void
`)
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	foreign := result.unit.Declarations[0].(*ast.FuncDecl)
	if foreign.Kind != ast.FuncForeign || foreign.Body != nil {
		t.Error("foreign function should have no body")
	}
	intrinsic := result.unit.Declarations[1].(*ast.FuncDecl)
	if intrinsic.Kind != ast.FuncIntrinsic || intrinsic.Body != nil {
		t.Error("intrinsic function should have no body")
	}
}

func TestParseStructRejectsNonVariableStatements(t *testing.T) {
	result := parseSource(t, `struct S { var x: Int return }`)
	if result.diag.Count(diagnostics.Error) == 0 {
		t.Error("a non-variable statement inside a struct should be diagnosed")
	}
}

func TestParseVarAndLet(t *testing.T) {
	result := parseSource(t, `
var count: Int = 0
let limit: Int = 10
`)
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	count := result.unit.Declarations[0].(*ast.VarDecl)
	if !count.Mutable() {
		t.Error("var declaration should be mutable")
	}
	limit := result.unit.Declarations[1].(*ast.VarDecl)
	if limit.Mutable() {
		t.Error("let declaration should be immutable")
	}
}

// Operator precedence and associativity

func TestMultiplicationBindsTighterThanAddition(t *testing.T) {
	expr, _ := parseExprFrom(t, "a + b * c")
	add, ok := expr.(*ast.BinaryExpr)
	if !ok || add.Op != "+" {
		t.Fatalf("root should be '+', got %T", expr)
	}
	mul, ok := add.Y.(*ast.BinaryExpr)
	if !ok || mul.Op != "*" {
		t.Fatalf("right child should be '*', got %T", add.Y)
	}
}

func TestLeftAssociativeChain(t *testing.T) {
	expr, _ := parseExprFrom(t, "a - b - c")
	outer, ok := expr.(*ast.BinaryExpr)
	if !ok || outer.Op != "-" {
		t.Fatalf("root should be '-', got %T", expr)
	}
	inner, ok := outer.X.(*ast.BinaryExpr)
	if !ok || inner.Op != "-" {
		t.Fatal("a - b - c should parse as (a - b) - c")
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	expr, _ := parseExprFrom(t, "a = b = c")
	outer, ok := expr.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("root should be an assignment, got %T", expr)
	}
	if _, ok := outer.Rhs.(*ast.AssignExpr); !ok {
		t.Error("a = b = c should parse as a = (b = c)")
	}
}

func TestComparisonBindsTighterThanLogical(t *testing.T) {
	expr, _ := parseExprFrom(t, "a < b && c < d")
	and, ok := expr.(*ast.BinaryExpr)
	if !ok || and.Op != "&&" {
		t.Fatalf("root should be '&&', got %T", expr)
	}
	if left, ok := and.X.(*ast.BinaryExpr); !ok || left.Op != "<" {
		t.Error("left operand should be a comparison")
	}
}

func TestPrefixOperatorBindsItsOperandOnly(t *testing.T) {
	expr, _ := parseExprFrom(t, "-a + b")
	add, ok := expr.(*ast.BinaryExpr)
	if !ok || add.Op != "+" {
		t.Fatalf("-a + b should parse as (-a) + b, got %T", expr)
	}
	if _, ok := add.X.(*ast.UnaryExpr); !ok {
		t.Error("left operand should be the unary negation")
	}
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	expr, _ := parseExprFrom(t, "(a + b) * c")
	mul, ok := expr.(*ast.BinaryExpr)
	if !ok || mul.Op != "*" {
		t.Fatalf("root should be '*', got %T", expr)
	}
	if add, ok := mul.X.(*ast.BinaryExpr); !ok || add.Op != "+" {
		t.Error("left operand should be the parenthesized addition")
	}
}

func TestPostfixChaining(t *testing.T) {
	expr, result := parseExprFrom(t, "table.rows[0].count(1, 2)")
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		t.Fatalf("root should be a call, got %T", expr)
	}
	if len(call.Arguments) != 2 {
		t.Errorf("argument count = %d, want 2", len(call.Arguments))
	}
	member, ok := call.Callee.(*ast.MemberAccessExpr)
	if !ok {
		t.Fatalf("callee should be a member access, got %T", call.Callee)
	}
	if result.interner.Text(member.MemberName) != "count" {
		t.Errorf("member = %q", result.interner.Text(member.MemberName))
	}
	if _, ok := member.Argument.(*ast.SubscriptExpr); !ok {
		t.Error("member base should be a subscript expression")
	}
}

func TestSizeOfExpression(t *testing.T) {
	expr, _ := parseExprFrom(t, "sizeof(Int32)")
	if _, ok := expr.(*ast.SizeOfExpr); !ok {
		t.Fatalf("expected sizeof expression, got %T", expr)
	}
}

func TestTypeOperations(t *testing.T) {
	expr, _ := parseExprFrom(t, "p as Int8*")
	cast, ok := expr.(*ast.TypeOperationExpr)
	if !ok || cast.Kind != ast.TypeOperationBitcast {
		t.Fatalf("expected bitcast, got %T", expr)
	}
	if _, ok := cast.Target.(*ast.PointerTypeRef); !ok {
		t.Error("cast target should be a pointer type reference")
	}
}

// Statements

func TestIfElseChainIsTagged(t *testing.T) {
	result := parseSource(t, `
func f(a: Bool, b: Bool) -> Void {
    if a { } else if b { } else { }
}
`)
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	fn := result.unit.Declarations[0].(*ast.FuncDecl)
	ifStmt := fn.Body.Statements[0].(*ast.IfStmt)
	if ifStmt.ElseKind != ast.ElseIf {
		t.Fatal("first else should chain into an if statement")
	}
	if ifStmt.ElseBody != nil {
		t.Error("else body and else chain are mutually exclusive")
	}
	chained := ifStmt.ElseChain
	if chained.ElseKind != ast.ElseBlock || chained.ElseBody == nil {
		t.Error("second else should be a terminal block")
	}
}

func TestConditionLists(t *testing.T) {
	result := parseSource(t, `
func f(a: Bool, b: Bool) -> Void {
    if a, b { }
    while a, b { }
    guard a, b else { return }
}
`)
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	fn := result.unit.Declarations[0].(*ast.FuncDecl)
	ifStmt := fn.Body.Statements[0].(*ast.IfStmt)
	if len(ifStmt.Conditions) != 2 {
		t.Errorf("if condition count = %d, want 2", len(ifStmt.Conditions))
	}
	while := fn.Body.Statements[1].(*ast.LoopStmt)
	if while.Kind != ast.LoopWhile || len(while.Conditions) != 2 {
		t.Error("while statement should carry both conditions")
	}
	guard := fn.Body.Statements[2].(*ast.GuardStmt)
	if len(guard.Conditions) != 2 || guard.Else == nil {
		t.Error("guard statement should carry both conditions and the else block")
	}
}

func TestDoWhileLoop(t *testing.T) {
	result := parseSource(t, `
func f(a: Bool) -> Void {
    do { } while a
}
`)
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	fn := result.unit.Declarations[0].(*ast.FuncDecl)
	loop := fn.Body.Statements[0].(*ast.LoopStmt)
	if loop.Kind != ast.LoopDoWhile {
		t.Error("do/while should produce a do-while loop")
	}
}

func TestForStatement(t *testing.T) {
	result := parseSource(t, `
func f(items: Int[]) -> Void {
    for item in items { }
}
`)
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	fn := result.unit.Declarations[0].(*ast.FuncDecl)
	forStmt := fn.Body.Statements[0].(*ast.ForStmt)
	if result.interner.Text(forStmt.Element) != "item" {
		t.Errorf("element = %q", result.interner.Text(forStmt.Element))
	}
}

func TestSwitchStatement(t *testing.T) {
	result := parseSource(t, `
func f(x: Int) -> Void {
    switch x {
    case 1:
        return
    else:
        return
    }
}
`)
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	fn := result.unit.Declarations[0].(*ast.FuncDecl)
	switchStmt := fn.Body.Statements[0].(*ast.SwitchStmt)
	if len(switchStmt.Cases) != 2 {
		t.Fatalf("case count = %d, want 2", len(switchStmt.Cases))
	}
	if switchStmt.Cases[0].Kind != ast.CaseConditional {
		t.Error("first case should be conditional")
	}
	if switchStmt.Cases[1].Kind != ast.CaseElse {
		t.Error("second case should be the else case")
	}
	if switchStmt.Cases[0].EnclosingSwitch != switchStmt {
		t.Error("cases should link back to the enclosing switch")
	}
}

func TestDeferStatement(t *testing.T) {
	result := parseSource(t, `
func f(cleanup: Int) -> Void {
    defer cleanup
}
`)
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	fn := result.unit.Declarations[0].(*ast.FuncDecl)
	if _, ok := fn.Body.Statements[0].(*ast.DeferStmt); !ok {
		t.Error("expected a defer statement")
	}
}

// Types

func TestPointerTypesCollapseStackedStars(t *testing.T) {
	result := parseSource(t, `var p: Int8** = nil`)
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	variable := result.unit.Declarations[0].(*ast.VarDecl)
	pointer, ok := variable.TypeRef.(*ast.PointerTypeRef)
	if !ok {
		t.Fatalf("expected pointer type reference, got %T", variable.TypeRef)
	}
	if pointer.Depth != 2 {
		t.Errorf("depth = %d, want 2", pointer.Depth)
	}
}

func TestArrayTypes(t *testing.T) {
	result := parseSource(t, `
var fixed: Int[4]
var dynamic: Int[]
`)
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	fixed := result.unit.Declarations[0].(*ast.VarDecl).TypeRef.(*ast.ArrayTypeRef)
	if fixed.Size == nil {
		t.Error("sized array should carry its size expression")
	}
	dynamic := result.unit.Declarations[1].(*ast.VarDecl).TypeRef.(*ast.ArrayTypeRef)
	if dynamic.Size != nil {
		t.Error("dynamic array should have no size expression")
	}
}

func TestTypeOfTypeRef(t *testing.T) {
	result := parseSource(t, `
var x: Int = 1
var y: typeof(x) = 2
`)
	if result.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", result.diag.EmitAllToString())
	}
	variable := result.unit.Declarations[1].(*ast.VarDecl)
	if _, ok := variable.TypeRef.(*ast.TypeOfTypeRef); !ok {
		t.Errorf("expected typeof reference, got %T", variable.TypeRef)
	}
}

// Failure modes

func TestUnexpectedTopLevelTokenIsDiagnosed(t *testing.T) {
	result := parseSource(t, `return`)
	if result.diag.Count(diagnostics.Error) == 0 {
		t.Error("a statement at the top level should be diagnosed")
	}
}

func TestMissingPunctuatorIsDiagnosed(t *testing.T) {
	result := parseSource(t, `func f(a: Int -> Int { return a }`)
	if result.diag.Count(diagnostics.Error) == 0 {
		t.Error("a missing ')' should be diagnosed")
	}
}

// Round trip: parse, pretty-print, parse again; the second print must be
// identical, which means the trees are structurally equal.

func TestPrintParseRoundTrip(t *testing.T) {
	src := `
#load "util.jelly"

enum Direction { case North case South = 5 case East }

struct Point {
    var x: Float64
    var y: Float64
}

var origin: Point
let limit: Int = 100

prefix func -(value: Int) -> Int { return 0 - value }

func length(p: Point, scale: Int) -> Float64 {
    var total: Float64 = p.x * p.x + p.y * p.y
    if total < 0.0, limit > 0 { return 0.0 } else { total = total + 1.0 }
    while total > 100.0 { total = total / 2.0 }
    do { total = total + 1.0 } while total < 3.0
    guard total > 0.0 else { return 0.0 }
    switch scale {
    case 0:
        fallthrough
    else:
        break
    }
    defer p.x
    return total
}

func main() -> Void { }
`
	first := parseSource(t, src)
	if first.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("parse errors:\n%s", first.diag.EmitAllToString())
	}

	printer := ast.NewPrinter(first.interner)
	printed := printer.Print(first.unit)

	second := parseSource(t, printed)
	if second.diag.Count(diagnostics.Error) != 0 {
		t.Fatalf("re-parse errors:\n%s\nprinted source:\n%s", second.diag.EmitAllToString(), printed)
	}

	reprinted := ast.NewPrinter(second.interner).Print(second.unit)
	if printed != reprinted {
		t.Errorf("round trip mismatch:\nfirst:\n%s\nsecond:\n%s", printed, reprinted)
	}
}
