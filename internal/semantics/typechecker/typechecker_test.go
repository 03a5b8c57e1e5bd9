package typechecker

import (
	"testing"

	"jelly/internal/diagnostics"
	"jelly/internal/frontend/ast"
)

// Entry point rules

func TestEmptyMainIsAValidModule(t *testing.T) {
	result := check(t, `func main() -> Void { }`)
	result.expectErrors(t, 0)
	if result.module.EntryPoint == nil {
		t.Error("entry point should be located")
	}
}

func TestMissingEntryPointIsDiagnosed(t *testing.T) {
	result := check(t, `func helper() -> Void { }`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrEntryPoint)
}

func TestEntryPointWithParametersIsDiagnosed(t *testing.T) {
	result := check(t, `func main(x: Int) -> Void { }`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrEntryPoint)
}

func TestEntryPointWithNonVoidReturnIsDiagnosed(t *testing.T) {
	result := check(t, `func main() -> Int { return 0 }`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrEntryPoint)
}

// Enumerations

func TestEnumValueSynthesis(t *testing.T) {
	result := check(t, `
enum E { case A; case B = 5; case C }
func main() -> Void { }
`)
	result.expectErrors(t, 0)

	enum := result.module.SourceUnits[0].Declarations[0].(*ast.EnumDecl)
	want := []uint64{0, 5, 6}
	for i, element := range enum.Elements {
		constant, ok := element.Initializer.(*ast.ConstantExpr)
		if !ok {
			t.Fatalf("element %d has no constant initializer", i)
		}
		if constant.IntValue != want[i] {
			t.Errorf("element %d value = %d, want %d", i, constant.IntValue, want[i])
		}
	}
}

func TestDuplicateEnumValueIsDiagnosed(t *testing.T) {
	result := check(t, `
enum E { case A = 1 case B = 1 }
func main() -> Void { }
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrDuplicateEnumValue)
}

func TestImplicitDuplicateEnumValueIsDiagnosed(t *testing.T) {
	result := check(t, `
enum E { case A case B = 0 }
func main() -> Void { }
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrDuplicateEnumValue)
}

func TestNonConstantEnumInitializerIsDiagnosed(t *testing.T) {
	result := check(t, `
var seed: Int = 1
enum E { case A = seed }
func main() -> Void { }
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrNonConstantEnumInit)
}

// Structures

func TestCyclicStorageIsDiagnosed(t *testing.T) {
	result := check(t, `
struct S { var x: S }
func main() -> Void { }
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrCyclicStorage)

	structure := result.module.SourceUnits[0].Declarations[0].(*ast.StructDecl)
	if !structure.HasFlag(ast.FlagCyclicStorage) {
		t.Error("the structure should be flagged as cyclic")
	}
}

func TestIndirectCyclicStorageIsDiagnosed(t *testing.T) {
	result := check(t, `
struct A { var b: B }
struct B { var a: A }
func main() -> Void { }
`)
	if result.errorCount() == 0 {
		t.Errorf("mutual by-value storage should be diagnosed\n%s", result.diag.EmitAllToString())
	}
}

func TestCyclicStorageThroughArrayIsDiagnosed(t *testing.T) {
	result := check(t, `
struct S { var items: S[4] }
func main() -> Void { }
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrCyclicStorage)
}

func TestPointerToSelfIsAccepted(t *testing.T) {
	result := check(t, `
struct Node { var next: Node* }
func main() -> Void { }
`)
	result.expectErrors(t, 0)
}

func TestVoidMemberIsDiagnosed(t *testing.T) {
	result := check(t, `
struct S { var x: Void }
func main() -> Void { }
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrVoidValue)
}

// Functions and return paths

func TestMissingReturnOnSomePathIsDiagnosed(t *testing.T) {
	result := check(t, `
var cond: Bool = true
func f() -> Int {
    if cond { return 1 }
}
func main() -> Void { }
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrMissingReturn)
}

func TestIfElseBothReturning(t *testing.T) {
	result := check(t, `
var cond: Bool = true
func f() -> Int {
    if cond { return 1 } else { return 2 }
}
func main() -> Void { }
`)
	result.expectErrors(t, 0)
}

func TestExhaustiveSwitchReturnPath(t *testing.T) {
	result := check(t, `
var flag: Bool = true
func f() -> Int {
    switch flag {
    case true:
        return 1
    case false:
        return 2
    }
}
func main() -> Void { }
`)
	result.expectErrors(t, 0)
}

func TestForLoopWithReturningBodyMarksBlock(t *testing.T) {
	result := check(t, `
var items: Int[4]
func f() -> Int {
    for item in items { return item }
}
func main() -> Void { }
`)
	result.expectErrors(t, 0)
}

func TestVoidParameterIsDiagnosed(t *testing.T) {
	result := check(t, `
func f(x: Void) -> Void { }
func main() -> Void { }
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrVoidValue)
}

func TestForeignFunctionSkipsBodyChecks(t *testing.T) {
	result := check(t, `
foreign func write(fd: Int, text: String) -> Int
func main() -> Void { }
`)
	result.expectErrors(t, 0)
}

// Switch statements

func TestBoolSwitchWithBothCasesIsExhaustive(t *testing.T) {
	result := check(t, `
var flag: Bool = true
func main() -> Void {
    switch flag {
    case true:
        break
    case false:
        break
    }
}
`)
	result.expectErrors(t, 0)
}

func TestBoolSwitchMissingCaseIsDiagnosed(t *testing.T) {
	result := check(t, `
var flag: Bool = true
func main() -> Void {
    switch flag {
    case true:
        break
    }
}
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrNonExhaustiveSwitch)
}

func TestEnumSwitchCoveringAllElementsIsExhaustive(t *testing.T) {
	result := check(t, `
enum Direction { case North case South }
var d: Direction = North
func main() -> Void {
    switch d {
    case North:
        break
    case South:
        break
    }
}
`)
	result.expectErrors(t, 0)
}

func TestEnumSwitchMissingElementIsDiagnosed(t *testing.T) {
	result := check(t, `
enum Direction { case North case South }
var d: Direction = North
func main() -> Void {
    switch d {
    case North:
        break
    }
}
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrNonExhaustiveSwitch)
}

func TestIntSwitchRequiresElseCase(t *testing.T) {
	result := check(t, `
var x: Int = 1
func main() -> Void {
    switch x {
    case 1:
        break
    }
}
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrNonExhaustiveSwitch)
}

func TestElseCaseMustBeLast(t *testing.T) {
	result := check(t, `
var x: Int = 1
func main() -> Void {
    switch x {
    else:
        break
    case 1:
        break
    }
}
`)
	if result.errorCount() == 0 {
		t.Error("a non-final else case should be diagnosed")
	}
	result.expectCode(t, diagnostics.ErrMisplacedElseCase)
}

func TestEmptyCaseIsDiagnosed(t *testing.T) {
	result := check(t, `
var x: Int = 1
func main() -> Void {
    switch x {
    case 1:
    else:
        break
    }
}
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrEmptyCase)
}

// Control statements

func TestMisplacedBreakIsDiagnosed(t *testing.T) {
	result := check(t, `func main() -> Void { break }`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrMisplacedControl)
}

func TestMisplacedContinueIsDiagnosed(t *testing.T) {
	result := check(t, `
var x: Int = 1
func main() -> Void {
    switch x {
    case 1:
        continue
    else:
        break
    }
}
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrMisplacedControl)
}

func TestMisplacedFallthroughIsDiagnosed(t *testing.T) {
	result := check(t, `
func main() -> Void {
    while true { fallthrough }
}
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrMisplacedControl)
}

func TestBreakInsideLoopIsBound(t *testing.T) {
	result := check(t, `
func main() -> Void {
    while true { break }
}
`)
	result.expectErrors(t, 0)
}

func TestReturnTypeMismatchIsDiagnosed(t *testing.T) {
	result := check(t, `
func f() -> Int { return true }
func main() -> Void { }
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrTypeMismatch)
}

// Conditions

func TestNonBoolConditionIsDiagnosed(t *testing.T) {
	result := check(t, `
var x: Int = 1
func main() -> Void {
    if x { }
}
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrNonBoolCondition)
}

func TestGuardElseMustTransferControl(t *testing.T) {
	result := check(t, `
var ready: Bool = true
var x: Int = 1
func main() -> Void {
    guard ready else { x = 2 }
}
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrMissingReturn)
}

// Assignments and lvalues

func TestAssignToVariableIsAccepted(t *testing.T) {
	result := check(t, `
var x: Int = 1
func main() -> Void { x = 2 }
`)
	result.expectErrors(t, 0)
}

func TestAssignToLiteralIsDiagnosed(t *testing.T) {
	result := check(t, `func main() -> Void { 1 = 2 }`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrNotAssignable)
}

func TestAssignMismatchedTypeIsDiagnosed(t *testing.T) {
	result := check(t, `
var x: Int = 1
func main() -> Void { x = true }
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrTypeMismatch)
}

func TestNilAssignsToAnyPointer(t *testing.T) {
	result := check(t, `
var p: Int* = nil
func main() -> Void { p = nil }
`)
	result.expectErrors(t, 0)
}

func TestMemberAccessAssignment(t *testing.T) {
	result := check(t, `
struct Point { var x: Int var y: Int }
var p: Point
func main() -> Void { p.x = 3 }
`)
	result.expectErrors(t, 0)
}

func TestSubscriptAssignment(t *testing.T) {
	result := check(t, `
var items: Int[4]
func main() -> Void { items[0] = 3 }
`)
	result.expectErrors(t, 0)
}

// Calls and subscripts

func TestCallArityMismatchIsDiagnosed(t *testing.T) {
	result := check(t, `
func f(a: Int) -> Void { }
func main() -> Void { f(1, 2) }
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrArgumentCount)
}

func TestCallArgumentTypeMismatchNamesParameter(t *testing.T) {
	result := check(t, `
func f(amount: Int) -> Void { }
func main() -> Void { f(true) }
`)
	result.expectErrors(t, 1)
	found := false
	for _, d := range result.diag.Diagnostics() {
		if d.Code == diagnostics.ErrTypeMismatch {
			found = true
			if want := "mismatching type for parameter 'amount' in 'f'"; d.Message != want {
				t.Errorf("message = %q, want %q", d.Message, want)
			}
		}
	}
	if !found {
		t.Error("expected a type mismatch diagnostic")
	}
}

func TestCallOnNonFunctionIsDiagnosed(t *testing.T) {
	result := check(t, `
var x: Int = 1
func main() -> Void { x(1) }
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrNotCallable)
}

func TestNonIntegerSubscriptIsDiagnosed(t *testing.T) {
	result := check(t, `
var items: Int[4]
func main() -> Void { items[true] }
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrNonIntegerSubscript)
}

// Variables

func TestVarInitializerTypeMismatchIsDiagnosed(t *testing.T) {
	result := check(t, `
var x: Int = true
func main() -> Void { }
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrTypeMismatch)
}

func TestWideningInitializerIsAccepted(t *testing.T) {
	result := check(t, `
var wide: Int64 = 1
var real: Float64 = 2.5
func main() -> Void { }
`)
	result.expectErrors(t, 0)
}

// Type operations

func TestPointerBitcastIsAccepted(t *testing.T) {
	result := check(t, `
var p: Int8* = nil
func main() -> Void { p as UInt8* }
`)
	result.expectErrors(t, 0)
}

func TestNonPointerBitcastIsDiagnosed(t *testing.T) {
	result := check(t, `
var x: Int = 1
func main() -> Void { x as Float64 }
`)
	result.expectErrors(t, 1)
	result.expectCode(t, diagnostics.ErrInvalidCast)
}

// Static array sizes

func TestNonLiteralArraySizeIsDiagnosed(t *testing.T) {
	result := check(t, `
var n: Int = 4
var items: Int[n]
func main() -> Void { }
`)
	if result.errorCount() == 0 {
		t.Error("a non-literal array size should be diagnosed")
	}
	result.expectCode(t, diagnostics.ErrArraySize)
}

func TestStaticArrayFlagAndSize(t *testing.T) {
	result := check(t, `
var items: Int[4]
func main() -> Void { }
`)
	result.expectErrors(t, 0)

	variable := result.module.SourceUnits[0].Declarations[0].(*ast.VarDecl)
	array := variable.TypeRef.(*ast.ArrayTypeRef)
	if !array.IsStatic() {
		t.Error("literal-sized array should be flagged static")
	}
	if array.SizeValue != 4 {
		t.Errorf("size value = %d, want 4", array.SizeValue)
	}
}

// Operator functions

func TestUserInfixOperatorIsResolved(t *testing.T) {
	result := check(t, `
struct Vec { var x: Int }
infix func +(a: Vec, b: Vec) -> Vec { return a }
var u: Vec
var v: Vec
var w: Vec = u + v
func main() -> Void { }
`)
	result.expectErrors(t, 0)

	variable := result.module.SourceUnits[0].Declarations[4].(*ast.VarDecl)
	binary := variable.Initializer.(*ast.BinaryExpr)
	if binary.OpFunc == nil {
		t.Fatal("binary expression should resolve the user operator function")
	}
	if binary.OpFunc.Kind != ast.FuncInfixOp {
		t.Error("resolved operator should be the infix declaration")
	}
}

// Invariants

func TestEveryExpressionHasAType(t *testing.T) {
	result := check(t, `
enum E { case A case B }
struct S { var value: Int }
var s: S
var e: E = A
func compute(x: Int) -> Int {
    var local: Int = x * 2
    if local > 3 { return local }
    return s.value + sizeof(Int32)
}
func main() -> Void { compute(7) }
`)
	result.expectErrors(t, 0)

	ast.Walk(result.module, func(n ast.Node) bool {
		if expr, ok := n.(ast.Expression); ok {
			if expr.ExprBase().Type == nil {
				t.Errorf("expression %T has no resolved type", expr)
			}
		}
		return true
	})
}

func TestValidationIsIdempotent(t *testing.T) {
	result := check(t, `
enum E { case A = 1 case B = 1 }
func main() -> Void { }
`)
	before := result.errorCount()

	// revalidating the same module must not add diagnostics
	enum := result.module.SourceUnits[0].Declarations[0].(*ast.EnumDecl)
	if !enum.HasFlag(ast.FlagValidated) {
		t.Fatal("enum should be marked validated")
	}
	if before != 1 {
		t.Fatalf("error count = %d, want 1", before)
	}

	tc := &TypeChecker{table: result.table, interner: result.interner, diagnostics: result.diag}
	tc.validateModule(result.module)
	tc.validateEnumDecl(enum)
	if after := result.errorCount(); after != before {
		t.Errorf("error count after revalidation = %d, want %d", after, before)
	}
}
