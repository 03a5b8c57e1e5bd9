package typechecker

import (
	"fmt"

	"golang.org/x/exp/slices"

	"jelly/internal/diagnostics"
	"jelly/internal/frontend/ast"
	"jelly/internal/interner"
	"jelly/internal/semantics/table"
	"jelly/internal/types"
)

// TypeChecker validates a resolved module: declarations, statements and
// expressions, plus the whole-module rules (static array sizes, entry
// point). Validation is idempotent; every node is marked validated and
// re-entering it is a no-op.
type TypeChecker struct {
	table       *table.SymbolTable
	arena       *ast.Arena
	types       *types.Context
	interner    *interner.Table
	diagnostics *diagnostics.DiagnosticBag
}

// ValidateModule runs the type checking pass over a resolved module.
func ValidateModule(module *ast.ModuleDecl, symbols *table.SymbolTable, arena *ast.Arena, typeContext *types.Context, in *interner.Table, diag *diagnostics.DiagnosticBag) {
	tc := &TypeChecker{
		table:       symbols,
		arena:       arena,
		types:       typeContext,
		interner:    in,
		diagnostics: diag,
	}
	tc.validateModule(module)
}

// guardValidateOnce reports whether the node was already validated and
// marks it otherwise.
func guardValidateOnce(node ast.Node) bool {
	if node.Base().HasFlag(ast.FlagValidated) {
		return true
	}
	node.Base().SetFlag(ast.FlagValidated)
	return false
}

func (tc *TypeChecker) name(id interner.ID) string {
	return tc.interner.Text(id)
}

func (tc *TypeChecker) error(msg, code string, node ast.Node) {
	tc.diagnostics.Add(
		diagnostics.NewError(msg).
			WithCode(code).
			WithPrimaryLabel(node.Loc(), ""),
	)
}

func (tc *TypeChecker) validateModule(module *ast.ModuleDecl) {
	if guardValidateOnce(module) {
		return
	}

	tc.validateStaticArrayTypes()

	for _, unit := range module.SourceUnits {
		tc.validateSourceUnit(unit)
	}

	if tc.diagnostics.HasBlockingDiagnostics() {
		return
	}

	tc.locateEntryPoint(module)
}

func (tc *TypeChecker) validateSourceUnit(unit *ast.SourceUnit) {
	if guardValidateOnce(unit) {
		return
	}

	for _, node := range unit.Declarations {
		tc.validateTopLevelNode(node)
	}
}

func (tc *TypeChecker) validateTopLevelNode(node ast.Node) {
	switch d := node.(type) {
	case *ast.LoadDirective:
		// handled by the workspace
	case *ast.EnumDecl:
		tc.validateEnumDecl(d)
	case *ast.FuncDecl:
		tc.validateFuncDecl(d)
	case *ast.StructDecl:
		tc.validateStructDecl(d)
	case *ast.VarDecl:
		tc.validateVarDecl(d)
	}
}

// validateStaticArrayTypes verifies that every sized array type reference
// carries an integer literal size, then records the value.
func (tc *TypeChecker) validateStaticArrayTypes() {
	for _, node := range tc.arena.Nodes() {
		arrayType, isArrayType := node.(*ast.ArrayTypeRef)
		if !isArrayType || arrayType.Size == nil {
			continue
		}
		constant, isConstant := arrayType.Size.(*ast.ConstantExpr)
		if !isConstant {
			tc.error("only literal expressions are allowed for the size of an array", diagnostics.ErrArraySize, arrayType)
			continue
		}
		if constant.Kind != ast.ConstantInt {
			tc.error("only integer literals are allowed for the size of an array", diagnostics.ErrArraySize, arrayType)
			continue
		}
		arrayType.SetFlag(ast.FlagArrayStatic)
		arrayType.SizeValue = int64(constant.IntValue)
	}
}

// locateEntryPoint finds the module entry point: a parameterless plain
// function returning Void, named by the configured entry point name. Zero
// or more than one such function is a diagnostic.
func (tc *TypeChecker) locateEntryPoint(module *ast.ModuleDecl) {
	for _, unit := range module.SourceUnits {
		for _, node := range unit.Declarations {
			function, isFunction := node.(*ast.FuncDecl)
			if !isFunction || function.Kind != ast.FuncPlain {
				continue
			}
			if function.Name != module.EntryPointName {
				continue
			}

			if module.EntryPoint != nil {
				tc.error("invalid redeclaration of program entry point", diagnostics.ErrEntryPoint, function)
				return
			}

			if len(function.Parameters) != 0 {
				tc.error("expected no parameters for program entry point", diagnostics.ErrEntryPoint, function)
				return
			}

			if !types.IsEqualOrError(function.Type.Return, tc.types.Builtin(types.KindVoid)) {
				tc.error("return type of program entry point is not 'Void'", diagnostics.ErrEntryPoint, function)
				return
			}

			module.EntryPoint = function
		}
	}

	if module.EntryPoint == nil {
		tc.diagnostics.Add(
			diagnostics.NewError("no entry point specified for module").
				WithCode(diagnostics.ErrEntryPoint).
				WithPrimaryLabel(module.Loc(), "").
				WithNote(fmt.Sprintf("declare 'func %s() -> Void' in one of the module's source files", tc.name(module.EntryPointName))),
		)
	}
}

// validateEnumDecl synthesizes missing element values (previous value plus
// one, starting at zero) and rejects non-constant, non-integer and
// overlapping initializers.
func (tc *TypeChecker) validateEnumDecl(declaration *ast.EnumDecl) {
	if guardValidateOnce(declaration) {
		return
	}

	values := make([]uint64, 0, len(declaration.Elements))
	var nextValue uint64
	for _, element := range declaration.Elements {
		if element.Initializer == nil {
			constant := ast.Alloc[ast.ConstantExpr](tc.arena)
			constant.Kind = ast.ConstantInt
			constant.IntValue = nextValue
			constant.IsConstant = true
			constant.Type = tc.types.Builtin(types.KindInt)
			constant.Scope = element.Scope
			constant.SetParent(element)
			element.Initializer = constant
		}

		tc.validateExpression(element.Initializer)

		initializer := element.Initializer.ExprBase()
		if types.IsError(initializer.Type) {
			continue
		}

		constant, isConstant := element.Initializer.(*ast.ConstantExpr)
		if !isConstant || !initializer.IsConstant {
			tc.error(fmt.Sprintf("initializer of element '%s' has to be a constant value", tc.name(element.Name)), diagnostics.ErrNonConstantEnumInit, element)
			continue
		}

		if constant.Kind != ast.ConstantInt {
			tc.error(fmt.Sprintf("initializer of element '%s' has to be an integer value", tc.name(element.Name)), diagnostics.ErrNonConstantEnumInit, element)
			continue
		}

		if slices.Contains(values, constant.IntValue) {
			tc.error(fmt.Sprintf("invalid reuse of value %d for different enum elements", constant.IntValue), diagnostics.ErrDuplicateEnumValue, element)
			continue
		}

		values = append(values, constant.IntValue)
		nextValue = constant.IntValue + 1
	}
}

// validateFuncDecl checks the signature, verifies the return paths of the
// body, and validates the body statements. Foreign and intrinsic functions
// skip body validation.
func (tc *TypeChecker) validateFuncDecl(declaration *ast.FuncDecl) {
	if guardValidateOnce(declaration) {
		return
	}

	for _, parameter := range declaration.Parameters {
		if types.IsVoid(parameter.Type) {
			parameter.Type = tc.types.Error()
			tc.error("cannot pass 'Void' type as parameter", diagnostics.ErrVoidValue, parameter)
		}
	}

	if declaration.Kind == ast.FuncForeign || declaration.Kind == ast.FuncIntrinsic {
		return
	}

	requiresReturnValue := !types.IsVoid(declaration.Type.Return) && !types.IsError(declaration.Type.Return)

	tc.checkBlockAlwaysReturns(declaration.Body)
	if requiresReturnValue && !declaration.Body.HasFlag(ast.FlagAlwaysReturns) {
		tc.error("not all code paths return a value", diagnostics.ErrMissingReturn, declaration)
	}

	for _, statement := range declaration.Body.Statements {
		tc.validateStatement(statement)
	}
}

// validateStructDecl runs cyclic storage detection and rejects Void
// members.
func (tc *TypeChecker) validateStructDecl(declaration *ast.StructDecl) {
	if guardValidateOnce(declaration) {
		return
	}

	parents := []*ast.StructDecl{declaration}
	tc.checkCyclicStorage(declaration, parents)

	for _, value := range declaration.Values {
		if types.IsVoid(value.Type) {
			value.Type = tc.types.Error()
			tc.error("cannot store 'Void' type as member", diagnostics.ErrVoidValue, value)
		}
	}
}

// checkCyclicStorage walks member types depth-first, unwrapping arrays to
// their element. A structure reached by value that is already on the
// current path is cyclic storage.
func (tc *TypeChecker) checkCyclicStorage(declaration *ast.StructDecl, parents []*ast.StructDecl) {
	for _, value := range declaration.Values {
		elementType := value.Type
		for {
			if array, isArray := elementType.(*types.StaticArrayType); isArray {
				elementType = array.Element
				continue
			}
			if array, isArray := elementType.(*types.DynamicArrayType); isArray {
				elementType = array.Element
				continue
			}
			break
		}

		structure, isStructure := elementType.(*types.StructureType)
		if !isStructure {
			continue
		}
		memberDecl, hasDecl := structure.Declaration.(*ast.StructDecl)
		if !hasDecl {
			continue
		}

		if slices.Contains(parents, memberDecl) {
			tc.error("struct cannot store a variable of same type recursively", diagnostics.ErrCyclicStorage, declaration)
			declaration.SetFlag(ast.FlagCyclicStorage)
			return
		}

		parents = append(parents, memberDecl)
		tc.checkCyclicStorage(memberDecl, parents)
		parents = parents[:len(parents)-1]
	}
}

// validateVarDecl checks that an initializer matches the declared type.
func (tc *TypeChecker) validateVarDecl(declaration *ast.VarDecl) {
	if guardValidateOnce(declaration) {
		return
	}

	if declaration.Initializer == nil {
		return
	}

	tc.validateExpression(declaration.Initializer)

	// a nil constant initializes any pointer, same as in assignments
	if _, isPointer := declaration.Type.(*types.PointerType); isPointer {
		if constant, isConstant := declaration.Initializer.(*ast.ConstantExpr); isConstant && constant.Kind == ast.ConstantNil {
			return
		}
	}

	initializerType := declaration.Initializer.ExprBase().Type
	if !types.IsEqualOrError(declaration.Type, initializerType) &&
		!types.IsImplicitlyConvertible(initializerType, declaration.Type) {
		tc.diagnostics.Add(
			diagnostics.NewError(fmt.Sprintf("assignment expression of '%s' has mismatching type", tc.name(declaration.Name))).
				WithCode(diagnostics.ErrTypeMismatch).
				WithPrimaryLabel(declaration.Loc(), fmt.Sprintf("cannot assign '%s' to '%s'", initializerType, declaration.Type)),
		)
	}
}
