package typechecker

import (
	"fmt"

	"jelly/internal/diagnostics"
	"jelly/internal/frontend/ast"
	"jelly/internal/types"
)

func (tc *TypeChecker) validateExpression(expression ast.Expression) {
	if expression == nil || guardValidateOnce(expression) {
		return
	}

	switch e := expression.(type) {
	case *ast.ConstantExpr, *ast.IdentifierExpr:
		// resolved already

	case *ast.MemberAccessExpr:
		tc.validateExpression(e.Argument)

	case *ast.UnaryExpr:
		tc.validateExpression(e.X)

	case *ast.BinaryExpr:
		tc.validateExpression(e.X)
		tc.validateExpression(e.Y)

	case *ast.AssignExpr:
		tc.validateAssignment(e)

	case *ast.CallExpr:
		tc.validateCall(e)

	case *ast.SubscriptExpr:
		tc.validateSubscript(e)

	case *ast.SizeOfExpr:
		// the resolver already materialized the target type

	case *ast.TypeOperationExpr:
		tc.validateTypeOperation(e)
	}
}

// validateAssignment requires an lvalue target and matching types, with
// the exception that a nil constant may be assigned to any pointer.
func (tc *TypeChecker) validateAssignment(assignment *ast.AssignExpr) {
	tc.validateExpression(assignment.Lhs)
	tc.validateExpression(assignment.Rhs)

	if !tc.isLValue(assignment.Lhs) {
		tc.error("left hand side of assignment expression is not assignable", diagnostics.ErrNotAssignable, assignment)
	}

	targetType := assignment.Lhs.ExprBase().Type
	valueType := assignment.Rhs.ExprBase().Type

	if !types.IsEqualOrError(targetType, valueType) {
		_, targetIsPointer := targetType.(*types.PointerType)
		constant, rhsIsConstant := assignment.Rhs.(*ast.ConstantExpr)
		isNilAssignment := targetIsPointer && rhsIsConstant && constant.Kind == ast.ConstantNil

		if !isNilAssignment {
			tc.diagnostics.Add(
				diagnostics.NewError("assignment expression has mismatching type").
					WithCode(diagnostics.ErrTypeMismatch).
					WithPrimaryLabel(assignment.Loc(), fmt.Sprintf("cannot assign '%s' to '%s'", valueType, targetType)),
			)
		}
	}
}

// validateCall requires a function-typed callee (or pointer to function),
// matching arity, and compatible argument types. Diagnostics name the
// parameter when the declaration is known.
func (tc *TypeChecker) validateCall(call *ast.CallExpr) {
	tc.validateExpression(call.Callee)
	for _, argument := range call.Arguments {
		tc.validateExpression(argument)
	}

	calleeType := call.Callee.ExprBase().Type
	if types.IsError(calleeType) {
		return
	}

	if pointer, isPointer := calleeType.(*types.PointerType); isPointer && pointer.Depth == 1 {
		calleeType = pointer.Pointee
	}

	functionType, isFunction := calleeType.(*types.FunctionType)
	if !isFunction {
		tc.error("cannot call a non function type", diagnostics.ErrNotCallable, call)
		return
	}

	if len(call.Arguments) != len(functionType.Parameters) {
		tc.diagnostics.Add(
			diagnostics.NewError(fmt.Sprintf("invalid argument count expected '%d' found '%d'", len(functionType.Parameters), len(call.Arguments))).
				WithCode(diagnostics.ErrArgumentCount).
				WithPrimaryLabel(call.Loc(), ""),
		)
		return
	}

	declaration, _ := functionType.Declaration.(*ast.FuncDecl)
	for index, argument := range call.Arguments {
		parameterType := functionType.Parameters[index]
		argumentType := argument.ExprBase().Type
		if types.IsEqualOrError(argumentType, parameterType) ||
			types.IsImplicitlyConvertible(argumentType, parameterType) {
			continue
		}

		if declaration != nil && index < len(declaration.Parameters) {
			tc.diagnostics.Add(
				diagnostics.NewError(fmt.Sprintf("mismatching type for parameter '%s' in '%s'",
					tc.name(declaration.Parameters[index].Name), tc.name(declaration.Name))).
					WithCode(diagnostics.ErrTypeMismatch).
					WithPrimaryLabel(argument.Loc(), fmt.Sprintf("expected '%s', found '%s'", parameterType, argumentType)),
			)
		} else {
			tc.diagnostics.Add(
				diagnostics.NewError(fmt.Sprintf("mismatching type for parameter at position '%d'", index)).
					WithCode(diagnostics.ErrTypeMismatch).
					WithPrimaryLabel(argument.Loc(), fmt.Sprintf("expected '%s', found '%s'", parameterType, argumentType)),
			)
		}
	}
}

// validateSubscript requires exactly one integer-typed argument.
func (tc *TypeChecker) validateSubscript(subscript *ast.SubscriptExpr) {
	tc.validateExpression(subscript.X)
	for _, argument := range subscript.Arguments {
		tc.validateExpression(argument)
	}

	if len(subscript.Arguments) != 1 {
		tc.diagnostics.Add(
			diagnostics.NewError(fmt.Sprintf("expected single argument for subscript expression found '%d'", len(subscript.Arguments))).
				WithCode(diagnostics.ErrNonIntegerSubscript).
				WithPrimaryLabel(subscript.Loc(), ""),
		)
		subscript.Type = tc.types.Error()
		return
	}

	argumentType := subscript.Arguments[0].ExprBase().Type
	if !types.IsError(argumentType) && !types.IsInteger(argumentType) {
		tc.error("type mismatch in argument list of subscript expression", diagnostics.ErrNonIntegerSubscript, subscript)
		subscript.Type = tc.types.Error()
	}
}

// validateTypeOperation restricts bit-casts to pointer-to-pointer; the
// back-end widens this later if it ever makes sense.
func (tc *TypeChecker) validateTypeOperation(operation *ast.TypeOperationExpr) {
	tc.validateExpression(operation.X)

	if operation.Kind != ast.TypeOperationBitcast {
		return
	}

	sourceType := operation.X.ExprBase().Type
	targetType := operation.Target.TypeRefBase().Resolved
	if types.IsError(sourceType) || types.IsError(targetType) {
		return
	}

	_, sourceIsPointer := sourceType.(*types.PointerType)
	_, targetIsPointer := targetType.(*types.PointerType)
	if !sourceIsPointer || !targetIsPointer {
		tc.error("bitcast operation only accepts pointer types at the moment", diagnostics.ErrInvalidCast, operation)
		operation.Type = tc.types.Error()
	}
}

// isLValue reports whether the expression designates an assignable storage
// location: a variable identifier, a parameter of pointer type, or a
// subscript/member-access whose base is itself an lvalue.
func (tc *TypeChecker) isLValue(expression ast.Expression) bool {
	switch e := expression.(type) {
	case *ast.IdentifierExpr:
		switch decl := e.Decl.(type) {
		case *ast.VarDecl:
			return true
		case *ast.ParamDecl:
			_, isPointer := decl.Type.(*types.PointerType)
			return isPointer
		default:
			// unresolved identifiers already produced a diagnostic
			return types.IsError(e.Type)
		}

	case *ast.MemberAccessExpr:
		return tc.isLValue(e.Argument)

	case *ast.SubscriptExpr:
		return tc.isLValue(e.X)

	default:
		return false
	}
}
