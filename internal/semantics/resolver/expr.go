package resolver

import (
	"fmt"

	"jelly/internal/diagnostics"
	"jelly/internal/frontend/ast"
	"jelly/internal/operators"
	"jelly/internal/source"
	"jelly/internal/types"
)

// resolveExpr binds names and infers the type of an expression bottom-up.
// Failures become diagnostics and seed the error type so enclosing
// expressions do not cascade.
func (r *Resolver) resolveExpr(expr ast.Expression) {
	if expr == nil {
		return
	}
	r.mark(expr)
	base := expr.ExprBase()

	switch e := expr.(type) {
	case *ast.ConstantExpr:
		switch e.Kind {
		case ast.ConstantNil:
			base.Type = r.types.Pointer(r.types.Builtin(types.KindVoid), 1)
		case ast.ConstantBool:
			base.Type = r.types.Builtin(types.KindBool)
		case ast.ConstantInt:
			base.Type = r.types.Builtin(types.KindInt)
		case ast.ConstantFloat:
			base.Type = r.types.Builtin(types.KindFloat)
		case ast.ConstantString:
			base.Type = r.types.Builtin(types.KindString)
		}
		base.IsConstant = true

	case *ast.IdentifierExpr:
		r.resolveIdentifier(e)

	case *ast.MemberAccessExpr:
		r.resolveMemberAccess(e)

	case *ast.UnaryExpr:
		r.resolveExpr(e.X)
		r.resolveUnary(e)

	case *ast.BinaryExpr:
		r.resolveExpr(e.X)
		r.resolveExpr(e.Y)
		r.resolveBinary(e)

	case *ast.AssignExpr:
		r.resolveExpr(e.Lhs)
		r.resolveExpr(e.Rhs)
		base.Type = r.types.Builtin(types.KindVoid)

	case *ast.CallExpr:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Arguments {
			r.resolveExpr(arg)
		}
		base.Type = r.callResultType(e)

	case *ast.SubscriptExpr:
		r.resolveExpr(e.X)
		for _, arg := range e.Arguments {
			r.resolveExpr(arg)
		}
		base.Type = r.subscriptResultType(e)

	case *ast.SizeOfExpr:
		r.resolveTypeRef(e.Target)
		base.Type = r.types.Builtin(types.KindInt)
		base.IsConstant = true

	case *ast.TypeOperationExpr:
		r.resolveExpr(e.X)
		target := r.resolveTypeRef(e.Target)
		if e.Kind == ast.TypeOperationCheck {
			base.Type = r.types.Builtin(types.KindBool)
		} else {
			base.Type = target
		}
	}

	if base.Type == nil {
		base.Type = r.types.Error()
	}
}

func (r *Resolver) resolveIdentifier(identifier *ast.IdentifierExpr) {
	scope := r.table.ScopeByID(identifier.Scope)
	symbol := scope.Lookup(identifier.Name, identifier.Loc())
	if symbol == nil {
		r.diagnostics.Add(
			diagnostics.NewError(fmt.Sprintf("use of unresolved identifier '%s'", r.name(identifier.Name))).
				WithCode(diagnostics.ErrUndefinedSymbol).
				WithPrimaryLabel(identifier.Loc(), "not found in this scope"),
		)
		identifier.Type = r.types.Error()
		return
	}

	decl, ok := symbol.Node.(ast.Declaration)
	if !ok {
		identifier.Type = r.types.Error()
		return
	}
	identifier.Decl = decl
	identifier.Type = r.declType(decl)
	if variable, isVariable := decl.(*ast.VarDecl); isVariable && !variable.Mutable() && variable.Initializer != nil {
		identifier.IsConstant = variable.Initializer.ExprBase().IsConstant
	}
	if _, isElement := decl.(*ast.EnumElementDecl); isElement {
		identifier.IsConstant = true
	}
}

// declType returns the semantic type a declaration contributes when
// referenced by name.
func (r *Resolver) declType(decl ast.Declaration) types.Type {
	switch d := decl.(type) {
	case *ast.VarDecl:
		if d.Type != nil {
			return d.Type
		}
	case *ast.ParamDecl:
		if d.Type != nil {
			return d.Type
		}
	case *ast.FuncDecl:
		if d.Type != nil {
			return d.Type
		}
	case *ast.EnumElementDecl:
		if d.Type != nil {
			return d.Type
		}
	case *ast.EnumDecl:
		if d.Type != nil {
			return d.Type
		}
	case *ast.StructDecl:
		if d.Type != nil {
			return d.Type
		}
	}
	return r.types.Error()
}

func (r *Resolver) resolveMemberAccess(member *ast.MemberAccessExpr) {
	r.resolveExpr(member.Argument)

	baseType := member.Argument.ExprBase().Type
	if pointer, isPointer := baseType.(*types.PointerType); isPointer && pointer.Depth == 1 {
		baseType = pointer.Pointee
	}

	structure, isStructure := baseType.(*types.StructureType)
	if !isStructure {
		if !types.IsError(baseType) {
			r.diagnostics.Add(
				diagnostics.NewError(fmt.Sprintf("type '%s' has no members", baseType)).
					WithCode(diagnostics.ErrUnknownMember).
					WithPrimaryLabel(member.Loc(), ""),
			)
		}
		member.Type = r.types.Error()
		return
	}

	field, found := structure.MemberNamed(r.name(member.MemberName))
	if !found {
		r.diagnostics.Add(
			diagnostics.NewError(fmt.Sprintf("type '%s' has no member '%s'", structure, r.name(member.MemberName))).
				WithCode(diagnostics.ErrUnknownMember).
				WithPrimaryLabel(member.Loc(), ""),
		)
		member.Type = r.types.Error()
		return
	}

	member.MemberIndex = field.Index
	member.Type = field.Type
}

// resolveUnary attaches the operator function, if one is declared, and
// infers the result type of a prefix operator application.
func (r *Resolver) resolveUnary(unary *ast.UnaryExpr) {
	operandType := unary.X.ExprBase().Type
	unary.Candidates = append(unary.Candidates, operandType)

	if fn := r.lookupOperatorFunction("prefix", unary.Op, unary); fn != nil {
		unary.OpFunc = fn
		unary.Type = fn.Type.Return
		return
	}

	if types.IsError(operandType) {
		unary.Type = r.types.Error()
		return
	}

	switch unary.Op {
	case "!":
		if !types.IsBool(operandType) {
			r.reportOperandType(unary.Op, operandType, unary.Loc())
			unary.Type = r.types.Error()
			return
		}
		unary.Type = operandType
	case "~":
		if !types.IsInteger(operandType) {
			r.reportOperandType(unary.Op, operandType, unary.Loc())
			unary.Type = r.types.Error()
			return
		}
		unary.Type = operandType
	case "+", "-":
		if !types.IsInteger(operandType) && !types.IsFloat(operandType) {
			r.reportOperandType(unary.Op, operandType, unary.Loc())
			unary.Type = r.types.Error()
			return
		}
		unary.Type = operandType
	default:
		unary.Type = r.types.Error()
	}
	unary.IsConstant = unary.X.ExprBase().IsConstant
}

// resolveBinary attaches the operator function, if one is declared, and
// infers the result type of an infix operator application.
func (r *Resolver) resolveBinary(binary *ast.BinaryExpr) {
	leftType := binary.X.ExprBase().Type
	rightType := binary.Y.ExprBase().Type
	binary.Candidates = append(binary.Candidates, leftType, rightType)

	if fn := r.lookupOperatorFunction("infix", binary.Op, binary); fn != nil {
		binary.OpFunc = fn
		binary.Type = fn.Type.Return
		return
	}

	if types.IsError(leftType) || types.IsError(rightType) {
		binary.Type = r.types.Error()
		return
	}

	op, _ := operators.Lookup(binary.Op, operators.Infix)
	switch op.Precedence {
	case operators.PrecedenceLogicalAnd, operators.PrecedenceLogicalOr:
		if !types.IsBool(leftType) || !types.IsBool(rightType) {
			r.reportBinaryTypes(binary.Op, leftType, rightType, binary.Loc())
			binary.Type = r.types.Error()
			return
		}
		binary.Type = r.types.Builtin(types.KindBool)
	case operators.PrecedenceEquality, operators.PrecedenceComparison:
		if leftType != rightType {
			r.reportBinaryTypes(binary.Op, leftType, rightType, binary.Loc())
			binary.Type = r.types.Error()
			return
		}
		binary.Type = r.types.Builtin(types.KindBool)
	case operators.PrecedenceShift:
		if !types.IsInteger(leftType) || !types.IsInteger(rightType) {
			r.reportBinaryTypes(binary.Op, leftType, rightType, binary.Loc())
			binary.Type = r.types.Error()
			return
		}
		binary.Type = leftType
	default:
		// arithmetic and bitwise operators
		if leftType != rightType || (!types.IsInteger(leftType) && !types.IsFloat(leftType)) {
			r.reportBinaryTypes(binary.Op, leftType, rightType, binary.Loc())
			binary.Type = r.types.Error()
			return
		}
		if op.Text == "&" || op.Text == "|" || op.Text == "^" || op.Text == "%" {
			if !types.IsInteger(leftType) {
				r.reportBinaryTypes(binary.Op, leftType, rightType, binary.Loc())
				binary.Type = r.types.Error()
				return
			}
		}
		binary.Type = leftType
	}
	binary.IsConstant = binary.X.ExprBase().IsConstant && binary.Y.ExprBase().IsConstant
}

// lookupOperatorFunction finds a user-declared prefix/infix operator
// function for the lexeme, visible from the expression's scope.
func (r *Resolver) lookupOperatorFunction(fixity, lexeme string, at ast.Expression) *ast.FuncDecl {
	key, interned := r.interner.Lookup(fixity + " " + lexeme)
	if !interned {
		return nil
	}
	scope := r.table.ScopeByID(at.Base().Scope)
	if scope == nil {
		return nil
	}
	symbol := scope.Lookup(key, nil)
	if symbol == nil {
		return nil
	}
	fn, ok := symbol.Node.(*ast.FuncDecl)
	if !ok {
		return nil
	}
	return fn
}

func (r *Resolver) callResultType(call *ast.CallExpr) types.Type {
	calleeType := call.Callee.ExprBase().Type
	if pointer, isPointer := calleeType.(*types.PointerType); isPointer && pointer.Depth == 1 {
		calleeType = pointer.Pointee
	}
	if fn, isFunction := calleeType.(*types.FunctionType); isFunction {
		return fn.Return
	}
	return r.types.Error()
}

func (r *Resolver) subscriptResultType(subscript *ast.SubscriptExpr) types.Type {
	switch t := subscript.X.ExprBase().Type.(type) {
	case *types.StaticArrayType:
		return t.Element
	case *types.DynamicArrayType:
		return t.Element
	case *types.PointerType:
		if t.Depth == 1 {
			return t.Pointee
		}
		return r.types.Pointer(t.Pointee, t.Depth-1)
	default:
		return r.types.Error()
	}
}

func (r *Resolver) reportOperandType(op string, operand types.Type, loc *source.Location) {
	r.diagnostics.Add(
		diagnostics.NewError(fmt.Sprintf("operator '%s' cannot be applied to operand of type '%s'", op, operand)).
			WithCode(diagnostics.ErrTypeMismatch).
			WithPrimaryLabel(loc, ""),
	)
}

func (r *Resolver) reportBinaryTypes(op string, left, right types.Type, loc *source.Location) {
	r.diagnostics.Add(
		diagnostics.NewError(fmt.Sprintf("operator '%s' cannot be applied to operands of type '%s' and '%s'", op, left, right)).
			WithCode(diagnostics.ErrTypeMismatch).
			WithPrimaryLabel(loc, ""),
	)
}
