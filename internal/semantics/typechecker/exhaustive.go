package typechecker

import (
	"golang.org/x/exp/slices"

	"jelly/internal/frontend/ast"
	"jelly/internal/types"
)

// checkSwitchExhaustive determines whether the switch covers every value
// its argument type can take and records the result as a flag. A trailing
// else case is always exhaustive. Enumeration switches exhaust when every
// declared element value appears as a case condition; Bool switches when
// both true and false appear. Other argument types require an else case.
func (tc *TypeChecker) checkSwitchExhaustive(statement *ast.SwitchStmt) {
	if statement.HasFlag(ast.FlagSwitchExhaustive) || len(statement.Cases) == 0 {
		return
	}

	// the else case is required to be last; a misplaced one is reported
	// during switch validation
	lastCase := statement.Cases[len(statement.Cases)-1]
	if lastCase.Kind == ast.CaseElse {
		statement.SetFlag(ast.FlagSwitchExhaustive)
		return
	}

	argumentType := statement.Argument.ExprBase().Type

	switch argument := argumentType.(type) {
	case *types.EnumerationType:
		enumeration, hasDecl := argument.Declaration.(*ast.EnumDecl)
		if !hasDecl {
			return
		}

		// element values may not be synthesized yet when the switch sits in
		// a source unit validated before the enum's
		tc.validateEnumDecl(enumeration)

		remaining := make([]uint64, 0, len(enumeration.Elements))
		for _, element := range enumeration.Elements {
			constant, isConstant := element.Initializer.(*ast.ConstantExpr)
			if !isConstant || constant.Kind != ast.ConstantInt {
				return
			}
			remaining = append(remaining, constant.IntValue)
		}

		for _, caseStatement := range statement.Cases {
			identifier, isIdentifier := caseStatement.Condition.(*ast.IdentifierExpr)
			if !isIdentifier {
				continue
			}
			element, isElement := identifier.Decl.(*ast.EnumElementDecl)
			if !isElement {
				continue
			}
			constant, isConstant := element.Initializer.(*ast.ConstantExpr)
			if !isConstant || constant.Kind != ast.ConstantInt {
				continue
			}
			if index := slices.Index(remaining, constant.IntValue); index >= 0 {
				remaining = slices.Delete(remaining, index, index+1)
			}
		}

		if len(remaining) == 0 {
			statement.SetFlag(ast.FlagSwitchExhaustive)
		}

	case *types.BuiltinType:
		if argument.Kind != types.KindBool {
			return
		}

		remaining := []bool{true, false}
		for _, caseStatement := range statement.Cases {
			constant, isConstant := caseStatement.Condition.(*ast.ConstantExpr)
			if !isConstant || constant.Kind != ast.ConstantBool {
				continue
			}
			if index := slices.Index(remaining, constant.BoolValue); index >= 0 {
				remaining = slices.Delete(remaining, index, index+1)
			}
		}

		if len(remaining) == 0 {
			statement.SetFlag(ast.FlagSwitchExhaustive)
		}
	}
}
