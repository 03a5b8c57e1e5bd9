package typechecker

import (
	"fmt"

	"jelly/internal/diagnostics"
	"jelly/internal/frontend/ast"
	"jelly/internal/semantics/table"
	"jelly/internal/types"
)

func (tc *TypeChecker) validateStatement(node ast.Statement) {
	switch s := node.(type) {
	case *ast.IfStmt:
		tc.validateIfStmt(s)

	case *ast.LoopStmt:
		for _, condition := range s.Conditions {
			tc.validateExpression(condition)
			tc.requireBoolCondition(condition, "loop statement")
		}
		tc.validateBlock(s.Body)

	case *ast.ForStmt:
		tc.validateExpression(s.Sequence)
		tc.validateBlock(s.Body)

	case *ast.GuardStmt:
		for _, condition := range s.Conditions {
			tc.validateExpression(condition)
			tc.requireBoolCondition(condition, "guard statement")
		}
		tc.validateBlock(s.Else)
		tc.checkBlockAlwaysReturns(s.Else)
		if !s.Else.HasFlag(ast.FlagAlwaysReturns) && !s.Else.HasFlag(ast.FlagBlockHasTerminator) {
			tc.error("else block of guard statement must transfer control", diagnostics.ErrMissingReturn, s)
		}

	case *ast.CaseStmt:
		tc.validateCaseStmt(s)

	case *ast.SwitchStmt:
		tc.validateSwitchStmt(s)

	case *ast.ControlStmt:
		tc.validateControlStmt(s)

	case *ast.VarDecl:
		tc.validateVarDecl(s)

	case *ast.DeferStmt:
		tc.validateExpression(s.X)

	case *ast.Block:
		tc.validateBlock(s)

	case ast.Expression:
		tc.validateExpression(s)
	}
}

func (tc *TypeChecker) validateBlock(block *ast.Block) {
	if block == nil || guardValidateOnce(block) {
		return
	}

	for _, statement := range block.Statements {
		tc.validateStatement(statement)

		// every control statement terminates the block
		if _, isControl := statement.(*ast.ControlStmt); isControl {
			block.SetFlag(ast.FlagBlockHasTerminator)
		}
	}
}

func (tc *TypeChecker) requireBoolCondition(condition ast.Expression, context string) {
	conditionType := condition.ExprBase().Type
	if !types.IsEqualOrError(conditionType, tc.types.Builtin(types.KindBool)) {
		tc.diagnostics.Add(
			diagnostics.NewError(fmt.Sprintf("expected type Bool for condition of %s", context)).
				WithCode(diagnostics.ErrNonBoolCondition).
				WithPrimaryLabel(condition.Loc(), fmt.Sprintf("has type '%s'", conditionType)),
		)
	}
}

func (tc *TypeChecker) validateIfStmt(statement *ast.IfStmt) {
	for _, condition := range statement.Conditions {
		tc.validateExpression(condition)
		tc.requireBoolCondition(condition, "if statement")
	}

	tc.validateBlock(statement.Then)
	switch statement.ElseKind {
	case ast.ElseBlock:
		tc.validateBlock(statement.ElseBody)
	case ast.ElseIf:
		tc.validateIfStmt(statement.ElseChain)
	}
}

// validateCaseStmt binds the case to its enclosing switch, requires at
// least one statement, and checks conditional case conditions against the
// switch argument type.
func (tc *TypeChecker) validateCaseStmt(statement *ast.CaseStmt) {
	scope := table.EnclosingOfKinds(tc.table.ScopeByID(statement.Scope), table.ScopeSwitch)
	if scope != nil {
		if switchStmt, isSwitch := scope.Userdata.(*ast.SwitchStmt); isSwitch {
			statement.EnclosingSwitch = switchStmt
		}
	} else {
		tc.error("'case' is only allowed inside a switch", diagnostics.ErrMisplacedControl, statement)
	}

	if len(statement.Body.Statements) < 1 {
		tc.error("switch case should contain at least one statement", diagnostics.ErrEmptyCase, statement)
	}

	if statement.Kind == ast.CaseConditional {
		tc.validateExpression(statement.Condition)
		if statement.EnclosingSwitch != nil {
			argumentType := statement.EnclosingSwitch.Argument.ExprBase().Type
			conditionType := statement.Condition.ExprBase().Type
			if !types.IsEqualOrError(argumentType, conditionType) &&
				!types.IsImplicitlyConvertible(conditionType, argumentType) {
				tc.diagnostics.Add(
					diagnostics.NewError("case condition is not comparable with switch argument").
						WithCode(diagnostics.ErrTypeMismatch).
						WithPrimaryLabel(statement.Condition.Loc(), fmt.Sprintf("'%s' vs '%s'", conditionType, argumentType)),
				)
			}
		}
	}

	tc.validateBlock(statement.Body)
}

func (tc *TypeChecker) validateSwitchStmt(statement *ast.SwitchStmt) {
	if guardValidateOnce(statement) {
		return
	}

	tc.validateExpression(statement.Argument)

	containsElseCase := false
	for index, caseStatement := range statement.Cases {
		tc.validateStatement(caseStatement)

		if caseStatement.Kind == ast.CaseElse {
			if index+1 < len(statement.Cases) {
				tc.error("the 'else' case has to be the last case of a switch statement", diagnostics.ErrMisplacedElseCase, caseStatement)
			}
			if containsElseCase {
				tc.error("there can only be a single 'else' case inside a switch statement", diagnostics.ErrMisplacedElseCase, caseStatement)
			}
			containsElseCase = true
		}
	}

	tc.checkSwitchExhaustive(statement)
	if !statement.HasFlag(ast.FlagSwitchExhaustive) {
		tc.error("switch statement must be exhaustive", diagnostics.ErrNonExhaustiveSwitch, statement)
	}
}

// validateControlStmt binds break/continue/fallthrough/return to their
// enclosing construct and checks return result types.
func (tc *TypeChecker) validateControlStmt(statement *ast.ControlStmt) {
	scope := tc.table.ScopeByID(statement.Scope)

	switch statement.Kind {
	case ast.ControlBreak:
		enclosing := table.EnclosingOfKinds(scope, table.ScopeLoop|table.ScopeSwitch)
		if enclosing != nil {
			statement.EnclosingNode = enclosing.Userdata
		} else {
			tc.error("'break' is only allowed inside a switch or loop", diagnostics.ErrMisplacedControl, statement)
		}

	case ast.ControlContinue:
		enclosing := table.EnclosingOfKinds(scope, table.ScopeLoop)
		if enclosing != nil {
			statement.EnclosingNode = enclosing.Userdata
		} else {
			tc.error("'continue' is only allowed inside a loop", diagnostics.ErrMisplacedControl, statement)
		}

	case ast.ControlFallthrough:
		enclosing := table.EnclosingOfKinds(scope, table.ScopeCase)
		if enclosing != nil {
			statement.EnclosingNode = enclosing.Userdata
		} else {
			tc.error("'fallthrough' is only allowed inside a case", diagnostics.ErrMisplacedControl, statement)
		}

	case ast.ControlReturn:
		if statement.Result != nil {
			tc.validateExpression(statement.Result)
		}

		enclosing := table.EnclosingOfKinds(scope, table.ScopeFunction)
		if enclosing == nil {
			tc.error("'return' is only allowed inside a function", diagnostics.ErrMisplacedControl, statement)
			return
		}
		statement.EnclosingNode = enclosing.Userdata

		function, isFunction := enclosing.Userdata.(*ast.FuncDecl)
		if !isFunction || function.Type == nil {
			return
		}

		resultType := types.Type(tc.types.Builtin(types.KindVoid))
		if statement.Result != nil {
			resultType = statement.Result.ExprBase().Type
		}

		if !types.IsEqualOrError(resultType, function.Type.Return) &&
			!types.IsImplicitlyConvertible(resultType, function.Type.Return) {
			tc.diagnostics.Add(
				diagnostics.NewError("type mismatch in return statement").
					WithCode(diagnostics.ErrTypeMismatch).
					WithPrimaryLabel(statement.Loc(), fmt.Sprintf("cannot return '%s' from a function returning '%s'", resultType, function.Type.Return)),
			)
		}
	}
}
