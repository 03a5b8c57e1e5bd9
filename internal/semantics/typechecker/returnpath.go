package typechecker

import (
	"jelly/internal/frontend/ast"
	"jelly/internal/semantics/table"
)

// checkBlockAlwaysReturns computes whether every control flow path through
// the block terminates in a return, bottom-up, and memoises the result as
// a flag on the block. A block always returns iff one of its statements
//   - is a return,
//   - is a continue inside a loop scope (the loop body re-enters),
//   - is an if whose then and else branches both always return,
//   - is an exhaustive switch whose every case body always returns,
//   - is a loop whose body always returns.
func (tc *TypeChecker) checkBlockAlwaysReturns(block *ast.Block) {
	if block == nil || block.HasFlag(ast.FlagAlwaysReturns) {
		return
	}

	isAlwaysReturning := false
	for _, statement := range block.Statements {
		switch s := statement.(type) {
		case *ast.ControlStmt:
			if s.Kind == ast.ControlReturn {
				isAlwaysReturning = true
			}
			if s.Kind == ast.ControlContinue {
				scope := tc.table.ScopeByID(s.Scope)
				if table.EnclosingOfKinds(scope, table.ScopeLoop) != nil {
					isAlwaysReturning = true
				}
			}

		case *ast.IfStmt:
			if tc.ifAlwaysReturns(s) {
				s.SetFlag(ast.FlagAlwaysReturns)
				isAlwaysReturning = true
			}

		case *ast.SwitchStmt:
			if s.HasFlag(ast.FlagAlwaysReturns) {
				isAlwaysReturning = true
				continue
			}

			allCasesReturn := true
			for _, caseStatement := range s.Cases {
				tc.checkBlockAlwaysReturns(caseStatement.Body)
				if !caseStatement.Body.HasFlag(ast.FlagAlwaysReturns) {
					allCasesReturn = false
				}
			}

			tc.checkSwitchExhaustive(s)
			if allCasesReturn && s.HasFlag(ast.FlagSwitchExhaustive) {
				s.SetFlag(ast.FlagAlwaysReturns)
				isAlwaysReturning = true
			}

		case *ast.LoopStmt:
			tc.checkBlockAlwaysReturns(s.Body)
			if s.Body.HasFlag(ast.FlagAlwaysReturns) {
				s.SetFlag(ast.FlagAlwaysReturns)
				isAlwaysReturning = true
			}

		case *ast.ForStmt:
			tc.checkBlockAlwaysReturns(s.Body)
			if s.Body.HasFlag(ast.FlagAlwaysReturns) {
				s.SetFlag(ast.FlagAlwaysReturns)
				isAlwaysReturning = true
			}
		}
	}

	if isAlwaysReturning {
		block.SetFlag(ast.FlagAlwaysReturns)
	}
}

// ifAlwaysReturns reports whether both branches of the if chain always
// return. A missing else branch means a fall-through path exists.
func (tc *TypeChecker) ifAlwaysReturns(statement *ast.IfStmt) bool {
	if statement.HasFlag(ast.FlagAlwaysReturns) {
		return true
	}

	tc.checkBlockAlwaysReturns(statement.Then)
	if !statement.Then.HasFlag(ast.FlagAlwaysReturns) {
		return false
	}

	switch statement.ElseKind {
	case ast.ElseBlock:
		tc.checkBlockAlwaysReturns(statement.ElseBody)
		return statement.ElseBody.HasFlag(ast.FlagAlwaysReturns)
	case ast.ElseIf:
		return tc.ifAlwaysReturns(statement.ElseChain)
	default:
		return false
	}
}
