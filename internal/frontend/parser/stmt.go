package parser

import (
	"jelly/internal/diagnostics"
	"jelly/internal/frontend/ast"
	"jelly/internal/operators"
	"jelly/internal/source"
	"jelly/internal/tokens"
)

// parseStatement parses a single statement. Anything that does not start
// with a statement keyword is an expression statement. A failed sub-parse
// yields nil, never a typed nil.
func (p *Parser) parseStatement() ast.Statement {
	switch p.peek().Kind {
	case tokens.VAR_TOKEN, tokens.LET_TOKEN:
		if decl := p.parseVarDecl(); decl != nil {
			return decl
		}
	case tokens.BREAK_TOKEN:
		return p.parseControlStmt(ast.ControlBreak)
	case tokens.CONTINUE_TOKEN:
		return p.parseControlStmt(ast.ControlContinue)
	case tokens.FALLTHROUGH_TOKEN:
		return p.parseControlStmt(ast.ControlFallthrough)
	case tokens.RETURN_TOKEN:
		return p.parseReturnStmt()
	case tokens.DEFER_TOKEN:
		if stmt := p.parseDeferStmt(); stmt != nil {
			return stmt
		}
	case tokens.DO_TOKEN:
		if stmt := p.parseDoStmt(); stmt != nil {
			return stmt
		}
	case tokens.FOR_TOKEN:
		if stmt := p.parseForStmt(); stmt != nil {
			return stmt
		}
	case tokens.GUARD_TOKEN:
		if stmt := p.parseGuardStmt(); stmt != nil {
			return stmt
		}
	case tokens.IF_TOKEN:
		if stmt := p.parseIfStmt(); stmt != nil {
			return stmt
		}
	case tokens.SWITCH_TOKEN:
		if stmt := p.parseSwitchStmt(); stmt != nil {
			return stmt
		}
	case tokens.WHILE_TOKEN:
		if stmt := p.parseWhileStmt(); stmt != nil {
			return stmt
		}
	default:
		expr := p.parseExpression(0)
		if expr == nil {
			// skip the offending token so the block loop makes progress
			p.advance()
			return nil
		}
		return expr
	}
	return nil
}

// parseBlock: '{' statement* '}'
func (p *Parser) parseBlock() *ast.Block {
	open, ok := p.expect(tokens.OPEN_CURLY)
	if !ok {
		return nil
	}

	block := ast.Alloc[ast.Block](p.arena)

	for !p.match(tokens.CLOSE_CURLY) && !p.atEnd() {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}

	p.expect(tokens.CLOSE_CURLY)
	block.Location = p.spanFrom(open.Start)
	return block
}

func (p *Parser) parseControlStmt(kind ast.ControlKind) *ast.ControlStmt {
	start := p.advance().Start

	control := ast.Alloc[ast.ControlStmt](p.arena)
	control.Kind = kind
	control.Location = p.spanFrom(start)
	return control
}

// parseReturnStmt: return [expression]
// The result is optional; a following '}' or statement keyword means a bare
// return.
func (p *Parser) parseReturnStmt() *ast.ControlStmt {
	start := p.advance().Start

	control := ast.Alloc[ast.ControlStmt](p.arena)
	control.Kind = ast.ControlReturn

	if p.startsExpression() {
		control.Result = p.parseExpression(0)
	}

	control.Location = p.spanFrom(start)
	return control
}

// startsExpression reports whether the current token can begin an
// expression.
func (p *Parser) startsExpression() bool {
	switch p.peek().Kind {
	case tokens.INT_TOKEN, tokens.FLOAT_TOKEN, tokens.STRING_TOKEN,
		tokens.TRUE_TOKEN, tokens.FALSE_TOKEN, tokens.NIL_TOKEN,
		tokens.IDENTIFIER_TOKEN, tokens.OPEN_PAREN, tokens.SIZEOF_TOKEN:
		return true
	case tokens.OPERATOR_TOKEN:
		_, ok := p.currentOperator(operators.Prefix)
		return ok
	}
	return false
}

// parseDeferStmt: defer expression
func (p *Parser) parseDeferStmt() *ast.DeferStmt {
	start := p.advance().Start

	deferStmt := ast.Alloc[ast.DeferStmt](p.arena)
	deferStmt.X = p.parseExpression(0)
	if deferStmt.X == nil {
		p.error(diagnostics.ErrInvalidStatement, "expected expression after 'defer'")
		return nil
	}
	deferStmt.Location = p.spanFrom(start)
	return deferStmt
}

// parseDoStmt: do block while expression
func (p *Parser) parseDoStmt() *ast.LoopStmt {
	start := p.advance().Start

	loop := ast.Alloc[ast.LoopStmt](p.arena)
	loop.Kind = ast.LoopDoWhile
	loop.Body = p.parseBlock()
	if loop.Body == nil {
		return nil
	}

	if _, ok := p.expect(tokens.WHILE_TOKEN); !ok {
		return nil
	}

	cond := p.parseExpression(0)
	if cond == nil {
		p.error(diagnostics.ErrInvalidStatement, "expected condition after 'while' in do statement")
		return nil
	}
	loop.Conditions = []ast.Expression{cond}
	loop.Location = p.spanFrom(start)
	return loop
}

// parseForStmt: for element in sequence block
func (p *Parser) parseForStmt() *ast.ForStmt {
	start := p.advance().Start

	forStmt := ast.Alloc[ast.ForStmt](p.arena)
	element, ok := p.parseIdentifier()
	if !ok {
		return nil
	}
	forStmt.Element = element

	if _, ok := p.expect(tokens.IN_TOKEN); !ok {
		return nil
	}

	forStmt.Sequence = p.parseExpression(0)
	if forStmt.Sequence == nil {
		p.error(diagnostics.ErrInvalidStatement, "expected sequence expression in for statement")
		return nil
	}

	forStmt.Body = p.parseBlock()
	if forStmt.Body == nil {
		return nil
	}

	forStmt.Location = p.spanFrom(start)
	return forStmt
}

// parseGuardStmt: guard condition {, condition} else block
func (p *Parser) parseGuardStmt() *ast.GuardStmt {
	start := p.advance().Start

	guard := ast.Alloc[ast.GuardStmt](p.arena)
	guard.Conditions = p.parseConditionList()
	if len(guard.Conditions) == 0 {
		p.error(diagnostics.ErrInvalidStatement, "expected condition in guard statement")
		return nil
	}

	if _, ok := p.expect(tokens.ELSE_TOKEN); !ok {
		return nil
	}

	guard.Else = p.parseBlock()
	if guard.Else == nil {
		return nil
	}

	guard.Location = p.spanFrom(start)
	return guard
}

// parseIfStmt: if condition {, condition} block [else (if-statement | block)]
func (p *Parser) parseIfStmt() *ast.IfStmt {
	start := p.advance().Start

	ifStmt := ast.Alloc[ast.IfStmt](p.arena)
	ifStmt.Conditions = p.parseConditionList()
	if len(ifStmt.Conditions) == 0 {
		p.error(diagnostics.ErrInvalidStatement, "expected condition in if statement")
		return nil
	}

	ifStmt.Then = p.parseBlock()
	if ifStmt.Then == nil {
		return nil
	}

	if p.match(tokens.ELSE_TOKEN) {
		p.advance()
		if p.match(tokens.IF_TOKEN) {
			ifStmt.ElseKind = ast.ElseIf
			ifStmt.ElseChain = p.parseIfStmt()
			if ifStmt.ElseChain == nil {
				return nil
			}
		} else {
			ifStmt.ElseKind = ast.ElseBlock
			ifStmt.ElseBody = p.parseBlock()
			if ifStmt.ElseBody == nil {
				return nil
			}
		}
	}

	ifStmt.Location = p.spanFrom(start)
	return ifStmt
}

// parseWhileStmt: while condition {, condition} block
func (p *Parser) parseWhileStmt() *ast.LoopStmt {
	start := p.advance().Start

	loop := ast.Alloc[ast.LoopStmt](p.arena)
	loop.Kind = ast.LoopWhile
	loop.Conditions = p.parseConditionList()
	if len(loop.Conditions) == 0 {
		p.error(diagnostics.ErrInvalidStatement, "expected condition in while statement")
		return nil
	}

	loop.Body = p.parseBlock()
	if loop.Body == nil {
		return nil
	}

	loop.Location = p.spanFrom(start)
	return loop
}

// parseSwitchStmt: switch expression { switch-case* }
func (p *Parser) parseSwitchStmt() *ast.SwitchStmt {
	start := p.advance().Start

	switchStmt := ast.Alloc[ast.SwitchStmt](p.arena)
	switchStmt.Argument = p.parseExpression(0)
	if switchStmt.Argument == nil {
		p.error(diagnostics.ErrInvalidStatement, "expected argument expression in switch statement")
		return nil
	}

	if _, ok := p.expect(tokens.OPEN_CURLY); !ok {
		return nil
	}

	for !p.match(tokens.CLOSE_CURLY) && !p.atEnd() {
		caseStmt := p.parseSwitchCase()
		if caseStmt == nil {
			return nil
		}
		caseStmt.EnclosingSwitch = switchStmt
		switchStmt.Cases = append(switchStmt.Cases, caseStmt)
	}

	p.expect(tokens.CLOSE_CURLY)
	switchStmt.Location = p.spanFrom(start)
	return switchStmt
}

// parseSwitchCase: ( 'case' expression | 'else' ) ':' statement*
func (p *Parser) parseSwitchCase() *ast.CaseStmt {
	if !p.match(tokens.CASE_TOKEN, tokens.ELSE_TOKEN) {
		p.error(diagnostics.ErrInvalidStatement, "expected 'case' or 'else' in body of switch statement")
		return nil
	}

	start := p.peek().Start
	caseStmt := ast.Alloc[ast.CaseStmt](p.arena)

	if p.match(tokens.CASE_TOKEN) {
		p.advance()
		caseStmt.Kind = ast.CaseConditional
		caseStmt.Condition = p.parseExpression(0)
		if caseStmt.Condition == nil {
			p.error(diagnostics.ErrInvalidExpression, "expected condition expression after 'case'")
			return nil
		}
	} else {
		p.advance()
		caseStmt.Kind = ast.CaseElse
	}

	if _, ok := p.expect(tokens.COLON_TOKEN); !ok {
		return nil
	}

	body := ast.Alloc[ast.Block](p.arena)
	bodyStart := p.peek().Start
	for !p.match(tokens.CASE_TOKEN, tokens.ELSE_TOKEN, tokens.CLOSE_CURLY) && !p.atEnd() {
		stmt := p.parseStatement()
		if stmt != nil {
			body.Statements = append(body.Statements, stmt)
		}
	}
	bodyEnd := p.previous().End
	body.Location = *source.NewLocation(&p.filepath, &bodyStart, &bodyEnd)
	caseStmt.Body = body

	caseStmt.Location = p.spanFrom(start)
	return caseStmt
}
