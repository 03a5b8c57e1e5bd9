package parser

import (
	"fmt"
	"strconv"

	"jelly/internal/diagnostics"
	"jelly/internal/frontend/ast"
	"jelly/internal/interner"
	"jelly/internal/operators"
	"jelly/internal/source"
	"jelly/internal/tokens"
)

// Parser builds an AST from a token stream with one token of lookahead.
// Recovery is local: a failed sub-parse reports a diagnostic and returns
// nil, and the enclosing production decides whether to continue. The parser
// never panics on malformed input.
type Parser struct {
	stream      *tokens.Stream
	arena       *ast.Arena
	interner    *interner.Table
	diagnostics *diagnostics.DiagnosticBag
	filepath    string
}

// Parse consumes the stream and returns the source unit for one file.
func Parse(stream *tokens.Stream, filepath string, arena *ast.Arena, in *interner.Table, diag *diagnostics.DiagnosticBag) *ast.SourceUnit {
	p := &Parser{
		stream:      stream,
		arena:       arena,
		interner:    in,
		diagnostics: diag,
		filepath:    filepath,
	}
	return p.parseSourceUnit()
}

// Token helpers

func (p *Parser) peek() tokens.Token     { return p.stream.Peek() }
func (p *Parser) advance() tokens.Token  { return p.stream.Advance() }
func (p *Parser) previous() tokens.Token { return p.stream.Previous() }
func (p *Parser) atEnd() bool            { return p.stream.AtEnd() }

func (p *Parser) match(kinds ...tokens.TOKEN) bool {
	for _, kind := range kinds {
		if p.peek().Kind == kind {
			return true
		}
	}
	return false
}

// matchOperator reports whether the current token is the given operator
// lexeme.
func (p *Parser) matchOperator(text string) bool {
	tok := p.peek()
	return tok.Kind == tokens.OPERATOR_TOKEN && tok.Value == text
}

func (p *Parser) expect(kind tokens.TOKEN) (tokens.Token, bool) {
	if p.match(kind) {
		return p.advance(), true
	}
	tok := p.peek()
	p.diagnostics.Add(
		diagnostics.NewError(fmt.Sprintf("unexpected token '%s', expected '%s'", tok.Value, kind)).
			WithCode(diagnostics.ErrExpectedToken).
			WithPrimaryLabel(tok.Location(&p.filepath), ""),
	)
	return tok, false
}

func (p *Parser) error(code, msg string) {
	tok := p.peek()
	p.diagnostics.Add(
		diagnostics.NewError(msg).
			WithCode(code).
			WithPrimaryLabel(tok.Location(&p.filepath), ""),
	)
}

// spanFrom builds a location from start to the end of the last consumed
// token.
func (p *Parser) spanFrom(start source.Position) source.Location {
	end := p.previous().End
	return *source.NewLocation(&p.filepath, &start, &end)
}

// parseIdentifier consumes an identifier token and interns its text.
func (p *Parser) parseIdentifier() (interner.ID, bool) {
	if !p.match(tokens.IDENTIFIER_TOKEN) {
		p.error(diagnostics.ErrMissingIdentifier, fmt.Sprintf("expected identifier, got '%s'", p.peek().Value))
		return interner.None, false
	}
	tok := p.advance()
	return p.interner.Intern(tok.Value), true
}

// Expressions
//
// parseExpression implements precedence climbing over the operator table:
// consume a prefix operator or an atom, then fold infix and postfix
// operators whose precedence exceeds the threshold. Right-associative
// operators climb at the precedence level just below their own.

func (p *Parser) parseExpression(threshold operators.Precedence) ast.Expression {
	var left ast.Expression

	if op, ok := p.currentOperator(operators.Prefix); ok {
		opTok := p.advance()
		operand := p.parseExpression(op.Precedence)
		if operand == nil {
			p.error(diagnostics.ErrInvalidExpression, "expected expression after prefix operator")
			return nil
		}
		unary := ast.Alloc[ast.UnaryExpr](p.arena)
		unary.Op = op.Text
		unary.X = operand
		unary.Location = *source.NewLocation(&p.filepath, &opTok.Start, operand.Loc().End)
		left = unary
	} else {
		left = p.parseAtom()
	}

	if left == nil {
		return nil
	}

	for {
		op, ok := p.currentOperator(operators.Infix)
		if !ok {
			op, ok = p.currentPostfix()
		}
		if !ok || op.Precedence <= threshold {
			return left
		}

		p.advance()

		switch {
		case op.Fixity == operators.Postfix && op.Text == "(":
			left = p.parseCallExpression(left)
		case op.Fixity == operators.Postfix && op.Text == "[":
			left = p.parseSubscriptExpression(left)
		case op.Fixity == operators.Postfix && op.Text == ".":
			left = p.parseMemberAccess(left)
		case op.Text == "is" || op.Text == "as":
			left = p.parseTypeOperation(left, op.Text)
		case operators.IsAssignment(op.Text):
			rhs := p.parseExpression(operators.PrecedenceBefore(op.Precedence))
			if rhs == nil {
				return left
			}
			assign := ast.Alloc[ast.AssignExpr](p.arena)
			assign.Op = op.Text
			assign.Lhs = left
			assign.Rhs = rhs
			assign.Location = *source.NewLocation(&p.filepath, left.Loc().Start, rhs.Loc().End)
			left = assign
		default:
			next := op.Precedence
			if op.Associativity == operators.AssocRight {
				next = operators.PrecedenceBefore(next)
			}
			rhs := p.parseExpression(next)
			if rhs == nil {
				return left
			}
			binary := ast.Alloc[ast.BinaryExpr](p.arena)
			binary.Op = op.Text
			binary.X = left
			binary.Y = rhs
			binary.Location = *source.NewLocation(&p.filepath, left.Loc().Start, rhs.Loc().End)
			left = binary
		}

		if left == nil {
			return nil
		}
	}
}

// currentOperator looks the current token up in the operator table.
func (p *Parser) currentOperator(fixity operators.Fixity) (operators.Operator, bool) {
	tok := p.peek()
	if tok.Kind != tokens.OPERATOR_TOKEN {
		return operators.Operator{}, false
	}
	return operators.Lookup(tok.Value, fixity)
}

// currentPostfix treats '(', '[' and '.' punctuators as postfix operators.
func (p *Parser) currentPostfix() (operators.Operator, bool) {
	switch p.peek().Kind {
	case tokens.OPEN_PAREN:
		return operators.Lookup("(", operators.Postfix)
	case tokens.OPEN_BRACKET:
		return operators.Lookup("[", operators.Postfix)
	case tokens.DOT_TOKEN:
		return operators.Lookup(".", operators.Postfix)
	}
	return operators.Operator{}, false
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	call := ast.Alloc[ast.CallExpr](p.arena)
	call.Callee = callee
	call.Arguments = p.parseExpressionList(tokens.CLOSE_PAREN)
	end, _ := p.expect(tokens.CLOSE_PAREN)
	call.Location = *source.NewLocation(&p.filepath, callee.Loc().Start, &end.End)
	return call
}

func (p *Parser) parseSubscriptExpression(base ast.Expression) ast.Expression {
	subscript := ast.Alloc[ast.SubscriptExpr](p.arena)
	subscript.X = base
	subscript.Arguments = p.parseExpressionList(tokens.CLOSE_BRACKET)
	end, _ := p.expect(tokens.CLOSE_BRACKET)
	subscript.Location = *source.NewLocation(&p.filepath, base.Loc().Start, &end.End)
	return subscript
}

func (p *Parser) parseMemberAccess(base ast.Expression) ast.Expression {
	member := ast.Alloc[ast.MemberAccessExpr](p.arena)
	member.Argument = base
	member.MemberIndex = -1
	name, ok := p.parseIdentifier()
	if !ok {
		return nil
	}
	member.MemberName = name
	end := p.previous().End
	member.Location = *source.NewLocation(&p.filepath, base.Loc().Start, &end)
	return member
}

func (p *Parser) parseTypeOperation(left ast.Expression, opText string) ast.Expression {
	target := p.parseType()
	if target == nil {
		return nil
	}
	typeOp := ast.Alloc[ast.TypeOperationExpr](p.arena)
	if opText == "is" {
		typeOp.Kind = ast.TypeOperationCheck
	} else {
		typeOp.Kind = ast.TypeOperationBitcast
	}
	typeOp.X = left
	typeOp.Target = target
	typeOp.Location = *source.NewLocation(&p.filepath, left.Loc().Start, target.Loc().End)
	return typeOp
}

// parseExpressionList parses a comma-separated expression list up to (but
// not including) the closing token.
func (p *Parser) parseExpressionList(closing tokens.TOKEN) []ast.Expression {
	args := []ast.Expression{}
	if p.match(closing) {
		return args
	}
	for {
		arg := p.parseExpression(0)
		if arg == nil {
			return args
		}
		args = append(args, arg)
		if !p.match(tokens.COMMA_TOKEN) {
			return args
		}
		p.advance()
	}
}

// parseConditionList parses the comma-separated condition expressions of
// if, while and guard statements.
func (p *Parser) parseConditionList() []ast.Expression {
	conditions := []ast.Expression{}
	for {
		cond := p.parseExpression(0)
		if cond == nil {
			return conditions
		}
		conditions = append(conditions, cond)
		if !p.match(tokens.COMMA_TOKEN) {
			return conditions
		}
		p.advance()
	}
}

// parseAtom parses a literal, identifier, group or sizeof expression.
func (p *Parser) parseAtom() ast.Expression {
	tok := p.peek()

	switch tok.Kind {
	case tokens.INT_TOKEN:
		p.advance()
		value, err := strconv.ParseUint(tok.Value, 10, 64)
		if err != nil {
			p.diagnostics.Add(
				diagnostics.NewError(fmt.Sprintf("invalid integer literal '%s'", tok.Value)).
					WithCode(diagnostics.ErrMalformedLiteral).
					WithPrimaryLabel(tok.Location(&p.filepath), ""),
			)
			return nil
		}
		return p.newConstant(ast.ConstantInt, tok, func(c *ast.ConstantExpr) { c.IntValue = value })

	case tokens.FLOAT_TOKEN:
		p.advance()
		value, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.diagnostics.Add(
				diagnostics.NewError(fmt.Sprintf("invalid float literal '%s'", tok.Value)).
					WithCode(diagnostics.ErrMalformedLiteral).
					WithPrimaryLabel(tok.Location(&p.filepath), ""),
			)
			return nil
		}
		return p.newConstant(ast.ConstantFloat, tok, func(c *ast.ConstantExpr) { c.FloatValue = value })

	case tokens.STRING_TOKEN:
		p.advance()
		return p.newConstant(ast.ConstantString, tok, func(c *ast.ConstantExpr) { c.StringValue = tok.Value })

	case tokens.TRUE_TOKEN:
		p.advance()
		return p.newConstant(ast.ConstantBool, tok, func(c *ast.ConstantExpr) { c.BoolValue = true })

	case tokens.FALSE_TOKEN:
		p.advance()
		return p.newConstant(ast.ConstantBool, tok, func(c *ast.ConstantExpr) { c.BoolValue = false })

	case tokens.NIL_TOKEN:
		p.advance()
		return p.newConstant(ast.ConstantNil, tok, nil)

	case tokens.IDENTIFIER_TOKEN:
		p.advance()
		identifier := ast.Alloc[ast.IdentifierExpr](p.arena)
		identifier.Name = p.interner.Intern(tok.Value)
		identifier.Location = *tok.Location(&p.filepath)
		return identifier

	case tokens.OPEN_PAREN:
		p.advance()
		expr := p.parseExpression(0)
		if expr == nil {
			return nil
		}
		p.expect(tokens.CLOSE_PAREN)
		return expr

	case tokens.SIZEOF_TOKEN:
		start := p.advance().Start
		if _, ok := p.expect(tokens.OPEN_PAREN); !ok {
			return nil
		}
		target := p.parseType()
		if target == nil {
			return nil
		}
		p.expect(tokens.CLOSE_PAREN)
		sizeOf := ast.Alloc[ast.SizeOfExpr](p.arena)
		sizeOf.Target = target
		sizeOf.Location = p.spanFrom(start)
		return sizeOf

	default:
		p.diagnostics.Add(
			diagnostics.NewError(fmt.Sprintf("unexpected token '%s' in expression", tok.Value)).
				WithCode(diagnostics.ErrUnexpectedToken).
				WithPrimaryLabel(tok.Location(&p.filepath), fmt.Sprintf("cannot use '%s' here", tok.Value)).
				WithHelp("Expected a value, identifier, literal, or expression here"),
		)
		return nil
	}
}

func (p *Parser) newConstant(kind ast.ConstantKind, tok tokens.Token, fill func(*ast.ConstantExpr)) *ast.ConstantExpr {
	constant := ast.Alloc[ast.ConstantExpr](p.arena)
	constant.Kind = kind
	constant.Location = *tok.Location(&p.filepath)
	constant.IsConstant = true
	if fill != nil {
		fill(constant)
	}
	return constant
}
