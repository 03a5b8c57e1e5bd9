package parser

import (
	"fmt"

	"jelly/internal/diagnostics"
	"jelly/internal/frontend/ast"
	"jelly/internal/tokens"
)

// parseSourceUnit parses every top-level declaration of one file. An
// unexpected token is reported and skipped so the rest of the file still
// gets parsed.
func (p *Parser) parseSourceUnit() *ast.SourceUnit {
	unit := ast.Alloc[ast.SourceUnit](p.arena)
	unit.FilePath = p.filepath

	start := p.peek().Start

	for !p.atEnd() {
		node := p.parseTopLevel()
		if node != nil {
			unit.Declarations = append(unit.Declarations, node)
		}
	}

	unit.Location = p.spanFrom(start)
	return unit
}

// parseTopLevel parses one of: load directive, enum, func (all forms),
// struct, var/let. A failed sub-parse yields nil, never a typed nil.
func (p *Parser) parseTopLevel() ast.Node {
	tok := p.peek()

	switch tok.Kind {
	case tokens.LOAD_TOKEN:
		if load := p.parseLoadDirective(); load != nil {
			return load
		}
	case tokens.ENUM_TOKEN:
		if enum := p.parseEnumDecl(); enum != nil {
			return enum
		}
	case tokens.FUNC_TOKEN:
		if fn := p.parseFuncDecl(ast.FuncPlain); fn != nil {
			return fn
		}
	case tokens.PREFIX_TOKEN:
		p.advance()
		if fn := p.parseFuncDecl(ast.FuncPrefixOp); fn != nil {
			return fn
		}
	case tokens.INFIX_TOKEN:
		p.advance()
		if fn := p.parseFuncDecl(ast.FuncInfixOp); fn != nil {
			return fn
		}
	case tokens.FOREIGN_TOKEN:
		p.advance()
		if fn := p.parseFuncDecl(ast.FuncForeign); fn != nil {
			return fn
		}
	case tokens.INTRINSIC_TOKEN:
		p.advance()
		if fn := p.parseFuncDecl(ast.FuncIntrinsic); fn != nil {
			return fn
		}
	case tokens.STRUCT_TOKEN:
		if structure := p.parseStructDecl(); structure != nil {
			return structure
		}
	case tokens.VAR_TOKEN, tokens.LET_TOKEN:
		if variable := p.parseVarDecl(); variable != nil {
			return variable
		}
	default:
		p.diagnostics.Add(
			diagnostics.NewError(fmt.Sprintf("unexpected token '%s', expected a top level declaration", tok.Value)).
				WithCode(diagnostics.ErrInvalidDeclaration).
				WithPrimaryLabel(tok.Location(&p.filepath), ""),
		)
		p.advance()
	}
	return nil
}

// parseLoadDirective: #load "path"
func (p *Parser) parseLoadDirective() *ast.LoadDirective {
	start := p.advance().Start // consume #load

	if !p.match(tokens.STRING_TOKEN) {
		p.error(diagnostics.ErrExpectedToken, "expected string literal after '#load'")
		return nil
	}

	pathTok := p.advance()
	path := ast.Alloc[ast.ConstantExpr](p.arena)
	path.Kind = ast.ConstantString
	path.StringValue = pathTok.Value
	path.IsConstant = true
	path.Location = *pathTok.Location(&p.filepath)

	load := ast.Alloc[ast.LoadDirective](p.arena)
	load.Path = path
	load.Location = p.spanFrom(start)
	return load
}

// parseEnumDecl: enum Name { case A case B = expr ... }
func (p *Parser) parseEnumDecl() *ast.EnumDecl {
	start := p.advance().Start // consume 'enum'

	enum := ast.Alloc[ast.EnumDecl](p.arena)

	name, ok := p.parseIdentifier()
	if !ok {
		return nil
	}
	enum.Name = name

	if _, ok := p.expect(tokens.OPEN_CURLY); !ok {
		return nil
	}

	for !p.match(tokens.CLOSE_CURLY) && !p.atEnd() {
		element := p.parseEnumElement()
		if element == nil {
			return nil
		}
		element.Enum = enum
		enum.Elements = append(enum.Elements, element)
	}

	p.expect(tokens.CLOSE_CURLY)
	enum.Location = p.spanFrom(start)
	return enum
}

// parseEnumElement: case Name [= expression]
func (p *Parser) parseEnumElement() *ast.EnumElementDecl {
	if !p.match(tokens.CASE_TOKEN) {
		p.error(diagnostics.ErrExpectedToken, "expected 'case' at start of enum element")
		return nil
	}
	start := p.advance().Start

	element := ast.Alloc[ast.EnumElementDecl](p.arena)
	name, ok := p.parseIdentifier()
	if !ok {
		return nil
	}
	element.Name = name

	if p.matchOperator("=") {
		p.advance()
		element.Initializer = p.parseExpression(0)
		if element.Initializer == nil {
			p.error(diagnostics.ErrInvalidExpression, "expected expression after '=' in enum element")
			return nil
		}
	}

	element.Location = p.spanFrom(start)
	return element
}

// parseFuncDecl: func Name ( parameters ) -> Type [block]
// The introducing prefix/infix/foreign/intrinsic keyword was already
// consumed by the caller; foreign and intrinsic functions have no body.
func (p *Parser) parseFuncDecl(kind ast.FuncKind) *ast.FuncDecl {
	start := p.peek().Start
	if _, ok := p.expect(tokens.FUNC_TOKEN); !ok {
		return nil
	}

	fn := ast.Alloc[ast.FuncDecl](p.arena)
	fn.Kind = kind

	// operator functions are named by their operator lexeme
	if (kind == ast.FuncPrefixOp || kind == ast.FuncInfixOp) && p.match(tokens.OPERATOR_TOKEN) {
		tok := p.advance()
		fn.Name = p.interner.Intern(tok.Value)
	} else {
		name, ok := p.parseIdentifier()
		if !ok {
			return nil
		}
		fn.Name = name
	}

	if _, ok := p.expect(tokens.OPEN_PAREN); !ok {
		return nil
	}

	for !p.match(tokens.CLOSE_PAREN) && !p.atEnd() {
		param := p.parseParameter()
		if param == nil {
			return nil
		}
		fn.Parameters = append(fn.Parameters, param)
		if !p.match(tokens.COMMA_TOKEN) {
			break
		}
		p.advance()
	}

	if _, ok := p.expect(tokens.CLOSE_PAREN); !ok {
		return nil
	}
	if _, ok := p.expect(tokens.ARROW_TOKEN); !ok {
		return nil
	}

	fn.ReturnType = p.parseType()
	if fn.ReturnType == nil {
		return nil
	}

	if kind != ast.FuncForeign && kind != ast.FuncIntrinsic {
		fn.Body = p.parseBlock()
		if fn.Body == nil {
			return nil
		}
	}

	fn.Location = p.spanFrom(start)
	return fn
}

// parseParameter: name ':' type
func (p *Parser) parseParameter() *ast.ParamDecl {
	start := p.peek().Start

	param := ast.Alloc[ast.ParamDecl](p.arena)
	name, ok := p.parseIdentifier()
	if !ok {
		return nil
	}
	param.Name = name

	if _, ok := p.expect(tokens.COLON_TOKEN); !ok {
		return nil
	}

	param.TypeRef = p.parseType()
	if param.TypeRef == nil {
		return nil
	}

	param.Location = p.spanFrom(start)
	return param
}

// parseStructDecl: struct Name { var/let declarations }
// Any other statement inside the body is a diagnostic.
func (p *Parser) parseStructDecl() *ast.StructDecl {
	start := p.advance().Start // consume 'struct'

	structure := ast.Alloc[ast.StructDecl](p.arena)
	name, ok := p.parseIdentifier()
	if !ok {
		return nil
	}
	structure.Name = name

	if _, ok := p.expect(tokens.OPEN_CURLY); !ok {
		return nil
	}

	for !p.match(tokens.CLOSE_CURLY) && !p.atEnd() {
		if !p.match(tokens.VAR_TOKEN, tokens.LET_TOKEN) {
			tok := p.peek()
			p.diagnostics.Add(
				diagnostics.NewError("only variable declarations are allowed inside of structure declarations").
					WithCode(diagnostics.ErrInvalidDeclaration).
					WithPrimaryLabel(tok.Location(&p.filepath), ""),
			)
			p.advance()
			continue
		}
		value := p.parseVarDecl()
		if value == nil {
			return nil
		}
		structure.Values = append(structure.Values, value)
	}

	p.expect(tokens.CLOSE_CURLY)
	structure.Location = p.spanFrom(start)
	return structure
}

// parseVarDecl: ( var | let ) name ':' type [ '=' expression ]
func (p *Parser) parseVarDecl() *ast.VarDecl {
	keyword := p.advance() // consume 'var' or 'let'

	variable := ast.Alloc[ast.VarDecl](p.arena)
	if keyword.Kind == tokens.LET_TOKEN {
		variable.SetFlag(ast.FlagImmutable)
	}

	name, ok := p.parseIdentifier()
	if !ok {
		return nil
	}
	variable.Name = name

	if _, ok := p.expect(tokens.COLON_TOKEN); !ok {
		return nil
	}

	variable.TypeRef = p.parseType()
	if variable.TypeRef == nil {
		return nil
	}

	if p.matchOperator("=") {
		p.advance()
		variable.Initializer = p.parseExpression(0)
		if variable.Initializer == nil {
			p.error(diagnostics.ErrInvalidExpression, "expected expression after '=' in variable declaration")
			return nil
		}
	}

	variable.Location = p.spanFrom(keyword.Start)
	return variable
}
