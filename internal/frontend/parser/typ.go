package parser

import (
	"jelly/internal/diagnostics"
	"jelly/internal/frontend/ast"
	"jelly/internal/source"
	"jelly/internal/tokens"
)

// parseType parses a type reference: a base form (Any, identifier, or
// typeof(expr)) followed by any number of pointer and array suffixes.
// Stacked '*' collapse into a single pointer reference with a depth.
func (p *Parser) parseType() ast.TypeRef {
	var base ast.TypeRef
	start := p.peek().Start

	switch p.peek().Kind {
	case tokens.ANY_TOKEN:
		tok := p.advance()
		anyRef := ast.Alloc[ast.AnyTypeRef](p.arena)
		anyRef.Location = *tok.Location(&p.filepath)
		base = anyRef

	case tokens.IDENTIFIER_TOKEN:
		tok := p.advance()
		opaque := ast.Alloc[ast.OpaqueTypeRef](p.arena)
		opaque.Name = p.interner.Intern(tok.Value)
		opaque.Location = *tok.Location(&p.filepath)
		base = opaque

	case tokens.TYPEOF_TOKEN:
		p.advance()
		if _, ok := p.expect(tokens.OPEN_PAREN); !ok {
			return nil
		}
		typeOf := ast.Alloc[ast.TypeOfTypeRef](p.arena)
		typeOf.X = p.parseExpression(0)
		if typeOf.X == nil {
			return nil
		}
		if _, ok := p.expect(tokens.CLOSE_PAREN); !ok {
			return nil
		}
		typeOf.Location = p.spanFrom(start)
		base = typeOf

	default:
		p.error(diagnostics.ErrMissingType, "expected a type")
		return nil
	}

	for {
		switch {
		case p.matchOperator("*"):
			depth := 0
			for p.matchOperator("*") {
				p.advance()
				depth++
			}
			pointer := ast.Alloc[ast.PointerTypeRef](p.arena)
			pointer.Pointee = base
			pointer.Depth = depth
			end := p.previous().End
			pointer.Location = *source.NewLocation(&p.filepath, base.Loc().Start, &end)
			base = pointer

		case p.match(tokens.OPEN_BRACKET):
			p.advance()
			array := ast.Alloc[ast.ArrayTypeRef](p.arena)
			array.Element = base
			if !p.match(tokens.CLOSE_BRACKET) {
				array.Size = p.parseExpression(0)
				if array.Size == nil {
					return nil
				}
			}
			if _, ok := p.expect(tokens.CLOSE_BRACKET); !ok {
				return nil
			}
			end := p.previous().End
			array.Location = *source.NewLocation(&p.filepath, base.Loc().Start, &end)
			base = array

		default:
			return base
		}
	}
}
