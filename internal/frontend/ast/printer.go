package ast

import (
	"fmt"
	"strconv"
	"strings"

	"jelly/internal/interner"
)

// Printer renders an AST back to Jelly source text. The output is meant to
// re-parse into a structurally equal tree, which is what the round-trip
// tests and the -dump-ast mode rely on.
type Printer struct {
	interner *interner.Table
	builder  strings.Builder
	indent   int
}

func NewPrinter(in *interner.Table) *Printer {
	return &Printer{interner: in}
}

// Print renders node and returns the accumulated text.
func (p *Printer) Print(node Node) string {
	p.builder.Reset()
	p.printNode(node)
	return p.builder.String()
}

func (p *Printer) write(format string, args ...any) {
	fmt.Fprintf(&p.builder, format, args...)
}

func (p *Printer) line() {
	p.builder.WriteString("\n")
	p.builder.WriteString(strings.Repeat("    ", p.indent))
}

func (p *Printer) name(id interner.ID) string {
	return p.interner.Text(id)
}

func (p *Printer) printNode(node Node) {
	switch v := node.(type) {
	case *ModuleDecl:
		for i, unit := range v.SourceUnits {
			if i > 0 {
				p.line()
			}
			p.printNode(unit)
		}
	case *SourceUnit:
		for i, decl := range v.Declarations {
			if i > 0 {
				p.line()
			}
			p.printNode(decl)
		}
	case *LoadDirective:
		p.write("#load %q", v.Path.StringValue)
	case *EnumDecl:
		p.write("enum %s {", p.name(v.Name))
		p.indent++
		for _, element := range v.Elements {
			p.line()
			p.write("case %s", p.name(element.Name))
			if element.Initializer != nil {
				p.write(" = ")
				p.printExpr(element.Initializer)
			}
		}
		p.indent--
		p.line()
		p.write("}")
	case *StructDecl:
		p.write("struct %s {", p.name(v.Name))
		p.indent++
		for _, value := range v.Values {
			p.line()
			p.printNode(value)
		}
		p.indent--
		p.line()
		p.write("}")
	case *FuncDecl:
		switch v.Kind {
		case FuncPrefixOp:
			p.write("prefix ")
		case FuncInfixOp:
			p.write("infix ")
		case FuncForeign:
			p.write("foreign ")
		case FuncIntrinsic:
			p.write("intrinsic ")
		}
		p.write("func %s(", p.name(v.Name))
		for i, param := range v.Parameters {
			if i > 0 {
				p.write(", ")
			}
			p.write("%s: ", p.name(param.Name))
			p.printType(param.TypeRef)
		}
		p.write(") -> ")
		p.printType(v.ReturnType)
		if v.Body != nil {
			p.write(" ")
			p.printBlock(v.Body)
		}
	case *VarDecl:
		if v.Mutable() {
			p.write("var ")
		} else {
			p.write("let ")
		}
		p.write("%s: ", p.name(v.Name))
		p.printType(v.TypeRef)
		if v.Initializer != nil {
			p.write(" = ")
			p.printExpr(v.Initializer)
		}
	case *Block:
		p.printBlock(v)
	case *ControlStmt:
		p.write("%s", v.Kind)
		if v.Result != nil {
			p.write(" ")
			p.printExpr(v.Result)
		}
	case *IfStmt:
		p.printIf(v)
	case *LoopStmt:
		if v.Kind == LoopDoWhile {
			p.write("do ")
			p.printBlock(v.Body)
			p.write(" while ")
			p.printExprList(v.Conditions)
		} else {
			p.write("while ")
			p.printExprList(v.Conditions)
			p.write(" ")
			p.printBlock(v.Body)
		}
	case *ForStmt:
		p.write("for %s in ", p.name(v.Element))
		p.printExpr(v.Sequence)
		p.write(" ")
		p.printBlock(v.Body)
	case *GuardStmt:
		p.write("guard ")
		p.printExprList(v.Conditions)
		p.write(" else ")
		p.printBlock(v.Else)
	case *SwitchStmt:
		p.write("switch ")
		p.printExpr(v.Argument)
		p.write(" {")
		p.indent++
		for _, c := range v.Cases {
			p.line()
			if c.Kind == CaseElse {
				p.write("else:")
			} else {
				p.write("case ")
				p.printExpr(c.Condition)
				p.write(":")
			}
			p.indent++
			for _, stmt := range c.Body.Statements {
				p.line()
				p.printNode(stmt)
			}
			p.indent--
		}
		p.indent--
		p.line()
		p.write("}")
	case *DeferStmt:
		p.write("defer ")
		p.printExpr(v.X)
	case Expression:
		p.printExpr(v)
	case TypeRef:
		p.printType(v)
	default:
		p.write("<unknown node>")
	}
}

func (p *Printer) printBlock(block *Block) {
	p.write("{")
	p.indent++
	for _, stmt := range block.Statements {
		p.line()
		p.printNode(stmt)
	}
	p.indent--
	p.line()
	p.write("}")
}

func (p *Printer) printIf(stmt *IfStmt) {
	p.write("if ")
	p.printExprList(stmt.Conditions)
	p.write(" ")
	p.printBlock(stmt.Then)
	switch stmt.ElseKind {
	case ElseBlock:
		p.write(" else ")
		p.printBlock(stmt.ElseBody)
	case ElseIf:
		p.write(" else ")
		p.printIf(stmt.ElseChain)
	}
}

func (p *Printer) printExprList(exprs []Expression) {
	for i, expr := range exprs {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(expr)
	}
}

func (p *Printer) printExpr(expr Expression) {
	switch v := expr.(type) {
	case *ConstantExpr:
		switch v.Kind {
		case ConstantNil:
			p.write("nil")
		case ConstantBool:
			p.write("%t", v.BoolValue)
		case ConstantInt:
			p.write("%d", v.IntValue)
		case ConstantFloat:
			p.write("%s", strconv.FormatFloat(v.FloatValue, 'g', -1, 64))
		case ConstantString:
			p.write("%q", v.StringValue)
		}
	case *IdentifierExpr:
		p.write("%s", p.name(v.Name))
	case *MemberAccessExpr:
		p.printExpr(v.Argument)
		p.write(".%s", p.name(v.MemberName))
	case *UnaryExpr:
		p.write("%s", v.Op)
		p.printOperand(v.X)
	case *BinaryExpr:
		p.printOperand(v.X)
		p.write(" %s ", v.Op)
		p.printOperand(v.Y)
	case *AssignExpr:
		p.printOperand(v.Lhs)
		p.write(" %s ", v.Op)
		p.printOperand(v.Rhs)
	case *CallExpr:
		p.printOperand(v.Callee)
		p.write("(")
		p.printExprList(v.Arguments)
		p.write(")")
	case *SubscriptExpr:
		p.printOperand(v.X)
		p.write("[")
		p.printExprList(v.Arguments)
		p.write("]")
	case *SizeOfExpr:
		p.write("sizeof(")
		p.printType(v.Target)
		p.write(")")
	case *TypeOperationExpr:
		p.printOperand(v.X)
		if v.Kind == TypeOperationCheck {
			p.write(" is ")
		} else {
			p.write(" as ")
		}
		p.printType(v.Target)
	default:
		p.write("<unknown expr>")
	}
}

// printOperand parenthesizes nested operator expressions so the printed
// form re-parses with the original tree shape regardless of precedence.
func (p *Printer) printOperand(expr Expression) {
	switch expr.(type) {
	case *BinaryExpr, *AssignExpr, *TypeOperationExpr:
		p.write("(")
		p.printExpr(expr)
		p.write(")")
	default:
		p.printExpr(expr)
	}
}

func (p *Printer) printType(ref TypeRef) {
	switch v := ref.(type) {
	case *AnyTypeRef:
		p.write("Any")
	case *OpaqueTypeRef:
		p.write("%s", p.name(v.Name))
	case *TypeOfTypeRef:
		p.write("typeof(")
		p.printExpr(v.X)
		p.write(")")
	case *PointerTypeRef:
		p.printType(v.Pointee)
		p.write("%s", strings.Repeat("*", v.Depth))
	case *ArrayTypeRef:
		p.printType(v.Element)
		p.write("[")
		if v.Size != nil {
			p.printExpr(v.Size)
		}
		p.write("]")
	default:
		p.write("<unknown type>")
	}
}
