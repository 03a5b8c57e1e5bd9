package ast

import (
	"jelly/internal/interner"
	"jelly/internal/types"
)

// LoadDirective represents #load "path".
type LoadDirective struct {
	NodeBase
	Path *ConstantExpr // string literal
}

func (l *LoadDirective) Stmt() {}

// SourceUnit is the root of one parsed file.
type SourceUnit struct {
	NodeBase
	FilePath     string
	Declarations []Node
}

func (s *SourceUnit) Decl() {}

// ModuleDecl is the root of a whole compilation: the source units reachable
// through #load, the entry point located by the type checker, and any
// imported modules.
type ModuleDecl struct {
	NodeBase
	Name           string
	SourceUnits    []*SourceUnit
	EntryPointName interner.ID
	EntryPoint     *FuncDecl
	Imports        []*ModuleDecl
}

func (m *ModuleDecl) Decl() {}

// EnumDecl represents enum Name { case ... }.
type EnumDecl struct {
	NodeBase
	Name     interner.ID
	Elements []*EnumElementDecl
	Type     *types.EnumerationType
}

func (e *EnumDecl) Decl() {}

// EnumElementDecl represents one `case Name [= expr]` element. A missing
// initializer is synthesized by the type checker.
type EnumElementDecl struct {
	NodeBase
	Name        interner.ID
	Initializer Expression
	Enum        *EnumDecl
	Type        types.Type
}

func (e *EnumElementDecl) Decl() {}

// FuncKind distinguishes the function declaration forms.
type FuncKind int

const (
	FuncPlain FuncKind = iota
	FuncPrefixOp
	FuncInfixOp
	FuncForeign
	FuncIntrinsic
)

func (k FuncKind) String() string {
	switch k {
	case FuncPlain:
		return "func"
	case FuncPrefixOp:
		return "prefix func"
	case FuncInfixOp:
		return "infix func"
	case FuncForeign:
		return "foreign func"
	case FuncIntrinsic:
		return "intrinsic func"
	default:
		return "unknown"
	}
}

// FuncDecl represents a function declaration. Foreign and intrinsic
// functions have no body.
type FuncDecl struct {
	NodeBase
	Kind       FuncKind
	Name       interner.ID
	Parameters []*ParamDecl
	ReturnType TypeRef
	Body       *Block
	Type       *types.FunctionType
}

func (f *FuncDecl) Decl() {}

// ParamDecl represents one `name: Type` parameter.
type ParamDecl struct {
	NodeBase
	Name    interner.ID
	TypeRef TypeRef
	Type    types.Type
}

func (p *ParamDecl) Decl() {}

// VarDecl represents var/let name: Type [= expr]. A let declaration has the
// FlagImmutable flag set.
type VarDecl struct {
	NodeBase
	Name        interner.ID
	TypeRef     TypeRef
	Initializer Expression
	Type        types.Type
}

func (v *VarDecl) Decl() {}
func (v *VarDecl) Stmt() {}

// Mutable reports whether the declaration was introduced with var.
func (v *VarDecl) Mutable() bool { return !v.HasFlag(FlagImmutable) }

// StructDecl represents struct Name { value declarations }.
type StructDecl struct {
	NodeBase
	Name   interner.ID
	Values []*VarDecl
	Type   *types.StructureType
}

func (s *StructDecl) Decl() {}
