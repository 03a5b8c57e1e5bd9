package ast

import (
	"jelly/internal/source"
	"jelly/internal/types"
)

// ScopeID names a scope in the symbol table. Nodes remember the scope they
// live in; the scope tree itself is owned by the semantics packages.
type ScopeID int32

// NoScope marks a node the resolver has not visited yet.
const NoScope ScopeID = -1

// Flags is the per-node flag bitset.
type Flags uint16

const (
	FlagValidated Flags = 1 << iota
	FlagAlwaysReturns
	FlagBlockHasTerminator
	FlagSwitchExhaustive
	FlagArrayStatic
	FlagCyclicStorage
	FlagImmutable
)

// NodeBase is the header shared by every AST node: source range, parent
// link, enclosing scope and flags. The parent is set exactly once, after
// construction; the scope is set by the resolver.
type NodeBase struct {
	source.Location
	Parent Node
	Scope  ScopeID
	Flags  Flags
}

func (b *NodeBase) INode()                {}
func (b *NodeBase) Loc() *source.Location { return &b.Location }
func (b *NodeBase) Base() *NodeBase       { return b }

// SetParent records the parent link. The first caller wins; a node is
// reachable from exactly one root.
func (b *NodeBase) SetParent(parent Node) {
	if b.Parent == nil {
		b.Parent = parent
	}
}

func (b *NodeBase) HasFlag(flag Flags) bool { return b.Flags&flag != 0 }
func (b *NodeBase) SetFlag(flag Flags)      { b.Flags |= flag }

// Node is the base interface for all AST nodes
type Node interface {
	INode()
	Loc() *source.Location
	Base() *NodeBase
}

// exprBase extends the node header with the attributes every expression
// carries: its resolved type (nil until the resolver ran, the error type on
// failed paths), constant-ness, and the candidate types collected during
// operator resolution.
//
// It is embedded under the lowercase name (rather than ExprBase) so that
// the embedded field does not shadow the promoted ExprBase() accessor
// method below.
type exprBase struct {
	NodeBase
	Type       types.Type
	IsConstant bool
	Candidates []types.Type
}

func (e *exprBase) Expr()               {} // Expr is a marker interface for all expressions
func (e *exprBase) Stmt()               {} // every expression can stand as a statement
func (e *exprBase) ExprBase() *exprBase { return e }

// Expression represents any node that produces a value
type Expression interface {
	Node
	Expr()
	Stmt()
	ExprBase() *exprBase
}

// Statement represents any node that performs an action
type Statement interface {
	Node
	Stmt()
}

// Declaration represents a named or structural declaration
type Declaration interface {
	Node
	Decl()
}

// typeRefBase extends the node header with the semantic type a reference
// resolves to.
//
// It is embedded under the lowercase name (rather than TypeRefBase) so that
// the embedded field does not shadow the promoted TypeRefBase() accessor
// method below.
type typeRefBase struct {
	NodeBase
	Resolved types.Type
}

func (t *typeRefBase) TypeExpr()                 {}
func (t *typeRefBase) TypeRefBase() *typeRefBase { return t }

// TypeRef represents a syntactic type reference, resolved by name later.
// This is separate from Expression to keep values and types apart.
type TypeRef interface {
	Node
	TypeExpr()
	TypeRefBase() *typeRefBase
}
