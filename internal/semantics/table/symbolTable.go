package table

import (
	"fmt"

	"golang.org/x/exp/slices"

	"jelly/internal/frontend/ast"
	"jelly/internal/interner"
	"jelly/internal/source"
)

// ScopeKind identifies what construct a scope belongs to. Kinds are bits so
// EnclosingOfKinds can match against a mask.
type ScopeKind uint16

const (
	ScopeGlobal ScopeKind = 1 << iota
	ScopeModule
	ScopeEnumeration
	ScopeStructure
	ScopeFunction
	ScopeBranch
	ScopeLoop
	ScopeSwitch
	ScopeCase
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "Global"
	case ScopeModule:
		return "Module"
	case ScopeEnumeration:
		return "Enumeration"
	case ScopeStructure:
		return "Structure"
	case ScopeFunction:
		return "Function"
	case ScopeBranch:
		return "Branch"
	case ScopeLoop:
		return "Loop"
	case ScopeSwitch:
		return "Switch"
	case ScopeCase:
		return "Case"
	default:
		return "Unknown"
	}
}

// Symbol is one entry of a scope: a name, the source range of its
// definition, and the declaring AST node.
type Symbol struct {
	Name     interner.ID
	Location *source.Location
	Node     ast.Node
}

// Scope is one node of the scope tree. Symbols are kept ordered by
// definition start offset so the as-of lookup can cut the list off at a
// source position. Location is the bounding range of the inserted symbols.
// Userdata links the scope back to its anchoring AST node (the switch
// statement for a Switch scope, the function declaration for a Function
// scope, ...).
type Scope struct {
	ID       ast.ScopeID
	Kind     ScopeKind
	Parent   *Scope
	Location *source.Location
	Symbols  []*Symbol
	Children []*Scope
	Userdata ast.Node
}

// SymbolTable owns the scope tree of one module. It is confined to the
// goroutine compiling the module.
type SymbolTable struct {
	scopes  []*Scope
	current *Scope
}

// NewSymbolTable creates a table holding only the global root scope.
func NewSymbolTable() *SymbolTable {
	table := &SymbolTable{}
	table.current = table.newScope(ScopeGlobal, nil)
	return table
}

func (t *SymbolTable) newScope(kind ScopeKind, parent *Scope) *Scope {
	scope := &Scope{
		ID:     ast.ScopeID(len(t.scopes)),
		Kind:   kind,
		Parent: parent,
	}
	t.scopes = append(t.scopes, scope)
	if parent != nil {
		parent.Children = append(parent.Children, scope)
	}
	return scope
}

// Global returns the root scope.
func (t *SymbolTable) Global() *Scope {
	return t.scopes[0]
}

// Current returns the scope the next Push/Insert applies to.
func (t *SymbolTable) Current() *Scope {
	return t.current
}

// ScopeByID returns the scope a node's scope id refers to.
func (t *SymbolTable) ScopeByID(id ast.ScopeID) *Scope {
	if id < 0 || int(id) >= len(t.scopes) {
		return nil
	}
	return t.scopes[id]
}

// Push creates a child scope of the current scope and enters it.
func (t *SymbolTable) Push(kind ScopeKind) *Scope {
	t.current = t.newScope(kind, t.current)
	return t.current
}

// Pop returns to the parent scope.
func (t *SymbolTable) Pop() *Scope {
	if t.current.Parent == nil {
		panic("cannot pop the global scope")
	}
	t.current = t.current.Parent
	return t.current
}

// Insert creates a symbol entry in the scope. It fails if the name is
// already present, regardless of position.
func (s *Scope) Insert(name interner.ID, location *source.Location, node ast.Node) (*Symbol, error) {
	for _, symbol := range s.Symbols {
		if symbol.Name == name {
			return nil, fmt.Errorf("symbol already declared in this scope")
		}
	}

	symbol := &Symbol{Name: name, Location: location, Node: node}

	index, _ := slices.BinarySearchFunc(s.Symbols, symbol, func(a, b *Symbol) int {
		return symbolOffset(a) - symbolOffset(b)
	})
	s.Symbols = slices.Insert(s.Symbols, index, symbol)

	s.extendLocation(location)
	return symbol, nil
}

func symbolOffset(s *Symbol) int {
	if s.Location.IsNull() {
		return -1
	}
	return s.Location.Start.Offset
}

// extendLocation grows the scope's bounding range to cover location.
func (s *Scope) extendLocation(location *source.Location) {
	if location.IsNull() {
		return
	}
	if s.Location.IsNull() {
		s.Location = location
		return
	}
	start, end := s.Location.Start, s.Location.End
	if location.Start.Before(*start) {
		start = location.Start
	}
	if end.Before(*location.End) {
		end = location.End
	}
	s.Location = source.NewLocation(location.Filename, start, end)
}

// Lookup searches the scope chain for name. In non-global scopes only
// symbols defined strictly before asOf are visible; the global and module
// scopes ignore the position so top-level declarations are visible
// throughout. A nil asOf disables the position restriction entirely.
func (s *Scope) Lookup(name interner.ID, asOf *source.Location) *Symbol {
	limit := len(s.Symbols)
	if asOf != nil && !asOf.IsNull() && s.Kind != ScopeGlobal && s.Kind != ScopeModule {
		limit = 0
		for index := len(s.Symbols); index > 0; index-- {
			symbol := s.Symbols[index-1]
			if symbol.Location.IsNull() || symbol.Location.Start.Offset < asOf.Start.Offset {
				limit = index
				break
			}
		}
	}

	for index := 0; index < limit; index++ {
		if s.Symbols[index].Name == name {
			return s.Symbols[index]
		}
	}

	if s.Parent != nil {
		return s.Parent.Lookup(name, asOf)
	}
	return nil
}

// EnclosingOfKinds walks the parent chain starting at scope and returns the
// nearest scope whose kind is in mask, or nil.
func EnclosingOfKinds(scope *Scope, mask ScopeKind) *Scope {
	for s := scope; s != nil; s = s.Parent {
		if s.Kind&mask != 0 {
			return s
		}
	}
	return nil
}
