package types

import (
	"fmt"
	"strings"
)

// Type is the semantic representation of Jelly types.
//
// Types are canonicalized: the Context hands out one Type object per
// canonical name, so two types are equal iff they are pointer-equal. Types
// outlive AST nodes. A structure's members and a function type's declaration
// back-link are filled in after creation; nothing else changes.
type Type interface {
	// String returns the canonical name of the type
	String() string

	// Size returns the size in bytes, or -1 when unknown
	Size() int

	// isType is a marker method to prevent external implementation
	isType()
}

// DeclNode is the back-link from a type to the AST declaration that
// introduced it. Declared here as a minimal interface so this package never
// imports the ast package; every AST node satisfies it.
type DeclNode interface {
	INode()
}

// Builtin scalar types

type BuiltinKind int

const (
	KindError BuiltinKind = iota
	KindAny
	KindVoid
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindInt // native width
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindUInt128
	KindUInt // native width
	KindFloat16
	KindFloat32
	KindFloat64
	KindFloat80
	KindFloat128
	KindFloat // native width
	KindString

	builtinKindCount
)

var builtinNames = [builtinKindCount]string{
	KindError:    "<error>",
	KindAny:      "Any",
	KindVoid:     "Void",
	KindBool:     "Bool",
	KindInt8:     "Int8",
	KindInt16:    "Int16",
	KindInt32:    "Int32",
	KindInt64:    "Int64",
	KindInt128:   "Int128",
	KindInt:      "Int",
	KindUInt8:    "UInt8",
	KindUInt16:   "UInt16",
	KindUInt32:   "UInt32",
	KindUInt64:   "UInt64",
	KindUInt128:  "UInt128",
	KindUInt:     "UInt",
	KindFloat16:  "Float16",
	KindFloat32:  "Float32",
	KindFloat64:  "Float64",
	KindFloat80:  "Float80",
	KindFloat128: "Float128",
	KindFloat:    "Float",
	KindString:   "String",
}

var builtinSizes = [builtinKindCount]int{
	KindError:    -1,
	KindAny:      -1,
	KindVoid:     0,
	KindBool:     1,
	KindInt8:     1,
	KindInt16:    2,
	KindInt32:    4,
	KindInt64:    8,
	KindInt128:   16,
	KindInt:      8,
	KindUInt8:    1,
	KindUInt16:   2,
	KindUInt32:   4,
	KindUInt64:   8,
	KindUInt128:  16,
	KindUInt:     8,
	KindFloat16:  2,
	KindFloat32:  4,
	KindFloat64:  8,
	KindFloat80:  16,
	KindFloat128: 16,
	KindFloat:    8,
	KindString:   16, // pointer + length
}

// BuiltinType represents Error, Any, Void, Bool, the sized integers and
// floats, and String.
type BuiltinType struct {
	Kind BuiltinKind
}

func (b *BuiltinType) String() string { return builtinNames[b.Kind] }
func (b *BuiltinType) Size() int      { return builtinSizes[b.Kind] }
func (b *BuiltinType) isType()        {}

// PointerType represents T*, T**, ... with the pointee unwrapped to the
// non-pointer base and the depth counted explicitly.
type PointerType struct {
	Pointee Type
	Depth   int
}

func (p *PointerType) String() string {
	return p.Pointee.String() + strings.Repeat("*", p.Depth)
}
func (p *PointerType) Size() int { return 8 }
func (p *PointerType) isType()  {}

// StaticArrayType represents T[N].
type StaticArrayType struct {
	Element Type
	Length  int64
}

func (a *StaticArrayType) String() string {
	return fmt.Sprintf("%s[%d]", a.Element.String(), a.Length)
}

func (a *StaticArrayType) Size() int {
	elem := a.Element.Size()
	if elem < 0 {
		return -1
	}
	return elem * int(a.Length)
}
func (a *StaticArrayType) isType() {}

// DynamicArrayType represents T[].
type DynamicArrayType struct {
	Element Type
}

func (a *DynamicArrayType) String() string {
	return a.Element.String() + "[]"
}
func (a *DynamicArrayType) Size() int { return 16 } // pointer + length
func (a *DynamicArrayType) isType()  {}

// FunctionType represents a function signature. Declaration points back at
// the declaring AST node when the type stems from a declaration.
type FunctionType struct {
	Parameters  []Type
	Return      Type
	Declaration DeclNode
}

func (f *FunctionType) String() string {
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.String()
	}
	return fmt.Sprintf("func(%s) -> %s", strings.Join(params, ", "), f.Return.String())
}
func (f *FunctionType) Size() int { return 8 }
func (f *FunctionType) isType()  {}

// Member is one field of a structure type. Indexes are dense [0, n) in
// declaration order.
type Member struct {
	Name  string
	Type  Type
	Index int
}

// StructureType represents a named structure with its ordered members.
type StructureType struct {
	Name        string
	Members     []Member
	Declaration DeclNode

	byName map[string]int
}

func (s *StructureType) String() string { return s.Name }
func (s *StructureType) Size() int {
	total := 0
	for _, m := range s.Members {
		size := m.Type.Size()
		if size < 0 {
			return -1
		}
		total += size
	}
	return total
}
func (s *StructureType) isType() {}

// MemberNamed returns the member with the given name.
func (s *StructureType) MemberNamed(name string) (Member, bool) {
	if s.byName == nil {
		return Member{}, false
	}
	idx, ok := s.byName[name]
	if !ok {
		return Member{}, false
	}
	return s.Members[idx], true
}

// SetMembers installs the member list; indexes are assigned in order.
func (s *StructureType) SetMembers(members []Member) {
	s.Members = members
	s.byName = make(map[string]int, len(members))
	for i := range s.Members {
		s.Members[i].Index = i
		s.byName[s.Members[i].Name] = i
	}
}

// EnumerationType represents a named enumeration.
type EnumerationType struct {
	Name        string
	Declaration DeclNode
}

func (e *EnumerationType) String() string { return e.Name }
func (e *EnumerationType) Size() int      { return 8 }
func (e *EnumerationType) isType()        {}
