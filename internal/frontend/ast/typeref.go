package ast

import (
	"jelly/internal/interner"
)

// AnyTypeRef represents the Any type.
type AnyTypeRef struct {
	typeRefBase
}

// OpaqueTypeRef is a type named by an identifier, resolved against the
// builtin types and the type-bearing declarations in scope.
type OpaqueTypeRef struct {
	typeRefBase
	Name interner.ID
	Decl Declaration // structure or enumeration declaration, nil for builtins
}

// TypeOfTypeRef represents typeof(expr).
type TypeOfTypeRef struct {
	typeRefBase
	X Expression
}

// PointerTypeRef represents T*. Stacked stars collapse into one reference
// with a depth count.
type PointerTypeRef struct {
	typeRefBase
	Pointee TypeRef
	Depth   int
}

// ArrayTypeRef represents T[size] and T[]. The checker verifies static
// sizes are integer literals, then sets FlagArrayStatic and SizeValue.
type ArrayTypeRef struct {
	typeRefBase
	Element   TypeRef
	Size      Expression
	SizeValue int64
}

// IsStatic reports whether the size was validated as an integer literal.
func (a *ArrayTypeRef) IsStatic() bool { return a.HasFlag(FlagArrayStatic) }
