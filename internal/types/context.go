package types

// Context is the per-module canonical type table. Every type is keyed by
// its canonical name, so requesting the same shape twice returns the same
// object and equality checks reduce to pointer comparison. A Context is
// confined to the goroutine compiling its module.
type Context struct {
	byName   map[string]Type
	builtins [builtinKindCount]*BuiltinType
}

func NewContext() *Context {
	ctx := &Context{byName: make(map[string]Type)}
	for kind := BuiltinKind(0); kind < builtinKindCount; kind++ {
		builtin := &BuiltinType{Kind: kind}
		ctx.builtins[kind] = builtin
		ctx.byName[builtin.String()] = builtin
	}
	return ctx
}

// Builtin returns the canonical instance for a builtin kind.
func (c *Context) Builtin(kind BuiltinKind) *BuiltinType {
	return c.builtins[kind]
}

// Error returns the distinguished error type.
func (c *Context) Error() Type { return c.builtins[KindError] }

// LookupNamed returns the type with the given canonical name, if any. This
// is how opaque type references find builtins and declared aggregates.
func (c *Context) LookupNamed(name string) (Type, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// Pointer returns the canonical pointer type to pointee at the given depth.
// Pointers to pointers are flattened so the pointee is never itself a
// pointer type.
func (c *Context) Pointer(pointee Type, depth int) Type {
	if inner, ok := pointee.(*PointerType); ok {
		pointee = inner.Pointee
		depth += inner.Depth
	}
	candidate := &PointerType{Pointee: pointee, Depth: depth}
	return c.canonicalize(candidate)
}

// StaticArray returns the canonical fixed-size array type.
func (c *Context) StaticArray(element Type, length int64) Type {
	return c.canonicalize(&StaticArrayType{Element: element, Length: length})
}

// DynamicArray returns the canonical dynamic array type.
func (c *Context) DynamicArray(element Type) Type {
	return c.canonicalize(&DynamicArrayType{Element: element})
}

// Function returns the canonical function type for the signature. The
// declaration back-link is set on first creation and kept afterwards.
func (c *Context) Function(parameters []Type, ret Type, declaration DeclNode) *FunctionType {
	candidate := &FunctionType{Parameters: parameters, Return: ret, Declaration: declaration}
	canonical := c.canonicalize(candidate).(*FunctionType)
	if canonical.Declaration == nil {
		canonical.Declaration = declaration
	}
	return canonical
}

// DeclareStructure registers a structure type under its declared name.
// Members are installed later, once the resolver has materialized them.
func (c *Context) DeclareStructure(name string, declaration DeclNode) *StructureType {
	if existing, ok := c.byName[name]; ok {
		if structure, isStructure := existing.(*StructureType); isStructure {
			return structure
		}
	}
	structure := &StructureType{Name: name, Declaration: declaration}
	c.byName[name] = structure
	return structure
}

// DeclareEnumeration registers an enumeration type under its declared name.
func (c *Context) DeclareEnumeration(name string, declaration DeclNode) *EnumerationType {
	if existing, ok := c.byName[name]; ok {
		if enumeration, isEnumeration := existing.(*EnumerationType); isEnumeration {
			return enumeration
		}
	}
	enumeration := &EnumerationType{Name: name, Declaration: declaration}
	c.byName[name] = enumeration
	return enumeration
}

func (c *Context) canonicalize(t Type) Type {
	name := t.String()
	if existing, ok := c.byName[name]; ok {
		return existing
	}
	c.byName[name] = t
	return t
}
