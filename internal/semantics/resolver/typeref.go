package resolver

import (
	"fmt"

	"jelly/internal/diagnostics"
	"jelly/internal/frontend/ast"
	"jelly/internal/types"
)

// resolveTypeRef materializes the semantic type behind a type reference,
// creating pointer and array types in the type table as needed. Unresolved
// names become diagnostics and the error type.
func (r *Resolver) resolveTypeRef(ref ast.TypeRef) types.Type {
	if ref == nil {
		return r.types.Error()
	}
	r.mark(ref)
	base := ref.TypeRefBase()
	if base.Resolved != nil {
		return base.Resolved
	}

	switch t := ref.(type) {
	case *ast.AnyTypeRef:
		base.Resolved = r.types.Builtin(types.KindAny)

	case *ast.OpaqueTypeRef:
		name := r.name(t.Name)
		resolved, found := r.types.LookupNamed(name)
		if !found {
			r.diagnostics.Add(
				diagnostics.NewError(fmt.Sprintf("use of unresolved type '%s'", name)).
					WithCode(diagnostics.ErrUnresolvedTypeName).
					WithPrimaryLabel(ref.Loc(), "not a known type"),
			)
			base.Resolved = r.types.Error()
			break
		}
		switch named := resolved.(type) {
		case *types.StructureType:
			if decl, ok := named.Declaration.(ast.Declaration); ok {
				t.Decl = decl
			}
		case *types.EnumerationType:
			if decl, ok := named.Declaration.(ast.Declaration); ok {
				t.Decl = decl
			}
		}
		base.Resolved = resolved

	case *ast.TypeOfTypeRef:
		r.resolveExpr(t.X)
		base.Resolved = t.X.ExprBase().Type

	case *ast.PointerTypeRef:
		pointee := r.resolveTypeRef(t.Pointee)
		if types.IsError(pointee) {
			base.Resolved = r.types.Error()
			break
		}
		base.Resolved = r.types.Pointer(pointee, t.Depth)

	case *ast.ArrayTypeRef:
		element := r.resolveTypeRef(t.Element)
		if t.Size != nil {
			r.resolveExpr(t.Size)
		}
		if types.IsError(element) {
			base.Resolved = r.types.Error()
			break
		}
		if t.Size == nil {
			base.Resolved = r.types.DynamicArray(element)
			break
		}
		if constant, isConstant := t.Size.(*ast.ConstantExpr); isConstant && constant.Kind == ast.ConstantInt {
			base.Resolved = r.types.StaticArray(element, int64(constant.IntValue))
		} else {
			// the type checker reports non-literal array sizes
			base.Resolved = r.types.Error()
		}

	default:
		base.Resolved = r.types.Error()
	}

	return base.Resolved
}
