package resolver

import (
	"fmt"

	"jelly/internal/diagnostics"
	"jelly/internal/frontend/ast"
	"jelly/internal/interner"
	"jelly/internal/semantics/table"
	"jelly/internal/types"
)

// Resolver walks the AST top-down, builds the scope tree, binds identifier
// and type references to their declarations, and materializes semantic
// types. After the resolver ran, every expression carries a type (the error
// type on failed paths) and every node knows its scope.
type Resolver struct {
	table       *table.SymbolTable
	arena       *ast.Arena
	types       *types.Context
	interner    *interner.Table
	diagnostics *diagnostics.DiagnosticBag
}

// ResolveModule resolves one module. The symbol table and type context
// must be fresh; both are filled in here and read by the type checker.
func ResolveModule(module *ast.ModuleDecl, symbols *table.SymbolTable, arena *ast.Arena, typeContext *types.Context, in *interner.Table, diag *diagnostics.DiagnosticBag) {
	r := &Resolver{
		table:       symbols,
		arena:       arena,
		types:       typeContext,
		interner:    in,
		diagnostics: diag,
	}

	moduleScope := r.table.Push(table.ScopeModule)
	moduleScope.Userdata = module
	r.mark(module)

	// First pass: register every top-level declaration so forward
	// references and mutually recursive types resolve.
	for _, unit := range module.SourceUnits {
		r.mark(unit)
		for _, decl := range unit.Declarations {
			r.collectTopLevel(decl)
		}
	}

	// Second pass: materialize declaration types.
	for _, unit := range module.SourceUnits {
		for _, decl := range unit.Declarations {
			r.materializeTopLevel(decl)
		}
	}

	// Third pass: resolve initializers and function bodies.
	for _, unit := range module.SourceUnits {
		for _, decl := range unit.Declarations {
			r.resolveTopLevel(decl)
		}
	}

	r.table.Pop()
}

// mark records the current scope on a node.
func (r *Resolver) mark(node ast.Node) {
	node.Base().Scope = r.table.Current().ID
}

func (r *Resolver) name(id interner.ID) string {
	return r.interner.Text(id)
}

// operatorKey builds the scope key for a prefix/infix operator function so
// operator functions never collide with value names.
func (r *Resolver) operatorKey(kind ast.FuncKind, name interner.ID) interner.ID {
	fixity := "prefix"
	if kind == ast.FuncInfixOp {
		fixity = "infix"
	}
	return r.interner.Intern(fixity + " " + r.name(name))
}

func (r *Resolver) insert(scope *table.Scope, name interner.ID, node ast.Node) {
	if _, err := scope.Insert(name, node.Loc(), node); err != nil {
		r.diagnostics.Add(
			diagnostics.NewError(fmt.Sprintf("invalid redeclaration of '%s'", r.name(name))).
				WithCode(diagnostics.ErrRedeclaredSymbol).
				WithPrimaryLabel(node.Loc(), "already declared in this scope"),
		)
	}
}

// collectTopLevel inserts top-level declaration symbols and registers the
// named types.
func (r *Resolver) collectTopLevel(decl ast.Node) {
	scope := r.table.Current()
	r.mark(decl)

	switch d := decl.(type) {
	case *ast.LoadDirective:
		r.mark(d.Path)
		d.Path.Type = r.types.Builtin(types.KindString)
	case *ast.EnumDecl:
		r.insert(scope, d.Name, d)
		d.Type = r.types.DeclareEnumeration(r.name(d.Name), d)
		enumScope := r.table.Push(table.ScopeEnumeration)
		enumScope.Userdata = d
		for _, element := range d.Elements {
			r.mark(element)
			element.Type = d.Type
			if _, err := enumScope.Insert(element.Name, element.Loc(), element); err != nil {
				r.diagnostics.Add(
					diagnostics.NewError(fmt.Sprintf("invalid redeclaration of enum element '%s'", r.name(element.Name))).
						WithCode(diagnostics.ErrRedeclaredSymbol).
						WithPrimaryLabel(element.Loc(), ""),
				)
				continue
			}
			// elements are also visible unqualified at module level
			r.insert(scope, element.Name, element)
		}
		r.table.Pop()
	case *ast.StructDecl:
		r.insert(scope, d.Name, d)
		d.Type = r.types.DeclareStructure(r.name(d.Name), d)
	case *ast.FuncDecl:
		switch d.Kind {
		case ast.FuncPrefixOp, ast.FuncInfixOp:
			r.insert(scope, r.operatorKey(d.Kind, d.Name), d)
		default:
			r.insert(scope, d.Name, d)
		}
	case *ast.VarDecl:
		r.insert(scope, d.Name, d)
	}
}

// materializeTopLevel computes the semantic types of declarations.
func (r *Resolver) materializeTopLevel(decl ast.Node) {
	switch d := decl.(type) {
	case *ast.StructDecl:
		members := make([]types.Member, 0, len(d.Values))
		structScope := r.table.Push(table.ScopeStructure)
		structScope.Userdata = d
		for _, value := range d.Values {
			r.mark(value)
			value.Type = r.resolveTypeRef(value.TypeRef)
			r.insert(structScope, value.Name, value)
			members = append(members, types.Member{Name: r.name(value.Name), Type: value.Type})
		}
		r.table.Pop()
		d.Type.SetMembers(members)
	case *ast.FuncDecl:
		parameterTypes := make([]types.Type, len(d.Parameters))
		for i, param := range d.Parameters {
			r.mark(param)
			param.Type = r.resolveTypeRef(param.TypeRef)
			parameterTypes[i] = param.Type
		}
		returnType := r.resolveTypeRef(d.ReturnType)
		d.Type = r.types.Function(parameterTypes, returnType, d)
	case *ast.VarDecl:
		d.Type = r.resolveTypeRef(d.TypeRef)
	}
}

// resolveTopLevel descends into initializers and bodies.
func (r *Resolver) resolveTopLevel(decl ast.Node) {
	switch d := decl.(type) {
	case *ast.EnumDecl:
		for _, element := range d.Elements {
			if element.Initializer != nil {
				r.resolveExpr(element.Initializer)
			}
		}
	case *ast.StructDecl:
		for _, value := range d.Values {
			if value.Initializer != nil {
				r.resolveExpr(value.Initializer)
			}
		}
	case *ast.FuncDecl:
		r.resolveFunction(d)
	case *ast.VarDecl:
		if d.Initializer != nil {
			r.resolveExpr(d.Initializer)
		}
	}
}

func (r *Resolver) resolveFunction(fn *ast.FuncDecl) {
	if fn.Body == nil {
		return
	}

	scope := r.table.Push(table.ScopeFunction)
	scope.Userdata = fn
	for _, param := range fn.Parameters {
		r.mark(param)
		r.insert(scope, param.Name, param)
	}
	r.resolveBlock(fn.Body)
	r.table.Pop()
}

// resolveBlock resolves the statements of a block in the current scope.
// The caller pushes whatever scope the block belongs to.
func (r *Resolver) resolveBlock(block *ast.Block) {
	if block == nil {
		return
	}
	r.mark(block)
	for _, stmt := range block.Statements {
		r.resolveStmt(stmt)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Statement) {
	if stmt == nil {
		return
	}
	r.mark(stmt)

	switch s := stmt.(type) {
	case *ast.VarDecl:
		s.Type = r.resolveTypeRef(s.TypeRef)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.insert(r.table.Current(), s.Name, s)

	case *ast.ControlStmt:
		if s.Result != nil {
			r.resolveExpr(s.Result)
		}

	case *ast.IfStmt:
		r.resolveIf(s)

	case *ast.LoopStmt:
		for _, cond := range s.Conditions {
			r.resolveExpr(cond)
		}
		scope := r.table.Push(table.ScopeLoop)
		scope.Userdata = s
		r.resolveBlock(s.Body)
		r.table.Pop()

	case *ast.ForStmt:
		r.resolveExpr(s.Sequence)
		scope := r.table.Push(table.ScopeLoop)
		scope.Userdata = s

		element := ast.Alloc[ast.VarDecl](r.arena)
		element.Name = s.Element
		element.Location = *s.Loc()
		element.Type = r.elementTypeOf(s.Sequence)
		r.mark(element)
		r.insert(scope, s.Element, element)

		r.resolveBlock(s.Body)
		r.table.Pop()

	case *ast.GuardStmt:
		for _, cond := range s.Conditions {
			r.resolveExpr(cond)
		}
		scope := r.table.Push(table.ScopeBranch)
		scope.Userdata = s
		r.resolveBlock(s.Else)
		r.table.Pop()

	case *ast.SwitchStmt:
		r.resolveExpr(s.Argument)
		switchScope := r.table.Push(table.ScopeSwitch)
		switchScope.Userdata = s
		for index, caseStmt := range s.Cases {
			r.mark(caseStmt)
			if index+1 < len(s.Cases) {
				caseStmt.NextCase = s.Cases[index+1]
			}
			if caseStmt.Condition != nil {
				r.resolveExpr(caseStmt.Condition)
			}
			caseScope := r.table.Push(table.ScopeCase)
			caseScope.Userdata = caseStmt
			r.resolveBlock(caseStmt.Body)
			r.table.Pop()
		}
		r.table.Pop()

	case *ast.DeferStmt:
		r.resolveExpr(s.X)

	case ast.Expression:
		r.resolveExpr(s)
	}
}

func (r *Resolver) resolveIf(stmt *ast.IfStmt) {
	r.mark(stmt)
	for _, cond := range stmt.Conditions {
		r.resolveExpr(cond)
	}

	scope := r.table.Push(table.ScopeBranch)
	scope.Userdata = stmt
	r.resolveBlock(stmt.Then)
	r.table.Pop()

	switch stmt.ElseKind {
	case ast.ElseBlock:
		scope := r.table.Push(table.ScopeBranch)
		scope.Userdata = stmt
		r.resolveBlock(stmt.ElseBody)
		r.table.Pop()
	case ast.ElseIf:
		r.resolveIf(stmt.ElseChain)
	}
}

// elementTypeOf derives the loop element type from the sequence type.
func (r *Resolver) elementTypeOf(sequence ast.Expression) types.Type {
	switch t := sequence.ExprBase().Type.(type) {
	case *types.StaticArrayType:
		return t.Element
	case *types.DynamicArrayType:
		return t.Element
	default:
		if !types.IsError(sequence.ExprBase().Type) {
			r.diagnostics.Add(
				diagnostics.NewError("for statement requires an array sequence").
					WithCode(diagnostics.ErrTypeMismatch).
					WithPrimaryLabel(sequence.Loc(), fmt.Sprintf("has type '%s'", sequence.ExprBase().Type)),
			)
		}
		return r.types.Error()
	}
}
