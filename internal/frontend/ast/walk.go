package ast

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(child Node) {
		switch v := child.(type) {
		case nil:
		case *Block:
			if v != nil {
				out = append(out, v)
			}
		case *IfStmt:
			if v != nil {
				out = append(out, v)
			}
		case *CaseStmt:
			if v != nil {
				out = append(out, v)
			}
		case *ConstantExpr:
			if v != nil {
				out = append(out, v)
			}
		case *FuncDecl:
			if v != nil {
				out = append(out, v)
			}
		default:
			out = append(out, child)
		}
	}
	addExpr := func(e Expression) {
		if e != nil {
			out = append(out, e)
		}
	}
	addType := func(t TypeRef) {
		if t != nil {
			out = append(out, t)
		}
	}

	switch v := n.(type) {
	case *ModuleDecl:
		for _, unit := range v.SourceUnits {
			add(unit)
		}
	case *SourceUnit:
		for _, decl := range v.Declarations {
			add(decl)
		}
	case *LoadDirective:
		add(v.Path)
	case *EnumDecl:
		for _, element := range v.Elements {
			add(element)
		}
	case *EnumElementDecl:
		addExpr(v.Initializer)
	case *FuncDecl:
		for _, param := range v.Parameters {
			add(param)
		}
		addType(v.ReturnType)
		add(v.Body)
	case *ParamDecl:
		addType(v.TypeRef)
	case *VarDecl:
		addType(v.TypeRef)
		addExpr(v.Initializer)
	case *StructDecl:
		for _, value := range v.Values {
			add(value)
		}
	case *Block:
		for _, stmt := range v.Statements {
			add(stmt)
		}
	case *ControlStmt:
		addExpr(v.Result)
	case *IfStmt:
		for _, cond := range v.Conditions {
			addExpr(cond)
		}
		add(v.Then)
		switch v.ElseKind {
		case ElseBlock:
			add(v.ElseBody)
		case ElseIf:
			add(v.ElseChain)
		}
	case *LoopStmt:
		for _, cond := range v.Conditions {
			addExpr(cond)
		}
		add(v.Body)
	case *ForStmt:
		addExpr(v.Sequence)
		add(v.Body)
	case *GuardStmt:
		for _, cond := range v.Conditions {
			addExpr(cond)
		}
		add(v.Else)
	case *SwitchStmt:
		addExpr(v.Argument)
		for _, c := range v.Cases {
			add(c)
		}
	case *CaseStmt:
		addExpr(v.Condition)
		add(v.Body)
	case *DeferStmt:
		addExpr(v.X)
	case *IdentifierExpr, *ConstantExpr, *AnyTypeRef, *OpaqueTypeRef:
		// leaves
	case *MemberAccessExpr:
		addExpr(v.Argument)
	case *UnaryExpr:
		addExpr(v.X)
	case *BinaryExpr:
		addExpr(v.X)
		addExpr(v.Y)
	case *AssignExpr:
		addExpr(v.Lhs)
		addExpr(v.Rhs)
	case *CallExpr:
		addExpr(v.Callee)
		for _, arg := range v.Arguments {
			addExpr(arg)
		}
	case *SubscriptExpr:
		addExpr(v.X)
		for _, arg := range v.Arguments {
			addExpr(arg)
		}
	case *SizeOfExpr:
		addType(v.Target)
	case *TypeOperationExpr:
		addExpr(v.X)
		addType(v.Target)
	case *TypeOfTypeRef:
		addExpr(v.X)
	case *PointerTypeRef:
		addType(v.Pointee)
	case *ArrayTypeRef:
		addType(v.Element)
		addExpr(v.Size)
	}
	return out
}

// Walk visits n and its descendants depth-first in source order. The
// visitor returns false to skip a subtree.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, visit)
	}
}

// SetParents installs the parent link on every descendant of root.
func SetParents(root Node) {
	Walk(root, func(n Node) bool {
		for _, child := range Children(n) {
			child.Base().SetParent(n)
		}
		return true
	})
}
