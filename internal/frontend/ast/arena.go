package ast

// Arena owns every node of one module. Allocation is append-only and nodes
// never move; cross-references between nodes are plain pointers that stay
// valid until Release. Node variants that own non-arena resources register
// a teardown hook at allocation time, and Release runs the hooks in reverse
// order. An arena is confined to the goroutine compiling its module.
type Arena struct {
	nodes     []Node
	teardowns []func()
	released  bool
}

func NewArena() *Arena {
	return &Arena{}
}

// Alloc allocates a node of the given variant in the arena.
//
//	expr := ast.Alloc[ast.ConstantExpr](arena)
func Alloc[T any, P interface {
	*T
	Node
}](a *Arena) P {
	node := P(new(T))
	node.Base().Scope = NoScope
	a.nodes = append(a.nodes, node)
	return node
}

// OnTeardown registers a hook to run when the arena is released.
func (a *Arena) OnTeardown(hook func()) {
	a.teardowns = append(a.teardowns, hook)
}

// Nodes returns every node allocated so far, in allocation order.
func (a *Arena) Nodes() []Node {
	return a.nodes
}

// Len returns the number of allocated nodes.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Release runs the teardown hooks in reverse registration order and drops
// the node list. Dereferencing nodes after Release is a bug in the caller.
func (a *Arena) Release() {
	if a.released {
		return
	}
	a.released = true
	for i := len(a.teardowns) - 1; i >= 0; i-- {
		a.teardowns[i]()
	}
	a.teardowns = nil
	a.nodes = nil
}
