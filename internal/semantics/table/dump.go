package table

import (
	"fmt"
	"io"
	"strings"

	"jelly/internal/interner"
)

// Dump writes the scope tree rooted at the global scope to w, one scope per
// line with its symbols in definition order.
func (t *SymbolTable) Dump(w io.Writer, in *interner.Table) {
	dumpScope(w, in, t.Global(), 0)
}

func dumpScope(w io.Writer, in *interner.Table, scope *Scope, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s", indent, scope.Kind)
	if !scope.Location.IsNull() {
		fmt.Fprintf(w, " %s", scope.Location)
	}
	fmt.Fprintln(w)

	for _, symbol := range scope.Symbols {
		fmt.Fprintf(w, "%s  %s", indent, in.Text(symbol.Name))
		if !symbol.Location.IsNull() {
			fmt.Fprintf(w, " %s", symbol.Location)
		}
		fmt.Fprintln(w)
	}

	for _, child := range scope.Children {
		dumpScope(w, in, child, depth+1)
	}
}
