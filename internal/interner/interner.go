// Package interner maps identifier text to compact handles. Interning is
// case-sensitive and byte-exact; equal handles mean equal text.
package interner

// ID is a handle to an interned string. The zero ID is never issued.
type ID int32

// None marks an absent identifier.
const None ID = 0

// Table holds the bidirectional text/handle mapping for one compilation.
type Table struct {
	ids   map[string]ID
	texts []string
}

func NewTable() *Table {
	return &Table{
		ids:   make(map[string]ID),
		texts: []string{""}, // slot 0 is reserved for None
	}
}

// Intern returns the handle for text, creating one on first sight.
func (t *Table) Intern(text string) ID {
	if id, ok := t.ids[text]; ok {
		return id
	}
	id := ID(len(t.texts))
	t.ids[text] = id
	t.texts = append(t.texts, text)
	return id
}

// Lookup returns the handle for text without interning it.
func (t *Table) Lookup(text string) (ID, bool) {
	id, ok := t.ids[text]
	return id, ok
}

// Text returns the string for a previously issued handle.
func (t *Table) Text(id ID) string {
	if id <= None || int(id) >= len(t.texts) {
		return ""
	}
	return t.texts[id]
}

// Len returns the number of interned strings.
func (t *Table) Len() int {
	return len(t.texts) - 1
}
