package diagnostics

import (
	"bytes"
	"io"
	"os"
	"sync"

	"jelly/colors"
)

// DiagnosticBag collects diagnostics during compilation. It is the sink the
// parser, resolver and type checker report into; the driver inspects the
// per-severity counts between phases. Safe for concurrent use so a host may
// compile independent modules on separate goroutines.
type DiagnosticBag struct {
	diagnostics []*Diagnostic
	mu          sync.Mutex
	counts      [severityCount]int
}

// NewDiagnosticBag creates an empty bag.
func NewDiagnosticBag() *DiagnosticBag {
	return &DiagnosticBag{}
}

// Add adds a diagnostic to the bag
func (db *DiagnosticBag) Add(diag *Diagnostic) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.diagnostics = append(db.diagnostics, diag)
	db.counts[diag.Severity]++
}

// Count returns the number of diagnostics at the given severity.
func (db *DiagnosticBag) Count(severity Severity) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.counts[severity]
}

// HasBlockingDiagnostics reports whether any Error or Critical diagnostic
// was added. Phases do not proceed past a blocking diagnostic.
func (db *DiagnosticBag) HasBlockingDiagnostics() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.counts[Error] > 0 || db.counts[Critical] > 0
}

// Diagnostics returns a copy of all diagnostics (thread-safe)
func (db *DiagnosticBag) Diagnostics() []*Diagnostic {
	db.mu.Lock()
	defer db.mu.Unlock()
	result := make([]*Diagnostic, len(db.diagnostics))
	copy(result, db.diagnostics)
	return result
}

func (db *DiagnosticBag) EmitAll() {
	db.emit(os.Stderr)
}

// EmitAllToString emits all diagnostics to a string with ANSI codes.
func (db *DiagnosticBag) EmitAllToString() string {
	var buf bytes.Buffer
	db.emit(&buf)
	return buf.String()
}

func (db *DiagnosticBag) emit(w io.Writer) {
	emitter := NewEmitter(w)

	for _, diag := range db.Diagnostics() {
		emitter.Emit(diag)
	}

	db.printSummary(w)
}

func (db *DiagnosticBag) printSummary(w io.Writer) {
	db.mu.Lock()
	defer db.mu.Unlock()

	errors := db.counts[Error] + db.counts[Critical]
	warnings := db.counts[Warning]

	if errors > 0 {
		colors.RED.Fprintf(w, "\nCompilation failed with %d error(s)", errors)
		if warnings > 0 {
			colors.RED.Fprintf(w, " and %d warning(s)", warnings)
		}
		io.WriteString(w, "\n")
	} else if warnings > 0 {
		colors.ORANGE.Fprintf(w, "\nCompilation succeeded with %d warning(s)\n", warnings)
	}
}

// Clear removes all diagnostics
func (db *DiagnosticBag) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.diagnostics = nil
	db.counts = [severityCount]int{}
}
