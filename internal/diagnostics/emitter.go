package diagnostics

import (
	"fmt"
	"io"

	"jelly/colors"
)

// Emitter renders diagnostics to a writer with ANSI colors.
type Emitter struct {
	writer io.Writer
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{writer: w}
}

func severityColor(s Severity) colors.COLOR {
	switch s {
	case Error, Critical:
		return colors.RED
	case Warning:
		return colors.ORANGE
	default:
		return colors.CYAN
	}
}

// Emit renders one diagnostic: severity header, labeled locations, notes
// and the help line.
func (e *Emitter) Emit(d *Diagnostic) {
	color := severityColor(d.Severity)

	if d.Code != "" {
		color.Fprintf(e.writer, "%s[%s]", d.Severity, d.Code)
	} else {
		color.Fprintf(e.writer, "%s", d.Severity)
	}
	fmt.Fprintf(e.writer, ": %s\n", d.Message)

	for _, label := range d.Labels {
		marker := "-->"
		if label.Style == Secondary {
			marker = " ~~"
		}
		if label.Location.IsNull() {
			if label.Message != "" {
				colors.GREY.Fprintf(e.writer, "  %s %s\n", marker, label.Message)
			}
			continue
		}
		loc := label.Location
		colors.GREY.Fprintf(e.writer, "  %s %s:%d:%d", marker, d.FilePath, loc.Start.Line, loc.Start.Column)
		if label.Message != "" {
			fmt.Fprintf(e.writer, " %s", label.Message)
		}
		fmt.Fprintln(e.writer)

		if text := loc.GetText(); text != "" {
			fmt.Fprintf(e.writer, "      %s\n", text)
		}
	}

	for _, note := range d.Notes {
		colors.CYAN.Fprintf(e.writer, "  note: ")
		fmt.Fprintln(e.writer, note.Message)
	}

	if d.Help != "" {
		colors.GREEN.Fprintf(e.writer, "  help: ")
		fmt.Fprintln(e.writer, d.Help)
	}
}
