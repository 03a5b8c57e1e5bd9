package source

import (
	"bufio"
	"fmt"
	"os"
)

// Location represents a span of source code with start and end positions.
// A zero Location (no filename) marks a synthesized node.
type Location struct {
	Start    *Position
	End      *Position
	Filename *string
}

// NewLocation creates a new Location with the given start and end positions
func NewLocation(filename *string, start, end *Position) *Location {
	return &Location{
		Filename: filename,
		Start:    start,
		End:      end,
	}
}

// IsNull reports whether the location was synthesized and carries no span.
func (l *Location) IsNull() bool {
	return l == nil || l.Start == nil || l.End == nil
}

// Contains checks if the given position is within this location
func (l *Location) Contains(pos *Position) bool {
	if l.IsNull() {
		return false
	}
	return l.Start.Offset <= pos.Offset && pos.Offset <= l.End.Offset
}

func (l *Location) String() string {
	if l.IsNull() {
		return "location(unknown)"
	}

	return fmt.Sprintf("location(%d:%d - %d:%d)", l.Start.Line, l.Start.Column, l.End.Line, l.End.Column)
}

// GetText extracts the source code text for this location.
// Returns empty string if the location is invalid or file cannot be read.
func (l *Location) GetText() string {
	if l.IsNull() || l.Filename == nil {
		return ""
	}

	lines, err := GetSourceLinesRange(*l.Filename, l.Start.Line, l.End.Line)
	if err != nil || len(lines) == 0 {
		return ""
	}

	colStart := l.Start.Column
	colEnd := l.End.Column

	if l.Start.Line == l.End.Line {
		line := lines[0]
		if colStart < 1 || colStart > len(line)+1 || colEnd < 1 || colEnd > len(line)+1 {
			return ""
		}
		return line[colStart-1 : colEnd-1]
	}

	var result string
	for i, line := range lines {
		actualLine := l.Start.Line + i
		switch actualLine {
		case l.Start.Line:
			if colStart >= 1 && colStart <= len(line)+1 {
				result += line[colStart-1:]
			}
		case l.End.Line:
			if colEnd >= 1 && colEnd <= len(line)+1 {
				result += "\n" + line[:colEnd-1]
			}
		default:
			result += "\n" + line
		}
	}

	return result
}

// GetSourceLinesRange reads only the specified range of lines from a file.
// Lines are 1-indexed. Returns the lines from startLine to endLine (inclusive).
func GetSourceLinesRange(filepath string, startLine, endLine int) ([]string, error) {
	if startLine < 1 || endLine < startLine {
		return nil, fmt.Errorf("invalid line range: %d-%d", startLine, endLine)
	}

	file, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lines := make([]string, 0, endLine-startLine+1)
	currentLine := 0

	for scanner.Scan() {
		currentLine++
		if currentLine < startLine {
			continue
		}
		if currentLine > endLine {
			break
		}
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(lines) == 0 && currentLine < startLine {
		return nil, fmt.Errorf("line %d out of range (file has %d lines)", startLine, currentLine)
	}

	return lines, nil
}
