package driver

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Diagnostic is an error found in the lowered program.
type Diagnostic struct {
	File    string
	Line    int
	Col     int
	Message string
}

// String formats d as "file (line,col): message".
func (d Diagnostic) String() string {
	switch {
	case d.File == "":
		return d.Message
	case d.Line == 0:
		return fmt.Sprintf("%s: %s", d.File, d.Message)
	default:
		return fmt.Sprintf("%s (%d,%d): %s", d.File, d.Line, d.Col, d.Message)
	}
}

func newDiagnostic(dir string, e packages.Error) Diagnostic {
	file, line, col := parsePos(e.Pos)
	if file != "" {
		file = relPath(dir, file)
	}
	return Diagnostic{File: file, Line: line, Col: col, Message: e.Msg}
}

// parsePos splits a "file:line:col" position. Line and column are optional;
// "" and "-" denote no position.
func parsePos(pos string) (file string, line, col int) {
	if pos == "" || pos == "-" {
		return "", 0, 0
	}
	i := strings.LastIndexByte(pos, ':')
	if i <= 0 {
		return pos, 0, 0
	}
	last, err := strconv.Atoi(pos[i+1:])
	if err != nil {
		return pos, 0, 0
	}
	rest := pos[:i]
	if j := strings.LastIndexByte(rest, ':'); j > 0 {
		if n, err := strconv.Atoi(rest[j+1:]); err == nil {
			return rest[:j], n, last
		}
	}
	return rest, last, 0
}

func sortDiagnostics(diags []Diagnostic) {
	sort.Slice(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Col != b.Col {
			return a.Col < b.Col
		}
		return a.Message < b.Message
	})
}
