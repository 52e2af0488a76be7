// Package compileerr defines the single tagged error kind the front end is
// permitted to raise (spec.md §7). The backend proper is total: given a
// well-typed program it never returns a CompileError, only panics on
// internal invariant violations (programmer bugs, not user errors).
package compileerr

import (
	"fmt"
	"strings"

	"github.com/minij/mjc/pkg/ast"
)

// CompileError reports a user-facing failure with an optional source
// location. File and Source (the full source text, for the caret
// underline) are only rendered when set; New and At leave them zero and
// cmd/mjc does not fill them in, so its errors carry no file name or
// caret excerpt.
type CompileError struct {
	Message string
	Pos     *ast.Position
	File    string
	Source  string
}

func New(format string, args ...interface{}) *CompileError {
	return &CompileError{Message: fmt.Sprintf(format, args...)}
}

func At(pos ast.Position, format string, args ...interface{}) *CompileError {
	p := pos
	return &CompileError{Message: fmt.Sprintf(format, args...), Pos: &p}
}

func (e *CompileError) Error() string {
	var b strings.Builder
	if e.File != "" && e.Pos != nil {
		fmt.Fprintf(&b, "%s:%d:%d: %s", e.File, e.Pos.Line, e.Pos.Column, e.Message)
	} else if e.Pos != nil {
		fmt.Fprintf(&b, "line %d, col %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	} else {
		b.WriteString(e.Message)
	}
	if e.Pos != nil && e.Source != "" {
		if line, ok := sourceLine(e.Source, e.Pos.Line); ok {
			b.WriteByte('\n')
			b.WriteString(line)
			b.WriteByte('\n')
			b.WriteString(caret(e.Pos.Column))
		}
	}
	return b.String()
}

func sourceLine(source string, line int) (string, bool) {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

func caret(column int) string {
	if column < 1 {
		column = 1
	}
	return strings.Repeat(" ", column-1) + "^"
}

// Internal panics when an invariant the type checker is supposed to
// guarantee does not hold. This is always a programmer bug, never a user
// error (spec.md §7), so it is not a CompileError.
func Internal(format string, args ...interface{}) {
	panic("mjc: internal invariant violated: " + fmt.Sprintf(format, args...))
}
