package compiler

import "strings"

// CompileError collects every diagnostic produced during a single compile.
// The compiler keeps parsing after an error (synchronizing at the next
// statement boundary) so that one run can report more than one mistake, the
// way the scanner's own go/scanner.ErrorList does for the teacher's other
// language front end.
type CompileError struct {
	Errs []error
}

func (e *CompileError) Error() string {
	var sb strings.Builder
	for i, err := range e.Errs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual diagnostics to errors.Is/errors.As callers.
func (e *CompileError) Unwrap() []error { return e.Errs }
