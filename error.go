package transfer

import "fmt"

// Error describes a failure raised anywhere in the compiler or the VM:
// a malformed pattern, an unresolved label, a stack underflow, a bad
// clip reference. Fill in as much as is known; only Sender and Msg are
// required. It mirrors the single-error-type convention this codebase
// uses everywhere instead of a sprawl of sentinel errors.
type Error struct {
	Filename string
	Line     int
	Column   int
	Sender   string // component raising the error: "loader", "interp", "vm", "tokenizer", "codegen"
	Msg      string
	OrigErr  error // wrapped cause, if any
}

func (e *Error) Error() string {
	s := "[transfer"
	if e.Sender != "" {
		s += " (where: " + e.Sender + ")"
	}
	if e.Filename != "" {
		s += " in " + e.Filename
	}
	if e.Line > 0 {
		s += fmt.Sprintf(" | line %d", e.Line)
		if e.Column > 0 {
			s += fmt.Sprintf(" col %d", e.Column)
		}
	}
	s += "] " + e.Msg
	if e.OrigErr != nil {
		s += ": " + e.OrigErr.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.OrigErr }

func newError(sender, format string, args ...interface{}) *Error {
	return &Error{Sender: sender, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(sender string, orig error, format string, args ...interface{}) *Error {
	return &Error{Sender: sender, Msg: fmt.Sprintf(format, args...), OrigErr: orig}
}

func (e *Error) atLine(line int) *Error {
	e.Line = line
	return e
}

func (e *Error) inFile(filename string) *Error {
	e.Filename = filename
	return e
}
