package transfer

import "github.com/juju/errors"

// annotateContext stacks a short description ("backpatching macro
// take_n", "loading rule 12") onto a loader error using juju/errors'
// annotation convention, so a chain of these reads top-down like a
// backtrace instead of one flat message.
func annotateContext(err *Error, context string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Sender:   err.Sender,
		Filename: err.Filename,
		Line:     err.Line,
		Column:   err.Column,
		Msg:      err.Msg,
		OrigErr:  errors.Annotate(err, context),
	}
}
