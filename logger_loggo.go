package transfer

import "github.com/juju/loggo"

// LoggoLogger adapts a github.com/juju/loggo logger to the Logger
// interface, for callers who already run loggo elsewhere in their
// pipeline and want transfer-stage warnings folded into the same
// module hierarchy instead of a second, unrelated log stream.
type LoggoLogger struct {
	logger loggo.Logger
}

// NewLoggoLogger returns a Logger backed by loggo's "transfer" module,
// at Warning level (matching the severity of the warnings this
// package emits: unresolved tag references, blocked trie paths).
func NewLoggoLogger() LoggoLogger {
	return LoggoLogger{logger: loggo.GetLogger("transfer")}
}

func (l LoggoLogger) Printf(format string, args ...interface{}) {
	l.logger.Warningf(format, args...)
}
