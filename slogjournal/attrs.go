package slogjournal

import (
	"log/slog"

	"github.com/baraverkstad/journald-logging/journal"
)

type (
	messageIDValue journal.MessageIDRequest
	stackValue     string
	loggerValue    string
)

func (v messageIDValue) String() string {
	if v.ID != "" {
		return v.ID
	}
	return "auto"
}

// MessageID sets MESSAGE_ID to id.
func MessageID(id string) slog.Attr {
	return slog.Any("message_id", messageIDValue{ID: id})
}

// AutoMessageID derives MESSAGE_ID from the message, level and call site.
func AutoMessageID() slog.Attr {
	return slog.Any("message_id", messageIDValue{Auto: true})
}

// Stack captures the stack of the goroutine calling Stack, so the STACK
// field starts at the logging call site.
func Stack() slog.Attr {
	return slog.Any("stack", stackValue(journal.CaptureStack(1)))
}

// Logger names the logger for the LOGGER field. Use it with slog.Logger.With
// to name a derived logger.
func Logger(name string) slog.Attr {
	return slog.Any("logger", loggerValue(name))
}

func loggerName(a slog.Attr) (string, bool) {
	v, ok := a.Value.Any().(loggerValue)
	return string(v), ok
}
