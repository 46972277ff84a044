package zapjournal

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/baraverkstad/journald-logging/journal"
)

type (
	messageIDValue journal.MessageIDRequest
	stackValue     string
)

// The fields below use zapcore.SkipType, so other cores in a tee ignore them.

// MessageID sets MESSAGE_ID to id.
func MessageID(id string) zap.Field {
	return zap.Field{Key: "message_id", Type: zapcore.SkipType, Interface: messageIDValue{ID: id}}
}

// AutoMessageID derives MESSAGE_ID from the message, level and call site.
func AutoMessageID() zap.Field {
	return zap.Field{Key: "message_id", Type: zapcore.SkipType, Interface: messageIDValue{Auto: true}}
}

// Stack captures the calling goroutine's stack for the STACK field.
func Stack() zap.Field {
	return zap.Field{Key: "stack", Type: zapcore.SkipType, Interface: stackValue(journal.CaptureStack(1))}
}
