// Package logrusjournal sends logrus entries to the systemd journal.
package logrusjournal

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/baraverkstad/journald-logging/journal"
)

// Data keys with special meaning. MessageIDKey takes a string id or true for
// a derived one; StackKey set to true captures the logging goroutine's stack;
// LoggerKey names the logger.
const (
	MessageIDKey = "message_id"
	StackKey     = "stack"
	LoggerKey    = "logger"
)

const defaultLogger = "logrus"

// Hook is a logrus.Hook delivering entries through a journal.Bridge.
type Hook struct {
	bridge *journal.Bridge
	logger string
}

// NewHook creates a hook. An empty logger name falls back to "logrus".
func NewHook(b *journal.Bridge, logger string) *Hook {
	if logger == "" {
		logger = defaultLogger
	}
	return &Hook{bridge: b, logger: logger}
}

// Levels implements logrus.Hook.
func (hook *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook. A returned error is reported by logrus on
// stderr ("Failed to fire hook"), which is logrus's handler error channel.
func (hook *Hook) Fire(entry *logrus.Entry) error {
	return hook.bridge.Send(hook.event(entry))
}

func (hook *Hook) event(entry *logrus.Entry) *journal.Event {
	ev := &journal.Event{
		Level:   levelFor(entry.Level),
		Message: entry.Message,
		Logger:  hook.logger,
	}
	if entry.Caller != nil {
		journal.CallerFromFrame(entry.Caller.File, entry.Caller.Line, entry.Caller.Function).Apply(ev)
	} else {
		journal.CallerOutside(logrusPkg, hookPkg).Apply(ev)
	}
	journal.FillRuntime(ev)

	var req journal.MessageIDRequest
	ctx := make(map[string]string, len(entry.Data))
	for k, v := range entry.Data {
		switch k {
		case logrus.ErrorKey:
			if err, ok := v.(error); ok {
				ev.Err = err
				continue
			}
		case MessageIDKey:
			switch id := v.(type) {
			case bool:
				req.Auto = id
				continue
			case string:
				req.ID = id
				continue
			}
		case StackKey:
			if b, ok := v.(bool); ok {
				if b {
					ev.Stack = journal.CaptureStackOutside(logrusPkg, hookPkg)
				}
				continue
			}
		case LoggerKey:
			if name, ok := v.(string); ok {
				ev.Logger = name
				continue
			}
		}
		ctx[k] = fmt.Sprint(v)
	}
	if len(ctx) > 0 || req.Requested() {
		ev.Extra = &journal.Extra{MessageID: req, Context: ctx}
	}
	return ev
}

// Frames of these packages are skipped when locating the call site.
const (
	logrusPkg = "github.com/sirupsen/logrus."
	hookPkg   = "github.com/baraverkstad/journald-logging/logrusjournal.(*Hook)."
)

func levelFor(l logrus.Level) journal.Level {
	switch l {
	case logrus.PanicLevel, logrus.FatalLevel:
		return journal.LevelCritical
	case logrus.ErrorLevel:
		return journal.LevelError
	case logrus.WarnLevel:
		return journal.LevelWarning
	case logrus.InfoLevel:
		return journal.LevelInfo
	default:
		return journal.LevelDebug
	}
}

// Init adds the journal hook to logger when the process runs under systemd.
// A nil logger means logrus.StandardLogger(). Returns whether the hook was
// installed.
func Init(logger *logrus.Logger, cfg journal.Config, opts ...journal.Option) bool {
	if !journal.Attached(cfg) {
		return false
	}
	b, err := journal.New(cfg, opts...)
	if err != nil {
		if logger == nil {
			logger = logrus.StandardLogger()
		}
		logger.WithError(err).Warn("journal bridge not installed")
		return false
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.AddHook(NewHook(b, ""))
	return true
}
