// Package zapjournal sends zap log entries to the systemd journal.
package zapjournal

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/baraverkstad/journald-logging/journal"
)

const defaultLogger = "zap"

// Core is a zapcore.Core delivering entries through a journal.Bridge.
type Core struct {
	zapcore.LevelEnabler
	bridge *journal.Bridge
	fields []zapcore.Field
}

// NewCore creates a core handling entries enabled by enab. A nil enab
// enables every level.
func NewCore(b *journal.Bridge, enab zapcore.LevelEnabler) *Core {
	if enab == nil {
		enab = zapcore.DebugLevel
	}
	return &Core{LevelEnabler: enab, bridge: b}
}

// With implements zapcore.Core.
func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = make([]zapcore.Field, 0, len(c.fields)+len(fields))
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return &clone
}

// Check implements zapcore.Core.
func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write implements zapcore.Core. A delivery failure is returned, and zap
// reports it on the logger's ErrorOutput.
func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	return c.bridge.Send(c.event(ent, fields))
}

// Sync implements zapcore.Core. Entries are not buffered.
func (c *Core) Sync() error {
	return nil
}

func (c *Core) event(ent zapcore.Entry, fields []zapcore.Field) *journal.Event {
	ev := &journal.Event{
		Level:   levelFor(ent.Level),
		Message: ent.Message,
		Logger:  ent.LoggerName,
		Stack:   ent.Stack,
	}
	if ev.Logger == "" {
		ev.Logger = defaultLogger
	}
	if ent.Caller.Defined {
		journal.CallerFromFrame(ent.Caller.File, ent.Caller.Line, ent.Caller.Function).Apply(ev)
	}
	journal.FillRuntime(ev)

	var req journal.MessageIDRequest
	enc := zapcore.NewMapObjectEncoder()
	add := func(f zapcore.Field) {
		switch v := f.Interface.(type) {
		case messageIDValue:
			req = journal.MessageIDRequest(v)
			return
		case stackValue:
			ev.Stack = string(v)
			return
		}
		if f.Type == zapcore.ErrorType && ev.Err == nil {
			if err, ok := f.Interface.(error); ok {
				ev.Err = err
				return
			}
		}
		f.AddTo(enc)
	}
	for _, f := range c.fields {
		add(f)
	}
	for _, f := range fields {
		add(f)
	}

	ctx := make(map[string]string, len(enc.Fields))
	flatten(ctx, "", enc.Fields)
	if len(ctx) > 0 || req.Requested() {
		ev.Extra = &journal.Extra{MessageID: req, Context: ctx}
	}
	return ev
}

// flatten writes nested objects and namespaces as dotted keys.
func flatten(dst map[string]string, prefix string, m map[string]interface{}) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := m[k].(type) {
		case map[string]interface{}:
			flatten(dst, prefix+k+".", v)
		case time.Time:
			dst[prefix+k] = v.Format(time.RFC3339Nano)
		default:
			dst[prefix+k] = fmt.Sprint(v)
		}
	}
}

func levelFor(l zapcore.Level) journal.Level {
	switch l {
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return journal.LevelCritical
	case zapcore.ErrorLevel:
		return journal.LevelError
	case zapcore.WarnLevel:
		return journal.LevelWarning
	case zapcore.InfoLevel:
		return journal.LevelInfo
	case zapcore.DebugLevel:
		return journal.LevelDebug
	default:
		return journal.Level(l)
	}
}

// Init tees logger's core with a journal core when the process runs under
// systemd. A nil logger means the global zap.L(), which is then replaced.
// When not attached the logger is returned unchanged with false.
//
// CODE_* fields are filled only for loggers built with zap.AddCaller.
func Init(logger *zap.Logger, cfg journal.Config, opts ...journal.Option) (*zap.Logger, bool) {
	global := logger == nil
	if global {
		logger = zap.L()
	}
	if !journal.Attached(cfg) {
		return logger, false
	}
	b, err := journal.New(cfg, opts...)
	if err != nil {
		logger.Warn("journal bridge not installed", zap.Error(err))
		return logger, false
	}
	wrapped := logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, NewCore(b, nil))
	}))
	if global {
		zap.ReplaceGlobals(wrapped)
	}
	return wrapped, true
}
