// Package slogjournal sends log/slog records to the systemd journal.
package slogjournal

import (
	"context"
	"log/slog"
	"time"

	"github.com/baraverkstad/journald-logging/journal"
)

// LevelCritical is above slog.LevelError and maps to PriCrit.
const LevelCritical = slog.Level(journal.LevelCritical)

const defaultLogger = "slog"

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Level is the minimum level handled. Defaults to slog.LevelDebug so that
	// filtering stays with the host.
	Level slog.Leveler
	// Logger is the LOGGER field value unless a record carries Logger().
	Logger string
}

// Handler is a slog.Handler delivering each record through a journal.Bridge.
type Handler struct {
	bridge *journal.Bridge
	level  slog.Leveler
	logger string
	attrs  []groupedAttr
	groups []string
}

type groupedAttr struct {
	prefix string
	attr   slog.Attr
}

// NewHandler creates a Handler. opts may be nil.
func NewHandler(b *journal.Bridge, opts *HandlerOptions) *Handler {
	h := &Handler{bridge: b, level: slog.LevelDebug, logger: defaultLogger}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		if opts.Logger != "" {
			h.logger = opts.Logger
		}
	}
	return h
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler. Delivery failures go to the bridge's
// ErrorHandler; Handle itself always returns nil.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	ev := &journal.Event{
		Level:   journal.Level(r.Level),
		Message: r.Message,
		Logger:  h.logger,
	}
	journal.CallerFromPC(r.PC).Apply(ev)
	journal.FillRuntime(ev)

	c := collector{ev: ev, ctx: map[string]string{}}
	for _, ga := range h.attrs {
		c.add(ga.prefix, ga.attr)
	}
	prefix := groupPrefix(h.groups)
	r.Attrs(func(a slog.Attr) bool {
		c.add(prefix, a)
		return true
	})
	if len(c.ctx) > 0 || c.req.Requested() {
		ev.Extra = &journal.Extra{MessageID: c.req, Context: c.ctx}
	}

	h.bridge.Handle(ev)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := *h
	prefix := groupPrefix(h.groups)
	nh.attrs = make([]groupedAttr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(nh.attrs, h.attrs)
	for _, a := range attrs {
		if name, ok := loggerName(a); ok {
			nh.logger = name
			continue
		}
		nh.attrs = append(nh.attrs, groupedAttr{prefix: prefix, attr: a})
	}
	return &nh
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.groups = append(append([]string(nil), h.groups...), name)
	return &nh
}

func groupPrefix(groups []string) string {
	var p string
	for _, g := range groups {
		p += g + "."
	}
	return p
}

// collector turns attrs into event fields.
type collector struct {
	ev  *journal.Event
	req journal.MessageIDRequest
	ctx map[string]string
}

func (c *collector) add(prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	switch v := a.Value.Any().(type) {
	case messageIDValue:
		c.req = journal.MessageIDRequest(v)
		return
	case stackValue:
		c.ev.Stack = string(v)
		return
	case loggerValue:
		c.ev.Logger = string(v)
		return
	case error:
		if c.ev.Err == nil {
			c.ev.Err = v
			return
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			c.add(p, ga)
		}
		return
	}

	if a.Key == "" {
		return
	}
	c.ctx[prefix+a.Key] = valueString(a.Value)
}

func valueString(v slog.Value) string {
	if v.Kind() == slog.KindTime {
		return v.Time().Format(time.RFC3339Nano)
	}
	return v.String()
}
