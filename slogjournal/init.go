package slogjournal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/baraverkstad/journald-logging/journal"
)

// Init attaches the journal to logger when the process runs under systemd.
// A nil logger means the default logger: the journal handler becomes the
// slog default. Otherwise the returned logger writes to both the original
// handler and the journal.
//
// When not attached, Init returns the logger unchanged and false so that the
// caller can choose another destination. The check is done once per call;
// calling Init twice installs the journal twice.
func Init(logger *slog.Logger, cfg journal.Config, hopts *HandlerOptions, opts ...journal.Option) (*slog.Logger, bool) {
	if !journal.Attached(cfg) {
		if logger == nil {
			logger = slog.Default()
		}
		return logger, false
	}

	b, err := journal.New(cfg, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "journald-logging: %v\n", err)
		if logger == nil {
			logger = slog.Default()
		}
		return logger, false
	}
	h := NewHandler(b, hopts)

	if logger == nil {
		l := slog.New(h)
		slog.SetDefault(l)
		return l, true
	}
	return slog.New(&fanoutHandler{handlers: []slog.Handler{logger.Handler(), h}}), true
}

// fanoutHandler passes records to several handlers.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (f *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: hs}
}

func (f *fanoutHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &fanoutHandler{handlers: hs}
}
