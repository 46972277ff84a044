package journal

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrDeliveryFailed is reported when the native send primitive rejects an
// entry or no journal is reachable.
var ErrDeliveryFailed = errors.New("journal delivery failed")

// Bridge turns events into journal entries. It is safe for concurrent use;
// all per-event state lives in the call.
type Bridge struct {
	cfg       Config
	transport Transport
	onError   ErrorHandler
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithSendFunc replaces the native send primitive, typically in tests.
func WithSendFunc(send SendFunc) Option {
	return func(b *Bridge) {
		b.transport = NewTransport(send)
	}
}

// WithTransport replaces the whole transport.
func WithTransport(t Transport) Option {
	return func(b *Bridge) {
		b.transport = t
	}
}

// WithErrorHandler sets where Handle reports failures.
func WithErrorHandler(h ErrorHandler) Option {
	return func(b *Bridge) {
		b.onError = h
	}
}

// New creates a Bridge using the configured native backend. An unknown
// backend is an error; an unreachable journal is not, it selects the stub
// transport.
func New(cfg Config, opts ...Option) (*Bridge, error) {
	b := &Bridge{cfg: cfg}
	for _, opt := range opts {
		opt(b)
	}
	if b.transport == nil {
		send, err := ResolveSendFunc(cfg.Backend)
		if err != nil {
			return nil, err
		}
		b.transport = NewTransport(send)
	}
	if b.onError == nil {
		b.onError = StderrErrorHandler()
	}
	return b, nil
}

// Config returns the bridge configuration.
func (b *Bridge) Config() Config {
	return b.cfg
}

// Handle delivers one event. It never panics and never returns an error;
// failures go to the ErrorHandler, once per event.
func (b *Bridge) Handle(ev *Event) {
	if err := b.Send(ev); err != nil {
		b.onError(err, ev)
	}
}

// Send delivers one event and returns the failure instead of reporting it,
// for hosts whose error channel is the hook's return value.
func (b *Bridge) Send(ev *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("journal bridge panic: %v", r)
		}
	}()
	if ev == nil {
		return errors.New("nil event")
	}
	if !b.transport.Deliver(Assemble(ev, b.cfg)) {
		return ErrDeliveryFailed
	}
	return nil
}

// String implements fmt.Stringer for diagnostics.
func (b *Bridge) String() string {
	return fmt.Sprintf("journal.Bridge{backend=%s identifier=%q}", b.cfg.Backend, b.cfg.SyslogIdentifier)
}
