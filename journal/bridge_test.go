package journal

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

// recorder captures delivered entries the way the journal would see them.
type recorder struct {
	entries []map[string]string
	status  int
}

func (r *recorder) send(args [][]byte) int {
	msg, pri, vars, err := DecodeArgs(args)
	if err != nil {
		return -1
	}
	vars[FieldMessage] = msg
	vars[FieldPriority] = strconv.Itoa(int(pri))
	r.entries = append(r.entries, vars)
	return r.status
}

func newTestBridge(t *testing.T, cfg Config, rec *recorder, errs *[]error) *Bridge {
	t.Helper()
	b, err := New(cfg,
		WithSendFunc(rec.send),
		WithErrorHandler(func(err error, _ *Event) { *errs = append(*errs, err) }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestBridgeEndToEnd(t *testing.T) {
	var rec recorder
	var errs []error
	b := newTestBridge(t, Config{SyslogIdentifier: "logtest"}, &rec, &errs)

	ev := testEvent()
	ev.Err = errors.Wrap(&valueError{"durutum"}, "raiseme")
	ev.Stack = CaptureStack(0)
	ev.Extra = &Extra{
		MessageID: MessageIDRequest{Auto: true},
		Context:   map[string]string{"FIELD1": "one", "FIELD2": "two"},
	}

	b.Handle(ev)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(rec.entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(rec.entries))
	}
	entry := rec.entries[0]

	checks := map[string]string{
		"PRIORITY":          "3",
		"MESSAGE":           "My message",
		"FIELD1":            "one",
		"FIELD2":            "two",
		"SYSLOG_IDENTIFIER": "logtest",
		"CODE_LINE":         "21",
		"LOGGER":            "mysystemdlogger",
	}
	for k, v := range checks {
		if entry[k] != v {
			t.Errorf("%s = %q, want %q", k, entry[k], v)
		}
	}
	if entry["MESSAGE_ID"] == "" {
		t.Error("MESSAGE_ID should be set")
	}
	if !strings.Contains(entry["TRACEBACK"], "valueError") || !strings.Contains(entry["TRACEBACK"], "durutum") {
		t.Errorf("TRACEBACK = %q", entry["TRACEBACK"])
	}
	if !strings.Contains(entry["STACK"], "TestBridgeEndToEnd") {
		t.Errorf("STACK = %q", entry["STACK"])
	}
}

func TestBridgeDeliveryFailureReportedOnce(t *testing.T) {
	rec := recorder{status: 1}
	var errs []error
	b := newTestBridge(t, Config{}, &rec, &errs)

	b.Handle(testEvent())
	b.Handle(testEvent())

	if len(errs) != 2 {
		t.Fatalf("got %d reported errors, want one per event", len(errs))
	}
	for _, err := range errs {
		if err != ErrDeliveryFailed {
			t.Errorf("err = %v, want ErrDeliveryFailed", err)
		}
	}
}

func TestBridgeStubTransport(t *testing.T) {
	var errs []error
	b, err := New(Config{},
		WithTransport(NewTransport(nil)),
		WithErrorHandler(func(err error, _ *Event) { errs = append(errs, err) }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b.Handle(testEvent())
	if len(errs) != 1 {
		t.Errorf("got %d errors, want 1", len(errs))
	}
}

func TestBridgeRecoversPanics(t *testing.T) {
	var errs []error
	b, err := New(Config{},
		WithSendFunc(func([][]byte) int { panic("native crash") }),
		WithErrorHandler(func(err error, _ *Event) { errs = append(errs, err) }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	b.Handle(testEvent())

	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "native crash") {
		t.Errorf("errs = %v", errs)
	}
}

func TestBridgeSendNilEvent(t *testing.T) {
	var rec recorder
	var errs []error
	b := newTestBridge(t, Config{}, &rec, &errs)
	if err := b.Send(nil); err == nil {
		t.Error("expected error for nil event")
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New(Config{Backend: "nope"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestResolveWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	old := diagOut
	diagOut = &buf
	defer func() { diagOut = old }()

	b := &backend{available: func() bool { return false }, send: goSystemdSend}
	backends["test-unavailable"] = b
	defer delete(backends, "test-unavailable")

	for i := 0; i < 3; i++ {
		send, err := ResolveSendFunc("test-unavailable")
		if err != nil {
			t.Fatalf("ResolveSendFunc: %v", err)
		}
		if send != nil {
			t.Error("unavailable backend should resolve to nil")
		}
	}
	if n := strings.Count(buf.String(), "warning"); n != 1 {
		t.Errorf("got %d warnings, want 1:\n%s", n, buf.String())
	}
}
