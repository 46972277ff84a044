package logrusjournal

import (
	"io"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/baraverkstad/journald-logging/journal"
)

type recorder struct {
	entries []map[string]string
	status  int
}

func (r *recorder) send(args [][]byte) int {
	msg, pri, vars, err := journal.DecodeArgs(args)
	if err != nil {
		return -1
	}
	vars["MESSAGE"] = msg
	vars["PRIORITY"] = strconv.Itoa(int(pri))
	r.entries = append(r.entries, vars)
	return r.status
}

func newTestLogger(t *testing.T, rec *recorder) *logrus.Logger {
	t.Helper()
	b, err := journal.New(journal.Config{SyslogIdentifier: "logtest"}, journal.WithSendFunc(rec.send))
	if err != nil {
		t.Fatalf("journal.New: %v", err)
	}
	logger := logrus.New()
	logger.Out = io.Discard
	logger.Level = logrus.TraceLevel
	logger.SetReportCaller(true)
	logger.AddHook(NewHook(b, ""))
	return logger
}

func TestHookFields(t *testing.T) {
	var rec recorder
	logger := newTestLogger(t, &rec)

	logger.WithError(errors.New("durutum")).
		WithFields(logrus.Fields{
			"field1":     "one",
			"count":      3,
			MessageIDKey: true,
			StackKey:     true,
		}).
		Error("My message")

	if len(rec.entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(rec.entries))
	}
	e := rec.entries[0]
	checks := map[string]string{
		"MESSAGE":           "My message",
		"PRIORITY":          "3",
		"CODE_FUNC":         "TestHookFields",
		"LOGGER":            "logrus",
		"SYSLOG_IDENTIFIER": "logtest",
		"FIELD1":            "one",
		"COUNT":             "3",
	}
	for k, v := range checks {
		if e[k] != v {
			t.Errorf("%s = %q, want %q", k, e[k], v)
		}
	}
	if !strings.HasSuffix(e["CODE_FILE"], "hook_test.go") {
		t.Errorf("CODE_FILE = %q", e["CODE_FILE"])
	}
	if len(e["MESSAGE_ID"]) != 32 {
		t.Errorf("MESSAGE_ID = %q", e["MESSAGE_ID"])
	}
	if !strings.Contains(e["TRACEBACK"], "durutum") {
		t.Errorf("TRACEBACK = %q", e["TRACEBACK"])
	}
	if first := strings.SplitN(e["STACK"], "\n", 2)[0]; strings.Contains(first, "sirupsen/logrus") {
		t.Errorf("STACK should start outside logrus, got %q", first)
	}
	if _, ok := e["ERROR"]; ok {
		t.Error("the error should become TRACEBACK, not a context field")
	}
}

func TestHookLevels(t *testing.T) {
	tests := []struct {
		level logrus.Level
		want  string
	}{
		{logrus.PanicLevel, "2"},
		{logrus.FatalLevel, "2"},
		{logrus.ErrorLevel, "3"},
		{logrus.WarnLevel, "4"},
		{logrus.InfoLevel, "6"},
		{logrus.DebugLevel, "7"},
		{logrus.TraceLevel, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var rec recorder
			b, _ := journal.New(journal.Config{}, journal.WithSendFunc(rec.send))
			hook := NewHook(b, "")
			entry := logrus.NewEntry(logrus.New())
			entry.Level = tt.level
			entry.Message = "m"
			if err := hook.Fire(entry); err != nil {
				t.Fatalf("Fire: %v", err)
			}
			if got := rec.entries[0]["PRIORITY"]; got != tt.want {
				t.Errorf("PRIORITY = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHookExplicitMessageIDAndLogger(t *testing.T) {
	var rec recorder
	logger := newTestLogger(t, &rec)

	logger.WithFields(logrus.Fields{
		MessageIDKey: "5fe4b6e1b0b84fa6a5a5ad2f8fbd2c4f",
		LoggerKey:    "billing",
	}).Info("charged")

	e := rec.entries[0]
	if e["MESSAGE_ID"] != "5fe4b6e1b0b84fa6a5a5ad2f8fbd2c4f" {
		t.Errorf("MESSAGE_ID = %q", e["MESSAGE_ID"])
	}
	if e["LOGGER"] != "billing" {
		t.Errorf("LOGGER = %q", e["LOGGER"])
	}
}

func TestHookFireReturnsDeliveryError(t *testing.T) {
	rec := recorder{status: 1}
	b, _ := journal.New(journal.Config{}, journal.WithSendFunc(rec.send))
	hook := NewHook(b, "")

	entry := logrus.NewEntry(logrus.New())
	entry.Message = "lost"
	if err := hook.Fire(entry); err != journal.ErrDeliveryFailed {
		t.Errorf("Fire() = %v, want ErrDeliveryFailed", err)
	}
}

func TestInit(t *testing.T) {
	var rec recorder

	t.Setenv("INVOCATION_ID", "")
	logger := logrus.New()
	if Init(logger, journal.DefaultConfig(), journal.WithSendFunc(rec.send)) {
		t.Fatal("Init should not attach without INVOCATION_ID")
	}
	if len(logger.Hooks[logrus.InfoLevel]) != 0 {
		t.Fatal("no hook expected")
	}

	t.Setenv("INVOCATION_ID", "abc")
	if !Init(logger, journal.DefaultConfig(), journal.WithSendFunc(rec.send)) {
		t.Fatal("Init should attach")
	}
	if len(logger.Hooks[logrus.InfoLevel]) != 1 {
		t.Fatalf("hooks = %v", logger.Hooks)
	}

	logger.Out = io.Discard
	logger.Info("hello")
	if len(rec.entries) != 1 || rec.entries[0]["MESSAGE"] != "hello" {
		t.Errorf("entries = %v", rec.entries)
	}
}

func TestInitUnknownBackend(t *testing.T) {
	t.Setenv("INVOCATION_ID", "abc")
	logger := logrus.New()
	logger.Out = io.Discard
	if Init(logger, journal.Config{Backend: "nope"}) {
		t.Fatal("Init should fail for an unknown backend")
	}
}

func TestHookCallerWithoutReportCaller(t *testing.T) {
	var rec recorder
	logger := newTestLogger(t, &rec)
	logger.SetReportCaller(false)

	_, file, line, _ := runtime.Caller(0)
	logger.WithField("k", "v").Info("hello")

	if len(rec.entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(rec.entries))
	}
	e := rec.entries[0]
	checks := map[string]string{
		"CODE_FILE":   file,
		"CODE_LINE":   strconv.Itoa(line + 1),
		"CODE_FUNC":   "TestHookCallerWithoutReportCaller",
		"CODE_MODULE": "github.com/baraverkstad/journald-logging/logrusjournal",
	}
	for k, v := range checks {
		if e[k] != v {
			t.Errorf("%s = %q, want %q", k, e[k], v)
		}
	}
}
