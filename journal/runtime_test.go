package journal

import (
	"runtime"
	"strconv"
	"strings"
	"testing"
)

func TestCallerFromFrame(t *testing.T) {
	tests := []struct {
		function   string
		wantModule string
		wantFunc   string
	}{
		{"main.raiseme", "main", "raiseme"},
		{"github.com/acme/app/db.(*Pool).Get", "github.com/acme/app/db", "(*Pool).Get"},
		{"github.com/acme/app.Run.func1", "github.com/acme/app", "Run.func1"},
		{"", "", ""},
	}
	for _, tt := range tests {
		c := CallerFromFrame("/src/x.go", 3, tt.function)
		if c.Module != tt.wantModule || c.Func != tt.wantFunc {
			t.Errorf("CallerFromFrame(%q) = %q, %q; want %q, %q",
				tt.function, c.Module, c.Func, tt.wantModule, tt.wantFunc)
		}
	}
}

func TestCallerFromPC(t *testing.T) {
	var pcs [1]uintptr
	runtime.Callers(1, pcs[:])
	c := CallerFromPC(pcs[0])
	if !strings.HasSuffix(c.File, "runtime_test.go") || c.Line == 0 {
		t.Errorf("caller = %s:%d", c.File, c.Line)
	}
	if c.Func != "TestCallerFromPC" {
		t.Errorf("Func = %q", c.Func)
	}
	if !strings.HasSuffix(c.Module, "/journal") {
		t.Errorf("Module = %q", c.Module)
	}

	if (CallerFromPC(0) != Caller{}) {
		t.Error("zero pc should give an empty caller")
	}
}

func TestCaptureStackStartsAtCaller(t *testing.T) {
	_, file, line, _ := runtime.Caller(0)
	stack := CaptureStack(0) // must stay on the line after runtime.Caller
	first := strings.SplitN(stack, "\n", 3)
	if len(first) < 2 {
		t.Fatalf("stack too short: %q", stack)
	}
	if !strings.HasSuffix(first[0], "TestCaptureStackStartsAtCaller") {
		t.Errorf("first frame = %q", first[0])
	}
	want := file + ":" + strconv.Itoa(line+1)
	if strings.TrimSpace(first[1]) != want {
		t.Errorf("first location = %q, want %q", first[1], want)
	}
}

func TestGoroutineID(t *testing.T) {
	self := GoroutineID()
	if self == 0 {
		t.Fatal("GoroutineID returned 0")
	}
	ch := make(chan uint64)
	go func() { ch <- GoroutineID() }()
	if other := <-ch; other == self || other == 0 {
		t.Errorf("goroutine ids %d and %d should differ and be non-zero", self, other)
	}
	if ThreadName(12) != "goroutine-12" {
		t.Errorf("ThreadName = %q", ThreadName(12))
	}
}

func TestFillRuntime(t *testing.T) {
	var ev Event
	FillRuntime(&ev)
	if ev.ThreadID == 0 || ev.ProcessID == 0 || ev.ProcessName == "" {
		t.Errorf("runtime identity incomplete: %+v", ev)
	}
}

func stackFromHelper() string {
	return CaptureStackOutside("github.com/baraverkstad/journald-logging/journal.stackFromHelper")
}

func TestCaptureStackOutside(t *testing.T) {
	stack := stackFromHelper()
	first := strings.SplitN(stack, "\n", 2)[0]
	if !strings.HasSuffix(first, "TestCaptureStackOutside") {
		t.Errorf("first frame = %q, want the helper's caller", first)
	}
	if strings.Contains(stack, "stackFromHelper") {
		t.Errorf("helper frame should be dropped: %q", stack)
	}
}

func callerFromHelper() Caller {
	return CallerOutside("github.com/baraverkstad/journald-logging/journal.callerFromHelper")
}

func TestCallerOutside(t *testing.T) {
	_, file, line, _ := runtime.Caller(0)
	c := callerFromHelper()
	if c.Func != "TestCallerOutside" || c.File != file || c.Line != line+1 {
		t.Errorf("CallerOutside = %+v, want TestCallerOutside at %s:%d", c, file, line+1)
	}
	if c.Module != "github.com/baraverkstad/journald-logging/journal" {
		t.Errorf("Module = %q", c.Module)
	}
}
