package journal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/process"
)

// Caller describes a source location.
type Caller struct {
	File   string
	Line   int
	Func   string // function name without the package path
	Module string // package import path
}

// CallerFromPC resolves a program counter, as found in slog.Record.PC.
func CallerFromPC(pc uintptr) Caller {
	if pc == 0 {
		return Caller{}
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	frame, _ := frames.Next()
	return CallerFromFrame(frame.File, frame.Line, frame.Function)
}

// CallerFromFrame splits a fully qualified function name such as
// "github.com/x/y.(*T).M" into package path and function name.
func CallerFromFrame(file string, line int, function string) Caller {
	module, fn := splitFuncName(function)
	return Caller{File: file, Line: line, Func: fn, Module: module}
}

func splitFuncName(function string) (module, fn string) {
	if function == "" {
		return "", ""
	}
	slash := strings.LastIndex(function, "/")
	dot := strings.Index(function[slash+1:], ".")
	if dot < 0 {
		return "", function
	}
	dot += slash + 1
	return function[:dot], function[dot+1:]
}

// Apply copies the location onto ev.
func (c Caller) Apply(ev *Event) {
	ev.File = c.File
	ev.Line = c.Line
	ev.Func = c.Func
	ev.Module = c.Module
}

// CaptureStack renders the calling goroutine's stack, skipping skip frames
// above the caller of CaptureStack. Each frame is "func\n\tfile:line".
func CaptureStack(skip int) string {
	return captureStack(skip+1, nil)
}

// CaptureStackOutside is like CaptureStack(0) but also drops the leading
// frames whose function starts with one of the given package prefixes. Hooks
// called from inside a logging library use it to start at the call site.
func CaptureStackOutside(prefixes ...string) string {
	return captureStack(1, prefixes)
}

// CallerOutside returns the first calling frame whose function does not
// start with one of the given package prefixes, for hooks that run inside a
// logging library that did not record the call site itself.
func CallerOutside(prefixes ...string) Caller {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	if n == 0 {
		return Caller{}
	}
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !hasAnyPrefix(frame.Function, prefixes) {
			return CallerFromFrame(frame.File, frame.Line, frame.Function)
		}
		if !more {
			return Caller{}
		}
	}
}

func captureStack(skip int, prefixes []string) string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var b strings.Builder
	leading := len(prefixes) > 0
	for {
		frame, more := frames.Next()
		if leading && hasAnyPrefix(frame.Function, prefixes) {
			if !more {
				break
			}
			continue
		}
		leading = false
		if frame.Function != "" {
			fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return b.String()
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

var goroutinePrefix = []byte("goroutine ")

// GoroutineID returns the id of the calling goroutine, or 0 if it cannot be
// determined.
func GoroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// ThreadName is the THREAD_NAME used for a goroutine.
func ThreadName(id uint64) string {
	return "goroutine-" + strconv.FormatUint(id, 10)
}

var (
	processOnce sync.Once
	processName string
)

// ProcessName returns the name of the current process, resolved once.
func ProcessName() string {
	processOnce.Do(func() {
		if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
			if name, err := p.Name(); err == nil && name != "" {
				processName = name
				return
			}
		}
		if len(os.Args) > 0 {
			processName = filepath.Base(os.Args[0])
		}
	})
	return processName
}

// FillRuntime sets the goroutine and process identity of ev from the
// calling goroutine.
func FillRuntime(ev *Event) {
	ev.ThreadID = GoroutineID()
	ev.ThreadName = ThreadName(ev.ThreadID)
	ev.ProcessID = os.Getpid()
	ev.ProcessName = ProcessName()
}
