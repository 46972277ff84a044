package journal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ErrorHandler receives failures of the bridge. It is the equivalent of a
// logging framework's "handler failed" hook.
type ErrorHandler func(err error, ev *Event)

// errorReporter rate-limits error output to prevent log floods.
// Logs at most 1 error per interval; suppressed errors are counted.
type errorReporter struct {
	out      io.Writer
	interval time.Duration

	mu             sync.Mutex
	lastErrLog     time.Time
	suppressedErrs int
}

func newErrorReporter(out io.Writer) *errorReporter {
	return &errorReporter{out: out, interval: time.Minute}
}

// StderrErrorHandler returns the default ErrorHandler: it writes to stderr,
// at most once per minute.
func StderrErrorHandler() ErrorHandler {
	return newErrorReporter(os.Stderr).report
}

func (r *errorReporter) report(err error, ev *Event) {
	if ev != nil && ev.Logger != "" {
		r.logError("logger %s: %v", ev.Logger, err)
		return
	}
	r.logError("%v", err)
}

func (r *errorReporter) logError(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(r.lastErrLog)

	if elapsed >= r.interval {
		if r.suppressedErrs > 0 {
			fmt.Fprintf(r.out, "journald-logging: suppressed %d errors in last %v\n",
				r.suppressedErrs, elapsed.Round(time.Second))
			r.suppressedErrs = 0
		}
		fmt.Fprintf(r.out, "journald-logging: "+format+"\n", args...)
		r.lastErrLog = now
	} else {
		r.suppressedErrs++
	}
}
