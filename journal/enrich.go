package journal

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// Enrich produces the diagnostic fields describing where and in which
// execution context an event was emitted.
func Enrich(ev *Event, syslogIdentifier string) *Fields {
	f := NewFields(12)

	f.Set(FieldCodeFile, ev.File)
	f.Set(FieldCodeLine, strconv.Itoa(ev.Line))
	f.Set(FieldCodeFunc, ev.Func)
	f.Set(FieldCodeModule, ev.Module)
	f.Set(FieldLogger, ev.Logger)
	f.Set(FieldThreadID, strconv.FormatUint(ev.ThreadID, 10))
	f.Set(FieldThreadName, ev.ThreadName)
	f.Set(FieldProcessName, ev.ProcessName)
	if ev.ProcessID != 0 {
		f.Set(FieldProcessID, strconv.Itoa(ev.ProcessID))
	}

	if ev.Err != nil {
		f.Set(FieldTraceback, FormatTraceback(ev.Err))
	}
	if ev.Stack != "" {
		f.Set(FieldStack, ev.Stack)
	}
	if syslogIdentifier != "" {
		f.Set(FieldSyslogIdentifier, syslogIdentifier)
	}
	return f
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// FormatTraceback renders an error as "<type>: <message>", naming the type of
// the root cause. Errors carrying a pkg/errors stack trace get the detailed
// rendering appended.
func FormatTraceback(err error) string {
	cause := errors.Cause(err)
	s := fmt.Sprintf("%T: %s", cause, err.Error())
	if _, ok := err.(stackTracer); ok {
		s += "\n" + fmt.Sprintf("%+v", err)
	} else if _, ok := cause.(stackTracer); ok {
		s += "\n" + fmt.Sprintf("%+v", cause)
	}
	return s
}
