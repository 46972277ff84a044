package journal

// Event describes one log record as handed over by a host logging framework.
// The core never modifies it.
type Event struct {
	Level   Level
	Message string // rendered text, never used as a format string

	Err   error  // exception info, rendered into TRACEBACK
	Stack string // stack text, rendered into STACK

	File   string
	Line   int
	Func   string
	Module string
	Logger string

	ThreadID    uint64
	ThreadName  string
	ProcessID   int
	ProcessName string

	Extra *Extra
}

// Extra carries the optional per-event extension.
type Extra struct {
	MessageID MessageIDRequest
	Context   map[string]string
}

// MessageIDRequest asks for a MESSAGE_ID field. An explicit ID is used
// verbatim; Auto derives a stable one from the event.
type MessageIDRequest struct {
	ID   string
	Auto bool
}

// Requested reports whether the request asks for any identifier at all.
func (r MessageIDRequest) Requested() bool {
	return r.ID != "" || r.Auto
}

func (ev *Event) messageIDRequest() MessageIDRequest {
	if ev.Extra == nil {
		return MessageIDRequest{}
	}
	return ev.Extra.MessageID
}

func (ev *Event) context() map[string]string {
	if ev.Extra == nil {
		return nil
	}
	return ev.Extra.Context
}
