// Package journal translates log events into systemd journal entries.
//
// An Event is assembled into an ordered field set (PRIORITY, CODE_*,
// LOGGER, THREAD_*, PROCESS_*, optional TRACEBACK, STACK, SYSLOG_IDENTIFIER
// and MESSAGE_ID, caller context, and finally MESSAGE) and handed to a
// native send primitive as a message data argument followed by KEY=value
// buffers and a nil sentinel.
//
// Host logging frameworks are wired in by the slogjournal, logrusjournal and
// zapjournal packages. Each checks once whether the process runs under
// systemd (see Attached) and only then installs the bridge.
//
// The bridge never panics into the caller. Delivery is best effort: a
// failure is reported through an ErrorHandler, or returned by Send for hosts
// that have their own hook error channel.
package journal
