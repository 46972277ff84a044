package journal

import (
	"fmt"
	"io"
	"os"
	"sync"

	systemd "github.com/coreos/go-systemd/v22/journal"
	"github.com/pkg/errors"
	"github.com/ssgreg/journald"
)

// Native backends.
const (
	BackendGoSystemd = "go-systemd"
	BackendSsgreg    = "ssgreg"
)

type backend struct {
	available func() bool
	send      SendFunc
	once      sync.Once
	ok        bool
}

var backends = map[string]*backend{
	BackendGoSystemd: {available: systemd.Enabled, send: goSystemdSend},
	BackendSsgreg:    {available: func() bool { return !journald.IsNotExist() }, send: ssgregSend},
}

// diagOut receives the one-time availability warning.
var diagOut io.Writer = os.Stderr

// ResolveSendFunc returns the send primitive for a backend. Availability is
// checked once per process; an unreachable journal yields nil and a single
// warning on stderr.
func ResolveSendFunc(name string) (SendFunc, error) {
	if name == "" {
		name = BackendGoSystemd
	}
	b, ok := backends[name]
	if !ok {
		return nil, errors.Errorf("unknown backend %q (valid: %s, %s)", name, BackendGoSystemd, BackendSsgreg)
	}
	b.once.Do(func() {
		b.ok = b.available()
		if !b.ok {
			fmt.Fprintf(diagOut, "journald-logging: warning: systemd journal does not appear to be available\n")
		}
	})
	if !b.ok {
		return nil, nil
	}
	return b.send, nil
}

// goSystemdSend writes an entry via the native socket using go-systemd.
func goSystemdSend(args [][]byte) int {
	msg, pri, vars, err := DecodeArgs(args)
	if err != nil {
		return -1
	}
	if err := systemd.Send(msg, systemd.Priority(pri), vars); err != nil {
		return -1
	}
	return 0
}

// ssgregSend writes an entry with ssgreg/journald, which spills entries too
// large for one datagram into a passed file descriptor.
func ssgregSend(args [][]byte) int {
	msg, pri, vars, err := DecodeArgs(args)
	if err != nil {
		return -1
	}
	fields := make(map[string]interface{}, len(vars))
	for k, v := range vars {
		fields[k] = v
	}
	if err := journald.Send(msg, journald.Priority(pri), fields); err != nil {
		return -1
	}
	return 0
}
