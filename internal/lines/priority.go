package lines

import (
	"regexp"

	"github.com/baraverkstad/journald-logging/journal"
)

var sdDaemonPrefix = regexp.MustCompile(`^<([0-7])>`)

// DetectPriority determines the journal priority for a message and returns
// the (possibly stripped) message. It checks in order:
// 1. sd-daemon <N> prefix (if enabled)
// 2. priority-match-* regex patterns (first match wins)
// 3. the configured default
func DetectPriority(cfg *Config, line []byte) (journal.Priority, []byte) {
	if cfg.PriorityPrefix {
		if loc := sdDaemonPrefix.FindSubmatchIndex(line); loc != nil {
			n := line[loc[2]] - '0'
			return journal.Priority(n), line[loc[1]:]
		}
	}

	for _, m := range cfg.PriorityMatchers {
		if m.Regex.Match(line) {
			return m.Priority, line
		}
	}

	return cfg.PriorityDefault, line
}
