package journal

import (
	"strings"

	"github.com/pkg/errors"
)

// Priority represents a syslog/journal priority level.
type Priority int

const (
	PriEmerg   Priority = 0
	PriAlert   Priority = 1
	PriCrit    Priority = 2
	PriErr     Priority = 3
	PriWarning Priority = 4
	PriNotice  Priority = 5
	PriInfo    Priority = 6
	PriDebug   Priority = 7
)

var priorityNames = map[string]Priority{
	"emerg":   PriEmerg,
	"alert":   PriAlert,
	"crit":    PriCrit,
	"err":     PriErr,
	"warning": PriWarning,
	"notice":  PriNotice,
	"info":    PriInfo,
	"debug":   PriDebug,
}

// Level is a host severity level. The named levels share log/slog's numbering
// so a slog.Level converts directly.
type Level int

const (
	LevelDebug    Level = -4
	LevelInfo     Level = 0
	LevelWarning  Level = 4
	LevelError    Level = 8
	LevelCritical Level = 12
)

var levelPriorities = map[Level]Priority{
	LevelCritical: PriCrit,
	LevelError:    PriErr,
	LevelWarning:  PriWarning,
	LevelInfo:     PriInfo,
	LevelDebug:    PriDebug,
}

// MapPriority returns the journal priority for a level. Levels outside the
// table are passed through as their own numeric value, so an intermediate
// slog level such as 2 lands on PRIORITY=2 (crit) and a negative level gives
// a negative priority. Adapters should convert their levels to the named
// ones first.
func MapPriority(level Level) Priority {
	if p, ok := levelPriorities[level]; ok {
		return p
	}
	return Priority(level)
}

// LevelForPriority is the inverse used by line-oriented inputs that detect a
// priority first. Alert and notice have no named level and travel as raw
// levels, which MapPriority passes through unchanged. Emerg cannot be
// expressed and becomes critical.
func LevelForPriority(p Priority) Level {
	switch p {
	case PriEmerg, PriCrit:
		return LevelCritical
	case PriErr:
		return LevelError
	case PriWarning:
		return LevelWarning
	case PriInfo:
		return LevelInfo
	case PriDebug:
		return LevelDebug
	default:
		return Level(p)
	}
}

// ParsePriorityName parses a syslog priority name such as "err" or "warning".
func ParsePriorityName(s string) (Priority, error) {
	p, ok := priorityNames[strings.ToLower(s)]
	if !ok {
		return 0, errors.Errorf("unknown priority %q (valid: emerg, alert, crit, err, warning, notice, info, debug)", s)
	}
	return p, nil
}
