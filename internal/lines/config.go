// Package lines turns a stream of text lines into journal-ready messages:
// continuation lines are merged, leading timestamps stripped and a priority
// detected from JSON levels, sd-daemon prefixes or regex matchers.
package lines

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/baraverkstad/journald-logging/journal"
)

// Config holds parsed and validated line processing options.
type Config struct {
	// Multiline
	MultilineRegex    *regexp.Regexp // nil = disabled
	MultilineTimeout  time.Duration
	MultilineMaxLines int
	MultilineMaxBytes int
	MultilineSep      string

	// Priority
	PriorityPrefix   bool
	PriorityDefault  journal.Priority
	PriorityMatchers []priorityMatcher // ordered emerg..debug

	// Timestamp stripping
	StripTimestamp         bool
	StripTimestampPatterns []*regexp.Regexp

	// JSON lines
	ParseJSON       bool
	JSONLevelKeys   []string
	JSONMessageKeys []string
}

type priorityMatcher struct {
	Priority journal.Priority
	Regex    *regexp.Regexp
}

var knownOpts = map[string]bool{
	"multiline-regex":     true,
	"multiline-timeout":   true,
	"multiline-max-lines": true,
	"multiline-max-bytes": true,
	"multiline-separator": true,

	"priority-prefix":        true,
	"priority-default":       true,
	"priority-match-emerg":   true,
	"priority-match-alert":   true,
	"priority-match-crit":    true,
	"priority-match-err":     true,
	"priority-match-warning": true,
	"priority-match-notice":  true,
	"priority-match-info":    true,
	"priority-match-debug":   true,

	"strip-timestamp":       true,
	"strip-timestamp-regex": true,

	"parse-json":        true,
	"json-level-keys":   true,
	"json-message-keys": true,
}

// ParseConfig validates and parses a map of line option key/value pairs.
func ParseConfig(opts map[string]string) (*Config, error) {
	for key := range opts {
		if !knownOpts[key] {
			return nil, errors.Errorf("unknown line option %q", key)
		}
	}

	cfg := &Config{
		MultilineTimeout:  10 * time.Millisecond,
		MultilineMaxLines: 100,
		MultilineMaxBytes: 1048576,
		MultilineSep:      "\n",
		PriorityPrefix:    true,
		PriorityDefault:   journal.PriInfo,
		JSONLevelKeys:     []string{"level", "severity", "log_level"},
		JSONMessageKeys:   []string{"message", "msg", "log"},
	}

	if v, ok := opts["multiline-regex"]; ok {
		if v != "" {
			r, err := regexp.Compile(v)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid multiline-regex %q", v)
			}
			cfg.MultilineRegex = r
		}
	} else {
		// lines starting with whitespace are continuations
		cfg.MultilineRegex = regexp.MustCompile(`^\s`)
	}

	if v, ok := opts["multiline-timeout"]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid multiline-timeout %q", v)
		}
		if d <= 0 {
			return nil, errors.Errorf("multiline-timeout must be positive, got %v", d)
		}
		cfg.MultilineTimeout = d
	}

	var err error
	if cfg.MultilineMaxLines, err = positiveInt(opts, "multiline-max-lines", cfg.MultilineMaxLines); err != nil {
		return nil, err
	}
	if cfg.MultilineMaxBytes, err = positiveInt(opts, "multiline-max-bytes", cfg.MultilineMaxBytes); err != nil {
		return nil, err
	}
	if v, ok := opts["multiline-separator"]; ok {
		cfg.MultilineSep = v
	}

	if cfg.PriorityPrefix, err = boolOpt(opts, "priority-prefix", cfg.PriorityPrefix); err != nil {
		return nil, err
	}
	if v, ok := opts["priority-default"]; ok {
		p, err := journal.ParsePriorityName(v)
		if err != nil {
			return nil, errors.Wrap(err, "invalid priority-default")
		}
		cfg.PriorityDefault = p
	}
	for p := journal.PriEmerg; p <= journal.PriDebug; p++ {
		opt := "priority-match-" + priorityNames[p]
		v, ok := opts[opt]
		if !ok {
			v = defaultPriorityMatchers[p]
		}
		if v != "" {
			r, err := regexp.Compile(v)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid %s %q", opt, v)
			}
			cfg.PriorityMatchers = append(cfg.PriorityMatchers, priorityMatcher{Priority: p, Regex: r})
		}
	}

	if cfg.StripTimestamp, err = boolOpt(opts, "strip-timestamp", false); err != nil {
		return nil, err
	}
	if cfg.StripTimestamp {
		patterns := defaultTimestampPatterns
		if v, ok := opts["strip-timestamp-regex"]; ok && v != "" {
			patterns = append([]string{v}, patterns...)
		}
		if cfg.StripTimestampPatterns, err = compileTimestampPatterns(patterns); err != nil {
			return nil, errors.Wrap(err, "invalid strip-timestamp-regex")
		}
	}

	if cfg.ParseJSON, err = boolOpt(opts, "parse-json", false); err != nil {
		return nil, err
	}
	if v, ok := opts["json-level-keys"]; ok && v != "" {
		cfg.JSONLevelKeys = splitList(v)
	}
	if v, ok := opts["json-message-keys"]; ok && v != "" {
		cfg.JSONMessageKeys = splitList(v)
	}

	return cfg, nil
}

// defaultPriorityMatchers apply unless the option is given; an empty value
// disables one.
var defaultPriorityMatchers = map[journal.Priority]string{
	journal.PriCrit:    `(?i)^\[?(crit|critical)\b`,
	journal.PriErr:     `(?i)^\[?(err|error|fatal)\b`,
	journal.PriWarning: `(?i)^\[?(warn|warning)\b`,
	journal.PriNotice:  `(?i)^\[?(note|notice)\b`,
	journal.PriDebug:   `(?i)^\[?(debug|trace)\b`,
}

// priorityNames are the option suffixes, indexed by priority.
var priorityNames = [...]string{"emerg", "alert", "crit", "err", "warning", "notice", "info", "debug"}

func positiveInt(opts map[string]string, key string, def int) (int, error) {
	v, ok := opts[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, errors.Errorf("invalid %s %q: must be a positive integer", key, v)
	}
	return n, nil
}

func boolOpt(opts map[string]string, key string, def bool) (bool, error) {
	v, ok := opts[key]
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Errorf("invalid %s %q: must be true or false", key, v)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
