package lines

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/baraverkstad/journald-logging/journal"
)

// JSONLine is a line that parsed as a JSON object.
type JSONLine struct {
	Level   string
	Message string
	Fields  map[string]string // remaining top-level members
}

// ParseJSON parses line as a JSON object with a string message under one of
// cfg.JSONMessageKeys. Nested values are kept as raw JSON text, nulls are
// dropped.
func ParseJSON(cfg *Config, line []byte) (*JSONLine, bool) {
	if !cfg.ParseJSON || len(line) == 0 || !gjson.ValidBytes(line) {
		return nil, false
	}
	obj := gjson.ParseBytes(line)
	if !obj.IsObject() {
		return nil, false
	}

	res := &JSONLine{Fields: map[string]string{}}
	levelKey := firstString(obj, cfg.JSONLevelKeys, &res.Level)
	msgKey := firstString(obj, cfg.JSONMessageKeys, &res.Message)
	if res.Message == "" {
		return nil, false
	}

	obj.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if k == levelKey || k == msgKey {
			return true
		}
		switch value.Type {
		case gjson.Null:
		case gjson.JSON:
			res.Fields[k] = value.Raw
		default:
			res.Fields[k] = value.String()
		}
		return true
	})
	return res, true
}

func firstString(obj gjson.Result, keys []string, dst *string) string {
	for _, k := range keys {
		v := obj.Get(gjson.Escape(k))
		if v.Type == gjson.String {
			*dst = v.Str
			return k
		}
	}
	return ""
}

// JSONLevelToPriority maps a JSON level string to a journal priority.
func JSONLevelToPriority(level string) (journal.Priority, bool) {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return journal.PriDebug, true
	case "info", "information":
		return journal.PriInfo, true
	case "notice":
		return journal.PriNotice, true
	case "warn", "warning":
		return journal.PriWarning, true
	case "error", "err":
		return journal.PriErr, true
	case "fatal", "critical", "crit":
		return journal.PriCrit, true
	case "panic", "alert":
		return journal.PriAlert, true
	case "emerg", "emergency":
		return journal.PriEmerg, true
	default:
		return 0, false
	}
}
