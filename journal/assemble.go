package journal

import (
	"sort"
	"strconv"
)

// Assemble builds the complete field set for one event. Caller context may
// override any derived field except PRIORITY and MESSAGE.
func Assemble(ev *Event, cfg Config) *Fields {
	ctx := ev.context()
	f := NewFields(16 + len(ctx))

	f.Set(FieldPriority, strconv.Itoa(int(MapPriority(ev.Level))))
	f.Merge(Enrich(ev, cfg.SyslogIdentifier))

	if id, ok := DeriveMessageID(ev.messageIDRequest(), ev.Message, ev.Level, ev.File, ev.Func); ok {
		f.Set(FieldMessageID, id)
	}

	if len(ctx) > 0 {
		keys := make([]string, 0, len(ctx))
		for k := range ctx {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			name := SanitizeFieldName(k)
			if name == "" || name == FieldPriority || name == FieldMessage {
				continue
			}
			f.Set(name, ctx[k])
		}
	}

	f.Set(FieldMessage, ev.Message)
	return f
}
