package journal

// Standard journal field names.
const (
	FieldMessage          = "MESSAGE"
	FieldPriority         = "PRIORITY"
	FieldMessageID        = "MESSAGE_ID"
	FieldCodeFile         = "CODE_FILE"
	FieldCodeLine         = "CODE_LINE"
	FieldCodeFunc         = "CODE_FUNC"
	FieldCodeModule       = "CODE_MODULE"
	FieldLogger           = "LOGGER"
	FieldThreadID         = "THREAD_ID"
	FieldThreadName       = "THREAD_NAME"
	FieldProcessName      = "PROCESS_NAME"
	FieldProcessID        = "PROCESS_ID"
	FieldSyslogIdentifier = "SYSLOG_IDENTIFIER"
	FieldTraceback        = "TRACEBACK"
	FieldStack            = "STACK"
)

// Fields is an ordered journal field mapping. Setting an existing key
// replaces its value and keeps its original position.
type Fields struct {
	keys   []string
	values map[string]string
}

// NewFields returns an empty mapping with room for n entries.
func NewFields(n int) *Fields {
	return &Fields{
		keys:   make([]string, 0, n),
		values: make(map[string]string, n),
	}
}

// Set assigns a value, last write wins.
func (f *Fields) Set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value for key.
func (f *Fields) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	return len(f.keys)
}

// Keys returns the field names in insertion order.
func (f *Fields) Keys() []string {
	return append([]string(nil), f.keys...)
}

// Merge copies every field of other into f.
func (f *Fields) Merge(other *Fields) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		f.Set(k, other.values[k])
	}
}

// Map returns a plain map copy.
func (f *Fields) Map() map[string]string {
	m := make(map[string]string, len(f.keys))
	for _, k := range f.keys {
		m[k] = f.values[k]
	}
	return m
}

// maxFieldName is journald's limit on field name length.
const maxFieldName = 64

// SanitizeFieldName maps a context key onto journal field syntax: uppercase
// ASCII letters, digits and underscores, starting with a letter. Leading
// underscores are removed since journald reserves them for trusted fields,
// and a leading digit gets an "X" prefix. Returns "" when nothing usable
// remains.
func SanitizeFieldName(name string) string {
	b := make([]byte, 0, len(name)+1)
	for _, r := range name {
		var c byte
		switch {
		case r >= 'a' && r <= 'z':
			c = byte(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			c = byte(r)
		default:
			c = '_'
		}
		if c == '_' && len(b) == 0 {
			continue
		}
		b = append(b, c)
	}
	if len(b) > 0 && b[0] >= '0' && b[0] <= '9' {
		b = append([]byte{'X'}, b...)
	}
	if len(b) > maxFieldName {
		b = b[:maxFieldName]
	}
	return string(b)
}
