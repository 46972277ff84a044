package journal

import (
	"bytes"
	"strconv"

	"github.com/pkg/errors"
)

// SendFunc is the native send primitive. args[0] is the message as an opaque
// data argument, followed by one KEY=value buffer per field and a nil
// sentinel. It returns 0 on success.
type SendFunc func(args [][]byte) int

// Transport delivers an assembled field set.
type Transport interface {
	Deliver(fields *Fields) bool
}

// NewTransport returns a transport calling send, or the stub transport when
// send is nil.
func NewTransport(send SendFunc) Transport {
	if send == nil {
		return stubTransport{}
	}
	return &nativeTransport{send: send}
}

type nativeTransport struct {
	send SendFunc
}

func (t *nativeTransport) Deliver(fields *Fields) bool {
	return t.send(EncodeArgs(fields)) == 0
}

// stubTransport stands in when no journal is reachable.
type stubTransport struct{}

func (stubTransport) Deliver(*Fields) bool { return false }

// EncodeArgs lays out the argument list for a SendFunc. MESSAGE is never
// encoded as a KEY=value buffer; it travels as the leading data argument.
func EncodeArgs(fields *Fields) [][]byte {
	msg, _ := fields.Get(FieldMessage)
	args := make([][]byte, 0, fields.Len()+1)
	args = append(args, []byte(msg))
	for _, k := range fields.keys {
		if k == FieldMessage {
			continue
		}
		v := fields.values[k]
		buf := make([]byte, 0, len(k)+1+len(v))
		buf = append(buf, k...)
		buf = append(buf, '=')
		buf = append(buf, v...)
		args = append(args, buf)
	}
	return append(args, nil)
}

// DecodeArgs splits a SendFunc argument list back into the message, the
// priority and the remaining fields. Decoding stops at the nil sentinel.
func DecodeArgs(args [][]byte) (msg string, pri Priority, vars map[string]string, err error) {
	if len(args) == 0 || args[0] == nil {
		return "", 0, nil, errors.New("missing message argument")
	}
	msg = string(args[0])
	pri = PriInfo
	vars = make(map[string]string, len(args))
	terminated := false
	for _, a := range args[1:] {
		if a == nil {
			terminated = true
			break
		}
		k, v, ok := bytes.Cut(a, []byte{'='})
		if !ok || len(k) == 0 {
			return "", 0, nil, errors.Errorf("malformed field %q", a)
		}
		if string(k) == FieldPriority {
			n, err := strconv.Atoi(string(v))
			if err != nil {
				return "", 0, nil, errors.Wrapf(err, "invalid %s %q", FieldPriority, v)
			}
			pri = Priority(n)
			continue
		}
		vars[string(k)] = string(v)
	}
	if !terminated {
		return "", 0, nil, errors.New("argument list not terminated")
	}
	return msg, pri, vars, nil
}
