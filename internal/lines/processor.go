package lines

import (
	"time"

	"github.com/baraverkstad/journald-logging/journal"
)

// Message is one processed message ready for the journal.
type Message struct {
	Text     string
	Priority journal.Priority
	Time     time.Time
	Fields   map[string]string // JSON_* fields from a JSON line
}

// Processor runs lines through merging, JSON parsing, timestamp stripping
// and priority detection.
type Processor struct {
	cfg    *Config
	merger *Merger
}

// NewProcessor creates a processor calling out for every finished message.
func NewProcessor(cfg *Config, out func(Message)) *Processor {
	p := &Processor{cfg: cfg}
	p.merger = NewMerger(cfg, func(m Merged) {
		out(p.process(m))
	})
	return p
}

// Add feeds one input line, without its line terminator.
func (p *Processor) Add(line []byte) {
	p.merger.AddLine(line, time.Now())
}

// Flush emits the message still being merged, if any.
func (p *Processor) Flush() {
	p.merger.Flush()
}

func (p *Processor) process(m Merged) Message {
	line := m.Line
	msg := Message{Time: m.Time}
	detected := false

	if parsed, ok := ParseJSON(p.cfg, line); ok {
		line = []byte(parsed.Message)
		if len(parsed.Fields) > 0 {
			msg.Fields = make(map[string]string, len(parsed.Fields))
			for k, v := range parsed.Fields {
				msg.Fields["JSON_"+journal.SanitizeFieldName(k)] = v
			}
		}
		if pri, ok := JSONLevelToPriority(parsed.Level); ok {
			msg.Priority = pri
			detected = true
		}
	}

	// before priority detection so that ^ERROR matchers see the level word
	if p.cfg.StripTimestamp {
		line = StripTimestamp(line, p.cfg.StripTimestampPatterns)
	}

	if !detected {
		msg.Priority, line = DetectPriority(p.cfg, line)
	}
	msg.Text = string(line)
	return msg
}
