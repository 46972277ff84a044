package lines

import (
	"bytes"
	"sync"
	"time"
)

// Merged is a complete message after continuation lines were joined.
type Merged struct {
	Line []byte
	Time time.Time // arrival of the first line
}

// Merger buffers and joins consecutive continuation lines. A buffered
// message is emitted when a new message starts, a limit is hit, the timeout
// passes without input, or Flush is called.
type Merger struct {
	cfg    *Config
	output func(Merged)

	mu        sync.Mutex
	buf       bytes.Buffer
	lineCount int
	first     time.Time
	timer     *time.Timer
	hasData   bool
}

// NewMerger creates a merger calling output for every complete message.
// output may be called from the timer goroutine; calls never overlap.
func NewMerger(cfg *Config, output func(Merged)) *Merger {
	return &Merger{cfg: cfg, output: output}
}

// AddLine processes a single line. The line is copied.
func (m *Merger) AddLine(line []byte, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MultilineRegex == nil {
		m.output(Merged{Line: append([]byte(nil), line...), Time: at})
		return
	}

	cont := m.cfg.MultilineRegex.Match(line)
	switch {
	case !cont || !m.hasData:
		m.flushLocked()
	case m.lineCount >= m.cfg.MultilineMaxLines,
		m.buf.Len()+len(m.cfg.MultilineSep)+len(line) > m.cfg.MultilineMaxBytes:
		m.flushLocked()
	default:
		m.buf.WriteString(m.cfg.MultilineSep)
		m.buf.Write(line)
		m.lineCount++
		m.resetTimerLocked()
		return
	}

	m.buf.Write(line)
	m.lineCount = 1
	m.first = at
	m.hasData = true
	m.resetTimerLocked()
}

// Flush emits any buffered content.
func (m *Merger) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushLocked()
}

func (m *Merger) flushLocked() {
	if !m.hasData {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	msg := Merged{Line: make([]byte, m.buf.Len()), Time: m.first}
	copy(msg.Line, m.buf.Bytes())

	m.buf.Reset()
	m.lineCount = 0
	m.hasData = false

	m.output(msg)
}

func (m *Merger) resetTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.cfg.MultilineTimeout, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.flushLocked()
	})
}
