// Package ingest accepts log records over HTTP on a unix socket and writes
// them to the journal, for processes that cannot link a logging adapter.
package ingest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/docker/go-plugins-helpers/sdk"
	"github.com/pkg/errors"

	"github.com/baraverkstad/journald-logging/journal"
)

// Manifest is the activation response of the ingest socket.
const Manifest = `{"Implements": ["Journal"]}`

// Server handles ingest requests.
type Server struct {
	bridge *journal.Bridge
}

// New creates a server delivering through b.
func New(b *journal.Bridge) *Server {
	return &Server{bridge: b}
}

// RegisterHandlers wires up the HTTP endpoints on the plugin handler.
func (s *Server) RegisterHandlers(h sdk.Handler) {
	h.HandleFunc("/Journal.Log", s.handleLog)
	h.HandleFunc("/Journal.Capabilities", s.handleCapabilities)
}

// ListenAndServe serves the endpoints on a unix socket. A bare name is
// created under /run/docker/plugins, an absolute path is used as is.
func (s *Server) ListenAndServe(socket string) error {
	h := sdk.NewHandler(Manifest)
	s.RegisterHandlers(h)
	return h.ServeUnix(socket, 0)
}

// LogRequest is one record to write.
type LogRequest struct {
	Level         string            `json:"level"`
	Message       string            `json:"message"`
	Logger        string            `json:"logger"`
	MessageID     string            `json:"message_id"`
	AutoMessageID bool              `json:"auto_message_id"`
	Context       map[string]string `json:"context"`
}

// CapabilitiesResponse lists the accepted level names.
type CapabilitiesResponse struct {
	Levels []string `json:"Levels"`
	Err    string   `json:"Err"`
}

type errResponse struct {
	Err string `json:"Err"`
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	var req LogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, errors.Wrap(err, "decoding request"))
		return
	}
	level, err := ParseLevel(req.Level)
	if err != nil {
		respondErr(w, err)
		return
	}

	ev := &journal.Event{
		Level:   level,
		Message: req.Message,
		Logger:  req.Logger,
	}
	if ev.Logger == "" {
		ev.Logger = "ingest"
	}
	journal.FillRuntime(ev)
	mid := journal.MessageIDRequest{ID: req.MessageID, Auto: req.AutoMessageID}
	if len(req.Context) > 0 || mid.Requested() {
		ev.Extra = &journal.Extra{MessageID: mid, Context: req.Context}
	}

	if err := s.bridge.Send(ev); err != nil {
		respondErr(w, err)
		return
	}
	respondOK(w)
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(CapabilitiesResponse{Levels: levelNames})
}

var levels = map[string]journal.Level{
	"debug":    journal.LevelDebug,
	"info":     journal.LevelInfo,
	"warn":     journal.LevelWarning,
	"warning":  journal.LevelWarning,
	"error":    journal.LevelError,
	"crit":     journal.LevelCritical,
	"critical": journal.LevelCritical,
}

var levelNames = []string{"debug", "info", "warning", "error", "critical"}

// ParseLevel accepts a level name or a raw numeric level. Empty means info.
func ParseLevel(s string) (journal.Level, error) {
	if s == "" {
		return journal.LevelInfo, nil
	}
	if l, ok := levels[strings.ToLower(s)]; ok {
		return l, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Errorf("unknown level %q (valid: %s, or a number)", s, strings.Join(levelNames, ", "))
	}
	return journal.Level(n), nil
}

// --- HTTP helpers ---

func respondOK(w http.ResponseWriter) {
	json.NewEncoder(w).Encode(errResponse{Err: ""})
}

func respondErr(w http.ResponseWriter, err error) {
	json.NewEncoder(w).Encode(errResponse{Err: err.Error()})
}
