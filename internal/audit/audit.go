// Package audit records firewall decisions without recording content.
//
// An audit event carries counts, sizes, labels, and the decision taken, and
// never the message text or any entity text. That invariant is what makes
// the audit trail safe to ship to ordinary log storage.
package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/piisec/piisec-go/internal/detect"
)

// Event is one audited firewall decision.
type Event struct {
	ID          string         `json:"id"`
	Time        time.Time      `json:"time"`
	ModelID     string         `json:"model_id,omitempty"`
	Action      string         `json:"action"`
	Reason      string         `json:"reason"`
	Recipient   string         `json:"recipient,omitempty"`
	EntityCount int            `json:"entity_count"`
	LabelCounts map[string]int `json:"label_counts,omitempty"`
	InputBytes  int            `json:"input_bytes"`
}

// NewEvent stamps an event with a fresh ID and the current UTC time.
func NewEvent() Event {
	return Event{
		ID:   uuid.NewString(),
		Time: time.Now().UTC(),
	}
}

// Summarize counts entities per label. The entities' text never enters the
// result.
func Summarize(entities []detect.Entity) (total int, byLabel map[string]int) {
	if len(entities) == 0 {
		return 0, nil
	}
	byLabel = make(map[string]int)
	for _, e := range entities {
		byLabel[e.Label]++
	}
	return len(entities), byLabel
}

// Sink receives audit events. Record must not block on slow consumers
// longer than necessary and must be safe for concurrent use.
type Sink interface {
	Record(event Event) error
}

// Discard is a Sink that drops every event.
type Discard struct{}

// Record implements Sink.
func (Discard) Record(Event) error {
	return nil
}

// Recorder is an in-memory Sink for tests and inspection.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record implements Sink.
func (r *Recorder) Record(event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// JSONLWriter appends events to a file, one JSON object per line.
type JSONLWriter struct {
	mu   sync.Mutex
	file *os.File
}

// NewJSONLWriter opens (or creates) an append-only audit log file.
func NewJSONLWriter(path string) (*JSONLWriter, error) {
	//nolint:gosec // G304: the audit log path comes from configuration.
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &JSONLWriter{file: file}, nil
}

// Record implements Sink.
func (w *JSONLWriter) Record(event Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.file.Write(line); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *JSONLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// SlogSink emits events through a structured logger.
type SlogSink struct {
	log *slog.Logger
}

// NewSlogSink creates a sink over a logger. A nil logger uses the default.
func NewSlogSink(log *slog.Logger) *SlogSink {
	if log == nil {
		log = slog.Default()
	}
	return &SlogSink{log: log}
}

// Record implements Sink.
func (s *SlogSink) Record(event Event) error {
	s.log.Info("audit",
		"id", event.ID,
		"model_id", event.ModelID,
		"action", event.Action,
		"reason", event.Reason,
		"recipient", event.Recipient,
		"entity_count", event.EntityCount,
		"label_counts", event.LabelCounts,
		"input_bytes", event.InputBytes,
	)
	return nil
}
