// Package audit records firewall decisions without recording content.
//
// This package wraps the internal audit trail: events carry counts, sizes,
// labels, and the decision taken, never the message text.
//
// Example usage:
//
//	import "github.com/piisec/piisec-go/audit"
//
//	sink, err := audit.NewJSONLWriter("/var/log/piisec/audit.jsonl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sink.Close()
package audit

import (
	"log/slog"

	"github.com/piisec/piisec-go/internal/audit"
)

// Event is one audited firewall decision.
type Event = audit.Event

// Sink receives audit events. Implementations are safe for concurrent use.
type Sink = audit.Sink

// Discard is a Sink that drops every event.
type Discard = audit.Discard

// Recorder is an in-memory Sink for tests and inspection.
type Recorder = audit.Recorder

// JSONLWriter appends events to a file, one JSON object per line.
type JSONLWriter = audit.JSONLWriter

// SlogSink emits events through a structured logger.
type SlogSink = audit.SlogSink

// NewEvent stamps an event with a fresh ID and the current UTC time.
func NewEvent() Event {
	return audit.NewEvent()
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return audit.NewRecorder()
}

// NewJSONLWriter opens (or creates) an append-only audit log file.
func NewJSONLWriter(path string) (*JSONLWriter, error) {
	return audit.NewJSONLWriter(path)
}

// NewSlogSink creates a sink over a logger. A nil logger uses the default.
func NewSlogSink(log *slog.Logger) *SlogSink {
	return audit.NewSlogSink(log)
}
