// Package firewall is the top-level inspection surface: detection, policy,
// redaction, and audit behind one call.
//
// Example usage:
//
//	import (
//	    "github.com/piisec/piisec-go/config"
//	    "github.com/piisec/piisec-go/firewall"
//	)
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fw, err := firewall.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer fw.Close()
//
//	verdict, err := fw.Inspect(ctx, firewall.Message{
//	    Body:            "John Doe, SSN 123-45-6789, is scheduled for Tuesday",
//	    Recipient:       "billing@vendor.example",
//	    TransportSecure: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(verdict.Action, verdict.Body)
//	// REDACT [NAME], SSN [SSN], is scheduled for Tuesday
package firewall

import (
	"context"
	"log/slog"

	"github.com/piisec/piisec-go/internal/audit"
	"github.com/piisec/piisec-go/internal/config"
	"github.com/piisec/piisec-go/internal/detect"
	"github.com/piisec/piisec-go/internal/firewall"
)

// Firewall inspects outbound messages for PII and applies policy.
type Firewall = firewall.Firewall

// Message is one outbound message under inspection.
type Message = firewall.Message

// Verdict is the outcome of inspecting one message.
type Verdict = firewall.Verdict

// Option configures a Firewall beyond its Config.
type Option = firewall.Option

// New builds a firewall from configuration, loading the configured model
// unless a classifier is injected.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Firewall, error) {
	return firewall.New(ctx, cfg, opts...)
}

// WithClassifier injects a ready classifier instead of loading the
// configured model.
func WithClassifier(c detect.Classifier) Option {
	return firewall.WithClassifier(c)
}

// WithAuditSink overrides the audit sink.
func WithAuditSink(s audit.Sink) Option {
	return firewall.WithAuditSink(s)
}

// WithLogger overrides the logger built from the config.
func WithLogger(log *slog.Logger) Option {
	return firewall.WithLogger(log)
}
