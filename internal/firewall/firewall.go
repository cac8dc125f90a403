// Package firewall wires detection, policy, redaction, and audit into one
// inspection surface.
//
// A Firewall is built from configuration: it loads the tokenizer and model
// handles for the configured identifier, chains the rule and model
// classifiers, and evaluates every message against the policy. Each Inspect
// call emits exactly one audit event.
package firewall

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/piisec/piisec-go/internal/audit"
	"github.com/piisec/piisec-go/internal/config"
	"github.com/piisec/piisec-go/internal/detect"
	"github.com/piisec/piisec-go/internal/hub"
	"github.com/piisec/piisec-go/internal/loader"
	"github.com/piisec/piisec-go/internal/model"
	"github.com/piisec/piisec-go/internal/policy"
	"github.com/piisec/piisec-go/internal/redact"
)

// Message is one outbound message under inspection.
type Message struct {
	// Body is the message text.
	Body string

	// Recipient is where the message is going.
	Recipient string

	// TransportSecure is false when the channel is unencrypted.
	TransportSecure bool
}

// Verdict is the outcome of inspecting one message.
type Verdict struct {
	// Action taken: ALLOW, REDACT, or BLOCK.
	Action policy.Action

	// Reason is the policy reason code behind the action.
	Reason string

	// Body is the text to send: the original on ALLOW, masked on REDACT,
	// empty on BLOCK.
	Body string

	// Entities are the PII findings for the original body.
	Entities []detect.Entity
}

// Firewall inspects outbound messages for PII and applies policy.
type Firewall struct {
	detector   detect.Classifier
	policy     *policy.Policy
	sink       audit.Sink
	log        *slog.Logger
	modelID    string
	requireTLS bool

	// mdl is the owned model handle; nil when a classifier was injected.
	mdl model.TokenClassifier
}

// Option configures a Firewall beyond its Config.
type Option func(*Firewall)

// WithClassifier injects a ready classifier instead of loading the
// configured model. Close then releases nothing.
func WithClassifier(c detect.Classifier) Option {
	return func(f *Firewall) {
		f.detector = c
	}
}

// WithAuditSink overrides the audit sink.
func WithAuditSink(s audit.Sink) Option {
	return func(f *Firewall) {
		f.sink = s
	}
}

// WithLogger overrides the logger built from the config.
func WithLogger(log *slog.Logger) Option {
	return func(f *Firewall) {
		f.log = log
	}
}

// New builds a firewall from configuration. Unless a classifier is
// injected, the configured model is loaded here: hub resolve, snapshot
// fetch, tokenizer and model handles, detection chain.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Firewall, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &Firewall{
		modelID:    cfg.Model.ID,
		requireTLS: cfg.Transport.RequireTLS,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = config.Logger(cfg.Logging)
	}

	pol, err := policy.New(policy.Rules{
		InsecureTransport:  policy.Action(cfg.Policy.Actions[policy.ReasonInsecureTransport]),
		ContainsRestricted: policy.Action(cfg.Policy.Actions[policy.ReasonRestrictedContent]),
		Otherwise:          policy.Action(cfg.Policy.Actions[policy.ReasonOtherwise]),
	}, policy.NewPermitList(cfg.PermitList.Recipients))
	if err != nil {
		return nil, err
	}
	f.policy = pol

	if f.sink == nil {
		if cfg.Audit.Path != "" {
			sink, err := audit.NewJSONLWriter(cfg.Audit.Path)
			if err != nil {
				return nil, err
			}
			f.sink = sink
		} else {
			f.sink = audit.NewSlogSink(f.log)
		}
	}

	if f.detector == nil {
		if err := f.loadDetector(ctx, cfg); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// loadDetector performs the model load and builds the classifier chain.
func (f *Firewall) loadDetector(ctx context.Context, cfg *config.Config) error {
	var hubOpts []hub.Option
	if cfg.Hub.Endpoint != "" {
		hubOpts = append(hubOpts, hub.WithEndpoint(cfg.Hub.Endpoint))
	}
	if cfg.Hub.CacheDir != "" {
		hubOpts = append(hubOpts, hub.WithCacheDir(cfg.Hub.CacheDir))
	}
	if cfg.Hub.Offline {
		hubOpts = append(hubOpts, hub.WithOfflineMode(true))
	}
	hubOpts = append(hubOpts, hub.WithLogger(f.log))

	tok, mdl, err := loader.LoadRevision(ctx, cfg.Model.ID, cfg.Model.Revision, hubOpts...)
	if err != nil {
		return fmt.Errorf("load model %s: %w", cfg.Model.ID, err)
	}

	mc, err := detect.NewModelClassifier(tok, mdl,
		detect.WithThreshold(cfg.Model.ScoreThreshold),
		detect.WithStride(cfg.Model.Stride))
	if err != nil {
		_ = mdl.Close()
		return err
	}

	f.mdl = mdl
	f.detector = detect.NewDetector(detect.NewRules(), mc)
	f.log.Info("model loaded", "model_id", cfg.Model.ID, "labels", mdl.Labels().EntityKinds())
	return nil
}

// Inspect classifies one message, applies policy, and audits the decision.
func (f *Firewall) Inspect(ctx context.Context, msg Message) (*Verdict, error) {
	entities, err := f.detector.Classify(ctx, msg.Body)
	if err != nil {
		return nil, fmt.Errorf("inspect message: %w", err)
	}

	// With require_tls off, plaintext transport is the operator's choice
	// and the transport rule never fires.
	secure := msg.TransportSecure || !f.requireTLS

	decision := f.policy.Evaluate(policy.Request{
		Recipient:       msg.Recipient,
		TransportSecure: secure,
		Entities:        entities,
	})

	verdict := &Verdict{
		Action:   decision.Action,
		Reason:   decision.Reason,
		Entities: entities,
	}
	switch decision.Action {
	case policy.ActionAllow:
		verdict.Body = msg.Body
	case policy.ActionRedact:
		verdict.Body = redact.Mask(msg.Body, entities)
	case policy.ActionBlock:
		verdict.Body = ""
	}

	f.record(msg, verdict)
	return verdict, nil
}

// record emits the audit event for one decision. Audit failures are logged,
// not returned: the verdict stands either way.
func (f *Firewall) record(msg Message, verdict *Verdict) {
	ev := audit.NewEvent()
	ev.ModelID = f.modelID
	ev.Action = string(verdict.Action)
	ev.Reason = verdict.Reason
	ev.Recipient = msg.Recipient
	ev.EntityCount, ev.LabelCounts = audit.Summarize(verdict.Entities)
	ev.InputBytes = len(msg.Body)

	if err := f.sink.Record(ev); err != nil {
		f.log.Warn("audit record failed", "err", err)
	}
}

// Close releases the owned model session, if any.
func (f *Firewall) Close() error {
	if f.mdl == nil {
		return nil
	}
	return f.mdl.Close()
}
