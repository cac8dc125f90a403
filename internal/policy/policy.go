// Package policy decides what happens to a message carrying PII.
//
// The decision precedence is fixed: insecure transport first, then
// restricted content against the permit list, then the default. Each rule
// maps to a configurable action, with the safe baseline BLOCK / REDACT /
// ALLOW.
package policy

import (
	"fmt"
	"strings"

	"github.com/piisec/piisec-go/internal/detect"
)

// Action is the outcome of a policy evaluation.
type Action string

// Possible actions, strongest first.
const (
	ActionBlock  Action = "BLOCK"
	ActionRedact Action = "REDACT"
	ActionAllow  Action = "ALLOW"
)

// Valid reports whether the action is one of the three known values.
func (a Action) Valid() bool {
	switch a {
	case ActionBlock, ActionRedact, ActionAllow:
		return true
	}
	return false
}

// Reason codes attached to decisions.
const (
	ReasonInsecureTransport = "insecure_transport"
	ReasonRestrictedContent = "contains_phi_not_permitted"
	ReasonOtherwise         = "otherwise"
)

// Rules maps each reason to an action.
type Rules struct {
	// InsecureTransport fires when the message would leave over an
	// unencrypted channel.
	InsecureTransport Action

	// ContainsRestricted fires when PII was detected and the recipient is
	// not on the permit list.
	ContainsRestricted Action

	// Otherwise applies when no other rule fired.
	Otherwise Action
}

// DefaultRules returns the safe baseline: block insecure transport, redact
// unpermitted PII, allow the rest.
func DefaultRules() Rules {
	return Rules{
		InsecureTransport:  ActionBlock,
		ContainsRestricted: ActionRedact,
		Otherwise:          ActionAllow,
	}
}

// Validate checks that every rule names a known action.
func (r Rules) Validate() error {
	for reason, action := range map[string]Action{
		ReasonInsecureTransport: r.InsecureTransport,
		ReasonRestrictedContent: r.ContainsRestricted,
		ReasonOtherwise:         r.Otherwise,
	} {
		if !action.Valid() {
			return fmt.Errorf("policy: rule %s has unknown action %q", reason, action)
		}
	}
	return nil
}

// PermitList holds the recipients allowed to receive unredacted PII.
// Matching is case-insensitive; entries of the form "*@domain" permit a
// whole domain.
type PermitList struct {
	exact   map[string]bool
	domains map[string]bool
}

// NewPermitList builds a permit list from recipient entries.
func NewPermitList(recipients []string) *PermitList {
	p := &PermitList{
		exact:   make(map[string]bool),
		domains: make(map[string]bool),
	}
	for _, r := range recipients {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if domain, ok := strings.CutPrefix(r, "*@"); ok {
			p.domains[domain] = true
			continue
		}
		p.exact[r] = true
	}
	return p
}

// Permitted reports whether a recipient may receive unredacted PII.
func (p *PermitList) Permitted(recipient string) bool {
	recipient = strings.ToLower(strings.TrimSpace(recipient))
	if recipient == "" {
		return false
	}
	if p.exact[recipient] {
		return true
	}
	if _, domain, ok := strings.Cut(recipient, "@"); ok {
		return p.domains[domain]
	}
	return false
}

// Len returns the number of permit entries.
func (p *PermitList) Len() int {
	return len(p.exact) + len(p.domains)
}

// Request is one message under evaluation.
type Request struct {
	// Recipient is where the message is going.
	Recipient string

	// TransportSecure is false when the channel is unencrypted.
	TransportSecure bool

	// Entities are the PII findings for the message body.
	Entities []detect.Entity
}

// Decision is the outcome of evaluating one request.
type Decision struct {
	Action Action
	Reason string
}

// Policy evaluates requests against rules and a permit list.
type Policy struct {
	rules  Rules
	permit *PermitList
}

// New creates a policy. Zero-valued rule actions fall back to the defaults.
func New(rules Rules, permit *PermitList) (*Policy, error) {
	defaults := DefaultRules()
	if rules.InsecureTransport == "" {
		rules.InsecureTransport = defaults.InsecureTransport
	}
	if rules.ContainsRestricted == "" {
		rules.ContainsRestricted = defaults.ContainsRestricted
	}
	if rules.Otherwise == "" {
		rules.Otherwise = defaults.Otherwise
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if permit == nil {
		permit = NewPermitList(nil)
	}
	return &Policy{rules: rules, permit: permit}, nil
}

// Evaluate applies the rules in precedence order.
func (p *Policy) Evaluate(req Request) Decision {
	if !req.TransportSecure {
		return Decision{Action: p.rules.InsecureTransport, Reason: ReasonInsecureTransport}
	}
	if len(req.Entities) > 0 && !p.permit.Permitted(req.Recipient) {
		return Decision{Action: p.rules.ContainsRestricted, Reason: ReasonRestrictedContent}
	}
	return Decision{Action: p.rules.Otherwise, Reason: ReasonOtherwise}
}
