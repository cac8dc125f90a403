// Package policy decides what happens to a message carrying PII.
//
// This package wraps the internal policy engine: fixed precedence
// (insecure transport, then restricted content against the permit list,
// then the default), configurable actions per rule.
//
// Example usage:
//
//	import "github.com/piisec/piisec-go/policy"
//
//	p, err := policy.New(policy.DefaultRules(),
//	    policy.NewPermitList([]string{"*@clinic.example"}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	decision := p.Evaluate(policy.Request{
//	    Recipient:       "billing@vendor.example",
//	    TransportSecure: true,
//	    Entities:        entities,
//	})
//	fmt.Println(decision.Action, decision.Reason) // REDACT contains_phi_not_permitted
package policy

import (
	"github.com/piisec/piisec-go/internal/policy"
)

// Action is the outcome of a policy evaluation.
type Action = policy.Action

// Possible actions, strongest first.
const (
	ActionBlock  = policy.ActionBlock
	ActionRedact = policy.ActionRedact
	ActionAllow  = policy.ActionAllow
)

// Reason codes attached to decisions.
const (
	ReasonInsecureTransport = policy.ReasonInsecureTransport
	ReasonRestrictedContent = policy.ReasonRestrictedContent
	ReasonOtherwise         = policy.ReasonOtherwise
)

// Rules maps each reason to an action.
type Rules = policy.Rules

// PermitList holds the recipients allowed to receive unredacted PII.
type PermitList = policy.PermitList

// Request is one message under evaluation.
type Request = policy.Request

// Decision is the outcome of evaluating one request.
type Decision = policy.Decision

// Policy evaluates requests against rules and a permit list.
type Policy = policy.Policy

// DefaultRules returns the safe baseline: block insecure transport, redact
// unpermitted PII, allow the rest.
func DefaultRules() Rules {
	return policy.DefaultRules()
}

// NewPermitList builds a permit list from recipient entries. Matching is
// case-insensitive; "*@domain" entries permit a whole domain.
func NewPermitList(recipients []string) *PermitList {
	return policy.NewPermitList(recipients)
}

// New creates a policy. Zero-valued rule actions fall back to the defaults.
func New(rules Rules, permit *PermitList) (*Policy, error) {
	return policy.New(rules, permit)
}
