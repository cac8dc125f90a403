// Package card reads and writes model cards.
//
// A model card is the README.md of a hosted model: YAML front matter with
// the machine-readable metadata (language, license, tags, entity labels)
// followed by the human-readable Markdown body.
//
// Example usage:
//
//	import "github.com/piisec/piisec-go/card"
//
//	c, err := card.FromPretrained(ctx, card.DefaultModelID)
//	if err != nil {
//	    c = card.Default() // embedded fallback
//	}
//	fmt.Println(c.Labels) // [NAME SSN MRN ADDRESS]
package card

import (
	"context"

	"github.com/piisec/piisec-go/internal/card"
	"github.com/piisec/piisec-go/internal/hub"
)

// DefaultModelID is the hosted PII NER model this module is built around.
const DefaultModelID = card.DefaultModelID

// CanonicalEntityLabels are the entity kinds the default model emits.
// The outside label "O" is implicit.
var CanonicalEntityLabels = card.CanonicalEntityLabels

// Card is a parsed model card.
type Card = card.Card

// Result is one reported evaluation metric.
type Result = card.Result

// ModelIndex groups the evaluation results of one model.
type ModelIndex = card.ModelIndex

// Parse splits a model card into front matter and body.
func Parse(data []byte) (*Card, error) {
	return card.Parse(data)
}

// Default returns the embedded card for the default model. It never fails.
func Default() *Card {
	return card.Default()
}

// FromPretrained fetches and parses the model card of a hosted model.
func FromPretrained(ctx context.Context, id string, opts ...hub.Option) (*Card, error) {
	return card.FromPretrained(ctx, id, opts...)
}
