// Package redact rewrites text so detected PII never leaves the process.
//
// Two strategies are exported: irreversible masking, where every entity is
// replaced by its label, and pseudonymization, where entities become stable
// placeholders that the same Pseudonymizer can later restore.
//
// Example usage:
//
//	import "github.com/piisec/piisec-go/redact"
//
//	masked := redact.Mask("John Doe called", entities)
//	// "[NAME] called"
//
//	p := redact.NewPseudonymizer()
//	safe := p.Apply("John Doe called John Doe", entities)
//	// "«NAME_000001» called «NAME_000001»"
//	back := p.Restore(safe)
package redact

import (
	"github.com/piisec/piisec-go/internal/detect"
	"github.com/piisec/piisec-go/internal/redact"
)

// Pseudonymizer replaces entities with stable, reversible placeholders.
type Pseudonymizer = redact.Pseudonymizer

// Mask replaces every entity span with its label in brackets.
func Mask(text string, entities []detect.Entity) string {
	return redact.Mask(text, entities)
}

// NewPseudonymizer creates an empty pseudonymizer. Repeated mentions of the
// same value receive the same placeholder.
func NewPseudonymizer() *Pseudonymizer {
	return redact.NewPseudonymizer()
}
