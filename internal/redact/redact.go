// Package redact rewrites text so detected PII never leaves in the clear.
//
// Mask replaces each entity span with a label placeholder such as [NAME].
// Pseudonymizer goes further: each distinct span gets a numbered, reversible
// placeholder, with the mapping held per document so a response can be
// restored. Neither output ever contains the original entity bytes.
package redact

import (
	"fmt"
	"sort"
	"strings"

	"github.com/piisec/piisec-go/internal/detect"
)

// Mask replaces every entity span with its label placeholder. Overlapping
// entities are collapsed first; splicing runs right to left so earlier byte
// offsets stay valid while later spans are rewritten.
func Mask(text string, entities []detect.Entity) string {
	spans := detect.MergeOverlaps(entities)

	out := text
	for i := len(spans) - 1; i >= 0; i-- {
		e := spans[i]
		out = out[:e.Start] + "[" + e.Label + "]" + out[e.End:]
	}
	return out
}

// Pseudonymizer replaces entity spans with numbered placeholders that can be
// reversed later. Identical spans of the same label share a placeholder
// within one document.
//
// A Pseudonymizer holds per-document state and is not safe for concurrent
// use; create one per document.
type Pseudonymizer struct {
	counter  int
	byValue  map[string]string // label\x00text -> placeholder
	original map[string]string // placeholder -> original text
}

// NewPseudonymizer creates an empty pseudonymizer.
func NewPseudonymizer() *Pseudonymizer {
	return &Pseudonymizer{
		byValue:  make(map[string]string),
		original: make(map[string]string),
	}
}

// Apply replaces every entity span with its placeholder. Placeholders are
// numbered in reading order; splicing still runs right to left to keep byte
// offsets valid.
func (p *Pseudonymizer) Apply(text string, entities []detect.Entity) string {
	spans := detect.MergeOverlaps(entities)

	placeholders := make([]string, len(spans))
	for i, e := range spans {
		placeholders[i] = p.placeholder(e.Label, text[e.Start:e.End])
	}

	out := text
	for i := len(spans) - 1; i >= 0; i-- {
		e := spans[i]
		out = out[:e.Start] + placeholders[i] + out[e.End:]
	}
	return out
}

// placeholder returns the stable placeholder for one (label, text) pair.
func (p *Pseudonymizer) placeholder(label, original string) string {
	key := label + "\x00" + original
	if ph, ok := p.byValue[key]; ok {
		return ph
	}
	p.counter++
	ph := fmt.Sprintf("«%s_%06d»", label, p.counter)
	p.byValue[key] = ph
	p.original[ph] = original
	return ph
}

// Restore replaces placeholders in text with their original values. Unknown
// placeholders are left untouched.
func (p *Pseudonymizer) Restore(text string) string {
	if len(p.original) == 0 {
		return text
	}

	// Longest placeholder first, so no placeholder is a prefix victim.
	placeholders := make([]string, 0, len(p.original))
	for ph := range p.original {
		placeholders = append(placeholders, ph)
	}
	sort.Slice(placeholders, func(i, j int) bool {
		return len(placeholders[i]) > len(placeholders[j])
	})

	pairs := make([]string, 0, 2*len(placeholders))
	for _, ph := range placeholders {
		pairs = append(pairs, ph, p.original[ph])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Redactions returns the placeholder inventory: placeholder to original
// value. The caller owns the returned map.
func (p *Pseudonymizer) Redactions() map[string]string {
	out := make(map[string]string, len(p.original))
	for ph, orig := range p.original {
		out[ph] = orig
	}
	return out
}
