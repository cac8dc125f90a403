// Package detect finds PII entities in text.
//
// A Classifier maps text to entity spans. Two implementations exist: the
// model-backed classifier driving a token-classification handle, and the
// rule-based classifier for identifiers with a reliable surface form. A
// Detector chains classifiers and merges their overlapping findings.
//
// All spans are byte offsets into the input text, so Entity.Text always
// equals input[Start:End].
package detect

import (
	"context"
	"sort"
)

// Entity is one detected PII span.
type Entity struct {
	// Label is the entity kind: NAME, SSN, MRN, or ADDRESS.
	Label string `json:"label"`

	// Start and End are byte offsets into the input, half-open.
	Start int `json:"start"`
	End   int `json:"end"`

	// Text is the input slice [Start, End).
	Text string `json:"text"`

	// Score is the detection confidence in [0, 1].
	Score float64 `json:"score"`

	// Source names the classifier that produced the entity.
	Source string `json:"source"`
}

// Len returns the span width in bytes.
func (e Entity) Len() int {
	return e.End - e.Start
}

// overlaps reports whether two entities share at least one byte.
func (e Entity) overlaps(other Entity) bool {
	return e.Start < other.End && other.Start < e.End
}

// Classifier finds PII entities in text. Implementations are safe for
// concurrent use.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Entity, error)
}

// Detector runs an ordered chain of classifiers and merges their findings.
type Detector struct {
	classifiers []Classifier
}

// NewDetector builds a detector over a classifier chain. Later classifiers
// only win overlaps through a higher score.
func NewDetector(classifiers ...Classifier) *Detector {
	return &Detector{classifiers: classifiers}
}

// Classify runs every classifier and returns the merged entities in input
// order.
func (d *Detector) Classify(ctx context.Context, text string) ([]Entity, error) {
	var all []Entity
	for _, c := range d.classifiers {
		found, err := c.Classify(ctx, text)
		if err != nil {
			return nil, err
		}
		all = append(all, found...)
	}
	return MergeOverlaps(all), nil
}

// MergeOverlaps resolves overlapping entities: the higher score wins, ties
// go to the longer span. The result is sorted by start offset.
func MergeOverlaps(entities []Entity) []Entity {
	if len(entities) <= 1 {
		return entities
	}

	// Strongest first, so a kept entity never loses to a later one.
	ranked := make([]Entity, len(entities))
	copy(ranked, entities)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Len() > ranked[j].Len()
	})

	var kept []Entity
	for _, cand := range ranked {
		clash := false
		for _, win := range kept {
			if cand.overlaps(win) {
				clash = true
				break
			}
		}
		if !clash {
			kept = append(kept, cand)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Start != kept[j].Start {
			return kept[i].Start < kept[j].Start
		}
		return kept[i].End < kept[j].End
	})
	return kept
}
