// Package detect finds PII entities in text.
//
// This package wraps the internal detection pipeline: a model-backed
// classifier over a token-classification session, a rule-based classifier
// for identifiers with a reliable surface form, and a detector that chains
// and merges them.
//
// Example usage:
//
//	import (
//	    "github.com/piisec/piisec-go/detect"
//	    "github.com/piisec/piisec-go/loader"
//	)
//
//	tok, mdl, err := loader.Load(ctx, "piisec/pii-ner-en")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mdl.Close()
//
//	mc, err := detect.NewModelClassifier(tok, mdl, detect.WithThreshold(0.5))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	detector := detect.NewDetector(detect.NewRules(), mc)
//
//	entities, err := detector.Classify(ctx, "John Doe, SSN 123-45-6789")
//	for _, e := range entities {
//	    fmt.Printf("%s %q [%d:%d] %.2f\n", e.Label, e.Text, e.Start, e.End, e.Score)
//	}
package detect

import (
	"github.com/piisec/piisec-go/internal/detect"
	"github.com/piisec/piisec-go/internal/model"
	"github.com/piisec/piisec-go/internal/tokenizer"
)

// Entity is one detected PII span. Offsets are bytes into the input.
type Entity = detect.Entity

// Classifier finds PII entities in text.
type Classifier = detect.Classifier

// Detector runs an ordered chain of classifiers and merges their findings.
type Detector = detect.Detector

// ModelClassifier drives a token-classification model over text windows.
type ModelClassifier = detect.ModelClassifier

// ModelOption tunes a ModelClassifier.
type ModelOption = detect.ModelOption

// Rules is the rule-based classifier for SSN and MRN surface forms.
type Rules = detect.Rules

// Entity sources.
const (
	SourceModel = detect.SourceModel
	SourceRules = detect.SourceRules
)

// Detection defaults.
const (
	DefaultThreshold = detect.DefaultThreshold
	DefaultStride    = detect.DefaultStride
)

// NewDetector builds a detector over a classifier chain. Overlapping
// findings are resolved by score, ties by span length.
func NewDetector(classifiers ...Classifier) *Detector {
	return detect.NewDetector(classifiers...)
}

// NewModelClassifier builds a classifier over a tokenizer and model pair.
// The tokenizer must report byte offsets.
func NewModelClassifier(tok tokenizer.Tokenizer, mdl model.TokenClassifier, opts ...ModelOption) (*ModelClassifier, error) {
	return detect.NewModelClassifier(tok, mdl, opts...)
}

// NewRules creates the rule-based classifier.
func NewRules() *Rules {
	return detect.NewRules()
}

// WithThreshold sets the minimum entity score to report.
func WithThreshold(threshold float64) ModelOption {
	return detect.WithThreshold(threshold)
}

// WithStride sets the token overlap between adjacent windows of long
// inputs.
func WithStride(stride int) ModelOption {
	return detect.WithStride(stride)
}

// MergeOverlaps resolves overlapping entities: the higher score wins, ties
// go to the longer span.
func MergeOverlaps(entities []Entity) []Entity {
	return detect.MergeOverlaps(entities)
}
