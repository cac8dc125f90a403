// Package model runs token-classification inference.
//
// This package wraps the internal model implementation: an ONNX Runtime
// session behind the TokenClassifier interface, plus the config.json label
// mapping that turns class indices into entity labels.
//
// Example usage:
//
//	import "github.com/piisec/piisec-go/model"
//
//	mdl, err := model.FromPretrained(ctx, "piisec/pii-ner-en")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mdl.Close()
//
//	batch := model.NewBatch([][]int32{ids}, padToken)
//	logits, err := mdl.Forward(ctx, batch)
package model

import (
	"context"

	"github.com/piisec/piisec-go/internal/hub"
	"github.com/piisec/piisec-go/internal/model"
)

// TokenClassifier scores every token of a batch against the label set.
type TokenClassifier = model.TokenClassifier

// Batch is a padded batch of token ID sequences with an attention mask.
type Batch = model.Batch

// Logits is the raw per-token class scores of one forward pass.
type Logits = model.Logits

// Config is the parsed config.json of a hosted model.
type Config = model.Config

// LabelSet maps class indices to entity labels.
type LabelSet = model.LabelSet

// Errors surfaced by inference sessions.
var (
	ErrClosed          = model.ErrClosed
	ErrONNXUnsupported = model.ErrONNXUnsupported
	ErrNoRuntime       = model.ErrNoRuntime
)

// NewBatch pads sequences to a common length and builds the attention mask.
func NewBatch(sequences [][]int32, padToken int32) *Batch {
	return model.NewBatch(sequences, padToken)
}

// DefaultLabels returns the label set of the default PII model:
// O, NAME, SSN, MRN, ADDRESS.
func DefaultLabels() *LabelSet {
	return model.DefaultLabels()
}

// NewLabelSet builds a label set from an ordered label list.
func NewLabelSet(labels []string) (*LabelSet, error) {
	return model.NewLabelSet(labels)
}

// LoadConfig parses a config.json file.
func LoadConfig(path string) (*Config, error) {
	return model.LoadConfig(path)
}

// FromPretrained fetches a hosted model and opens an inference session.
func FromPretrained(ctx context.Context, id string, opts ...hub.Option) (TokenClassifier, error) {
	return model.FromPretrained(ctx, id, opts...)
}

// FromSnapshot opens an inference session over a local snapshot directory.
func FromSnapshot(dir string) (TokenClassifier, error) {
	return model.FromSnapshot(dir)
}
