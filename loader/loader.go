// Package loader assembles a ready-to-run model from hub artifacts.
//
// This package wraps internal loader implementations and exports a clean
// public API for turning a repository identifier into a tokenizer and a
// token-classification session, plus low-level access to safetensors
// checkpoints.
//
// Example usage:
//
//	import "github.com/piisec/piisec-go/loader"
//
//	tok, mdl, err := loader.Load(ctx, "piisec/pii-ner-en")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mdl.Close()
//
//	fmt.Println(mdl.Labels().EntityKinds()) // [NAME SSN MRN ADDRESS]
package loader

import (
	"context"

	"github.com/piisec/piisec-go/internal/hub"
	"github.com/piisec/piisec-go/internal/loader"
	"github.com/piisec/piisec-go/internal/model"
	"github.com/piisec/piisec-go/internal/tokenizer"
)

// SafeTensorsReader reads tensors from a safetensors checkpoint without
// copying the weight data.
type SafeTensorsReader = loader.SafeTensorsReader

// SafeTensorInfo describes one tensor in a safetensors file.
type SafeTensorInfo = loader.SafeTensorInfo

// SafeTensorsDType is the element type of a stored tensor.
type SafeTensorsDType = loader.SafeTensorsDType

// Load fetches a hosted model at the default revision and returns its
// tokenizer and classification session.
func Load(ctx context.Context, id string, opts ...hub.Option) (tokenizer.Tokenizer, model.TokenClassifier, error) {
	return loader.Load(ctx, id, opts...)
}

// LoadRevision is Load pinned to a branch, tag, or commit.
func LoadRevision(ctx context.Context, id, revision string, opts ...hub.Option) (tokenizer.Tokenizer, model.TokenClassifier, error) {
	return loader.LoadRevision(ctx, id, revision, opts...)
}

// LoadSnapshot loads a model from a local snapshot directory that already
// holds the artifacts (config.json, model.onnx, tokenizer files).
func LoadSnapshot(dir string) (tokenizer.Tokenizer, model.TokenClassifier, error) {
	return loader.LoadSnapshot(dir)
}

// OpenSafeTensors memory-maps a safetensors checkpoint for inspection.
//
// Close the reader to release the mapping.
func OpenSafeTensors(path string) (*SafeTensorsReader, error) {
	return loader.NewSafeTensorsReader(path)
}

// FindClassifierHead returns the name of the token-classification head
// weight in a checkpoint.
func FindClassifierHead(r *SafeTensorsReader) (string, error) {
	return loader.FindClassifierHead(r)
}

// VerifyLabelHead checks that a checkpoint's classification head matches a
// label set: one output row per label.
func VerifyLabelHead(path string, labels *model.LabelSet) error {
	return loader.VerifyLabelHead(path, labels)
}
