// Package model provides the model handle for token classification.
//
// A model handle maps token sequences to per-token label-score distributions
// over a fixed label set. The compute itself is delegated to the ONNX Runtime
// through its Go bindings; this package only discovers the session inputs,
// shapes batches, and exposes the logits. The handle is created once per
// process from a model identifier and holds its resources until Close.
//
// Example usage:
//
//	mdl, err := model.FromPretrained(ctx, "piisec/pii-ner-en")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mdl.Close()
//
//	logits, err := mdl.Forward(ctx, batch)
//	if err != nil {
//	    log.Fatal(err)
//	}
package model
