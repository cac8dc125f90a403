//go:build windows

package model

import "context"

// The ONNX Runtime Go bindings do not build on Windows; the model handle is
// a stub that fails at construction.

// ONNXModel is unavailable on Windows.
type ONNXModel struct{}

// NewONNXModel always fails with ErrONNXUnsupported on Windows.
func NewONNXModel(modelPath string, cfg *Config) (*ONNXModel, error) {
	return nil, ErrONNXUnsupported
}

// Forward always fails with ErrONNXUnsupported on Windows.
func (m *ONNXModel) Forward(ctx context.Context, batch *Batch) (*Logits, error) {
	return nil, ErrONNXUnsupported
}

// Labels returns nil on Windows.
func (m *ONNXModel) Labels() *LabelSet {
	return nil
}

// MaxSequenceLength returns 0 on Windows.
func (m *ONNXModel) MaxSequenceLength() int {
	return 0
}

// Close is a no-op on Windows.
func (m *ONNXModel) Close() error {
	return nil
}
