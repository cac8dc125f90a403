package model

import "errors"

// Common errors.
var (
	ErrClosed          = errors.New("model session is closed")
	ErrONNXUnsupported = errors.New("ONNX runtime is not supported on this platform")
	ErrNoRuntime       = errors.New("ONNX runtime shared library not found (set PIISEC_ORT_LIBRARY)")
	ErrBadOutput       = errors.New("model output has unexpected shape")
)
