package loader

import "errors"

// Common errors.
var (
	ErrEmptyIdentifier = errors.New("empty model identifier")
	ErrTensorNotFound  = errors.New("tensor not found")
	ErrNoClassifier    = errors.New("no classifier head tensor found")
	ErrLabelMismatch   = errors.New("classifier head does not match the label set")
)
