package hub

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNotFound         = errors.New("file not found on hub")
	ErrUnauthorized     = errors.New("hub authorization failed")
	ErrOffline          = errors.New("offline mode and file not cached")
	ErrChecksumMismatch = errors.New("checksum mismatch: file may be corrupted")
	ErrInvalidRepoID    = errors.New("invalid repository identifier")
	ErrInvalidFilename  = errors.New("invalid artifact filename")
)

// StatusError reports an unexpected HTTP status from the hub.
type StatusError struct {
	Code int    // HTTP status code
	URL  string // Request URL
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Code, e.URL)
}
