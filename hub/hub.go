// Package hub downloads and caches model artifacts from a model hub.
//
// This package wraps the internal hub client and exports a clean public API
// for fetching repository files into the local cache.
//
// Example usage:
//
//	import "github.com/piisec/piisec-go/hub"
//
//	client, err := hub.New(hub.WithCacheDir("/var/cache/piisec"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	repo := client.Repo("piisec/pii-ner-en")
//	path, err := repo.Get(ctx, "config.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("cached at", path)
package hub

import (
	"github.com/piisec/piisec-go/internal/hub"
)

// DefaultEndpoint is the hub base URL used when no override is configured.
const DefaultEndpoint = hub.DefaultEndpoint

// DefaultRevision is the revision used when none is given.
const DefaultRevision = hub.DefaultRevision

// Client fetches artifact files from a model hub and caches them on disk.
// It is safe for concurrent use.
type Client = hub.Client

// Repo is a handle to one hosted artifact bundle at a fixed revision.
type Repo = hub.Repo

// Option configures a Client.
type Option = hub.Option

// StatusError reports an unexpected HTTP status from the hub.
type StatusError = hub.StatusError

// Common errors.
var (
	ErrNotFound         = hub.ErrNotFound
	ErrUnauthorized     = hub.ErrUnauthorized
	ErrOffline          = hub.ErrOffline
	ErrChecksumMismatch = hub.ErrChecksumMismatch
)

// New creates a hub client. Unset options fall back to the environment:
// PIISEC_HUB_ENDPOINT or HF_ENDPOINT for the base URL, PIISEC_HUB_TOKEN or
// HF_TOKEN for authentication, PIISEC_HOME for the cache root, and
// PIISEC_HUB_OFFLINE to disable network access.
func New(opts ...Option) (*Client, error) {
	return hub.New(opts...)
}

// WithEndpoint overrides the hub base URL.
func WithEndpoint(endpoint string) Option {
	return hub.WithEndpoint(endpoint)
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return hub.WithToken(token)
}

// WithCacheDir overrides the local cache directory.
func WithCacheDir(dir string) Option {
	return hub.WithCacheDir(dir)
}

// WithOfflineMode disables all network access. Cached files are served
// as-is; cache misses fail with ErrOffline.
func WithOfflineMode(offline bool) Option {
	return hub.WithOfflineMode(offline)
}

// DefaultCacheDir returns the cache root: $PIISEC_HOME/hub when PIISEC_HOME
// is set, otherwise the user cache directory under piisec/hub.
func DefaultCacheDir() (string, error) {
	return hub.DefaultCacheDir()
}

// Verify recomputes the SHA-256 of a cached file and compares it against the
// sidecar written at download time.
func Verify(path string) error {
	return hub.Verify(path)
}
