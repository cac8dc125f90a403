// Package hub downloads and caches model artifacts from a model hub.
//
// The layout mirrors the HuggingFace Hub resolve endpoint: a repository is an
// identifier such as "piisec/pii-ner-en", a revision names a branch or commit,
// and individual artifact files (config.json, tokenizer.json, model.onnx, ...)
// are fetched one by one into a local snapshot directory. Cached files are
// revalidated with ETags, so repeated loads of an unchanged model perform no
// transfers.
package hub

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultEndpoint is the hub base URL used when no override is configured.
	DefaultEndpoint = "https://huggingface.co"

	// DefaultRevision is the revision used when none is given.
	DefaultRevision = "main"

	defaultUserAgent  = "piisec-go/0.1.0"
	defaultMaxRetries = 3

	etagSuffix   = ".etag"
	sha256Suffix = ".sha256"
)

// Client fetches artifact files from a model hub and caches them on disk.
// It is safe for concurrent use.
type Client struct {
	endpoint   string
	token      string
	cacheDir   string
	httpClient *http.Client
	userAgent  string
	offline    bool
	maxRetries int
	log        *slog.Logger

	mu       sync.Mutex
	inflight map[string]*sync.Mutex // destination path -> download lock
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the hub base URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithCacheDir overrides the local cache directory.
func WithCacheDir(dir string) Option {
	return func(c *Client) {
		c.cacheDir = dir
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithOfflineMode disables all network access. Cached files are served as-is;
// cache misses fail with ErrOffline.
func WithOfflineMode(offline bool) Option {
	return func(c *Client) {
		c.offline = offline
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxRetries sets how many times transient download failures are retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithLogger sets the logger used for download progress and warnings.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a hub client. Unset options fall back to the environment:
// PIISEC_HUB_ENDPOINT or HF_ENDPOINT for the base URL, PIISEC_HUB_TOKEN or
// HF_TOKEN for authentication, PIISEC_HOME for the cache root, and
// PIISEC_HUB_OFFLINE to disable network access.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		endpoint:   envFirst("PIISEC_HUB_ENDPOINT", "HF_ENDPOINT"),
		token:      envFirst("PIISEC_HUB_TOKEN", "HF_TOKEN"),
		offline:    envBool("PIISEC_HUB_OFFLINE"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		userAgent:  defaultUserAgent,
		maxRetries: defaultMaxRetries,
		inflight:   make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	c.endpoint = strings.TrimRight(c.endpoint, "/")

	if c.cacheDir == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		c.cacheDir = dir
	}
	if c.log == nil {
		c.log = slog.Default()
	}

	return c, nil
}

// DefaultCacheDir returns the cache root: $PIISEC_HOME/hub when PIISEC_HOME is
// set, otherwise <user cache dir>/piisec/hub.
func DefaultCacheDir() (string, error) {
	if home := strings.TrimSpace(os.Getenv("PIISEC_HOME")); home != "" {
		return filepath.Join(home, "hub"), nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "piisec", "hub"), nil
}

// CacheDir returns the cache root this client writes to.
func (c *Client) CacheDir() string {
	return c.cacheDir
}

// Offline reports whether the client refuses network access.
func (c *Client) Offline() bool {
	return c.offline
}

// Repo returns a handle for a repository at the default revision.
func (c *Client) Repo(id string) *Repo {
	return c.RepoAt(id, DefaultRevision)
}

// RepoAt returns a handle for a repository pinned to a revision.
func (c *Client) RepoAt(id, revision string) *Repo {
	if revision == "" {
		revision = DefaultRevision
	}
	return &Repo{client: c, id: id, revision: revision}
}

// lockFor returns the per-destination mutex so concurrent Gets of the same
// file download once.
func (c *Client) lockFor(dest string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.inflight[dest]
	if !ok {
		m = &sync.Mutex{}
		c.inflight[dest] = m
	}
	return m
}

func envFirst(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

func envBool(name string) bool {
	v := strings.TrimSpace(os.Getenv(name))
	return v == "1" || strings.EqualFold(v, "true")
}
