package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Repo is a handle to one hosted artifact bundle at a fixed revision.
type Repo struct {
	client   *Client
	id       string
	revision string
}

// ID returns the repository identifier.
func (r *Repo) ID() string {
	return r.id
}

// Revision returns the pinned revision.
func (r *Repo) Revision() string {
	return r.revision
}

// Dir returns the local snapshot directory for this repo and revision.
// The directory may not exist until a file has been fetched.
func (r *Repo) Dir() string {
	return filepath.Join(r.client.cacheDir,
		"models--"+strings.ReplaceAll(r.id, "/", "--"),
		"snapshots", r.revision)
}

// Get returns the local path of an artifact file, downloading it on a cache
// miss and revalidating it with an ETag on a hit. The returned file is always
// complete: downloads go to a temp file and are renamed into place.
func (r *Repo) Get(ctx context.Context, filename string) (string, error) {
	if err := validateRepoID(r.id); err != nil {
		return "", err
	}
	if err := validateFilename(filename); err != nil {
		return "", err
	}

	dest := filepath.Join(r.Dir(), filename)
	lock := r.client.lockFor(dest)
	lock.Lock()
	defer lock.Unlock()

	srcURL := r.fileURL(filename)
	if _, err := os.Stat(dest); err == nil {
		if r.client.offline {
			return dest, nil
		}
		return r.revalidate(ctx, srcURL, dest)
	}

	if r.client.offline {
		return "", fmt.Errorf("%s/%s: %w", r.id, filename, ErrOffline)
	}

	if err := r.download(ctx, srcURL, dest); err != nil {
		return "", fmt.Errorf("fetch %s/%s: %w", r.id, filename, err)
	}
	return dest, nil
}

// TryGet is Get for optional files: a missing file yields ("", nil) instead
// of ErrNotFound.
func (r *Repo) TryGet(ctx context.Context, filename string) (string, error) {
	path, err := r.Get(ctx, filename)
	if isNotFound(err) {
		return "", nil
	}
	return path, err
}

// Snapshot fetches a set of files and returns the snapshot directory that
// holds them all.
func (r *Repo) Snapshot(ctx context.Context, filenames ...string) (string, error) {
	for _, name := range filenames {
		if _, err := r.Get(ctx, name); err != nil {
			return "", err
		}
	}
	return r.Dir(), nil
}

// fileURL builds the resolve URL for one artifact file.
func (r *Repo) fileURL(filename string) string {
	return r.client.endpoint + "/" + r.id + "/resolve/" +
		url.PathEscape(r.revision) + "/" + url.PathEscape(filename)
}

// revalidate serves a cached file, refreshing it when the hub reports a new
// ETag. Network failures degrade to the cached copy with a warning so an
// unreachable hub never breaks a warm process.
func (r *Repo) revalidate(ctx context.Context, srcURL, dest string) (string, error) {
	etag, err := os.ReadFile(dest + etagSuffix) //nolint:gosec // G304: sidecar next to cached file.
	if err != nil || len(etag) == 0 {
		// Nothing to compare against; the cached copy stands.
		return dest, nil
	}

	req, err := r.newRequest(ctx, srcURL)
	if err != nil {
		return "", err
	}
	req.Header.Set("If-None-Match", strings.TrimSpace(string(etag)))

	resp, err := r.client.httpClient.Do(req)
	if err != nil {
		r.client.log.Warn("hub: revalidation failed, serving cached file", "url", srcURL, "err", err)
		return dest, nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return dest, nil
	case resp.StatusCode == http.StatusOK:
		if err := r.writeBody(resp, dest); err != nil {
			return "", err
		}
		return dest, nil
	default:
		r.client.log.Warn("hub: revalidation status, serving cached file", "url", srcURL, "code", resp.StatusCode)
		return dest, nil
	}
}

// download fetches srcURL into dest with retries for transient failures.
func (r *Repo) download(ctx context.Context, srcURL, dest string) error {
	var lastErr error
	for attempt := 0; attempt <= r.client.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * 500 * time.Millisecond
			if err := sleepCtx(ctx, backoff); err != nil {
				return err
			}
		}

		req, err := r.newRequest(ctx, srcURL)
		if err != nil {
			return err
		}

		resp, err := r.client.httpClient.Do(req)
		if err != nil {
			lastErr = err
			r.client.log.Warn("hub: download attempt failed", "url", srcURL, "attempt", attempt+1, "err", err)
			continue
		}

		retry, err := r.consumeResponse(ctx, resp, srcURL, dest)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
	}
	return lastErr
}

// consumeResponse handles one HTTP response. It reports whether the caller
// should retry.
func (r *Repo) consumeResponse(ctx context.Context, resp *http.Response, srcURL, dest string) (bool, error) {
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := r.writeBody(resp, dest); err != nil {
			return true, err
		}
		return false, nil

	case http.StatusTooManyRequests:
		wait := retryAfter(resp)
		r.client.log.Warn("hub: rate limited", "url", srcURL, "wait", wait)
		if err := sleepCtx(ctx, wait); err != nil {
			return false, err
		}
		return true, fmt.Errorf("rate limited: %w", &StatusError{Code: resp.StatusCode, URL: srcURL})

	case http.StatusUnauthorized, http.StatusForbidden:
		return false, fmt.Errorf("%w (set HF_TOKEN or PIISEC_HUB_TOKEN): %s", ErrUnauthorized, srcURL)

	case http.StatusNotFound:
		return false, ErrNotFound

	default:
		err := &StatusError{Code: resp.StatusCode, URL: srcURL}
		// Server-side failures are worth retrying; other client errors are not.
		return resp.StatusCode >= 500, err
	}
}

// writeBody streams a response body into dest atomically and records the
// ETag and SHA-256 sidecars.
func (r *Repo) writeBody(resp *http.Response, dest string) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // No-op after a successful rename.

	sum, err := copyChecksummed(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write download: %w", err)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("finalize download: %w", err)
	}

	if etag := responseETag(resp); etag != "" {
		_ = os.WriteFile(dest+etagSuffix, []byte(etag), 0o644)
	}
	_ = os.WriteFile(dest+sha256Suffix, []byte(sum), 0o644)

	r.client.log.Debug("hub: downloaded", "repo", r.id, "file", filepath.Base(dest), "sha256", sum)
	return nil
}

func (r *Repo) newRequest(ctx context.Context, srcURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", r.client.userAgent)
	if r.client.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.client.token)
	}
	return req, nil
}

// copyChecksummed copies src into dst while computing the hex SHA-256 of the
// bytes written.
func copyChecksummed(dst io.Writer, src io.Reader) (string, error) {
	pr, pw := io.Pipe()
	done := make(chan struct{})
	var sum string
	var sumErr error
	go func() {
		defer close(done)
		sum, sumErr = checksumReader(pr)
	}()

	_, err := io.Copy(io.MultiWriter(dst, pw), src)
	pw.CloseWithError(err)
	<-done
	if err != nil {
		return "", err
	}
	return sum, sumErr
}

// responseETag prefers the linked ETag (large-file storage) over the plain one.
func responseETag(resp *http.Response) string {
	if etag := resp.Header.Get("X-Linked-Etag"); etag != "" {
		return etag
	}
	return resp.Header.Get("ETag")
}

// retryAfter parses the Retry-After header, clamped to [1s, 60s].
func retryAfter(resp *http.Response) time.Duration {
	wait := 5 * time.Second
	if raw := resp.Header.Get("Retry-After"); raw != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			wait = time.Duration(secs) * time.Second
		}
	}
	if wait < time.Second {
		wait = time.Second
	}
	if wait > time.Minute {
		wait = time.Minute
	}
	return wait
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// validateRepoID rejects identifiers that are empty or could escape the
// cache directory.
func validateRepoID(id string) error {
	if id == "" {
		return ErrInvalidRepoID
	}
	parts := strings.Split(id, "/")
	if len(parts) > 2 {
		return fmt.Errorf("%w: %q", ErrInvalidRepoID, id)
	}
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidRepoID, id)
		}
	}
	return nil
}

// validateFilename rejects names with path separators or traversal segments.
func validateFilename(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return nil
}
