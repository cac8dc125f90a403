package hub

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"
)

// checksumReader computes the hex SHA-256 digest from an io.Reader.
// Used while streaming downloads so large files are never held in memory.
func checksumReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// checksumFile computes the hex SHA-256 digest of a file on disk.
func checksumFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is a cache location owned by this process.
	if err != nil {
		return "", err
	}
	defer f.Close()
	return checksumReader(f)
}

// Verify recomputes the SHA-256 of a cached file and compares it against the
// .sha256 sidecar written at download time. Files without a sidecar pass.
func Verify(path string) error {
	stored, err := os.ReadFile(path + sha256Suffix) //nolint:gosec // G304: sidecar next to cached file.
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	sum, err := checksumFile(path)
	if err != nil {
		return err
	}
	if sum != strings.TrimSpace(string(stored)) {
		return ErrChecksumMismatch
	}
	return nil
}
