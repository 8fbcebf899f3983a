package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Identity returns the content address of everything read from r: the
// SHA-256 of the bytes, lowercase hex. Identical bytes always map to the
// same identity, wherever they live.
func Identity(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("%w: %v", ErrIdentity, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileIdentity hashes the full content of the file at path. Rewriting a
// file's tags changes its bytes and therefore its identity.
func FileIdentity(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrIdentity, path, err)
	}
	defer f.Close()

	id, err := Identity(f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return id, nil
}
