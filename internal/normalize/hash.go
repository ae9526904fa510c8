package normalize

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"
)

// FileHash computes the hex-encoded SHA-256 of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for hash: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// Digest accumulates a SHA-256 over ordered rows of string values. Values are
// null-separated and rows are terminated by a record separator so that
// shifting a value between columns changes the digest.
type Digest struct {
	h hash.Hash
}

// NewDigest returns an empty Digest.
func NewDigest() *Digest {
	return &Digest{h: sha256.New()}
}

// AddRow feeds one row of values into the digest.
func (d *Digest) AddRow(values ...string) {
	for _, v := range values {
		d.h.Write([]byte(v))
		d.h.Write([]byte{0})
	}
	d.h.Write([]byte{0x1e})
}

// Sum returns the hex-encoded digest of all rows added so far.
func (d *Digest) Sum() string {
	return fmt.Sprintf("%x", d.h.Sum(nil))
}
