package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"photo-index/internal/metrics"
)

// hashChunkSize is the read buffer size for streaming hash computation.
const hashChunkSize = 8192

// ContentHash computes the hex-encoded SHA-256 digest of the file's full
// contents, streaming in fixed-size chunks. The digest is the file's
// content identity: stable across renames and copies, and collision
// resistant enough to drive duplicate detection.
func ContentHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	n, err := io.CopyBuffer(h, f, buf)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	metrics.HashBytes.Add(float64(n))

	return hex.EncodeToString(h.Sum(nil)), nil
}
