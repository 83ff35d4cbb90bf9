package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestContentHash(t *testing.T) {
	dir := t.TempDir()

	content := []byte("not actually an image, but bytes are bytes")
	path := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ContentHash(path)
	if err != nil {
		t.Fatalf("ContentHash failed: %v", err)
	}

	sum := sha256.Sum256(content)
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("ContentHash = %s, want %s", got, want)
	}
}

func TestContentHashIdenticalFiles(t *testing.T) {
	dir := t.TempDir()

	content := make([]byte, 3*hashChunkSize+17) // spans several chunks
	for i := range content {
		content[i] = byte(i % 251)
	}

	pathA := filepath.Join(dir, "a.jpg")
	pathB := filepath.Join(dir, "sub", "b.jpg")
	if err := os.MkdirAll(filepath.Dir(pathB), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pathA, content, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pathB, content, 0644); err != nil {
		t.Fatal(err)
	}

	hashA, err := ContentHash(pathA)
	if err != nil {
		t.Fatal(err)
	}
	hashB, err := ContentHash(pathB)
	if err != nil {
		t.Fatal(err)
	}

	if hashA != hashB {
		t.Errorf("identical content produced different hashes: %s vs %s", hashA, hashB)
	}

	// Same size, different bytes: must not collide.
	altered := append([]byte(nil), content...)
	altered[len(altered)/2] ^= 0xff
	pathC := filepath.Join(dir, "c.jpg")
	if err := os.WriteFile(pathC, altered, 0644); err != nil {
		t.Fatal(err)
	}
	hashC, err := ContentHash(pathC)
	if err != nil {
		t.Fatal(err)
	}
	if hashC == hashA {
		t.Error("different content produced the same hash")
	}
}

func TestContentHashMissingFile(t *testing.T) {
	_, err := ContentHash(filepath.Join(t.TempDir(), "missing.jpg"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}
