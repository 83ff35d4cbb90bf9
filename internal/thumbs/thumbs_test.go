package thumbs

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"photo-index/internal/metrics"
)

const testHash = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatal(err)
	}
}

func TestAssetPath(t *testing.T) {
	g, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	got := g.AssetPath(testHash)
	want := filepath.Join(g.Dir(), "0123456789abcdef.jpg")
	if got != want {
		t.Errorf("AssetPath = %s, want %s", got, want)
	}

	// Deterministic: same hash, same asset.
	if g.AssetPath(testHash) != got {
		t.Error("AssetPath not deterministic")
	}
}

func TestGenerate(t *testing.T) {
	g, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	src := filepath.Join(t.TempDir(), "large.png")
	writePNG(t, src, 1200, 600)

	assetPath, err := g.Generate(src, testHash)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.HasSuffix(assetPath, ".jpg") {
		t.Errorf("asset is not a jpg: %s", assetPath)
	}

	f, err := os.Open(assetPath)
	if err != nil {
		t.Fatalf("asset not written: %v", err)
	}
	defer f.Close()

	config, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("asset not decodable: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("asset format = %s, want jpeg", format)
	}
	if config.Width > MaxSize || config.Height > MaxSize {
		t.Errorf("asset %dx%d exceeds bound %d", config.Width, config.Height, MaxSize)
	}
	// 2:1 source must stay 2:1.
	if config.Width != 2*config.Height {
		t.Errorf("aspect ratio not preserved: %dx%d", config.Width, config.Height)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	g, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	src := filepath.Join(t.TempDir(), "a.png")
	writePNG(t, src, 400, 400)

	first, err := g.Generate(src, testHash)
	if err != nil {
		t.Fatal(err)
	}
	info1, err := os.Stat(first)
	if err != nil {
		t.Fatal(err)
	}

	// Make a second write detectable.
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(first, old, old); err != nil {
		t.Fatal(err)
	}

	second, err := g.Generate(src, testHash)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("asset path changed on regeneration: %s vs %s", first, second)
	}

	info2, err := os.Stat(first)
	if err != nil {
		t.Fatal(err)
	}
	if !info2.ModTime().Equal(old) {
		t.Error("asset was rewritten; regeneration must be a no-op")
	}
	if info2.Size() != info1.Size() {
		t.Error("asset changed size on regeneration")
	}
}

func TestGenerateConcurrentSameHash(t *testing.T) {
	g, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// Identical content at distinct paths, all carrying the same hash,
	// the way parallel scan workers hit the generator during one pass.
	dir := t.TempDir()
	const callers = 8
	srcs := make([]string, callers)
	for i := range srcs {
		srcs[i] = filepath.Join(dir, fmt.Sprintf("copy%d.png", i))
		writePNG(t, srcs[i], 640, 320)
	}

	before := testutil.ToFloat64(metrics.ThumbnailsGenerated)

	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make([]error, callers)
	paths := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			paths[i], errs[i] = g.Generate(srcs[i], testHash)
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if paths[i] != paths[0] {
			t.Errorf("caller %d got asset %s, want %s", i, paths[i], paths[0])
		}
	}

	// One content hash, one generation; everyone else must hit the cache.
	if got := testutil.ToFloat64(metrics.ThumbnailsGenerated) - before; got != 1 {
		t.Errorf("asset generated %.0f times for one content hash, want 1", got)
	}

	f, err := os.Open(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, _, err := image.DecodeConfig(f); err != nil {
		t.Errorf("cached asset not decodable after concurrent generation: %v", err)
	}
}

func TestGenerateSharedAcrossPaths(t *testing.T) {
	g, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	srcA := filepath.Join(dir, "a.png")
	writePNG(t, srcA, 200, 200)
	data, err := os.ReadFile(srcA)
	if err != nil {
		t.Fatal(err)
	}
	srcB := filepath.Join(dir, "b.png")
	if err := os.WriteFile(srcB, data, 0644); err != nil {
		t.Fatal(err)
	}

	// Identical content means identical hash, so both paths share one asset.
	pathA, err := g.Generate(srcA, testHash)
	if err != nil {
		t.Fatal(err)
	}
	pathB, err := g.Generate(srcB, testHash)
	if err != nil {
		t.Fatal(err)
	}
	if pathA != pathB {
		t.Errorf("identical content produced distinct assets: %s vs %s", pathA, pathB)
	}

	entries, err := os.ReadDir(g.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 asset on disk, found %d", len(entries))
	}
}

func TestGenerateUndecodable(t *testing.T) {
	g, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	src := filepath.Join(t.TempDir(), "bad.jpg")
	if err := os.WriteFile(src, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := g.Generate(src, testHash); err == nil {
		t.Error("expected error for undecodable source")
	}

	if _, err := os.Stat(g.AssetPath(testHash)); !os.IsNotExist(err) {
		t.Error("failed generation must not leave an asset behind")
	}
}
