package thumbs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"

	"photo-index/internal/logging"
	"photo-index/internal/metrics"

	// Decoders for formats imaging does not register itself
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// MaxSize bounds both thumbnail dimensions; aspect ratio is preserved.
	MaxSize = 300

	// JPEG quality for encoded previews.
	jpegQuality = 85

	// Length of the content hash prefix used for asset names.
	hashPrefixLen = 16
)

// Generator produces content-addressed thumbnail assets. An asset is named
// from a prefix of the source file's content hash, so all paths with
// identical content share one thumbnail and regeneration is a no-op.
type Generator struct {
	dir string
	mu  sync.Mutex
}

// New creates a Generator writing assets into dir, creating it if needed.
func New(dir string) (*Generator, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail directory %s: %w", dir, err)
	}
	return &Generator{dir: dir}, nil
}

// Dir returns the asset directory.
func (g *Generator) Dir() string {
	return g.dir
}

// AssetPath returns the deterministic asset path for a content hash.
func (g *Generator) AssetPath(contentHash string) string {
	prefix := contentHash
	if len(prefix) > hashPrefixLen {
		prefix = prefix[:hashPrefixLen]
	}
	return filepath.Join(g.dir, prefix+".jpg")
}

// Generate produces the thumbnail for path, keyed by contentHash computed
// earlier in the pipeline (never recomputed here). If the asset already
// exists it is returned as-is. Decode or encode failure returns an error;
// the caller indexes the record without a thumbnail.
func (g *Generator) Generate(path, contentHash string) (string, error) {
	assetPath := g.AssetPath(contentHash)

	if _, err := os.Stat(assetPath); err == nil {
		logging.Debug("Thumbnail cache hit: %s", assetPath)
		metrics.ThumbnailCacheHits.Inc()
		return assetPath, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	// Parallel scan workers can race here on identical content; whoever
	// held the lock first has already written the asset.
	if _, err := os.Stat(assetPath); err == nil {
		metrics.ThumbnailCacheHits.Inc()
		return assetPath, nil
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", path, err)
	}

	// Fit resizes preserving aspect ratio so neither dimension exceeds
	// MaxSize, and yields NRGBA regardless of the source color mode.
	thumb := imaging.Fit(img, MaxSize, MaxSize, imaging.Lanczos)

	if err := imaging.Save(thumb, assetPath, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("failed to save thumbnail %s: %w", assetPath, err)
	}

	logging.Debug("Generated thumbnail: %s", assetPath)
	metrics.ThumbnailsGenerated.Inc()
	return assetPath, nil
}
