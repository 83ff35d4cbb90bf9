package scanner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"photo-index/internal/database"
	"photo-index/internal/logging"
	"photo-index/internal/mediatypes"
	"photo-index/internal/metrics"
	"photo-index/internal/scanconfig"
	"photo-index/internal/thumbs"
	"photo-index/internal/workers"
)

const (
	// defaultBatchSize is the number of inserts per committed transaction.
	defaultBatchSize = 100

	// jobBuffer is the candidate channel capacity.
	jobBuffer = 1000

	// maxWorkers caps the stage worker pool.
	maxWorkers = 8
)

// Options configures a Scanner.
type Options struct {
	// Workers is the number of parallel stage workers (hash, metadata,
	// thumbnail). 0 sizes the pool from available CPUs.
	Workers int
	// BatchSize is the number of inserts per committed transaction.
	BatchSize int
	// MaxDepth bounds traversal depth below the root when positive.
	// Exclusion patterns are the dominant safety net, not depth.
	MaxDepth int
}

// Scanner runs the scan pipeline: traversal with exclusion pruning,
// content hashing, metadata extraction, classification, thumbnail
// generation, and batched index writes.
type Scanner struct {
	db     *database.Database
	thumbs *thumbs.Generator
	opts   Options

	scanMu     sync.Mutex
	isScanning bool
}

// Summary reports aggregate scan results. Per-file failures are logged,
// not returned.
type Summary struct {
	Found      int64 `json:"found"`
	Indexed    int64 `json:"indexed"`
	Duplicates int64 `json:"duplicates"`
}

// record is a fully processed file waiting for the single writer.
type record struct {
	photo *database.Photo
	dupOf string // path of an already indexed copy, if any
}

// New creates a Scanner. Zero option fields get defaults.
func New(db *database.Database, gen *thumbs.Generator, opts Options) *Scanner {
	if opts.Workers <= 0 {
		opts.Workers = workers.ForMixed(maxWorkers)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	return &Scanner{
		db:     db,
		thumbs: gen,
		opts:   opts,
	}
}

// Scan walks root and indexes every recognized image file not already in
// the store. Hashing, metadata extraction, and thumbnail generation run on
// parallel workers; all index writes go through a single writer goroutine
// committing in batches. Cancellation is checked between files; a
// cancelled scan returns the counts accumulated so far with ctx.Err().
func (s *Scanner) Scan(ctx context.Context, root string, cfg *scanconfig.Config) (Summary, error) {
	if !s.tryStartScan() {
		return Summary{}, errors.New("scan already in progress")
	}
	defer s.finishScan()

	root, err := resolveRoot(root)
	if err != nil {
		return Summary{}, err
	}

	metrics.ScanRunsTotal.Inc()
	metrics.ScanIsRunning.Set(1)
	defer metrics.ScanIsRunning.Set(0)

	startTime := time.Now()
	defer func() {
		metrics.ScanDuration.Observe(time.Since(startTime).Seconds())
	}()

	logging.Info("Scanning %s with %d workers...", root, s.opts.Workers)

	var found, indexed, duplicates atomic.Int64

	jobs := make(chan string, jobBuffer)
	records := make(chan record, jobBuffer)

	var workerWg sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		workerWg.Add(1)
		go func() {
			defer workerWg.Done()
			for path := range jobs {
				if ctx.Err() != nil {
					continue // drain
				}
				s.processFile(ctx, path, records)
			}
		}()
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeRecords(records, &found, &indexed, &duplicates)
	}()

	walkErr := s.walk(ctx, root, cfg, jobs, &found)

	close(jobs)
	workerWg.Wait()
	close(records)
	<-writerDone

	summary := Summary{
		Found:      found.Load(),
		Indexed:    indexed.Load(),
		Duplicates: duplicates.Load(),
	}

	if walkErr != nil {
		return summary, walkErr
	}

	logging.Info("Scan complete: found %d images, indexed %d new, %d duplicates in %v",
		summary.Found, summary.Indexed, summary.Duplicates, time.Since(startTime))
	return summary, nil
}

// walk traverses root top-down, pruning excluded directories before
// descending so their subtrees are never opened or stat'd, and enqueues
// files with a recognized image extension.
func (s *Scanner) walk(ctx context.Context, root string, cfg *scanconfig.Config, jobs chan<- string, found *atomic.Int64) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fs.SkipAll
		}

		if err != nil {
			logging.Warn("Error accessing path %s: %v", path, err)
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if cfg.ShouldSkipDir(path) {
				logging.Debug("Pruning excluded directory: %s", path)
				metrics.DirsPruned.Inc()
				return filepath.SkipDir
			}
			if s.opts.MaxDepth > 0 && pathDepth(root, path) >= s.opts.MaxDepth {
				logging.Debug("Max depth reached at %s", path)
				return filepath.SkipDir
			}
			return nil
		}

		if !mediatypes.IsImagePath(path) {
			return nil
		}

		found.Add(1)
		metrics.FilesFound.Inc()
		jobs <- path
		return nil
	})

	if errors.Is(err, fs.SkipAll) || errors.Is(err, filepath.SkipAll) {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("walk error: %w", err)
	}
	return ctx.Err()
}

// processFile runs the per-candidate pipeline: identity, metadata,
// classification, thumbnail. Every failure here is per-file: the file is
// either skipped (unreadable) or indexed with absent fields (undecodable).
func (s *Scanner) processFile(ctx context.Context, path string, out chan<- record) {
	already, err := s.db.PathIndexed(ctx, path)
	if err != nil {
		logging.Error("Error checking index for %s: %v", path, err)
		return
	}
	if already {
		// No refresh on an indexed path: a content change in place is
		// invisible until an explicit re-index feature exists.
		logging.Debug("Already indexed: %s", path)
		return
	}

	hash, err := ContentHash(path)
	if err != nil {
		// Unreadable file: leave unindexed so the next scan retries it.
		metrics.FileErrors.WithLabelValues("hash").Inc()
		logging.Error("Error hashing %s: %v", path, err)
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		metrics.FileErrors.WithLabelValues("stat").Inc()
		logging.Error("Error stating %s: %v", path, err)
		return
	}

	existing, err := s.db.FindByContent(ctx, hash, info.Size())
	if err != nil {
		logging.Error("Error probing duplicates for %s: %v", path, err)
	}

	md := ExtractMetadata(path)
	if md == nil {
		metrics.FileErrors.WithLabelValues("metadata").Inc()
	}

	location, volume := ClassifyLocation(path)

	var width, height *int
	var format *string
	var taken *time.Time
	if md != nil {
		width, height = &md.Width, &md.Height
		format = &md.Format
		taken = md.DateTaken
	}

	category := Categorize(path, width, height, taken)

	var thumbRef *string
	if assetPath, err := s.thumbs.Generate(path, hash); err != nil {
		metrics.FileErrors.WithLabelValues("thumbnail").Inc()
		logging.Debug("No thumbnail for %s: %v", path, err)
	} else {
		thumbRef = &assetPath
	}

	photo := &database.Photo{
		Path:          path,
		ContentHash:   hash,
		Size:          info.Size(),
		Location:      location,
		Volume:        volume,
		Width:         width,
		Height:        height,
		Format:        format,
		DateTaken:     taken,
		DateModified:  info.ModTime(),
		ThumbnailPath: thumbRef,
		Category:      category,
	}

	var dupOf string
	if len(existing) > 0 {
		dupOf = existing[0]
	}

	out <- record{photo: photo, dupOf: dupOf}
}

// writeRecords is the single writer: it inserts processed records in
// batched transactions, preserving the path-uniqueness and batched-commit
// invariants regardless of worker parallelism.
func (s *Scanner) writeRecords(records <-chan record, found, indexed, duplicates *atomic.Int64) {
	// Content seen during this run, for duplicates whose first copy was
	// inserted moments ago and so was invisible to the worker's probe.
	seen := make(map[string]string)

	var tx *sql.Tx
	inBatch := 0

	commit := func() {
		if tx == nil {
			return
		}
		if err := s.db.EndBatch(tx, nil); err != nil {
			logging.Error("Error committing batch: %v", err)
		}
		tx = nil
		inBatch = 0
	}
	defer commit()

	for rec := range records {
		if tx == nil {
			var err error
			tx, err = s.db.BeginBatch()
			if err != nil {
				logging.Error("Error beginning batch: %v", err)
				continue
			}
		}

		err := s.db.InsertPhoto(tx, rec.photo)
		if errors.Is(err, database.ErrDuplicatePath) {
			logging.Debug("Already indexed: %s", rec.photo.Path)
			continue
		}
		if err != nil {
			metrics.FileErrors.WithLabelValues("insert").Inc()
			logging.Warn("Error inserting %s: %v", rec.photo.Path, err)
			continue
		}

		indexed.Add(1)
		metrics.FilesIndexed.Inc()

		key := fmt.Sprintf("%s:%d", rec.photo.ContentHash, rec.photo.Size)
		dupOf := rec.dupOf
		if dupOf == "" {
			dupOf = seen[key]
		}
		if dupOf != "" {
			duplicates.Add(1)
			metrics.DuplicatesFound.Inc()
			logging.Info("DUPLICATE: %s (same content as %s)", rec.photo.Path, dupOf)
		} else {
			seen[key] = rec.photo.Path
		}

		inBatch++
		if inBatch >= s.opts.BatchSize {
			commit()
			logging.Info("Processed %d photos (found %d, %d duplicates) - last: %s/%s",
				indexed.Load(), found.Load(), duplicates.Load(),
				rec.photo.Location, rec.photo.Volume)
		}
	}
}

// IsScanning reports whether a scan is currently in progress.
func (s *Scanner) IsScanning() bool {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	return s.isScanning
}

func (s *Scanner) tryStartScan() bool {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	if s.isScanning {
		return false
	}
	s.isScanning = true
	return true
}

func (s *Scanner) finishScan() {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	s.isScanning = false
}

// resolveRoot expands a leading tilde and makes the root absolute.
func resolveRoot(root string) (string, error) {
	if root == "~" || strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		root = filepath.Join(home, strings.TrimPrefix(root, "~"))
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve scan root %s: %w", root, err)
	}
	return abs, nil
}

func pathDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
