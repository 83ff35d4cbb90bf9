package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan metrics
var (
	ScanRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_index_scan_runs_total",
			Help: "Total number of scan runs",
		},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_index_scan_duration_seconds",
			Help:    "Duration of complete scan runs in seconds",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 3600, 14400},
		},
	)

	ScanIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_index_scan_running",
			Help: "Whether a scan is currently in progress (1 or 0)",
		},
	)

	FilesFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_index_files_found_total",
			Help: "Total candidate image files encountered during scans",
		},
	)

	FilesIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_index_files_indexed_total",
			Help: "Total files newly inserted into the index",
		},
	)

	DuplicatesFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_index_duplicates_found_total",
			Help: "Total files whose content matched an already indexed file",
		},
	)

	FileErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_file_errors_total",
			Help: "Per-file failures during scanning, by stage",
		},
		[]string{"stage"}, // "hash", "metadata", "thumbnail", "insert"
	)

	DirsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_index_dirs_pruned_total",
			Help: "Directories skipped by exclusion patterns",
		},
	)

	HashBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_index_hash_bytes_total",
			Help: "Total bytes read while computing content hashes",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_index_thumbnails_generated_total",
			Help: "Thumbnails generated (cache misses)",
		},
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_index_thumbnail_cache_hits_total",
			Help: "Thumbnail generations skipped because the asset already existed",
		},
	)
)

// Database metrics
var (
	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_index_db_transaction_duration_seconds",
			Help:    "Database transaction duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"result"}, // "commit", "rollback"
	)

	DBRowsAffected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_index_db_rows_affected",
			Help:    "Rows affected by write operations",
			Buckets: []float64{1, 10, 100, 500, 1000, 5000},
		},
		[]string{"operation"},
	)
)
