package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"photo-index/internal/logging"
	"photo-index/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Sentinel errors returned by store operations.
var (
	// ErrNotFound is returned when a photo does not exist.
	ErrNotFound = errors.New("photo not found")
	// ErrDuplicatePath is returned when an insert hits the unique path
	// constraint. Callers treat it as "already indexed", not a failure.
	ErrDuplicatePath = errors.New("path already indexed")
	// ErrRenameConflict is returned when a rename target path is already
	// occupied in the index.
	ErrRenameConflict = errors.New("target path already indexed")
)

// Database is the photo index store. It enforces path uniqueness at the
// storage layer and serves duplicate-group and statistical queries from
// the (file_hash, file_size) index without touching the filesystem.
type Database struct {
	db      *sql.DB
	dbPath  string
	txStart time.Time
}

// New opens (creating if necessary) the index at dbPath. The parent
// directory must already exist; use startup.LoadConfig for validation.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	// WAL with a busy timeout keeps readers unblocked during batched
	// commits and avoids "database is locked" errors.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Single writer, multiple readers
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS photos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path TEXT UNIQUE NOT NULL,
		file_hash TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		storage_location TEXT,
		volume_name TEXT,
		width INTEGER,
		height INTEGER,
		format TEXT,
		date_taken TIMESTAMP,
		date_modified TIMESTAMP,
		thumbnail_path TEXT,
		category TEXT,
		hidden INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Duplicate detection and the common sort/filter columns
	CREATE INDEX IF NOT EXISTS idx_file_hash ON photos(file_hash);
	CREATE INDEX IF NOT EXISTS idx_date_taken ON photos(date_taken);
	CREATE INDEX IF NOT EXISTS idx_file_size ON photos(file_size);
	`

	_, err := d.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// BeginBatch starts a transaction for batched writes. The caller must
// finish it with EndBatch.
func (d *Database) BeginBatch() (*sql.Tx, error) {
	d.txStart = time.Now()

	// Transaction lifetime is managed by EndBatch, not a timeout context.
	tx, err := d.db.BeginTx(context.Background(), nil)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// EndBatch commits the transaction, or rolls it back when err is non-nil.
func (d *Database) EndBatch(tx *sql.Tx, err error) error {
	duration := time.Since(d.txStart).Seconds()

	if err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(duration)
		rbErr := tx.Rollback()
		if rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	metrics.DBTransactionDuration.WithLabelValues("commit").Observe(duration)
	return tx.Commit()
}

// InsertPhoto inserts a new record within a transaction. A path that is
// already indexed returns ErrDuplicatePath and leaves the existing record
// untouched; the pipeline never refreshes a stored path in place.
func (d *Database) InsertPhoto(tx *sql.Tx, p *Photo) error {
	query := `
	INSERT INTO photos
		(file_path, file_hash, file_size, storage_location, volume_name,
		 width, height, format, date_taken, date_modified, thumbnail_path, category, hidden)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(context.Background(), query,
		p.Path,
		p.ContentHash,
		p.Size,
		p.Location,
		p.Volume,
		p.Width,
		p.Height,
		p.Format,
		p.DateTaken,
		p.DateModified,
		p.ThumbnailPath,
		p.Category,
		boolToInt(p.Hidden),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicatePath
		}
		return err
	}

	if id, err := result.LastInsertId(); err == nil {
		p.ID = id
	}
	metrics.DBRowsAffected.WithLabelValues("insert_photo").Observe(1)
	return nil
}

// PathIndexed reports whether the path already has a record.
func (d *Database) PathIndexed(ctx context.Context, path string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	err := d.db.QueryRowContext(ctx, "SELECT id FROM photos WHERE file_path = ?", path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindByContent returns the paths of records with identical content,
// identified purely by (file_hash, file_size) equality.
func (d *Database) FindByContent(ctx context.Context, hash string, size int64) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		"SELECT file_path FROM photos WHERE file_hash = ? AND file_size = ?", hash, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
