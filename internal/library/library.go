package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"photo-index/internal/database"
	"photo-index/internal/logging"
	"photo-index/internal/scanconfig"
	"photo-index/internal/scanner"
	"photo-index/internal/thumbs"
)

const (
	maxCategoryLen = 100
	maxPathLen     = 1000
)

// Library bundles the index store, scan pipeline, and thumbnail cache
// behind the operations the CLI and query layers consume.
type Library struct {
	db      *database.Database
	scanner *scanner.Scanner
	thumbs  *thumbs.Generator
}

// New creates a Library.
func New(db *database.Database, sc *scanner.Scanner, gen *thumbs.Generator) *Library {
	return &Library{
		db:      db,
		scanner: sc,
		thumbs:  gen,
	}
}

// Scan indexes every recognized image under root.
func (l *Library) Scan(ctx context.Context, root string, cfg *scanconfig.Config) (scanner.Summary, error) {
	return l.scanner.Scan(ctx, root, cfg)
}

// RecategorizeAll re-runs the category classifier over all stored records
// without touching the filesystem.
func (l *Library) RecategorizeAll(ctx context.Context) (map[string]int, error) {
	return l.scanner.RecategorizeAll(ctx)
}

// ListPhotos returns a filtered, sorted, paginated listing.
func (l *Library) ListPhotos(ctx context.Context, opts database.ListOptions) (*database.PhotoPage, error) {
	return l.db.ListPhotos(ctx, opts)
}

// GetPhoto retrieves one photo by id.
func (l *Library) GetPhoto(ctx context.Context, id int64) (*database.Photo, error) {
	return l.db.GetPhoto(ctx, id)
}

// GetPhotoByPath retrieves one photo by file path.
func (l *Library) GetPhotoByPath(ctx context.Context, path string) (*database.Photo, error) {
	return l.db.GetPhotoByPath(ctx, path)
}

// ListDuplicateGroups computes all duplicate groups on demand.
func (l *Library) ListDuplicateGroups(ctx context.Context) ([]database.DuplicateGroup, error) {
	return l.db.DuplicateGroups(ctx)
}

// GetStats summarizes the index.
func (l *Library) GetStats(ctx context.Context) (*database.Stats, error) {
	return l.db.CalculateStats(ctx)
}

// ListCategories returns the distinct categories in use.
func (l *Library) ListCategories(ctx context.Context) ([]string, error) {
	return l.db.ListCategories(ctx)
}

// SetCategory updates a photo's category.
func (l *Library) SetCategory(ctx context.Context, id int64, category string) error {
	category = strings.TrimSpace(category)
	if len(category) > maxCategoryLen {
		return fmt.Errorf("category name too long (max %d characters)", maxCategoryLen)
	}
	return l.db.UpdateCategory(ctx, id, category)
}

// SetHidden updates a photo's visibility flag.
func (l *Library) SetHidden(ctx context.Context, id int64, hidden bool) error {
	return l.db.SetHidden(ctx, id, hidden)
}

// RenamePath moves the file on disk and updates the index as one logical
// operation. The rename is rejected with ErrRenameConflict when the
// target is already indexed or already exists on disk. If the store
// update fails after the filesystem rename succeeded, the rename is
// rolled back so no inconsistent state survives.
func (l *Library) RenamePath(ctx context.Context, id int64, newPath string) error {
	if len(newPath) > maxPathLen {
		return fmt.Errorf("file path too long (max %d characters)", maxPathLen)
	}

	photo, err := l.db.GetPhoto(ctx, id)
	if err != nil {
		return err
	}

	if newPath == photo.Path {
		return nil
	}

	if _, err := l.db.GetPhotoByPath(ctx, newPath); err == nil {
		return database.ErrRenameConflict
	} else if !errors.Is(err, database.ErrNotFound) {
		return err
	}

	if _, err := os.Stat(newPath); err == nil {
		return database.ErrRenameConflict
	}

	if err := os.Rename(photo.Path, newPath); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	if err := l.db.UpdatePath(ctx, id, newPath); err != nil {
		// Roll the filesystem back so path and index stay consistent.
		if rbErr := os.Rename(newPath, photo.Path); rbErr != nil {
			logging.Error("Rename rollback failed for %s: %v", newPath, rbErr)
			return errors.Join(err, rbErr)
		}
		return err
	}

	return nil
}

// DeletePhoto removes the file from disk and its record from the index.
// A file already missing on disk is not an error; the record is removed
// regardless.
func (l *Library) DeletePhoto(ctx context.Context, id int64) error {
	photo, err := l.db.GetPhoto(ctx, id)
	if err != nil {
		return err
	}

	if err := os.Remove(photo.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return l.db.DeletePhoto(ctx, id)
}
