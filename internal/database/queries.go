package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"photo-index/internal/metrics"
)

const photoColumns = `id, file_path, file_hash, file_size, storage_location, volume_name,
	width, height, format, date_taken, date_modified, thumbnail_path, category, hidden, created_at`

// scanPhoto reads one photo row. The scan target order must match
// photoColumns.
func scanPhoto(scanner interface{ Scan(...interface{}) error }) (Photo, error) {
	var p Photo
	var location, volume, format, thumbnail, category sql.NullString
	var width, height sql.NullInt64
	var dateTaken, dateModified, createdAt sql.NullTime
	var hidden int

	err := scanner.Scan(
		&p.ID, &p.Path, &p.ContentHash, &p.Size, &location, &volume,
		&width, &height, &format, &dateTaken, &dateModified, &thumbnail,
		&category, &hidden, &createdAt,
	)
	if err != nil {
		return Photo{}, err
	}

	p.Location = location.String
	p.Volume = volume.String
	if width.Valid {
		w := int(width.Int64)
		p.Width = &w
	}
	if height.Valid {
		h := int(height.Int64)
		p.Height = &h
	}
	if format.Valid {
		f := format.String
		p.Format = &f
	}
	if dateTaken.Valid {
		t := dateTaken.Time
		p.DateTaken = &t
	}
	if dateModified.Valid {
		p.DateModified = dateModified.Time
	}
	if thumbnail.Valid {
		tp := thumbnail.String
		p.ThumbnailPath = &tp
	}
	p.Category = category.String
	p.Hidden = hidden != 0
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	return p, nil
}

// GetPhoto retrieves a single photo by id.
func (d *Database) GetPhoto(ctx context.Context, id int64) (*Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM photos WHERE id = ?", photoColumns), id)

	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPhotoByPath retrieves a single photo by its file path.
func (d *Database) GetPhotoByPath(ctx context.Context, path string) (*Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM photos WHERE file_path = ?", photoColumns), path)

	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPhotos returns a filtered, sorted, paginated photo listing.
// Hidden photos are excluded unless opts.ShowHidden is set.
func (d *Database) ListPhotos(ctx context.Context, opts ListOptions) (*PhotoPage, error) {
	if opts.Limit < 1 {
		opts.Limit = 100
	}
	if opts.Limit > 1000 {
		opts.Limit = 1000
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	var where []string
	var args []interface{}

	if !opts.ShowHidden {
		where = append(where, "hidden = 0")
	}
	if f := strings.TrimSpace(opts.Format); f != "" {
		where = append(where, "format = ?")
		args = append(args, f)
	}
	if c := strings.TrimSpace(opts.Category); c != "" {
		where = append(where, "category = ?")
		args = append(args, c)
	}
	if s := strings.TrimSpace(opts.Search); s != "" {
		where = append(where, "file_path LIKE ?")
		args = append(args, "%"+s+"%")
	}

	whereSQL := "1=1"
	if len(where) > 0 {
		whereSQL = strings.Join(where, " AND ")
	}

	// Whitelisted sort column; anything else falls back to the default.
	sortColumn := string(SortByModified)
	switch opts.SortField {
	case SortByTaken, SortBySize, SortByWidth, SortByHeight:
		sortColumn = string(opts.SortField)
	}

	sortDir := "DESC"
	if opts.SortOrder == SortAsc {
		sortDir = "ASC"
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM photos WHERE %s", whereSQL)
	if err := d.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count query failed: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM photos WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?`,
		photoColumns, whereSQL, sortColumn, sortDir)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query failed: %w", err)
	}
	defer rows.Close()

	photos := []Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &PhotoPage{
		Photos: photos,
		Total:  total,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}, nil
}

// ListCategories returns all distinct non-empty categories.
func (d *Database) ListCategories(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM photos
		WHERE category IS NOT NULL AND category != ''
		ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DuplicateGroups computes all duplicate groups: sets of records sharing
// (file_hash, file_size) with more than one member. Groups are ordered
// largest file first; members are ordered by modification time.
func (d *Database) DuplicateGroups(ctx context.Context) ([]DuplicateGroup, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT file_hash, file_size, COUNT(*) as count
		FROM photos
		GROUP BY file_hash, file_size
		HAVING count > 1
		ORDER BY file_size DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []DuplicateGroup
	for rows.Next() {
		var g DuplicateGroup
		if err := rows.Scan(&g.ContentHash, &g.Size, &g.Count); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		members, err := d.groupMembers(ctx, groups[i].ContentHash, groups[i].Size)
		if err != nil {
			return nil, err
		}
		groups[i].Photos = members
	}

	return groups, nil
}

func (d *Database) groupMembers(ctx context.Context, hash string, size int64) ([]Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM photos
			WHERE file_hash = ? AND file_size = ?
			ORDER BY date_modified`, photoColumns),
		hash, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// CalculateStats computes index-wide statistics.
func (d *Database) CalculateStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(file_size), 0) FROM photos").
		Scan(&stats.TotalPhotos, &stats.TotalBytes)
	if err != nil {
		return nil, fmt.Errorf("totals query failed: %w", err)
	}

	err = d.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT file_hash, file_size, COUNT(*) as count
			FROM photos
			GROUP BY file_hash, file_size
			HAVING count > 1
		)`).Scan(&stats.DuplicateGroups)
	if err != nil {
		return nil, fmt.Errorf("duplicate count query failed: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT COALESCE(format, ''), COUNT(*) as count
		FROM photos
		GROUP BY format
		ORDER BY count DESC`)
	if err != nil {
		return nil, fmt.Errorf("format breakdown query failed: %w", err)
	}
	for rows.Next() {
		var fc FormatCount
		if err := rows.Scan(&fc.Format, &fc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.Formats = append(stats.Formats, fc)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = d.db.QueryContext(ctx, `
		SELECT COALESCE(storage_location, ''), COALESCE(volume_name, ''),
			COUNT(*) as count, COALESCE(SUM(file_size), 0)
		FROM photos
		GROUP BY storage_location, volume_name
		ORDER BY count DESC`)
	if err != nil {
		return nil, fmt.Errorf("location breakdown query failed: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lc LocationCount
		if err := rows.Scan(&lc.Location, &lc.Volume, &lc.Count, &lc.Bytes); err != nil {
			return nil, err
		}
		stats.Locations = append(stats.Locations, lc)
	}

	return stats, rows.Err()
}

// UpdateCategory sets the category of a photo.
func (d *Database) UpdateCategory(ctx context.Context, id int64, category string) error {
	return d.updateField(ctx, id, "category", strings.TrimSpace(category))
}

// SetHidden sets the user-controlled visibility flag.
func (d *Database) SetHidden(ctx context.Context, id int64, hidden bool) error {
	return d.updateField(ctx, id, "hidden", boolToInt(hidden))
}

func (d *Database) updateField(ctx context.Context, id int64, column string, value interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE photos SET %s = ? WHERE id = ?", column), value, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	metrics.DBRowsAffected.WithLabelValues("update_" + column).Observe(float64(rows))
	return nil
}

// UpdatePath changes a photo's path. The unique constraint rejects a
// target path that is already indexed; that maps to ErrRenameConflict so
// callers can refuse the rename with no partial state.
func (d *Database) UpdatePath(ctx context.Context, id int64, newPath string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		"UPDATE photos SET file_path = ? WHERE id = ?", newPath, id)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrRenameConflict
		}
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePhoto removes a record from the index.
func (d *Database) DeletePhoto(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, "DELETE FROM photos WHERE id = ?", id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AllForRecategorize returns the stored classifier inputs for every photo.
func (d *Database) AllForRecategorize(ctx context.Context) ([]RecategorizeRow, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT id, file_path, width, height, date_taken FROM photos")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RecategorizeRow
	for rows.Next() {
		var r RecategorizeRow
		var width, height sql.NullInt64
		var taken sql.NullTime
		if err := rows.Scan(&r.ID, &r.Path, &width, &height, &taken); err != nil {
			return nil, err
		}
		if width.Valid {
			w := int(width.Int64)
			r.Width = &w
		}
		if height.Valid {
			h := int(height.Int64)
			r.Height = &h
		}
		if taken.Valid {
			t := taken.Time
			r.DateTaken = &t
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// UpdateCategoryTx updates a photo's category within a batch transaction.
func (d *Database) UpdateCategoryTx(tx *sql.Tx, id int64, category string) error {
	_, err := tx.ExecContext(context.Background(),
		"UPDATE photos SET category = ? WHERE id = ?", category, id)
	return err
}
