package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()

	db, err := New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}

func testPhoto(path, hash string, size int64) *Photo {
	w, h := 800, 600
	format := "JPEG"
	return &Photo{
		Path:         path,
		ContentHash:  hash,
		Size:         size,
		Location:     "Local",
		Width:        &w,
		Height:       &h,
		Format:       &format,
		DateModified: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		Category:     "photo",
	}
}

// insertOne inserts a photo in its own transaction.
func insertOne(t *testing.T, db *Database, p *Photo) {
	t.Helper()

	tx, err := db.BeginBatch()
	if err != nil {
		t.Fatal(err)
	}
	insertErr := db.InsertPhoto(tx, p)
	if err := db.EndBatch(tx, insertErr); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
}

func TestInsertAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := testPhoto("/pics/a.jpg", "aaa", 1000)
	taken := time.Date(2023, 6, 1, 12, 30, 0, 0, time.UTC)
	p.DateTaken = &taken
	insertOne(t, db, p)

	if p.ID == 0 {
		t.Fatal("insert did not assign an id")
	}

	got, err := db.GetPhoto(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPhoto failed: %v", err)
	}
	if got.Path != p.Path {
		t.Errorf("path = %s, want %s", got.Path, p.Path)
	}
	if got.ContentHash != p.ContentHash || got.Size != p.Size {
		t.Errorf("content identity = (%s, %d), want (%s, %d)",
			got.ContentHash, got.Size, p.ContentHash, p.Size)
	}
	if got.Width == nil || *got.Width != 800 {
		t.Errorf("width = %v, want 800", got.Width)
	}
	if got.Format == nil || *got.Format != "JPEG" {
		t.Errorf("format = %v, want JPEG", got.Format)
	}
	if got.DateTaken == nil || !got.DateTaken.Equal(taken) {
		t.Errorf("dateTaken = %v, want %v", got.DateTaken, taken)
	}
	if got.Hidden {
		t.Error("new photo must not be hidden")
	}

	byPath, err := db.GetPhotoByPath(ctx, p.Path)
	if err != nil {
		t.Fatalf("GetPhotoByPath failed: %v", err)
	}
	if byPath.ID != p.ID {
		t.Errorf("GetPhotoByPath id = %d, want %d", byPath.ID, p.ID)
	}
}

func TestInsertNilOptionalFields(t *testing.T) {
	db := newTestDB(t)

	p := &Photo{
		Path:         "/pics/undecodable.jpg",
		ContentHash:  "ddd",
		Size:         42,
		Location:     "Other",
		DateModified: time.Now().UTC(),
		Category:     "image",
	}
	insertOne(t, db, p)

	got, err := db.GetPhoto(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Width != nil || got.Height != nil || got.Format != nil {
		t.Error("unset dimensions must round-trip as nil")
	}
	if got.DateTaken != nil || got.ThumbnailPath != nil {
		t.Error("unset dateTaken and thumbnail must round-trip as nil")
	}
}

func TestInsertDuplicatePath(t *testing.T) {
	db := newTestDB(t)

	insertOne(t, db, testPhoto("/pics/a.jpg", "aaa", 1000))

	tx, err := db.BeginBatch()
	if err != nil {
		t.Fatal(err)
	}
	insertErr := db.InsertPhoto(tx, testPhoto("/pics/a.jpg", "bbb", 2000))
	if !errors.Is(insertErr, ErrDuplicatePath) {
		t.Errorf("second insert of same path: got %v, want ErrDuplicatePath", insertErr)
	}
	// The batch survives; a duplicate path is skipped, not fatal.
	if err := db.EndBatch(tx, nil); err != nil {
		t.Fatalf("commit after tolerated duplicate failed: %v", err)
	}

	// The original record is untouched.
	got, err := db.GetPhotoByPath(context.Background(), "/pics/a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if got.ContentHash != "aaa" || got.Size != 1000 {
		t.Errorf("existing record was modified: hash=%s size=%d", got.ContentHash, got.Size)
	}
}

func TestGetPhotoNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.GetPhoto(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPhoto(9999) = %v, want ErrNotFound", err)
	}
	if _, err := db.GetPhotoByPath(ctx, "/no/such.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPhotoByPath = %v, want ErrNotFound", err)
	}
}

func TestPathIndexed(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	insertOne(t, db, testPhoto("/pics/a.jpg", "aaa", 1000))

	indexed, err := db.PathIndexed(ctx, "/pics/a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if !indexed {
		t.Error("inserted path reported as not indexed")
	}

	indexed, err = db.PathIndexed(ctx, "/pics/other.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if indexed {
		t.Error("unknown path reported as indexed")
	}
}

func TestFindByContent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	insertOne(t, db, testPhoto("/pics/a.jpg", "aaa", 1000))
	insertOne(t, db, testPhoto("/pics/copy.jpg", "aaa", 1000))
	// Same hash, different size: not the same content.
	insertOne(t, db, testPhoto("/pics/trunc.jpg", "aaa", 500))

	paths, err := db.FindByContent(ctx, "aaa", 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("found %d paths, want 2: %v", len(paths), paths)
	}

	paths, err = db.FindByContent(ctx, "zzz", 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 0 {
		t.Errorf("unknown content returned %v", paths)
	}
}

func TestDuplicateGroups(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Group of three (small), group of two (large), one unique.
	for i := 0; i < 3; i++ {
		p := testPhoto(fmt.Sprintf("/pics/small%d.jpg", i), "small", 100)
		p.DateModified = time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC)
		insertOne(t, db, p)
	}
	insertOne(t, db, testPhoto("/pics/big1.jpg", "big", 5000))
	insertOne(t, db, testPhoto("/pics/big2.jpg", "big", 5000))
	insertOne(t, db, testPhoto("/pics/unique.jpg", "uniq", 300))

	groups, err := db.DuplicateGroups(ctx)
	if err != nil {
		t.Fatalf("DuplicateGroups failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	// Largest file first.
	if groups[0].ContentHash != "big" || groups[0].Count != 2 {
		t.Errorf("group 0 = (%s, %d), want (big, 2)", groups[0].ContentHash, groups[0].Count)
	}
	if groups[1].ContentHash != "small" || groups[1].Count != 3 {
		t.Errorf("group 1 = (%s, %d), want (small, 3)", groups[1].ContentHash, groups[1].Count)
	}
	if len(groups[1].Photos) != 3 {
		t.Fatalf("small group has %d members, want 3", len(groups[1].Photos))
	}

	// Members ordered by modification time.
	members := groups[1].Photos
	for i := 1; i < len(members); i++ {
		if members[i].DateModified.Before(members[i-1].DateModified) {
			t.Errorf("group members not ordered by date_modified: %v", members)
		}
	}
}

func TestCalculateStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	png := "PNG"
	p1 := testPhoto("/pics/a.jpg", "aaa", 1000)
	p2 := testPhoto("/pics/b.jpg", "aaa", 1000)
	p3 := testPhoto("/pics/c.png", "ccc", 500)
	p3.Format = &png
	p3.Location = "External"
	p3.Volume = "Backup"
	insertOne(t, db, p1)
	insertOne(t, db, p2)
	insertOne(t, db, p3)

	stats, err := db.CalculateStats(ctx)
	if err != nil {
		t.Fatalf("CalculateStats failed: %v", err)
	}
	if stats.TotalPhotos != 3 {
		t.Errorf("TotalPhotos = %d, want 3", stats.TotalPhotos)
	}
	if stats.TotalBytes != 2500 {
		t.Errorf("TotalBytes = %d, want 2500", stats.TotalBytes)
	}
	if stats.DuplicateGroups != 1 {
		t.Errorf("DuplicateGroups = %d, want 1", stats.DuplicateGroups)
	}

	formats := map[string]int{}
	for _, fc := range stats.Formats {
		formats[fc.Format] = fc.Count
	}
	if formats["JPEG"] != 2 || formats["PNG"] != 1 {
		t.Errorf("format breakdown = %v", formats)
	}

	var external *LocationCount
	for i := range stats.Locations {
		if stats.Locations[i].Location == "External" {
			external = &stats.Locations[i]
		}
	}
	if external == nil {
		t.Fatal("External location missing from breakdown")
	}
	if external.Volume != "Backup" || external.Count != 1 || external.Bytes != 500 {
		t.Errorf("External breakdown = %+v", *external)
	}
}

func TestCalculateStatsEmpty(t *testing.T) {
	db := newTestDB(t)

	stats, err := db.CalculateStats(context.Background())
	if err != nil {
		t.Fatalf("CalculateStats on empty index failed: %v", err)
	}
	if stats.TotalPhotos != 0 || stats.TotalBytes != 0 || stats.DuplicateGroups != 0 {
		t.Errorf("empty index stats = %+v", stats)
	}
}

func TestUpdateCategory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := testPhoto("/pics/a.jpg", "aaa", 1000)
	insertOne(t, db, p)

	if err := db.UpdateCategory(ctx, p.ID, "wallpaper"); err != nil {
		t.Fatalf("UpdateCategory failed: %v", err)
	}
	got, err := db.GetPhoto(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Category != "wallpaper" {
		t.Errorf("category = %s, want wallpaper", got.Category)
	}

	if err := db.UpdateCategory(ctx, 9999, "photo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateCategory(9999) = %v, want ErrNotFound", err)
	}
}

func TestSetHidden(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := testPhoto("/pics/a.jpg", "aaa", 1000)
	insertOne(t, db, p)

	if err := db.SetHidden(ctx, p.ID, true); err != nil {
		t.Fatalf("SetHidden failed: %v", err)
	}
	got, err := db.GetPhoto(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Hidden {
		t.Error("photo not hidden after SetHidden(true)")
	}

	if err := db.SetHidden(ctx, p.ID, false); err != nil {
		t.Fatal(err)
	}
	got, err = db.GetPhoto(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Hidden {
		t.Error("photo still hidden after SetHidden(false)")
	}

	if err := db.SetHidden(ctx, 9999, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetHidden(9999) = %v, want ErrNotFound", err)
	}
}

func TestUpdatePath(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := testPhoto("/pics/a.jpg", "aaa", 1000)
	insertOne(t, db, p)
	insertOne(t, db, testPhoto("/pics/taken.jpg", "bbb", 2000))

	if err := db.UpdatePath(ctx, p.ID, "/pics/renamed.jpg"); err != nil {
		t.Fatalf("UpdatePath failed: %v", err)
	}
	got, err := db.GetPhoto(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Path != "/pics/renamed.jpg" {
		t.Errorf("path = %s after rename", got.Path)
	}

	// Target occupied by another record.
	err = db.UpdatePath(ctx, p.ID, "/pics/taken.jpg")
	if !errors.Is(err, ErrRenameConflict) {
		t.Errorf("rename onto occupied path = %v, want ErrRenameConflict", err)
	}
	// No partial state: the record keeps its path.
	got, err = db.GetPhoto(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Path != "/pics/renamed.jpg" {
		t.Errorf("path changed despite conflict: %s", got.Path)
	}

	if err := db.UpdatePath(ctx, 9999, "/pics/x.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePath(9999) = %v, want ErrNotFound", err)
	}
}

func TestDeletePhoto(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := testPhoto("/pics/a.jpg", "aaa", 1000)
	insertOne(t, db, p)

	if err := db.DeletePhoto(ctx, p.ID); err != nil {
		t.Fatalf("DeletePhoto failed: %v", err)
	}
	if _, err := db.GetPhoto(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted photo still readable: %v", err)
	}
	if err := db.DeletePhoto(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestAllForRecategorize(t *testing.T) {
	db := newTestDB(t)

	p1 := testPhoto("/pics/a.jpg", "aaa", 1000)
	p2 := &Photo{
		Path:         "/pics/nodims.jpg",
		ContentHash:  "bbb",
		Size:         10,
		DateModified: time.Now().UTC(),
		Category:     "image",
	}
	insertOne(t, db, p1)
	insertOne(t, db, p2)

	rows, err := db.AllForRecategorize(context.Background())
	if err != nil {
		t.Fatalf("AllForRecategorize failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	byPath := map[string]RecategorizeRow{}
	for _, r := range rows {
		byPath[r.Path] = r
	}
	withDims := byPath["/pics/a.jpg"]
	if withDims.Width == nil || *withDims.Width != 800 {
		t.Errorf("width = %v, want 800", withDims.Width)
	}
	noDims := byPath["/pics/nodims.jpg"]
	if noDims.Width != nil || noDims.Height != nil || noDims.DateTaken != nil {
		t.Error("missing classifier inputs must round-trip as nil")
	}
}
