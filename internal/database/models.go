package database

import "time"

// Photo is one indexed file path. Two photos may share ContentHash and
// Size (a duplicate group) while remaining independent records with their
// own path, category, and hidden flag.
type Photo struct {
	ID            int64      `json:"id"`
	Path          string     `json:"path"`
	ContentHash   string     `json:"hash"`
	Size          int64      `json:"size"`
	Location      string     `json:"location,omitempty"`
	Volume        string     `json:"volume,omitempty"`
	Width         *int       `json:"width,omitempty"`
	Height        *int       `json:"height,omitempty"`
	Format        *string    `json:"format,omitempty"`
	DateTaken     *time.Time `json:"dateTaken,omitempty"`
	DateModified  time.Time  `json:"dateModified"`
	ThumbnailPath *string    `json:"thumbnailPath,omitempty"`
	Category      string     `json:"category,omitempty"`
	Hidden        bool       `json:"hidden,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// PhotoPage is a paginated photo listing.
type PhotoPage struct {
	Photos []Photo `json:"photos"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// SortField names a whitelisted sort column for listings.
type SortField string

// SortOrder specifies the direction of sorting.
type SortOrder string

const (
	// SortByModified sorts by filesystem modification time (the default).
	SortByModified SortField = "date_modified"
	// SortByTaken sorts by EXIF capture time.
	SortByTaken SortField = "date_taken"
	// SortBySize sorts by file size.
	SortBySize SortField = "file_size"
	// SortByWidth sorts by pixel width.
	SortByWidth SortField = "width"
	// SortByHeight sorts by pixel height.
	SortByHeight SortField = "height"

	// SortAsc sorts in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts in descending order.
	SortDesc SortOrder = "desc"
)

// ListOptions filters and paginates photo listings.
type ListOptions struct {
	Format     string
	Category   string
	Search     string
	SortField  SortField
	SortOrder  SortOrder
	Limit      int
	Offset     int
	ShowHidden bool
}

// DuplicateGroup is the set of photos sharing (ContentHash, Size), with
// more than one member. Groups are computed on demand, never stored.
type DuplicateGroup struct {
	ContentHash string  `json:"hash"`
	Size        int64   `json:"size"`
	Count       int     `json:"count"`
	Photos      []Photo `json:"photos"`
}

// FormatCount is a per-format photo count.
type FormatCount struct {
	Format string `json:"format"`
	Count  int    `json:"count"`
}

// LocationCount is a per-storage-location photo count and byte total.
type LocationCount struct {
	Location string `json:"location"`
	Volume   string `json:"volume"`
	Count    int    `json:"count"`
	Bytes    int64  `json:"bytes"`
}

// Stats summarizes the index.
type Stats struct {
	TotalPhotos     int             `json:"totalPhotos"`
	TotalBytes      int64           `json:"totalBytes"`
	DuplicateGroups int             `json:"duplicateGroups"`
	Formats         []FormatCount   `json:"formats"`
	Locations       []LocationCount `json:"locations"`
}

// RecategorizeRow carries the stored fields the category classifier needs,
// so recategorization never touches the filesystem.
type RecategorizeRow struct {
	ID        int64
	Path      string
	Width     *int
	Height    *int
	DateTaken *time.Time
}
