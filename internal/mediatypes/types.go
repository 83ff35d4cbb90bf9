package mediatypes

import (
	"path/filepath"
	"strings"
)

// ImageExtensions maps lowercase file extensions (with leading dot) to
// whether they are recognized image formats. RAW formats are indexed even
// though most cannot be decoded for metadata or thumbnails.
var ImageExtensions = map[string]bool{
	// Standard raster formats
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".avif": true,

	// TIFF
	".tif":  true,
	".tiff": true,

	// Apple / mobile
	".heic": true,
	".heif": true,

	// RAW - Canon
	".cr2": true,
	".cr3": true,
	".crw": true,

	// RAW - Nikon
	".nef": true,
	".nrw": true,

	// RAW - Sony
	".arw": true,
	".srf": true,
	".sr2": true,

	// RAW - other manufacturers
	".dng": true, // Adobe Digital Negative
	".orf": true, // Olympus
	".rw2": true, // Panasonic
	".pef": true, // Pentax
	".raf": true, // Fujifilm
	".raw": true, // generic
	".rwl": true, // Leica
	".mrw": true, // Minolta
	".dcr": true, // Kodak
	".kdc": true, // Kodak
	".erf": true, // Epson
	".mef": true, // Mamiya
	".mos": true, // Leaf
	".x3f": true, // Sigma
}

// IsImage reports whether ext is a recognized image extension.
// The check is case-insensitive and ext must include the leading dot.
func IsImage(ext string) bool {
	return ImageExtensions[strings.ToLower(ext)]
}

// IsImagePath reports whether the path's extension is a recognized image
// extension.
func IsImagePath(path string) bool {
	return IsImage(filepath.Ext(path))
}
