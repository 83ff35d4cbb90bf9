package scanner

import (
	"image"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"photo-index/internal/logging"

	// Decoders for the formats metadata extraction understands
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// exifTimeLayout is the fixed timestamp pattern used by the EXIF
// DateTimeOriginal tag.
const exifTimeLayout = "2006:01:02 15:04:05"

// Metadata holds the intrinsic image properties the extractor reads.
type Metadata struct {
	Width     int
	Height    int
	Format    string
	DateTaken *time.Time
}

// ExtractMetadata opens the image at path and reads its pixel dimensions,
// encoded format, and embedded capture time. Any failure to decode the
// file as an image yields nil; the file is still indexed with all metadata
// fields absent. A missing or malformed DateTimeOriginal tag only leaves
// DateTaken nil and is never a failure.
func ExtractMetadata(path string) *Metadata {
	f, err := os.Open(path)
	if err != nil {
		logging.Debug("Metadata: failed to open %s: %v", path, err)
		return nil
	}
	defer f.Close()

	config, format, err := image.DecodeConfig(f)
	if err != nil {
		logging.Debug("Metadata: failed to decode %s: %v", path, err)
		return nil
	}

	md := &Metadata{
		Width:  config.Width,
		Height: config.Height,
		Format: strings.ToUpper(format),
	}

	if _, err := f.Seek(0, io.SeekStart); err == nil {
		md.DateTaken = readDateTaken(f, path)
	}

	return md
}

// readDateTaken extracts DateTimeOriginal from the EXIF block, if any.
func readDateTaken(r io.Reader, path string) *time.Time {
	x, err := exif.Decode(r)
	if err != nil {
		return nil
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return nil
	}

	value, err := tag.StringVal()
	if err != nil {
		return nil
	}

	t, err := time.ParseInLocation(exifTimeLayout, value, time.Local)
	if err != nil {
		logging.Debug("Metadata: unparseable DateTimeOriginal %q in %s", value, path)
		return nil
	}
	return &t
}
