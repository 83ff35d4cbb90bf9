package scanner

import (
	"path/filepath"
	"strings"
	"time"
)

// Category labels assigned by the classifier.
const (
	CategoryScreenshot = "screenshot"
	CategoryWallpaper  = "wallpaper"
	CategoryPhoto      = "photo"
	CategorySocial     = "social"
	CategoryIcon       = "icon"
	CategoryGraphic    = "graphic"
	CategoryImage      = "image"
)

var screenshotPatterns = []string{
	"screenshot", "screen shot", "screen_shot",
	"scr_", "capture", "screen capture",
	"shot_", "snap_",
}

var wallpaperPatterns = []string{"wallpaper", "background", "bg_", "desktop"}

// Known screen resolutions matched within ±50px on both axes, which
// covers screenshots cropped by a status bar.
var screenResolutions = [][2]int{
	{1920, 1080}, {2560, 1440}, {3840, 2160}, // 16:9
	{1920, 1200}, {2560, 1600}, // 16:10
	{1440, 900}, {1680, 1050}, // 16:10
	{2880, 1800}, {3456, 2234}, // Retina
	{1366, 768}, {1280, 720}, // common laptop
}

var graphicExtensions = map[string]bool{".png": true, ".gif": true, ".svg": true}

var graphicNameHints = []string{"logo", "icon", "badge"}

// Categorize assigns a semantic category from the file path, optional
// pixel dimensions, and optional capture time. It is an ordered decision
// list: the first matching rule wins. The function is pure and idempotent,
// so it can be re-run later from stored fields alone without touching the
// filesystem.
func Categorize(path string, width, height *int, dateTaken *time.Time) string {
	filename := strings.ToLower(filepath.Base(path))

	for _, p := range screenshotPatterns {
		if strings.Contains(filename, p) {
			return CategoryScreenshot
		}
	}

	if width != nil && height != nil {
		for _, res := range screenResolutions {
			if abs(*width-res[0]) < 50 && abs(*height-res[1]) < 50 {
				return CategoryScreenshot
			}
		}
	}

	for _, p := range wallpaperPatterns {
		if strings.Contains(filename, p) {
			return CategoryWallpaper
		}
	}

	// Wide, high-resolution images with common wallpaper ratios
	if width != nil && height != nil && *width >= 1920 {
		ratio := float64(*width) / float64(*height)
		if ratio > 1.7 && ratio < 2.4 && *width >= 2560 {
			return CategoryWallpaper
		}
	}

	// Presence of camera capture metadata alone is sufficient for photo;
	// the ratio check just confirms typical camera framing first.
	if dateTaken != nil {
		if width != nil && height != nil {
			ratio := float64(*width) / float64(*height)
			if (ratio > 1.3 && ratio < 1.8) || (ratio > 0.55 && ratio < 0.77) {
				return CategoryPhoto
			}
		}
		return CategoryPhoto
	}

	// Square or near-square, large enough not to be an icon
	if width != nil && height != nil {
		ratio := float64(*width) / float64(*height)
		if ratio > 0.95 && ratio < 1.05 && *width >= 400 {
			return CategorySocial
		}
	}

	if width != nil && height != nil && *width <= 512 && *height <= 512 && *width == *height {
		return CategoryIcon
	}

	if graphicExtensions[strings.ToLower(filepath.Ext(path))] {
		for _, hint := range graphicNameHints {
			if strings.Contains(filename, hint) {
				return CategoryGraphic
			}
		}
	}

	return CategoryImage
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
