package scanner

import "strings"

// Storage location labels.
const (
	LocationExternal = "External Drive"
	LocationICloud   = "iCloud"
	LocationLocal    = "Local HD"
	LocationOther    = "Other"
)

const (
	volumesRoot = "/Volumes/"
	homeRoot    = "/Users/"
)

// iCloud paths live under the home directory, so these markers must be
// checked before the home-root prefix.
var icloudMarkers = []string{"Library/Mobile Documents", "iCloud"}

// ClassifyLocation maps an absolute path to a coarse storage location and
// volume label. It is a pure function of the path string. The precedence
// order is load-bearing: external volumes, then iCloud markers, then the
// home root, then everything else.
func ClassifyLocation(path string) (location, volume string) {
	if strings.HasPrefix(path, volumesRoot) {
		name, _, _ := strings.Cut(strings.TrimPrefix(path, volumesRoot), "/")
		if name == "" {
			name = "Unknown"
		}
		return LocationExternal, name
	}

	for _, marker := range icloudMarkers {
		if strings.Contains(path, marker) {
			return LocationICloud, "iCloud Drive"
		}
	}

	if strings.HasPrefix(path, homeRoot) {
		return LocationLocal, "Macintosh HD"
	}

	return LocationOther, "System"
}
