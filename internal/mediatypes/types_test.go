package mediatypes

import "testing"

func TestIsImage(t *testing.T) {
	tests := []struct {
		name     string
		ext      string
		expected bool
	}{
		{"JPEG", ".jpg", true},
		{"JPEG alternate", ".jpeg", true},
		{"PNG", ".png", true},
		{"Uppercase", ".JPG", true},
		{"Mixed case", ".HeIc", true},
		{"TIFF", ".tiff", true},
		{"Canon RAW", ".cr2", true},
		{"Nikon RAW", ".nef", true},
		{"Sony RAW", ".arw", true},
		{"Adobe DNG", ".dng", true},
		{"Video", ".mp4", false},
		{"Document", ".pdf", false},
		{"No dot", "jpg", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsImage(tt.ext); got != tt.expected {
				t.Errorf("IsImage(%q) = %v, want %v", tt.ext, got, tt.expected)
			}
		})
	}
}

func TestIsImagePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"Absolute path", "/Users/me/Pictures/vacation.jpg", true},
		{"Uppercase extension", "/Volumes/Backup/IMG_0001.CR2", true},
		{"No extension", "/Users/me/Pictures/README", false},
		{"Wrong extension", "/Users/me/notes.txt", false},
		{"Dotfile with extension", "/Users/me/.hidden.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsImagePath(tt.path); got != tt.expected {
				t.Errorf("IsImagePath(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}
