// Package mediatypes defines the set of file extensions the scanner
// recognizes as images, covering standard raster formats, TIFF,
// Apple HEIF/HEIC, and vendor RAW formats.
package mediatypes
