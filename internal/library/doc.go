// Package library exposes the photo index operations consumed by the CLI
// and any query layer: scanning, recategorization, listings, duplicate
// groups, statistics, and record mutations including atomic renames.
package library
