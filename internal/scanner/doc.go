// Package scanner implements the scan pipeline that builds the photo
// index.
//
// The traversal walks a root directory top-down, pruning any directory
// whose path contains a configured exclusion pattern before descending,
// so excluded subtrees are never opened. Files with a recognized image
// extension pass through per-file stages:
//   - Content identity: streaming SHA-256 of the full file bytes
//   - Metadata extraction: pixel dimensions, encoded format, and the
//     EXIF DateTimeOriginal capture time
//   - Location classification: a coarse storage label derived from the
//     path (external volume, iCloud, local disk, other)
//   - Category classification: an ordered first-match-wins heuristic
//     cascade over filename, dimensions, and capture metadata
//   - Thumbnail generation: a content-addressed bounded-size preview
//
// Stages run on parallel workers; all index writes are serialized through
// a single writer goroutine that commits in batches. Per-file failures
// never abort a scan: unreadable files are skipped and retried next scan,
// undecodable images are indexed with absent metadata.
package scanner
