// Package thumbs generates bounded-size JPEG previews keyed by content
// hash. Assets are created at most once per distinct hash, never mutated
// afterward, and safe to delete and regenerate.
package thumbs
