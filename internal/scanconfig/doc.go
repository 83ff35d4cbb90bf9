// Package scanconfig loads and persists the scan configuration document:
// the directories to scan and the exclusion patterns that prune traversal.
//
// Exclusion patterns are plain case-sensitive substrings. A directory is
// skipped, with its entire subtree, if any pattern appears anywhere in its
// path. When no configuration file exists a built-in default set is used
// that excludes system directories, cloud-sync placeholders, development
// directories, and the thumbnail cache itself.
package scanconfig
