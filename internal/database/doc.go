// Package database provides the SQLite-backed photo index store.
//
// One record exists per distinct file path; the path column carries a
// UNIQUE constraint so re-scanning an indexed path cannot create a second
// identity. Duplicate groups are never stored: they are computed on demand
// from (file_hash, file_size) equality, which is served by a secondary
// index along with date_taken and file_size.
//
// The store uses WAL mode and batched transactions: the scan pipeline
// commits periodically through BeginBatch/EndBatch rather than per record.
package database
