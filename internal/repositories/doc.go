// Package repositories implements SQLite persistence for search history.
//
// [SearchRepository] implements models.Repository[*models.SearchRecord]. Records
// carry an atomically generated per-table sequence number alongside their UUID
// for stable, human-readable ordering. [NextSequence] increments the counter in
// a dedicated sequence table inside a transaction.
package repositories
