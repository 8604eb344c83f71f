// Package repository persists layout snapshots and session ledgers.  Each
// record is stored as one JSON blob under a stable key, and the blob
// backend (local files, memory, Redis or MySQL) is chosen at startup.
package repository

import "errors"

// ErrNotFound is returned when no blob exists under the requested key.
// Callers fall back to the next source (default snapshot, fresh ledger).
var ErrNotFound = errors.New("not found")

// ErrCorrupt is returned when a blob exists but cannot be decoded.  It is
// treated the same as ErrNotFound by the load cascade, but logged.
var ErrCorrupt = errors.New("corrupt record")
