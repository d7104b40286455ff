// Package sqlite provides a unified SQLite-based implementation of the
// metadata persistence ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It implements multiple
// store interfaces through a single database connection:
//
//   - DocumentStore: Document metadata persistence
//   - SessionStore: Session and message persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.positron/data/metadata.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
