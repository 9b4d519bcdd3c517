// Package sqlite provides a SQLite-backed index store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Records are kept in a single table with
// their embeddings stored as little-endian float32 blobs:
//
//   - Vector queries load the records whose dimensions match the query and rank
//     them by cosine similarity.
//   - Text-only queries use an FTS5 index over record content ranked by bm25.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.ragapp/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. Reads run concurrently in WAL mode and
// writes are serialised by the store.
package sqlite
