package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/Hmv123/RAG-Application/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

var _ driven.IndexStore = (*Store)(nil)

// DBFile is the database file inside the data directory.
const DBFile = "index.db"

// pragmas: WAL lets queries run while ingestion writes, and the busy
// timeout covers a second ragapp process holding the lock briefly.
const pragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// Store is an IndexStore in a single SQLite file. Vector queries scan
// every record of the query's dimension; text queries use FTS5.
type Store struct {
	db   *sql.DB
	path string

	// SQLite allows one writer; ingestion workers queue here instead of
	// spinning on SQLITE_BUSY.
	writeMu sync.Mutex
}

// NewStore opens or creates dataDir/index.db and brings its schema up to
// date. An empty dataDir means ~/.ragapp/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: locating home directory: %w", domain.ErrStore, err)
		}
		dataDir = filepath.Join(home, ".ragapp", "data")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %w", domain.ErrStore, err)
	}

	path := filepath.Join(dataDir, DBFile)
	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", domain.ErrStore, path, err)
	}

	if err := migrate(context.Background(), db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrating %s: %w", domain.ErrStore, path, err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path is the database file.
func (s *Store) Path() string {
	return s.path
}

type migration struct {
	version int
	name    string
}

// pendingMigrations lists NNN_name.up.sql files newer than current, in
// version order.
func pendingMigrations(fsys fs.FS, current int) ([]migration, error) {
	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}
	var out []migration
	for _, name := range names {
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		v, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s: bad version prefix", name)
		}
		if v > current {
			out = append(out, migration{version: v, name: name})
		}
	}
	slices.SortFunc(out, func(a, b migration) int { return a.version - b.version })
	return out, nil
}

// migrate applies each pending migration and records its version in the
// same transaction, so a failed step leaves the schema at the last good
// version.
func migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return err
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return err
	}

	pending, err := pendingMigrations(fsys, current)
	if err != nil {
		return err
	}
	for _, m := range pending {
		script, err := fs.ReadFile(fsys, m.name)
		if err != nil {
			return err
		}
		if err := applyMigration(ctx, db, m.version, string(script)); err != nil {
			return fmt.Errorf("%s: %w", m.name, err)
		}
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, version int, script string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}
