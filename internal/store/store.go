// Package store persists items, their learning state and the attempt and
// session event logs in SQLite or Postgres.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres through pgx's database/sql adapter.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Driver names a supported database backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ParseDriver maps common aliases to a Driver.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pg", "pgx":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %q", s)
	}
}

func (d Driver) sqlName() string {
	if d == DriverPostgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Driver) dialect() string {
	if d == DriverPostgres {
		return dialect.Postgres
	}
	return dialect.SQLite
}

// Store holds the database handle and provides access to repositories.
type Store struct {
	db     *sql.DB
	drv    *entsql.Driver
	driver Driver
	seq    *sequenceCounter
}

// Open connects to the database at dsn, applies the SQLite pragmas when
// relevant and runs auto-migration.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("open database: empty dsn")
	}
	db, err := sql.Open(driver.sqlName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if driver == DriverSQLite {
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	drv := entsql.OpenDB(driver.dialect(), db)
	if err := migrate(ctx, drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(ctx, db, entsql.Dialect(driver.dialect()))
	if err != nil {
		drv.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, driver: driver, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the backend the store is connected to.
func (s *Store) Driver() Driver {
	return s.driver
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Items returns an ItemRepo backed by this store.
func (s *Store) Items() *ItemRepo {
	return &ItemRepo{db: s.db, b: s.builder()}
}

// Topics returns a TopicRepo backed by this store.
func (s *Store) Topics() *TopicRepo {
	return &TopicRepo{db: s.db, b: s.builder()}
}

// Events returns an EventRepo backed by this store.
func (s *Store) Events() *EventRepo {
	return &EventRepo{db: s.db, b: s.builder(), seq: s.seq}
}

func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.driver.dialect())
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. ADAPTIQ_DB environment variable
// 2. $XDG_DATA_HOME/adaptiq/adaptiq.db
// 3. ~/.local/share/adaptiq/adaptiq.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ADAPTIQ_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "adaptiq", "adaptiq.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
