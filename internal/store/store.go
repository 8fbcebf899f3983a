package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	sqldblogger "github.com/simukti/sqldb-logger"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/franz/rstream/internal/util"
)

const driverName = "sqlite"

// Store is the shared storage handle. Reads may run concurrently from any
// number of goroutines, each on its own prepared statement; writes are
// serialized through writeMu.
type Store struct {
	db      *sqlx.DB
	path    string
	writeMu sync.Mutex
}

// OpenOptions holds options for opening a database
type OpenOptions struct {
	TraceSQL     bool // Log every statement at debug level
	MaxOpenConns int  // Reader pool size, defaults to 8
}

// Open opens or creates a SQLite database at the given path with default options
func Open(path string) (*Store, error) {
	return OpenWithOptions(path, nil)
}

// OpenWithOptions opens or creates a SQLite database with custom options
func OpenWithOptions(path string, opts *OpenOptions) (*Store, error) {
	if opts == nil {
		opts = &OpenOptions{}
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 8
	}

	// WAL lets readers proceed while the scan holds its write transaction
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	raw, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", util.ErrConnection, err)
	}

	if opts.TraceSQL {
		drv := raw.Driver()
		raw.Close()
		raw = sqldblogger.OpenDriver(dsn, drv, &sqlLogger{},
			sqldblogger.WithMinimumLevel(sqldblogger.LevelDebug),
			sqldblogger.WithQueryerLevel(sqldblogger.LevelDebug),
			sqldblogger.WithPreparerLevel(sqldblogger.LevelDebug),
			sqldblogger.WithExecerLevel(sqldblogger.LevelDebug),
		)
	}

	raw.SetMaxOpenConns(opts.MaxOpenConns)
	raw.SetMaxIdleConns(opts.MaxOpenConns)
	raw.SetConnMaxLifetime(0)

	if err := raw.Ping(); err != nil {
		raw.Close()
		return nil, fmt.Errorf("%w: %s: %w", util.ErrConnection, path, err)
	}

	return &Store{db: sqlx.NewDb(raw, driverName), path: path}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Path returns the database file the store was opened on
func (s *Store) Path() string {
	return s.path
}

// SQLiteVersion returns the SQLite version string
func SQLiteVersion() string {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	var version string
	err = db.QueryRow("SELECT sqlite_version()").Scan(&version)
	if err != nil {
		return ""
	}
	return version
}

// CheckIntegrity runs PRAGMA integrity_check on the database
func (s *Store) CheckIntegrity(ctx context.Context) error {
	var result string
	err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return fmt.Errorf("%w: integrity check query failed: %w", util.ErrConnection, err)
	}

	if result != "ok" {
		return fmt.Errorf("%w: integrity check failed: %s", util.ErrConnection, result)
	}

	return nil
}

// TableExists reports whether a table of that name is present
func (s *Store) TableExists(ctx context.Context, table string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("%w: %w", util.ErrQuery, err)
	}
	return count == 1, nil
}
