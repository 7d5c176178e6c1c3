// Package store owns the SQLite database behind the pets provider.
//
// A [Store] is created without touching the disk. The first call to
// [Store.Open], [Store.Readable] or [Store.Writable] opens (or creates) the
// database file and applies the table layout from package schema. Later calls
// reuse the same handles.
//
// # Concurrency
//
// Safe for concurrent use to the extent SQLite is: the database runs in WAL
// mode with a bounded busy timeout, so there is one writer and many readers.
// Store only serializes its own lazy-open state. It adds no locking around
// queries or writes and never retries a failed statement.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/calvinalkan/shelter/internal/logging"
	"github.com/calvinalkan/shelter/internal/schema"
)

// Reader is the read-only view of the database.
type Reader interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Writer is the read-write view of the database.
type Writer interface {
	Reader
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// UpgradeFunc migrates the table layout from oldVersion to newVersion inside tx.
type UpgradeFunc func(ctx context.Context, tx *sql.Tx, oldVersion, newVersion int) error

// Option configures a Store.
type Option func(*Store)

// WithBusyTimeout bounds how long SQLite waits on a locked database before
// failing with SQLITE_BUSY. Default: 10s.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *Store) { s.busyTimeout = d }
}

// WithUpgrade sets the hook run when the stored schema version is older than
// [schema.Version]. The default hook does nothing.
func WithUpgrade(fn UpgradeFunc) Option {
	return func(s *Store) { s.upgrade = fn }
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// withVersion overrides the target schema version. Tests only.
func withVersion(v int) Option {
	return func(s *Store) { s.version = v }
}

const defaultBusyTimeout = 10 * time.Second

// Store holds the lazily opened SQLite handles.
type Store struct {
	path        string
	table       schema.Table
	version     int
	busyTimeout time.Duration
	upgrade     UpgradeFunc
	logger      *slog.Logger

	mu     sync.Mutex
	rw     *sql.DB
	ro     *sql.DB
	closed bool
}

// New returns an unopened Store for the database file at path.
func New(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: path is empty", ErrInit)
	}

	s := &Store{
		path:        filepath.Clean(path),
		table:       schema.Pets,
		version:     schema.Version,
		busyTimeout: defaultBusyTimeout,
		upgrade:     noUpgrade,
		logger:      logging.Discard(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Open is New followed by [Store.Open].
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s, err := New(path, opts...)
	if err != nil {
		return nil, err
	}

	err = s.Open(ctx)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Open opens the database, creating the file and the pets table on first use.
// It is idempotent: once a handle is open, later calls return nil.
//
// Returns [ErrUnavailable] when the file cannot be opened and [ErrInit] when
// the table cannot be created or upgraded.
func (s *Store) Open(ctx context.Context) error {
	if ctx == nil {
		return errors.New("open store: context is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.openLocked(ctx)
}

// Readable returns a handle for queries. When the database file is not
// writable it falls back to a read-only connection.
func (s *Store) Readable(ctx context.Context) (Reader, error) {
	if ctx == nil {
		return nil, errors.New("readable: context is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.openLocked(ctx)
	if err != nil {
		return nil, err
	}

	if s.rw != nil {
		return s.rw, nil
	}

	return s.ro, nil
}

// Writable returns a read-write handle. It fails with [ErrUnavailable] when
// only a read-only connection could be opened.
func (s *Store) Writable(ctx context.Context) (Writer, error) {
	if ctx == nil {
		return nil, errors.New("writable: context is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.openLocked(ctx)
	if err != nil {
		return nil, err
	}

	if s.rw == nil {
		return nil, fmt.Errorf("%w: %s is read-only", ErrUnavailable, s.path)
	}

	return s.rw, nil
}

// Close releases the SQLite handles. Safe on nil, idempotent.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	var errs []error

	for _, db := range []*sql.DB{s.rw, s.ro} {
		if db == nil {
			continue
		}

		err := db.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("close sqlite: %w", err))
		}
	}

	s.rw = nil
	s.ro = nil

	return errors.Join(errs...)
}

// Version reads the schema version stored in the database.
func (s *Store) Version(ctx context.Context) (int, error) {
	db, err := s.Readable(ctx)
	if err != nil {
		return 0, err
	}

	return storedSchemaVersion(ctx, db)
}

func (s *Store) openLocked(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}

	if s.rw != nil || s.ro != nil {
		return nil
	}

	dir := filepath.Dir(s.path)

	err := os.MkdirAll(dir, 0o750)
	if err != nil {
		return fmt.Errorf("%w: create directory: %w", ErrUnavailable, err)
	}

	_, statErr := os.Stat(s.path)
	exists := statErr == nil

	if !writable(s.path, exists) {
		if !exists {
			return fmt.Errorf("%w: cannot create %s", ErrUnavailable, s.path)
		}

		return s.openReadOnlyLocked(ctx)
	}

	db, err := openSqlite(ctx, s.path, false, s.busyTimeout)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	err = applyPragmas(ctx, db)
	if err != nil {
		_ = db.Close()

		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	err = s.ensureSchema(ctx, db)
	if err != nil {
		_ = db.Close()

		return fmt.Errorf("%w: %w", ErrInit, err)
	}

	s.rw = db

	return nil
}

func (s *Store) openReadOnlyLocked(ctx context.Context) error {
	db, err := openSqlite(ctx, s.path, true, s.busyTimeout)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	version, err := storedSchemaVersion(ctx, db)
	if err != nil {
		_ = db.Close()

		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if version != s.version {
		_ = db.Close()

		return fmt.Errorf("%w: read-only database has schema version %d, want %d", ErrInit, version, s.version)
	}

	s.logger.Warn("database is read-only", "path", s.path)

	s.ro = db

	return nil
}

// ensureSchema creates or upgrades the table so the stored version matches
// s.version. Runs in a single transaction.
func (s *Store) ensureSchema(ctx context.Context, db *sql.DB) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var stored int

	err = tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&stored)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	switch {
	case stored == s.version:
		return tx.Rollback()
	case stored == 0:
		_, err = tx.ExecContext(ctx, s.table.CreateSQL())
		if err != nil {
			return fmt.Errorf("create table %s: %w", s.table.Name, err)
		}

		s.logger.Info("created table", "table", s.table.Name, "version", s.version, "path", s.path)
	case stored < s.version:
		err = s.upgrade(ctx, tx, stored, s.version)
		if err != nil {
			return fmt.Errorf("upgrade %d -> %d: %w", stored, s.version, err)
		}

		s.logger.Info("upgraded schema", "from", stored, "to", s.version, "path", s.path)
	default:
		return fmt.Errorf("cannot downgrade schema from version %d to %d", stored, s.version)
	}

	err = setSchemaVersion(ctx, tx, s.version)
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// noUpgrade is the default upgrade hook. No migrations exist yet; add them
// here before bumping schema.Version.
func noUpgrade(context.Context, *sql.Tx, int, int) error {
	return nil
}
