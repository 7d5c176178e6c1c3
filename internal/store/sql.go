package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// openSqlite opens the database file and verifies the connection.
// Per-connection pragmas go into the DSN so every pooled connection gets them.
func openSqlite(ctx context.Context, path string, readOnly bool, busyTimeout time.Duration) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("open sqlite: path is empty")
	}

	db, err := sql.Open("sqlite3", dsn(path, readOnly, busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

func dsn(path string, readOnly bool, busyTimeout time.Duration) string {
	params := url.Values{}
	params.Set("_busy_timeout", strconv.FormatInt(busyTimeout.Milliseconds(), 10))
	params.Set("_synchronous", "FULL")

	if readOnly {
		params.Set("mode", "ro")
	} else {
		params.Set("_txlock", "immediate")
	}

	return "file:" + uriPathEscaper.Replace(path) + "?" + params.Encode()
}

// uriPathEscaper percent-encodes the characters SQLite's URI parser would
// otherwise read as query, fragment or escape delimiters.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// applyPragmas configures database-wide settings that persist in the file.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL`)
	if err != nil {
		return fmt.Errorf("apply pragmas: %w", err)
	}

	return nil
}

// storedSchemaVersion reads the current SQLite PRAGMA user_version.
func storedSchemaVersion(ctx context.Context, db Reader) (int, error) {
	row := db.QueryRowContext(ctx, "PRAGMA user_version")

	var version int

	err := row.Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}

	return version, nil
}

// setSchemaVersion writes PRAGMA user_version. Pragmas take no bind
// parameters, so the integer is formatted into the statement.
func setSchemaVersion(ctx context.Context, tx *sql.Tx, version int) error {
	_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version))
	if err != nil {
		return fmt.Errorf("write user_version: %w", err)
	}

	return nil
}

// writable reports whether the process may create or modify the database.
// WAL mode also writes -wal and -shm files next to the database, so the
// directory must be writable too.
func writable(path string, exists bool) bool {
	if unix.Access(filepath.Dir(path), unix.W_OK|unix.X_OK) != nil {
		return false
	}

	if !exists {
		return true
	}

	return unix.Access(path, unix.R_OK|unix.W_OK) == nil
}
