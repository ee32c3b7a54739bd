// Package db opens the embedded SQLite database and classifies the errors its
// drivers return.
package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// Driver names accepted by Open.
const (
	// Mattn is github.com/mattn/go-sqlite3 (cgo).
	Mattn = "sqlite3"
	// Modernc is modernc.org/sqlite (pure Go).
	Modernc = "sqlite"
)

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

// Open connects to the database at path through the named driver. Foreign
// keys are enforced, transactions take the write lock when they begin and
// lock waits give up after busyTimeout. The pool holds a single connection,
// which keeps a Memory database alive and shared for the handle's lifetime.
func Open(driver, path string, busyTimeout time.Duration) (*sql.DB, error) {
	if !isMemory(path) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}
	dsn, err := dataSource(driver, path, busyTimeout)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if err := configure(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func configure(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return errors.Wrap(err, "db: ping")
	}
	// The DSN already asks for this; set it again so a driver that ignores
	// the parameter still enforces foreign keys.
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return errors.Wrap(err, "db: enable foreign keys")
	}
	return nil
}

func dataSource(driver, path string, busyTimeout time.Duration) (string, error) {
	ms := busyTimeout.Milliseconds()
	q := url.Values{}
	switch driver {
	case Mattn:
		q.Set("_foreign_keys", "on")
		q.Set("_busy_timeout", fmt.Sprint(ms))
		q.Set("_txlock", "immediate")
	case Modernc:
		q.Add("_pragma", "foreign_keys(1)")
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", ms))
		q.Set("_txlock", "immediate")
	default:
		return "", errors.Errorf("db: unknown driver %q", driver)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode(), nil
}

func isMemory(path string) bool {
	return path == Memory || strings.HasPrefix(path, "file::memory:")
}

// IsConstraint reports whether err is a constraint violation (primary key,
// NOT NULL, foreign key) raised by either driver.
func IsConstraint(err error) bool {
	return primaryCode(err) == sqlitelib.SQLITE_CONSTRAINT
}

// IsBusy reports whether err means the database was locked by another
// connection for longer than the busy timeout.
func IsBusy(err error) bool {
	switch primaryCode(err) {
	case sqlitelib.SQLITE_BUSY, sqlitelib.SQLITE_LOCKED:
		return true
	}
	return false
}

// primaryCode extracts the primary SQLite result code from a driver error,
// or -1 when err did not come from a driver.
func primaryCode(err error) int {
	if err == nil {
		return -1
	}
	var me sqlite3.Error
	if errors.As(err, &me) {
		return int(me.Code)
	}
	var pe *sqlite.Error
	if errors.As(err, &pe) {
		return pe.Code() & 0xff
	}
	return -1
}
