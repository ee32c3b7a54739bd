// Package store maps entity types onto SQLite tables and runs create, read,
// update and delete operations inside transaction scopes.
//
// Each entity type implements Entity: it names its Table (columns and
// constraints) and lists pointers to its fields in column order. The
// operations are generic functions over that interface, so no reflection is
// involved. Every operation except schema declaration needs a *Tx, which
// exists only for the duration of a Transact callback.
package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Store is a handle on an open database. Create with New, release with Close.
type Store struct {
	conn     *sql.DB
	log      logrus.FieldLogger
	queryLog bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for query and rollback messages.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// WithQueryLog logs every statement at debug level.
func WithQueryLog(on bool) Option {
	return func(s *Store) { s.queryLog = on }
}

// New wraps an open connection. The Store owns conn from now on.
func New(conn *sql.DB, opts ...Option) *Store {
	s := &Store{conn: conn, log: logrus.StandardLogger()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// DeclareSchema creates the tables that do not exist yet, in order, within
// one transaction. Running it again is a no-op.
func (s *Store) DeclareSchema(ctx context.Context, tables ...*Table) error {
	return s.Transact(ctx, func(tx *Tx) error {
		for _, t := range tables {
			if _, err := tx.exec("create", t.name, t.CreateStatement()); err != nil {
				return errors.Wrapf(err, "declare %s", t.name)
			}
		}
		return nil
	})
}

// Transact runs fn inside a transaction. The transaction holds the database
// write lock from its start. If fn returns nil and no deferred foreign key is
// left dangling, the transaction is committed; otherwise, or if fn panics,
// it is rolled back and the error (or panic) is passed on.
func (s *Store) Transact(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin", "", err)
	}
	// Covers fn panicking or calling runtime.Goexit. After Commit or an
	// explicit rollback this returns sql.ErrTxDone and does nothing.
	defer sqlTx.Rollback()

	tx := &Tx{ctx: ctx, tx: sqlTx, st: s}
	if err := fn(tx); err != nil {
		return s.rollback(sqlTx, err)
	}
	if err := tx.checkForeignKeys(); err != nil {
		return s.rollback(sqlTx, err)
	}
	if err := sqlTx.Commit(); err != nil {
		return classify("commit", "", err)
	}
	return nil
}

func (s *Store) rollback(sqlTx *sql.Tx, cause error) error {
	s.log.WithError(cause).Debug("rolling back transaction")
	if err := sqlTx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.log.WithError(err).Warn("rollback failed")
	}
	return cause
}

// Tx is an open transaction scope. It must not be used after the Transact
// callback that received it returns.
type Tx struct {
	ctx context.Context
	tx  *sql.Tx
	st  *Store
}

func (tx *Tx) logQuery(op, table, query string) {
	if !tx.st.queryLog {
		return
	}
	tx.st.log.WithFields(logrus.Fields{
		"op":    op,
		"table": table,
		"sql":   query,
	}).Debug("query")
}

func (tx *Tx) exec(op, table, query string, args ...any) (sql.Result, error) {
	tx.logQuery(op, table, query)
	res, err := tx.tx.ExecContext(tx.ctx, query, args...)
	if err != nil {
		return nil, classify(op, table, err)
	}
	return res, nil
}

func (tx *Tx) query(op, table, query string, args ...any) (*sql.Rows, error) {
	tx.logQuery(op, table, query)
	rows, err := tx.tx.QueryContext(tx.ctx, query, args...)
	if err != nil {
		return nil, classify(op, table, err)
	}
	return rows, nil
}

func (tx *Tx) queryRow(op, table, query string, args ...any) *sql.Row {
	tx.logQuery(op, table, query)
	return tx.tx.QueryRowContext(tx.ctx, query, args...)
}

// checkForeignKeys reports the first row whose deferred foreign key points
// nowhere. It runs before COMMIT so the scope always ends rolled back.
func (tx *Tx) checkForeignKeys() error {
	rows, err := tx.query("commit", "", `PRAGMA foreign_key_check`)
	if err != nil {
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return classify("commit", "", err)
		}
		return nil
	}
	var (
		table, parent string
		rowid         sql.NullInt64
		fkid          int
	)
	if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
		return classify("commit", "", err)
	}
	return integrity("commit", table, errors.Errorf("row %d references a missing %s", rowid.Int64, parent))
}
