package store

import (
	"database/sql"
	"database/sql/driver"

	"github.com/pkg/errors"
)

// Entity is a type stored as one row of a table.
type Entity interface {
	// Table is the same for every instance of the type.
	Table() *Table
	// Key is the primary key value.
	Key() string
	// Fields returns one pointer (or sql.Scanner/driver.Valuer adapter) per
	// column, in the order of Table().Columns(). They serve both as scan
	// destinations and as statement arguments.
	Fields() []any
}

// Row constrains P to be a pointer to T that implements Entity. It lets the
// generic operations allocate a T and still call the Entity methods.
type Row[T any] interface {
	*T
	Entity
}

// Ref refers to a stored entity by primary key. It carries a copy of the row
// as it was when the operation that produced the Ref ran; later commits by
// other scopes are not reflected. Use Fetch to re-read.
type Ref[T any] struct {
	key string
	row T
}

func newRef[T any, P Row[T]](row T) Ref[T] {
	return Ref[T]{key: P(&row).Key(), row: row}
}

// ID is the primary key of the referenced row.
func (r Ref[T]) ID() string {
	return r.key
}

// IsZero reports whether r refers to nothing.
func (r Ref[T]) IsZero() bool {
	return r.key == ""
}

// Get returns a private copy of the row snapshot.
func (r Ref[T]) Get() *T {
	c := r.row
	return &c
}

// Predicate selects rows by equality on one column. The zero Predicate
// matches every row.
type Predicate struct {
	column string
	value  any
}

// Eq matches rows whose column equals value.
func Eq(column string, value any) Predicate {
	return Predicate{column: column, value: value}
}

func (p Predicate) where(t *Table) (string, []any, error) {
	if p.column == "" {
		return "", nil, nil
	}
	if !t.hasColumn(p.column) {
		return "", nil, errors.Wrapf(ErrUnknownColumn, "%s.%s", t.name, p.column)
	}
	return quote(p.column) + " = ?", []any{p.value}, nil
}

// checkRequired rejects empty values in NOT NULL columns.
func checkRequired(op string, t *Table, e Entity) error {
	if e.Key() == "" {
		return integrity(op, t.name, errors.New("empty primary key"))
	}
	fields := e.Fields()
	if len(fields) != len(t.columns) {
		return errors.Errorf("store: %s maps %d fields for %d columns", t.name, len(fields), len(t.columns))
	}
	for i, c := range t.columns {
		if c.Null {
			continue
		}
		if isEmpty(fields[i]) {
			return integrity(op, t.name, errors.Errorf("missing required field %s", c.Name))
		}
	}
	return nil
}

func isEmpty(f any) bool {
	switch v := f.(type) {
	case *string:
		return *v == ""
	case driver.Valuer:
		val, err := v.Value()
		return err == nil && (val == nil || val == "")
	}
	return f == nil
}

// Text binds a string field to a nullable text column. NULL scans as the
// empty string; the field is always written as text.
func Text(p *string) TextField {
	return TextField{p: p}
}

// TextField is the adapter returned by Text.
type TextField struct {
	p *string
}

func (f TextField) Value() (driver.Value, error) {
	return *f.p, nil
}

func (f TextField) Scan(src any) error {
	var ns sql.NullString
	if err := ns.Scan(src); err != nil {
		return err
	}
	*f.p = ns.String
	return nil
}

// values turns Fields() into plain statement arguments so that drivers with
// their own argument checks never see pointers or adapters.
func values(fields []any) ([]any, error) {
	args := make([]any, len(fields))
	for i, f := range fields {
		switch v := f.(type) {
		case *string:
			args[i] = *v
		case driver.Valuer:
			val, err := v.Value()
			if err != nil {
				return nil, err
			}
			args[i] = val
		default:
			args[i] = f
		}
	}
	return args, nil
}
