package store

import (
	"database/sql"
	"iter"

	"github.com/pkg/errors"
)

func tableOf[T any, P Row[T]]() *Table {
	return P(new(T)).Table()
}

// Insert adds e as a new row and returns a reference to it. Empty required
// fields and key collisions fail with IntegrityError; a foreign key that
// points nowhere fails the same way when the scope ends.
func Insert[T any, P Row[T]](tx *Tx, e P) (Ref[T], error) {
	t := e.Table()
	if err := checkRequired("insert", t, e); err != nil {
		return Ref[T]{}, err
	}
	args, err := values(e.Fields())
	if err != nil {
		return Ref[T]{}, err
	}
	res, err := tx.exec("insert", t.name, t.insertQuery(), args...)
	if err != nil {
		return Ref[T]{}, err
	}
	if err := checkOneRowAffected("insert", t.name, res); err != nil {
		return Ref[T]{}, err
	}
	return newRef[T, P](*e), nil
}

// Fetch looks a row up by primary key.
func Fetch[T any, P Row[T]](tx *Tx, key string) (Ref[T], bool, error) {
	return FindOne[T, P](tx, Eq(tableOf[T, P]().KeyName(), key))
}

// FindOne returns the first row matching pred, or false if none does.
func FindOne[T any, P Row[T]](tx *Tx, pred Predicate) (Ref[T], bool, error) {
	t := tableOf[T, P]()
	where, args, err := pred.where(t)
	if err != nil {
		return Ref[T]{}, false, err
	}
	var row T
	err = tx.queryRow("find", t.name, t.selectQuery(where, true), args...).Scan(P(&row).Fields()...)
	switch {
	case err == sql.ErrNoRows:
		return Ref[T]{}, false, nil
	case err != nil:
		return Ref[T]{}, false, classify("find", t.name, err)
	}
	return newRef[T, P](row), true, nil
}

// FindAll yields every row of the table. The query runs when the sequence is
// ranged over; ranging again runs it again.
func FindAll[T any, P Row[T]](tx *Tx) iter.Seq2[Ref[T], error] {
	return FindWhere[T, P](tx, Predicate{})
}

// FindWhere yields the rows matching pred. Iteration stops after the first
// error.
func FindWhere[T any, P Row[T]](tx *Tx, pred Predicate) iter.Seq2[Ref[T], error] {
	return func(yield func(Ref[T], error) bool) {
		t := tableOf[T, P]()
		where, args, err := pred.where(t)
		if err != nil {
			yield(Ref[T]{}, err)
			return
		}
		rows, err := tx.query("find", t.name, t.selectQuery(where, false), args...)
		if err != nil {
			yield(Ref[T]{}, err)
			return
		}
		defer rows.Close()
		for rows.Next() {
			var row T
			if err := rows.Scan(P(&row).Fields()...); err != nil {
				yield(Ref[T]{}, classify("find", t.name, err))
				return
			}
			if !yield(newRef[T, P](row), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Ref[T]{}, classify("find", t.name, err))
		}
	}
}

// Collect drains a sequence from FindAll or FindWhere into a slice.
func Collect[T any](seq iter.Seq2[Ref[T], error]) ([]Ref[T], error) {
	var refs []Ref[T]
	for ref, err := range seq {
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Modify re-reads the referenced row, hands a copy to fn and writes the
// result back. The change becomes durable when the scope commits. fn must
// not change the primary key.
func Modify[T any, P Row[T]](tx *Tx, ref Ref[T], fn func(P)) (Ref[T], error) {
	t := tableOf[T, P]()
	cur, ok, err := Fetch[T, P](tx, ref.key)
	if err != nil {
		return Ref[T]{}, err
	}
	if !ok {
		return Ref[T]{}, errors.Wrapf(ErrNoSuchEntity, "modify %s %s", t.name, ref.key)
	}
	row := cur.row
	e := P(&row)
	fn(e)
	if k := e.Key(); k != ref.key {
		return Ref[T]{}, integrity("modify", t.name, errors.Errorf("primary key changed from %s to %s", ref.key, k))
	}
	if err := checkRequired("modify", t, e); err != nil {
		return Ref[T]{}, err
	}
	args, err := values(e.Fields())
	if err != nil {
		return Ref[T]{}, err
	}
	args = append(args[1:], ref.key)
	res, err := tx.exec("modify", t.name, t.updateQuery(), args...)
	if err != nil {
		return Ref[T]{}, err
	}
	if err := checkOneRowAffected("modify", t.name, res); err != nil {
		return Ref[T]{}, err
	}
	return newRef[T, P](row), nil
}

// Remove deletes the referenced row. Rows that reference it through a
// cascading foreign key are deleted with it.
func Remove[T any, P Row[T]](tx *Tx, ref Ref[T]) error {
	t := tableOf[T, P]()
	res, err := tx.exec("remove", t.name, t.deleteQuery(), ref.key)
	if err != nil {
		return err
	}
	return checkOneRowAffected("remove", t.name, res)
}

// Count returns the number of rows matching pred.
func Count[T any, P Row[T]](tx *Tx, pred Predicate) (int, error) {
	t := tableOf[T, P]()
	where, args, err := pred.where(t)
	if err != nil {
		return 0, err
	}
	var n int
	if err := tx.queryRow("count", t.name, t.countQuery(where), args...).Scan(&n); err != nil {
		return 0, classify("count", t.name, err)
	}
	return n, nil
}

func checkOneRowAffected(op, table string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, table, err)
	}
	switch {
	case n == 0:
		return errors.Wrapf(ErrNoSuchEntity, "%s %s", op, table)
	case n > 1:
		return &StorageError{Op: op, Table: table, Err: errors.Errorf("%d rows affected", n)}
	}
	return nil
}
