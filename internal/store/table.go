package store

import (
	"strings"
)

// Column describes one column of a table.
type Column struct {
	// Name must be a valid SQL identifier.
	Name string
	// Type as written in CREATE TABLE.
	Type string
	// Null allows NULL. Columns that are not nullable are required: Insert
	// and Modify reject an empty value for them.
	Null bool
	// Default is an optional SQL default expression.
	Default string
}

// Table is the read-only schema of an entity type. Build with NewTable.
type Table struct {
	name        string
	columns     []Column
	constraints []string
}

// NewTable describes a table. The first column is the primary key.
// constraints are table constraints in SQL syntax, excluding the primary key.
func NewTable(name string, columns []Column, constraints ...string) *Table {
	if len(columns) == 0 {
		panic("store: table " + name + " has no columns")
	}
	return &Table{
		name:        name,
		columns:     append([]Column(nil), columns...),
		constraints: append([]string(nil), constraints...),
	}
}

func (t *Table) Name() string {
	return t.name
}

// KeyName is the name of the primary key column.
func (t *Table) KeyName() string {
	return t.columns[0].Name
}

// Columns returns a copy of the column list.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

func (t *Table) hasColumn(name string) bool {
	for _, c := range t.columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (c Column) spec() string {
	s := quote(c.Name) + " " + c.Type
	if !c.Null {
		s += " NOT NULL"
	}
	if c.Default != "" {
		s += " DEFAULT " + c.Default
	}
	return s
}

func (t *Table) quotedColumns() []string {
	names := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		names = append(names, quote(c.Name))
	}
	return names
}

// CreateStatement is the idempotent CREATE TABLE statement for t.
func (t *Table) CreateStatement() string {
	clauses := make([]string, 0, len(t.columns)+1+len(t.constraints))
	for _, c := range t.columns {
		clauses = append(clauses, c.spec())
	}
	clauses = append(clauses, "PRIMARY KEY ("+quote(t.KeyName())+")")
	clauses = append(clauses, t.constraints...)
	return "CREATE TABLE IF NOT EXISTS " + quote(t.name) + " (" + strings.Join(clauses, ", ") + ")"
}

// Statement builders below use ? placeholders. where is a condition without
// the WHERE keyword; empty means every row.

func (t *Table) selectQuery(where string, limitOne bool) string {
	q := "SELECT " + strings.Join(t.quotedColumns(), ", ") + " FROM " + quote(t.name)
	q = appendWhere(q, where)
	if limitOne {
		q += " ORDER BY rowid LIMIT 1"
	}
	return q
}

func (t *Table) countQuery(where string) string {
	return appendWhere("SELECT COUNT(1) FROM "+quote(t.name), where)
}

func (t *Table) insertQuery() string {
	return "INSERT INTO " + quote(t.name) +
		" (" + strings.Join(t.quotedColumns(), ", ") + ")" +
		" VALUES (?" + strings.Repeat(", ?", len(t.columns)-1) + ")"
}

// updateQuery sets every column except the key; the key is the last argument.
func (t *Table) updateQuery() string {
	sets := t.quotedColumns()[1:]
	for i := range sets {
		sets[i] += " = ?"
	}
	return "UPDATE " + quote(t.name) + " SET " + strings.Join(sets, ", ") + " WHERE " + t.whereKey()
}

func (t *Table) deleteQuery() string {
	return "DELETE FROM " + quote(t.name) + " WHERE " + t.whereKey()
}

func (t *Table) whereKey() string {
	return quote(t.KeyName()) + " = ?"
}

func appendWhere(query, where string) string {
	if where == "" {
		return query
	}
	return query + " WHERE " + where
}
