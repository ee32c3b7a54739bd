// Package timestamp renders creation times into the fixed-width text form
// stored in timestamp columns.
package timestamp

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Layout is YYYY-MM-DD HH:MM:SS on a 24-hour clock.
const Layout = "2006-01-02 15:04:05"

// Format renders t in Layout. Years are padded to four digits.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Now is Format(time.Now()).
func Now() string {
	return Format(time.Now())
}

// Column binds a string field to a timestamp column. Both SQLite drivers
// hand back time.Time for columns declared as timestamp; Column formats
// those back into Layout so the field keeps its textual form.
func Column(p *string) Field {
	return Field{p: p}
}

// Field is a sql.Scanner and driver.Valuer over a string.
type Field struct {
	p *string
}

func (c Field) Value() (driver.Value, error) {
	return *c.p, nil
}

func (c Field) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c.p = ""
	case string:
		*c.p = v
	case []byte:
		*c.p = string(v)
	case time.Time:
		*c.p = Format(v)
	default:
		return fmt.Errorf("timestamp: cannot scan %T", src)
	}
	return nil
}
