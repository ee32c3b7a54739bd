// Package uid generates the primary keys used by every stored entity.
package uid

import (
	"regexp"

	"github.com/google/uuid"
)

// Len is the length of a canonical identifier, hyphens included.
const Len = 36

var canonical = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// New returns a random (version 4) UUID in 8-4-4-4-12 form.
func New() string {
	return uuid.NewString()
}

// Valid reports whether s has the canonical lowercase 8-4-4-4-12 shape.
func Valid(s string) bool {
	return len(s) == Len && canonical.MatchString(s)
}
