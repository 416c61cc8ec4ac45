// Package uid generates identity UIDs.
package uid

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Length is the number of characters in a generated UID.
const Length = 16

var pattern = regexp.MustCompile(`^[A-Z0-9]{16}$`)

// New returns a 16-character uppercase alphanumeric identifier derived from
// a random v4 UUID. Uniqueness is enforced by the registry, not here.
func New() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw)[:Length]
}

// Valid reports whether s has the shape of a generated UID. Imported UIDs are
// not required to pass this check.
func Valid(s string) bool {
	return pattern.MatchString(s)
}
