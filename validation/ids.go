package validation

import (
	"fmt"
	"regexp"
)

// Upstream ids are opaque but short and URL safe.
var idRegex = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)

// ValidateID checks a path id before it is used in an upstream URL.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("invalid id %q", id)
	}
	return nil
}
