// Package validation checks drug and country forms before they reach the
// upstream API.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Field is the outcome of validating one form field: either a normalized
// value or the reason it was rejected.
type Field[T any] struct {
	value  T
	reason string
	ok     bool
}

// Valid wraps an accepted value.
func Valid[T any](v T) Field[T] {
	return Field[T]{value: v, ok: true}
}

// Invalid wraps a rejection.
func Invalid[T any](format string, args ...any) Field[T] {
	return Field[T]{reason: fmt.Sprintf(format, args...)}
}

func (f Field[T]) OK() bool {
	return f.ok
}

// Value returns the normalized value and whether the field was valid.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.ok
}

// Reason is empty for valid fields.
func (f Field[T]) Reason() string {
	return f.reason
}

// Errors maps form field names to rejection reasons.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// collect records f under name when it was rejected.
func collect[T any](errs Errors, name string, f Field[T]) {
	if !f.ok {
		errs[name] = f.reason
	}
}
