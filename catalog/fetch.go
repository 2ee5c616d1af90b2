// Package catalog implements the client-side state model of the drugstore:
// fetch-status tracking for remote collections, the selection and favorites
// store, and the group-by view filter.
//
// Nothing in this package performs I/O or locking. The orchestrator owns a
// single AppState and serializes every transition.
package catalog

import (
	"fmt"
	"strings"
)

// Status is the lifecycle of one collection load.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

var statusNames = [...]string{"idle", "loading", "succeeded", "failed"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range statusNames {
		if n == name {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Tracker follows the load lifecycle of one remote-backed collection.
//
// Each BeginLoad issues a new sequence number. Only the most recently issued
// sequence may resolve the tracker; responses carrying an older number are
// discarded, so a slow stale response can never overwrite a newer one.
type Tracker[T any] struct {
	status  Status
	message string
	items   []T
	seq     uint64
}

// NewTracker returns an idle tracker with no items.
func NewTracker[T any]() *Tracker[T] {
	return &Tracker[T]{items: []T{}}
}

// BeginLoad moves the tracker to Loading and returns the sequence number the
// caller must present when resolving. Items stay visible while loading.
func (t *Tracker[T]) BeginLoad() uint64 {
	t.seq++
	t.status = StatusLoading
	t.message = ""
	return t.seq
}

// Succeed replaces the items wholesale. It returns false and leaves the
// tracker untouched when seq is not the latest pending load.
func (t *Tracker[T]) Succeed(seq uint64, items []T) bool {
	if !t.pending(seq) {
		return false
	}
	t.status = StatusSucceeded
	t.message = ""
	t.items = make([]T, len(items))
	copy(t.items, items)
	return true
}

// Fail records the error message and keeps the previous items.
func (t *Tracker[T]) Fail(seq uint64, message string) bool {
	if !t.pending(seq) {
		return false
	}
	t.status = StatusFailed
	t.message = message
	return true
}

func (t *Tracker[T]) pending(seq uint64) bool {
	return t.status == StatusLoading && seq == t.seq
}

// Status returns the current lifecycle state.
func (t *Tracker[T]) Status() Status { return t.status }

// Message returns the error text; it is empty unless the status is Failed.
func (t *Tracker[T]) Message() string { return t.message }

// Sequence returns the latest issued sequence number.
func (t *Tracker[T]) Sequence() uint64 { return t.seq }

// Len returns the number of loaded items.
func (t *Tracker[T]) Len() int { return len(t.items) }

// Items returns a copy of the loaded items.
func (t *Tracker[T]) Items() []T {
	out := make([]T, len(t.items))
	copy(out, t.items)
	return out
}

// Find returns the first item matching pred.
func (t *Tracker[T]) Find(pred func(T) bool) (T, bool) {
	for _, item := range t.items {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}
