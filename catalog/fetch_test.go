package catalog

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewTrackerIsIdle(t *testing.T) {
	tr := NewTracker[string]()

	if tr.Status() != StatusIdle {
		t.Errorf("Expected idle, got %s", tr.Status())
	}
	if tr.Message() != "" {
		t.Errorf("Expected empty message, got %q", tr.Message())
	}
	if tr.Len() != 0 {
		t.Errorf("Expected no items, got %d", tr.Len())
	}
}

func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker[string]()

	seq := tr.BeginLoad()
	if tr.Status() != StatusLoading {
		t.Fatalf("Expected loading, got %s", tr.Status())
	}
	if !tr.Succeed(seq, []string{"a", "b"}) {
		t.Fatal("Succeed should accept the latest sequence")
	}
	if tr.Status() != StatusSucceeded {
		t.Errorf("Expected succeeded, got %s", tr.Status())
	}
	if diff := cmp.Diff([]string{"a", "b"}, tr.Items()); diff != "" {
		t.Errorf("Items mismatch (-want +got):\n%s", diff)
	}

	// Reload keeps stale items visible
	seq = tr.BeginLoad()
	if tr.Len() != 2 {
		t.Errorf("Expected stale items while loading, got %d", tr.Len())
	}
	if !tr.Fail(seq, "network error") {
		t.Fatal("Fail should accept the latest sequence")
	}
	if tr.Status() != StatusFailed || tr.Message() != "network error" {
		t.Errorf("Expected failed/network error, got %s/%q", tr.Status(), tr.Message())
	}
	if diff := cmp.Diff([]string{"a", "b"}, tr.Items()); diff != "" {
		t.Errorf("Failure must not touch items (-want +got):\n%s", diff)
	}

	// Failed is not terminal
	seq = tr.BeginLoad()
	if tr.Message() != "" {
		t.Errorf("BeginLoad should clear the message, got %q", tr.Message())
	}
	tr.Succeed(seq, nil)
	if tr.Len() != 0 {
		t.Errorf("Succeed should replace items wholesale, got %d", tr.Len())
	}
}

func TestTrackerDiscardsStaleResponses(t *testing.T) {
	tests := []struct {
		name    string
		resolve func(tr *Tracker[string], first, second uint64)
		want    []string
		status  Status
	}{
		{
			name: "older success after newer success",
			resolve: func(tr *Tracker[string], first, second uint64) {
				tr.Succeed(second, []string{"B"})
				tr.Succeed(first, []string{"A"})
			},
			want:   []string{"B"},
			status: StatusSucceeded,
		},
		{
			name: "older success while newer pending",
			resolve: func(tr *Tracker[string], first, second uint64) {
				tr.Succeed(first, []string{"A"})
			},
			want:   []string{},
			status: StatusLoading,
		},
		{
			name: "older failure after newer success",
			resolve: func(tr *Tracker[string], first, second uint64) {
				tr.Succeed(second, []string{"B"})
				tr.Fail(first, "boom")
			},
			want:   []string{"B"},
			status: StatusSucceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker[string]()
			first := tr.BeginLoad()
			second := tr.BeginLoad()
			if first >= second {
				t.Fatalf("Sequence must increase: %d then %d", first, second)
			}

			tt.resolve(tr, first, second)

			if tr.Status() != tt.status {
				t.Errorf("Expected %s, got %s", tt.status, tr.Status())
			}
			if diff := cmp.Diff(tt.want, tr.Items()); diff != "" {
				t.Errorf("Items mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTrackerResolvesOnce(t *testing.T) {
	tr := NewTracker[int]()
	seq := tr.BeginLoad()
	tr.Succeed(seq, []int{1})

	if tr.Fail(seq, "late") {
		t.Error("A resolved sequence must not resolve again")
	}
	if tr.Status() != StatusSucceeded {
		t.Errorf("Expected succeeded, got %s", tr.Status())
	}
}

func TestTrackerItemsAreCopies(t *testing.T) {
	tr := NewTracker[string]()
	src := []string{"a"}
	tr.Succeed(tr.BeginLoad(), src)
	src[0] = "mutated"

	items := tr.Items()
	items[0] = "also mutated"

	if got := tr.Items()[0]; got != "a" {
		t.Errorf("Tracker items leaked, got %q", got)
	}
}

func TestStatusText(t *testing.T) {
	for _, s := range []Status{StatusIdle, StatusLoading, StatusSucceeded, StatusFailed} {
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("Marshal %s: %v", s, err)
		}
		var back Status
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal %s: %v", data, err)
		}
		if back != s {
			t.Errorf("Expected %s, got %s", s, back)
		}
	}

	var s Status
	if err := s.UnmarshalText([]byte("pending")); err == nil {
		t.Error("Expected error for unknown status")
	}
}
