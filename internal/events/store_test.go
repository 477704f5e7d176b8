package events

import (
	"testing"
	"time"

	"github.com/mfreitag/ssm-connect/internal/model"
)

func TestStoreAppendReadAndFilters(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	s := NewStore()

	base := time.Now().Add(-2 * time.Hour).UTC()
	seed := []Event{
		{Timestamp: base, Target: "i-0123456789abcdef0", Phase: model.PhaseInstanceStart},
		{Timestamp: base.Add(10 * time.Minute), Target: "i-0123456789abcdef0", Phase: model.PhaseInstanceReady},
		{Timestamp: base.Add(20 * time.Minute), Target: "i-0fedcba9876543210", Phase: model.PhaseError, Message: "wait deadline exceeded"},
	}
	for _, evt := range seed {
		if err := s.Append(evt); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := s.Read(Query{})
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}

	targetOnly, err := s.Read(Query{Target: "i-0123456789abcdef0"})
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if len(targetOnly) != 2 {
		t.Fatalf("expected 2 events for target, got %d", len(targetOnly))
	}

	limited, err := s.Read(Query{Limit: 1})
	if err != nil {
		t.Fatalf("read limit: %v", err)
	}
	if len(limited) != 1 || limited[0].Phase != model.PhaseError {
		t.Fatalf("unexpected limited result: %+v", limited)
	}

	since, err := s.Read(Query{Since: base.Add(15 * time.Minute)})
	if err != nil {
		t.Fatalf("read since: %v", err)
	}
	if len(since) != 1 || since[0].Target != "i-0fedcba9876543210" {
		t.Fatalf("unexpected since result: %+v", since)
	}
}
