package ui

import (
	"testing"
	"time"

	"github.com/mfreitag/ssm-connect/internal/model"
)

func TestFilterTargets(t *testing.T) {
	targets := []model.Target{
		{Name: "dev-box", InstanceID: "i-0123456789abcdef0"},
		{Name: "prod-api", InstanceID: "i-0fedcba9876543210"},
	}

	all := filterTargets(targets, "")
	if len(all) != 2 {
		t.Fatalf("expected all targets, got %d", len(all))
	}

	byName := filterTargets(targets, "DEV")
	if len(byName) != 1 || byName[0].Name != "dev-box" {
		t.Fatalf("unexpected name match: %+v", byName)
	}

	byID := filterTargets(targets, "0fedcba")
	if len(byID) != 1 || byID[0].Name != "prod-api" {
		t.Fatalf("unexpected instance match: %+v", byID)
	}

	none := filterTargets(targets, "nothing")
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %+v", none)
	}
}

func TestHumanizeLastUsed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ts   int64
		want string
	}{
		{0, "never"},
		{now.Add(-30 * time.Second).Unix(), "just now"},
		{now.Add(-5 * time.Minute).Unix(), "5m ago"},
		{now.Add(-3 * time.Hour).Unix(), "3h ago"},
		{now.Add(-48 * time.Hour).Unix(), "2d ago"},
	}
	for _, c := range cases {
		if got := humanizeLastUsed(c.ts, now); got != c.want {
			t.Errorf("humanizeLastUsed(%d) = %q, want %q", c.ts, got, c.want)
		}
	}
}
