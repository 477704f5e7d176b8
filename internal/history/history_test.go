package history

import (
	"testing"
	"time"

	"github.com/mfreitag/ssm-connect/internal/model"
)

func TestTouchAndLastUsed(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if err := Touch("dev-box"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	got, err := LastUsed()
	if err != nil {
		t.Fatalf("last used: %v", err)
	}
	if got["dev-box"] <= 0 {
		t.Fatalf("expected timestamp for dev-box, got %+v", got)
	}
}

func TestSortTargetsRecent(t *testing.T) {
	targets := []model.Target{
		{Name: "db"},
		{Name: "api"},
		{Name: "cache"},
	}
	now := time.Now().Unix()
	sorted := SortTargetsRecent(targets, map[string]int64{
		"api": now,
		"db":  now - 60,
	})
	if sorted[0].Name != "api" {
		t.Fatalf("expected api first, got %s", sorted[0].Name)
	}
	if sorted[1].Name != "db" {
		t.Fatalf("expected db second, got %s", sorted[1].Name)
	}
}
