package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mfreitag/ssm-connect/internal/model"
)

func modelTarget(name, id, profile, region string) model.Target {
	return model.Target{Name: name, InstanceID: id, Profile: profile, Region: region}
}

func TestLoad_CreatesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Defaults.Profile != "default" {
		t.Fatalf("unexpected default profile: %s", cfg.Defaults.Profile)
	}
	if cfg.Defaults.Region != "us-east-1" {
		t.Fatalf("unexpected default region: %s", cfg.Defaults.Region)
	}
	if cfg.PollInterval() != 5*time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval())
	}
	if cfg.WaitTimeout() != 180*time.Second {
		t.Fatalf("unexpected wait timeout: %s", cfg.WaitTimeout())
	}

	dir, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatalf("expected config.yaml to be materialized: %v", err)
	}
}

func TestLoad_NormalizesWaitValues(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	dir := filepath.Join(xdg, "ssm-connect")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	content := []byte(strings.Join([]string{
		"wait:",
		"  interval_seconds: -1",
		"  timeout_seconds: 99999",
		"",
	}, "\n"))
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Wait.IntervalSeconds != 5 {
		t.Fatalf("expected normalized interval, got %d", cfg.Wait.IntervalSeconds)
	}
	if cfg.Wait.TimeoutSeconds != 600 {
		t.Fatalf("expected timeout clamped to 600, got %d", cfg.Wait.TimeoutSeconds)
	}
}

func TestLoad_TargetNamesFilledFromKeys(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	dir := filepath.Join(xdg, "ssm-connect")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	content := []byte(strings.Join([]string{
		"targets:",
		"  dev-box:",
		"    instance_id: i-0123456789abcdef0",
		"    region: us-west-2",
		"",
	}, "\n"))
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	tgt, ok := cfg.Targets["dev-box"]
	if !ok {
		t.Fatal("expected dev-box target")
	}
	if tgt.Name != "dev-box" {
		t.Fatalf("expected name filled from key, got %q", tgt.Name)
	}
}

func TestLookupTarget(t *testing.T) {
	cfg := Default()
	cfg.Targets["dev-box"] = modelTarget("dev-box", "i-0123456789abcdef0", "eng", "us-west-2")

	tgt, err := LookupTarget(cfg, "dev-box")
	if err != nil {
		t.Fatal(err)
	}
	if tgt.InstanceID != "i-0123456789abcdef0" {
		t.Fatalf("unexpected instance id: %s", tgt.InstanceID)
	}

	// Raw instance ID matching a configured target picks up its overrides.
	tgt, err = LookupTarget(cfg, "i-0123456789abcdef0")
	if err != nil {
		t.Fatal(err)
	}
	if tgt.Profile != "eng" {
		t.Fatalf("expected configured overrides, got profile %q", tgt.Profile)
	}

	// Unconfigured instance IDs pass through.
	tgt, err = LookupTarget(cfg, "i-0fedcba9876543210")
	if err != nil {
		t.Fatal(err)
	}
	if tgt.Name != "" || tgt.InstanceID != "i-0fedcba9876543210" {
		t.Fatalf("expected ad hoc target, got %+v", tgt)
	}

	if _, err := LookupTarget(cfg, "no-such-target"); err == nil {
		t.Fatal("expected error for unknown target name")
	}
}

func TestSortedTargets(t *testing.T) {
	cfg := Default()
	cfg.Targets["zeta"] = modelTarget("zeta", "i-0000000000000000a", "", "")
	cfg.Targets["alpha"] = modelTarget("alpha", "i-0000000000000000b", "", "")
	out := SortedTargets(cfg)
	if len(out) != 2 || out[0].Name != "alpha" || out[1].Name != "zeta" {
		t.Fatalf("unexpected order: %+v", out)
	}
}
