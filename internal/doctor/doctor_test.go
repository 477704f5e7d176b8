package doctor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunFlagsMissingBinaries(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PATH", t.TempDir())

	report, err := Run()
	if err != nil {
		t.Fatal(err)
	}
	var cli, plugin bool
	for _, issue := range report.Issues {
		if issue.Check == "aws-cli" {
			cli = true
		}
		if issue.Check == "session-manager-plugin" {
			plugin = true
		}
	}
	if !cli || !plugin {
		t.Fatalf("expected aws-cli and session-manager-plugin issues, got %+v", report.Issues)
	}
}

func TestRunFlagsDuplicateInstance(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := filepath.Join(xdg, "ssm-connect")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	cfg := strings.Join([]string{
		"targets:",
		"  dev-box:",
		"    instance_id: i-0123456789abcdef0",
		"  dev-box-alt:",
		"    instance_id: i-0123456789abcdef0",
		"",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}

	report, err := Run()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, issue := range report.Issues {
		if issue.Check == "duplicate-instance" && issue.Target == "i-0123456789abcdef0" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected duplicate-instance issue, got %+v", report.Issues)
	}
}

func TestRunFlagsBadTargetConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := filepath.Join(xdg, "ssm-connect")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	cfg := strings.Join([]string{
		"targets:",
		"  broken:",
		"    instance_id: not-an-instance",
		"    port: 99999",
		"",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}

	report, err := Run()
	if err != nil {
		t.Fatal(err)
	}
	var badID, badPort bool
	for _, issue := range report.Issues {
		if issue.Check == "target-instance-id" && issue.Target == "broken" {
			badID = true
		}
		if issue.Check == "target-port" && issue.Target == "broken" {
			badPort = true
		}
	}
	if !badID || !badPort {
		t.Fatalf("expected instance-id and port issues, got %+v", report.Issues)
	}
}

func TestIssuesSortedBySeverity(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PATH", t.TempDir())

	report, err := Run()
	if err != nil {
		t.Fatal(err)
	}
	last := 4
	for _, issue := range report.Issues {
		r := severityRank(issue.Severity)
		if r > last {
			t.Fatalf("issues not sorted by severity: %+v", report.Issues)
		}
		last = r
	}
}
