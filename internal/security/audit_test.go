package security

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRunLocalAudit_CleanSetup(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	awsDir := filepath.Join(home, ".aws")
	if err := os.MkdirAll(awsDir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(awsDir, "credentials"), []byte("[default]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	report, err := RunLocalAudit()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Findings) != 0 {
		t.Fatalf("expected no findings, got %+v", report.Findings)
	}
}

func TestRunLocalAudit_FindsLoosePermissions(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	awsDir := filepath.Join(home, ".aws")
	if err := os.MkdirAll(awsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(awsDir, "credentials"), []byte("[default]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := RunLocalAudit()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Findings) < 2 {
		t.Fatalf("expected findings for dir and file, got %+v", report.Findings)
	}
	if !report.HasHigh() {
		t.Fatal("expected high severity finding for world-readable credentials")
	}
	// High severity findings sort first.
	if report.Findings[0].Severity != SeverityHigh {
		t.Fatalf("expected high severity first, got %s", report.Findings[0].Severity)
	}
}

func TestRedactMessage(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	msg := home + "/.aws/sso/cache/abc.json permission denied"
	got := RedactMessage(msg)
	if got == msg {
		t.Fatal("expected message to be redacted")
	}
	if want := "~/.aws/[redacted]/sso/cache/abc.json permission denied"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestUserMessagePrefersUserSafeText(t *testing.T) {
	err := NewClassifiedError("could not reach AWS", "dial tcp: lookup sts.us-east-1.amazonaws.com: no such host")
	if got := UserMessage(err, true); got != "could not reach AWS" {
		t.Fatalf("unexpected user message: %q", got)
	}
	if got := DebugMessage(err); got != "dial tcp: lookup sts.us-east-1.amazonaws.com: no such host" {
		t.Fatalf("unexpected debug message: %q", got)
	}

	plain := errors.New("plain failure")
	if got := UserMessage(plain, false); got != "plain failure" {
		t.Fatalf("unexpected plain message: %q", got)
	}
	if got := UserMessage(nil, true); got != "" {
		t.Fatalf("expected empty message for nil error, got %q", got)
	}
}
