package session

import (
	"reflect"
	"testing"
)

func TestBuildSessionArgs(t *testing.T) {
	args := BuildSessionArgs("i-0123456789abcdef0", 22)
	want := []string{
		"ssm", "start-session",
		"--target", "i-0123456789abcdef0",
		"--document-name", "AWS-StartSSHSession",
		"--parameters", "portNumber=22",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args mismatch\nwant=%v\n got=%v", want, args)
	}
}

func TestBuildSessionArgsNonDefaultPort(t *testing.T) {
	args := BuildSessionArgs("i-0123456789abcdef0", 2222)
	if args[len(args)-1] != "portNumber=2222" {
		t.Fatalf("expected portNumber=2222, got %s", args[len(args)-1])
	}
}

func TestBuildLoginArgs(t *testing.T) {
	args := BuildLoginArgs("eng")
	want := []string{"sso", "login", "--profile", "eng"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args mismatch\nwant=%v\n got=%v", want, args)
	}
}

func TestBuildShellArgs(t *testing.T) {
	args := BuildShellArgs("i-0123456789abcdef0")
	want := []string{"ssm", "start-session", "--target", "i-0123456789abcdef0"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args mismatch\nwant=%v\n got=%v", want, args)
	}
}

func TestEnsureAWSCLIMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if err := EnsureAWSCLI(); err == nil {
		t.Fatal("expected error with empty PATH")
	}
	if err := EnsureSessionPlugin(); err == nil {
		t.Fatal("expected error with empty PATH")
	}
}
