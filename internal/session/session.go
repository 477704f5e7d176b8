// Package session launches the external AWS processes that own the secure
// channel: `aws sso login` for the identity flow and `aws ssm start-session`
// for the session itself.
//
// This package is responsible for launching processes — it does NOT
// implement the SSO or SSM protocols. It shells out to the AWS CLI (which in
// turn drives session-manager-plugin), so token caching, the browser-based
// device flow, and the session wire protocol all stay with tooling that
// already implements them correctly.
//
// There are three operations:
//
//   - SSO login: RunLogin() runs the interactive login flow. Its output is
//     routed to stderr because, when invoked as a ProxyCommand, stdout is
//     the SSH byte stream and must stay clean.
//
//   - SSH sessions: RunSession() starts an AWS-StartSSHSession document
//     session with stdio attached one-to-one. The SSH client reads and
//     writes the session through us unmodified, and the session's exit code
//     is reported back so the caller can propagate it.
//
//   - Shell sessions: RunShell() allocates a PTY and connects the user's
//     terminal to an interactive SSM shell. Used by `ssm-connect shell` and
//     the targets picker.
//
// Security note: all arguments are passed via exec.Command's argv (not via
// shell interpolation), which prevents injection from target names or
// config values that contain shell metacharacters.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/creack/pty"
)

// AWSBinary is the CLI entry point for both the login flow and sessions.
const AWSBinary = "aws"

// PluginBinary is resolved by the AWS CLI itself when opening a session; we
// only check its presence so failures happen before the instance is started.
const PluginBinary = "session-manager-plugin"

// sshSessionDocument is the SSM document that turns a session into an SSH
// port bridge (the original ProxyCommand contract).
const sshSessionDocument = "AWS-StartSSHSession"

// Runner launches AWS CLI processes.
//
// Runner is stateless and safe for concurrent use — each method call creates
// an independent exec.Cmd. The zero value is not useful; use New().
type Runner struct{}

// New creates a new session runner.
func New() *Runner { return &Runner{} }

// EnsureAWSCLI checks that the "aws" binary is available on the system PATH.
//
// Called early during startup so a missing CLI produces a clear message
// instead of a confusing exec error after the instance has been started.
func EnsureAWSCLI() error {
	if _, err := exec.LookPath(AWSBinary); err != nil {
		return fmt.Errorf("aws binary not found in PATH")
	}
	return nil
}

// EnsureSessionPlugin checks that session-manager-plugin is on PATH. The AWS
// CLI execs it for every start-session call and reports its absence only
// after the session request has been accepted provider-side.
func EnsureSessionPlugin() error {
	if _, err := exec.LookPath(PluginBinary); err != nil {
		return fmt.Errorf("session-manager-plugin not found in PATH")
	}
	return nil
}

// BuildLoginArgs composes the argv for the SSO login flow.
//
// Example output: ["sso", "login", "--profile", "default"]
func BuildLoginArgs(profile string) []string {
	return []string{"sso", "login", "--profile", profile}
}

// BuildSessionArgs composes the argv for an SSH-bridging SSM session.
//
// Example output:
//
//	["ssm", "start-session", "--target", "i-0123456789abcdef0",
//	 "--document-name", "AWS-StartSSHSession", "--parameters", "portNumber=22"]
func BuildSessionArgs(target string, port int) []string {
	return []string{
		"ssm", "start-session",
		"--target", target,
		"--document-name", sshSessionDocument,
		"--parameters", "portNumber=" + strconv.Itoa(port),
	}
}

// BuildShellArgs composes the argv for an interactive shell session (no
// document, SSM's default interactive command).
func BuildShellArgs(target string) []string {
	return []string{"ssm", "start-session", "--target", target}
}

// RunLogin runs the interactive SSO login flow and blocks until it exits.
//
// stdin stays attached so the flow can prompt; stdout is redirected to
// stderr because the device-code URL must not leak into the ProxyCommand
// byte stream.
func (r *Runner) RunLogin(ctx context.Context, profile string) error {
	cmd := exec.CommandContext(ctx, AWSBinary, BuildLoginArgs(profile)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// RunSession starts the SSH-bridging session with stdio attached and blocks
// until it ends. The returned int is the session process's exit code,
// propagated unchanged; it is meaningful even when err is non-nil.
func (r *Runner) RunSession(ctx context.Context, target string, port int) (int, error) {
	cmd := exec.CommandContext(ctx, AWSBinary, BuildSessionArgs(target, port)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return runWithExitCode(cmd)
}

// RunShell starts an interactive SSM shell session in a pseudo-terminal.
//
// The PTY is necessary because the remote shell expects a terminal for line
// editing, prompts, and resizing — the same reason the system ssh client
// allocates one. stdin is copied into the PTY in a goroutine (io.Copy blocks
// until the PTY closes after process exit); PTY output is copied to stdout
// until EOF.
func (r *Runner) RunShell(ctx context.Context, target string) (int, error) {
	cmd := exec.CommandContext(ctx, AWSBinary, BuildShellArgs(target)...)

	f, err := pty.Start(cmd)
	if err != nil {
		return 1, err
	}
	defer f.Close()

	go func() {
		_, _ = io.Copy(f, os.Stdin)
	}()
	_, _ = io.Copy(os.Stdout, f)

	if ctx.Err() != nil {
		_ = cmd.Process.Kill()
	}

	err = cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode(), err
	}
	return 1, err
}

func runWithExitCode(cmd *exec.Cmd) (int, error) {
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode(), err
	}
	return 1, err
}
