// Package main is the entry point for the ssm-connect binary.
//
// ssm-connect is built to run as an OpenSSH ProxyCommand: it authenticates
// via AWS SSO when needed, starts the target EC2 instance, waits until the
// instance passes its status checks, and then bridges the SSH connection
// through an SSM session. Stdout belongs to the SSH byte stream, so all
// diagnostics — structured logs included — go to stderr.
//
// Usage:
//
//	ssm-connect --target i-0123456789abcdef0 --port 22   # ProxyCommand mode
//	ssm-connect targets                                  # interactive picker
//	ssm-connect shell dev                                # interactive shell
//	ssm-connect ssh-config --write                       # manage ~/.ssh/config
//
// The CLI is constructed in internal/cli. This file wires logging and
// top-level error reporting, and maps a finished session's exit code onto
// our own exit status so the SSH client sees what the session saw.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mfreitag/ssm-connect/internal/cli"
	"github.com/mfreitag/ssm-connect/internal/security"
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("SSM_CONNECT_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// stderr reaches the SSH client's terminal; keep credential paths
		// out of it unless debug logging was asked for.
		fmt.Fprintln(os.Stderr, security.UserMessage(err, level != slog.LevelDebug))
		if level == slog.LevelDebug {
			slog.Debug("command failed", "detail", security.DebugMessage(err))
		}
		os.Exit(cli.ExitCode(err))
	}
}
