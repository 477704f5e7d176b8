// Package sshconfig generates OpenSSH client config blocks that route a host
// through ssm-connect as its ProxyCommand. It writes config, it never parses
// or rewrites existing entries: blocks are appended at the end of the file,
// which gives them the lowest priority in OpenSSH's first-match-wins
// resolution.
package sshconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mfreitag/ssm-connect/internal/model"
	"github.com/mfreitag/ssm-connect/internal/util"
)

// FormatHostBlock produces a Host block for the given target. The %p token
// is expanded by the SSH client to the connection port, so the block works
// for plain ssh as well as scp/sftp with -P.
func FormatHostBlock(t model.Target) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Host %s\n", t.DisplayName()))
	if t.User != "" {
		b.WriteString(fmt.Sprintf("  User %s\n", t.User))
	}
	if t.Port != 0 && t.Port != util.DefaultSSHPort {
		b.WriteString(fmt.Sprintf("  Port %d\n", t.Port))
	}
	b.WriteString(fmt.Sprintf("  ProxyCommand ssm-connect --target %s --port %%p\n", t.InstanceID))
	return b.String()
}

// AppendHostEntry appends a formatted Host block to the user's ~/.ssh/config.
func AppendHostEntry(t model.Target) error {
	if err := ValidateName(t.DisplayName()); err != nil {
		return err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home dir: %w", err)
	}
	path := filepath.Join(home, ".ssh", "config")

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read ssh config: %w", err)
	}

	block := FormatHostBlock(t)

	// Blank-line separation from existing content; a fresh file gets the
	// block alone.
	var sep string
	if len(existing) > 0 {
		sep = "\n"
		if !strings.HasSuffix(string(existing), "\n") {
			sep = "\n\n"
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open ssh config for append: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(sep + block); err != nil {
		return fmt.Errorf("write host block: %w", err)
	}
	return nil
}

// ValidateName checks whether a target name is usable as an SSH host alias.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("target name cannot be empty")
	}
	if strings.ContainsAny(name, " \t*?!") {
		return fmt.Errorf("target name cannot contain spaces or wildcard characters")
	}
	return nil
}
