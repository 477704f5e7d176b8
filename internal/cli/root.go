// Package cli provides the command-line interface for ssm-connect.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfreitag/ssm-connect/internal/appconfig"
	"github.com/mfreitag/ssm-connect/internal/awsapi"
	"github.com/mfreitag/ssm-connect/internal/bundle"
	"github.com/mfreitag/ssm-connect/internal/connector"
	"github.com/mfreitag/ssm-connect/internal/doctor"
	"github.com/mfreitag/ssm-connect/internal/events"
	"github.com/mfreitag/ssm-connect/internal/history"
	"github.com/mfreitag/ssm-connect/internal/model"
	"github.com/mfreitag/ssm-connect/internal/session"
	"github.com/mfreitag/ssm-connect/internal/sshconfig"
	"github.com/mfreitag/ssm-connect/internal/ui"
	"github.com/mfreitag/ssm-connect/internal/util"
)

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	var (
		target  string
		port    int
		profile string
		region  string
	)
	root := &cobra.Command{
		Use:   "ssm-connect",
		Short: "SSH ProxyCommand that bridges EC2 instances over SSM",
		Long: `ssm-connect is invoked by the OpenSSH client as a ProxyCommand. It logs in
via AWS SSO when needed, starts the target EC2 instance, waits until the
instance is ready, and then bridges the SSH connection through an SSM
session — no open port 22, no public IP.

Add a block like this to ~/.ssh/config (or let ` + "`ssm-connect ssh-config`" + `
generate it):

    Host myhost
      User ec2-user
      ProxyCommand ssm-connect --target i-0123456789abcdef0 --port %p`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnect(cmd.Context(), target, port, profile, region)
		},
	}
	root.Flags().StringVarP(&target, "target", "t", "", "configured target name or EC2 instance ID")
	root.Flags().IntVarP(&port, "port", "p", 0, "SSH port to bridge (use %p in ssh config)")
	root.PersistentFlags().StringVar(&profile, "profile", "", "AWS profile override")
	root.PersistentFlags().StringVar(&region, "region", "", "AWS region override")
	_ = root.MarkFlagRequired("target")
	_ = root.MarkFlagRequired("port")

	root.AddCommand(newShellCmd(), newTargetsCmd(), newSSHConfigCmd(), newDoctorCmd(), newHistoryCmd())
	return root
}

// ExitCode maps a command error to the process exit status. A session that
// ran propagates its own exit code unchanged; setup-phase failures are 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var se *connector.SessionError
	if errors.As(err, &se) && se.ExitCode != 0 {
		return se.ExitCode
	}
	return 1
}

func runConnect(ctx context.Context, targetArg string, port int, profileFlag, regionFlag string) error {
	if err := util.ValidatePort(port); err != nil {
		return err
	}
	if err := session.EnsureAWSCLI(); err != nil {
		return err
	}
	if err := session.EnsureSessionPlugin(); err != nil {
		return err
	}

	cfg, err := appconfig.Load()
	if err != nil {
		return err
	}
	tgt, err := appconfig.LookupTarget(cfg, targetArg)
	if err != nil {
		return err
	}

	spec := connector.ResolveEnvironment(cfg, tgt, port, profileFlag, regionFlag)
	if err := connector.ExportEnvironment(spec); err != nil {
		return err
	}

	c, err := buildConnector(ctx, cfg, spec)
	if err != nil {
		return err
	}

	code, err := c.Connect(ctx, spec)
	if err != nil {
		return err
	}
	if code == 0 {
		if err := history.Touch(tgt.DisplayName()); err != nil {
			slog.Warn("failed to record connection history", "error", err)
		}
	}
	return nil
}

// buildConnector wires the real SDK clients and process runners for one
// invocation.
func buildConnector(ctx context.Context, cfg appconfig.Config, spec model.ConnectSpec) (*connector.Connector, error) {
	awsCfg, err := awsapi.LoadConfig(ctx, spec.Profile, spec.Region)
	if err != nil {
		return nil, err
	}
	runner := session.New()
	c := connector.New(awsapi.NewIdentityClient(awsCfg), awsapi.NewInstanceClient(awsCfg), runner, runner)
	c.Interval = cfg.PollInterval()
	c.Timeout = cfg.WaitTimeout()
	c.Journal = events.NewStore()
	return c, nil
}

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell <target>",
		Short: "Open an interactive SSM shell on a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, _ := cmd.Flags().GetString("profile")
			region, _ := cmd.Flags().GetString("region")

			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			tgt, err := appconfig.LookupTarget(cfg, args[0])
			if err != nil {
				return err
			}
			return runShell(cmd.Context(), cfg, tgt, profile, region)
		},
	}
}

// runShell brings the instance up and attaches an interactive shell. Shared
// by `shell` and the targets picker.
func runShell(ctx context.Context, cfg appconfig.Config, tgt model.Target, profileFlag, regionFlag string) error {
	if err := session.EnsureAWSCLI(); err != nil {
		return err
	}
	if err := session.EnsureSessionPlugin(); err != nil {
		return err
	}

	spec := connector.ResolveEnvironment(cfg, tgt, 0, profileFlag, regionFlag)
	if err := connector.ExportEnvironment(spec); err != nil {
		return err
	}
	c, err := buildConnector(ctx, cfg, spec)
	if err != nil {
		return err
	}

	if err := c.EnsureAuthenticated(ctx, spec.Profile); err != nil {
		return err
	}
	if err := c.StartInstance(ctx, spec.Target); err != nil {
		return err
	}
	if err := c.WaitUntilReady(ctx, spec.Target); err != nil {
		return err
	}

	code, err := session.New().RunShell(ctx, spec.Target)
	if err != nil {
		return &connector.SessionError{Target: spec.Target, ExitCode: code, Err: err}
	}
	if err := history.Touch(tgt.DisplayName()); err != nil {
		slog.Warn("failed to record connection history", "error", err)
	}
	return nil
}

func newTargetsCmd() *cobra.Command {
	var plain bool
	root := &cobra.Command{
		Use:   "targets",
		Short: "Browse configured targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			lastUsed, err := history.LastUsed()
			if err != nil {
				slog.Warn("failed to load connection history", "error", err)
			}
			targets := appconfig.SortedTargets(cfg)

			if plain {
				fmt.Printf("%-20s %-22s %-12s %-14s %-6s %s\n", "NAME", "INSTANCE", "PROFILE", "REGION", "PORT", "USER")
				for _, t := range targets {
					port := util.DefaultSSHPort
					if t.Port != 0 {
						port = t.Port
					}
					fmt.Printf("%-20s %-22s %-12s %-14s %-6d %s\n",
						t.Name, t.InstanceID, util.EmptyDash(t.Profile), util.EmptyDash(t.Region), port, util.EmptyDash(t.User))
				}
				return nil
			}

			chosen, ok, err := ui.RunPicker(targets, lastUsed)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			profile, _ := cmd.Flags().GetString("profile")
			region, _ := cmd.Flags().GetString("region")
			return runShell(cmd.Context(), cfg, chosen, profile, region)
		},
	}
	root.Flags().BoolVar(&plain, "plain", false, "print a table instead of the interactive picker")

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a target via an interactive form",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			tgt, ok, err := ui.RunAddTargetForm()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if _, exists := cfg.Targets[tgt.Name]; exists {
				return fmt.Errorf("target %q already exists in config.yaml", tgt.Name)
			}
			cfg.Targets[tgt.Name] = tgt
			if err := appconfig.Save(cfg); err != nil {
				return err
			}
			fmt.Printf("added %s (%s)\n", tgt.Name, tgt.InstanceID)
			return nil
		},
	}

	var bundleName string
	export := &cobra.Command{
		Use:   "export <file>",
		Short: "Export configured targets as a shareable bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			targets := appconfig.SortedTargets(cfg)
			if err := bundle.Export(args[0], bundleName, targets); err != nil {
				return err
			}
			fmt.Printf("exported %d targets to %s\n", len(targets), args[0])
			return nil
		},
	}
	export.Flags().StringVar(&bundleName, "name", "team", "bundle name embedded in the file")

	var overwrite bool
	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Import targets from a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			def, err := bundle.Import(args[0])
			if err != nil {
				return err
			}
			added, skipped := bundle.Merge(&cfg, def, overwrite)
			if err := appconfig.Save(cfg); err != nil {
				return err
			}
			fmt.Printf("imported %d targets from bundle %q\n", len(added), def.Name)
			for _, name := range skipped {
				fmt.Fprintf(os.Stderr, "skipped existing target %s (use --overwrite to replace)\n", name)
			}
			return nil
		},
	}
	imp.Flags().BoolVar(&overwrite, "overwrite", false, "replace targets that already exist")

	root.AddCommand(add, export, imp)
	return root
}

func newSSHConfigCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "ssh-config [target...]",
		Short: "Generate ~/.ssh/config Host blocks for configured targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			var targets []model.Target
			if len(args) == 0 {
				targets = appconfig.SortedTargets(cfg)
			} else {
				for _, name := range args {
					t, err := appconfig.LookupTarget(cfg, name)
					if err != nil {
						return err
					}
					targets = append(targets, t)
				}
			}
			if len(targets) == 0 {
				return fmt.Errorf("no targets configured; add one with `ssm-connect targets add`")
			}
			for i, t := range targets {
				if write {
					if err := sshconfig.AppendHostEntry(t); err != nil {
						return err
					}
					fmt.Fprintf(os.Stderr, "appended Host %s to ~/.ssh/config\n", t.DisplayName())
					continue
				}
				if i > 0 {
					fmt.Println()
				}
				fmt.Print(sshconfig.FormatHostBlock(t))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "append the blocks to ~/.ssh/config instead of printing")
	return cmd
}

func newDoctorCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the local setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := doctor.Run()
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			if len(report.Issues) == 0 {
				fmt.Println("no issues found")
				return nil
			}
			for _, issue := range report.Issues {
				fmt.Printf("[%s] %s %s: %s\n    %s\n",
					issue.Severity, issue.Check, issue.Target, issue.Message, issue.Recommendation)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var (
		jsonOut bool
		limit   int
		target  string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the connection journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			evts, err := events.NewStore().Read(events.Query{Target: target, Limit: limit})
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(evts)
			}
			for _, evt := range evts {
				line := fmt.Sprintf("%s  %-15s %s", evt.Timestamp.Local().Format(time.DateTime), evt.Phase, evt.Target)
				if evt.Message != "" {
					line += "  " + evt.Message
				}
				if evt.Phase == model.PhaseSessionClose {
					line += fmt.Sprintf("  exit=%d", evt.ExitCode)
				}
				fmt.Println(line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of events to show")
	cmd.Flags().StringVar(&target, "target", "", "filter by instance ID")
	return cmd
}
