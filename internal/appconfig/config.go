// Package appconfig manages application configuration and runtime file paths.
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mfreitag/ssm-connect/internal/model"
	"github.com/mfreitag/ssm-connect/internal/util"
	"gopkg.in/yaml.v3"
)

// Defaults holds the profile/region applied when neither flags nor a target
// override provide a value.
type Defaults struct {
	Profile string `yaml:"profile"`
	Region  string `yaml:"region"`
}

// WaitConfig controls the instance readiness poll.
type WaitConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	TimeoutSeconds  int `yaml:"timeout_seconds"`
}

// Config holds application-level configuration.
type Config struct {
	Defaults Defaults                `yaml:"defaults"`
	Wait     WaitConfig              `yaml:"wait"`
	Targets  map[string]model.Target `yaml:"targets,omitempty"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Defaults: Defaults{
			Profile: util.DefaultProfile,
			Region:  util.DefaultRegion,
		},
		Wait: WaitConfig{
			IntervalSeconds: int(util.DefaultPollInterval / time.Second),
			TimeoutSeconds:  int(util.DefaultWaitTimeout / time.Second),
		},
		Targets: map[string]model.Target{},
	}
}

// PollInterval returns the configured poll interval as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Wait.IntervalSeconds) * time.Second
}

// WaitTimeout returns the configured readiness deadline as a duration.
func (c Config) WaitTimeout() time.Duration {
	return time.Duration(c.Wait.TimeoutSeconds) * time.Second
}

// ConfigDir returns the application config directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/ssm-connect.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ssm-connect"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".config", "ssm-connect"), nil
}

// Load reads config.yaml from the config directory.
// If the file doesn't exist, creates it with defaults. Out-of-range wait
// values are normalized rather than rejected so a hand-edited config never
// blocks a connection attempt.
func Load() (Config, error) {
	d, err := ConfigDir()
	if err != nil {
		return Config{}, err
	}
	if err := os.MkdirAll(d, 0o700); err != nil {
		return Config{}, err
	}
	path := filepath.Join(d, "config.yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	normalize(&cfg)
	return cfg, nil
}

// Save writes config to config.yaml.
func Save(cfg Config) error {
	d, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d, 0o700); err != nil {
		return err
	}
	path := filepath.Join(d, "config.yaml")
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func normalize(cfg *Config) {
	if cfg.Wait.IntervalSeconds <= 0 {
		cfg.Wait.IntervalSeconds = int(util.DefaultPollInterval / time.Second)
	}
	if cfg.Wait.TimeoutSeconds <= 0 {
		cfg.Wait.TimeoutSeconds = int(util.DefaultWaitTimeout / time.Second)
	}
	if max := int(util.MaxWaitTimeout / time.Second); cfg.Wait.TimeoutSeconds > max {
		cfg.Wait.TimeoutSeconds = max
	}
	if cfg.Defaults.Profile == "" {
		cfg.Defaults.Profile = util.DefaultProfile
	}
	if cfg.Defaults.Region == "" {
		cfg.Defaults.Region = util.DefaultRegion
	}
	if cfg.Targets == nil {
		cfg.Targets = map[string]model.Target{}
	}
	// Map keys are the canonical names; keep the struct field in sync so
	// callers holding a Target know what it was called.
	for name, t := range cfg.Targets {
		t.Name = name
		cfg.Targets[name] = t
	}
}

// LookupTarget resolves a --target value to a Target definition. Accepted
// forms, in order:
//
//  1. a configured target name from config.yaml
//  2. a raw instance ID that matches a configured target's instance_id
//     (so per-target overrides still apply)
//  3. any other raw instance ID, passed through as an ad hoc target
func LookupTarget(cfg Config, nameOrID string) (model.Target, error) {
	if t, ok := cfg.Targets[nameOrID]; ok {
		if t.InstanceID == "" {
			return model.Target{}, fmt.Errorf("target %q has no instance_id in config.yaml", nameOrID)
		}
		return t, nil
	}
	if util.IsInstanceID(nameOrID) {
		// Deterministic when several targets share an instance ID: pick the
		// lexicographically first name.
		names := make([]string, 0, len(cfg.Targets))
		for name := range cfg.Targets {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if cfg.Targets[name].InstanceID == nameOrID {
				return cfg.Targets[name], nil
			}
		}
		return model.Target{InstanceID: nameOrID}, nil
	}
	return model.Target{}, fmt.Errorf("unknown target %q: not a configured name and not an instance ID", nameOrID)
}

// SortedTargets returns the configured targets ordered by name.
func SortedTargets(cfg Config) []model.Target {
	out := make([]model.Target, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
