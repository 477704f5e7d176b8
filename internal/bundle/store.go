// Package bundle exports and imports named target sets as standalone YAML
// files, so a team can share instance definitions without passing around
// whole config files.
package bundle

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mfreitag/ssm-connect/internal/appconfig"
	"github.com/mfreitag/ssm-connect/internal/model"
	"gopkg.in/yaml.v3"
)

// Definition is a shareable set of named targets.
type Definition struct {
	Name    string                  `yaml:"name"`
	Targets map[string]model.Target `yaml:"targets"`
}

// Export writes the given targets to path as a bundle.
func Export(path, name string, targets []model.Target) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("bundle name cannot be empty")
	}
	if len(targets) == 0 {
		return fmt.Errorf("bundle must include at least one target")
	}
	def := Definition{Name: name, Targets: map[string]model.Target{}}
	for i, t := range targets {
		if strings.TrimSpace(t.InstanceID) == "" {
			return fmt.Errorf("bundle target %d missing instance_id", i)
		}
		def.Targets[t.DisplayName()] = t
	}
	b, err := yaml.Marshal(def)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// Import reads a bundle from path and validates it.
func Import(path string) (Definition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, err
	}
	var def Definition
	if err := yaml.Unmarshal(b, &def); err != nil {
		return Definition{}, fmt.Errorf("parse bundle %s: %w", path, err)
	}
	if len(def.Targets) == 0 {
		return Definition{}, fmt.Errorf("bundle %s contains no targets", path)
	}
	for name, t := range def.Targets {
		if strings.TrimSpace(t.InstanceID) == "" {
			return Definition{}, fmt.Errorf("bundle target %q missing instance_id", name)
		}
		t.Name = name
		def.Targets[name] = t
	}
	return def, nil
}

// Merge folds a bundle's targets into the config. Existing names are
// skipped unless overwrite is set. Returns the names added and skipped,
// both sorted for stable output.
func Merge(cfg *appconfig.Config, def Definition, overwrite bool) (added, skipped []string) {
	if cfg.Targets == nil {
		cfg.Targets = map[string]model.Target{}
	}
	for name, t := range def.Targets {
		if _, exists := cfg.Targets[name]; exists && !overwrite {
			skipped = append(skipped, name)
			continue
		}
		cfg.Targets[name] = t
		added = append(added, name)
	}
	sort.Strings(added)
	sort.Strings(skipped)
	return added, skipped
}
