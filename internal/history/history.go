package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mfreitag/ssm-connect/internal/appconfig"
	"github.com/mfreitag/ssm-connect/internal/model"
)

type store struct {
	LastUsed map[string]int64 `json:"last_used"`
}

func filePath() (string, error) {
	dir, err := appconfig.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}

// Touch records a successful connection for a target. Keyed by display name
// so ad hoc instance IDs and named targets both show up in the picker.
func Touch(target string) error {
	st, err := load()
	if err != nil {
		return err
	}
	if st.LastUsed == nil {
		st.LastUsed = map[string]int64{}
	}
	st.LastUsed[target] = time.Now().Unix()
	return save(st)
}

// LastUsed returns last successful connection timestamps by target name.
func LastUsed() (map[string]int64, error) {
	st, err := load()
	if err != nil {
		return nil, err
	}
	return st.LastUsed, nil
}

// SortTargetsRecent returns a new slice sorted by recent activity (desc), then name.
func SortTargetsRecent(targets []model.Target, lastUsed map[string]int64) []model.Target {
	out := append([]model.Target(nil), targets...)
	sort.Slice(out, func(i, j int) bool {
		ti := lastUsed[out[i].DisplayName()]
		tj := lastUsed[out[j].DisplayName()]
		if ti != tj {
			return ti > tj
		}
		return out[i].DisplayName() < out[j].DisplayName()
	})
	return out
}

func load() (store, error) {
	path, err := filePath()
	if err != nil {
		return store{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store{}, nil
		}
		return store{}, err
	}
	var st store
	if err := json.Unmarshal(b, &st); err != nil {
		return store{}, err
	}
	return st, nil
}

func save(st store) error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
