package dashboard

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigLoader holds the loaded dataset definitions.
type ConfigLoader struct {
	datasets map[string]DatasetConfig
}

// NewConfigLoader recursively scans a directory for YAML files, loads one
// dataset definition from each, validates them and returns a ConfigLoader.
func NewConfigLoader(configPath string) (*ConfigLoader, error) {
	datasets := make(map[string]DatasetConfig)

	err := filepath.WalkDir(configPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || (filepath.Ext(d.Name()) != ".yaml" && filepath.Ext(d.Name()) != ".yml") {
			return nil
		}

		slog.Info("Loading dataset config", "file", path)

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		var config DatasetConfig
		if err := yaml.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("failed to parse YAML for %s: %w", path, err)
		}
		config.applyDefaults()

		if err := config.Validate(); err != nil {
			return fmt.Errorf("validation failed for %s: %w", path, err)
		}

		if _, exists := datasets[config.Name]; exists {
			return fmt.Errorf("duplicate dataset name '%s' found in %s", config.Name, path)
		}

		datasets[config.Name] = config
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking config directory %s: %w", configPath, err)
	}

	if len(datasets) == 0 {
		return nil, fmt.Errorf("no dataset configs found in %s", configPath)
	}

	var boundsOwners []string
	for name, ds := range datasets {
		if ds.Bounds {
			boundsOwners = append(boundsOwners, name)
		}
	}
	if len(boundsOwners) != 1 {
		slices.Sort(boundsOwners)
		return nil, fmt.Errorf("exactly one dataset must set bounds: true, found %d [%s]", len(boundsOwners), strings.Join(boundsOwners, ", "))
	}

	return &ConfigLoader{datasets: datasets}, nil
}

// GetConfig retrieves a validated dataset definition by name.
func (l *ConfigLoader) GetConfig(name string) (DatasetConfig, bool) {
	config, ok := l.datasets[name]
	return config, ok
}

// Datasets returns every definition ordered by Order, then Name.
func (l *ConfigLoader) Datasets() []DatasetConfig {
	out := make([]DatasetConfig, 0, len(l.datasets))
	for _, ds := range l.datasets {
		out = append(out, ds)
	}
	slices.SortFunc(out, func(a, b DatasetConfig) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
