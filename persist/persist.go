// Package persist stores the last-used file paths (interpreter,
// tool table, setup, and machine-spec files) between runs, using
// yaml.v3 the way the rest of the corpus's config files do.
package persist

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Paths is the persisted set of last-used file locations.
type Paths struct {
	Interpreter string `yaml:"interpreter"`
	ToolTable   string `yaml:"tool_table"`
	Setup       string `yaml:"setup"`
	MachineSpec string `yaml:"machine_spec"`
}

// Load reads Paths from path. A missing file is not an error: it returns
// a zero Paths, the natural state on first run.
func Load(path string) (Paths, error) {
	var p Paths
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, err
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Paths{}, err
	}
	return p, nil
}

// Save writes p to path as YAML, creating or truncating the file.
func Save(path string, p Paths) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
