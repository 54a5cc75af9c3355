package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RoleRule maps name keywords to an architectural role. A type whose short
// name contains any keyword (case-insensitive) receives the role.
type RoleRule struct {
	Role     string   `yaml:"role"`
	Keywords []string `yaml:"keywords"`
}

// ProjectConfig holds project-level settings loaded from layerlens.yml.
type ProjectConfig struct {
	Languages   []string   `yaml:"languages,omitempty"`
	ExcludeDirs []string   `yaml:"excludeDirs,omitempty"`
	Roles       []RoleRule `yaml:"roles,omitempty"`
	Verbose     bool       `yaml:"verbose,omitempty"`
}

// Load attempts to read layerlens.yml or layerlens.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"layerlens.yml", "layerlens.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}
