package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional on-disk configuration: where the engine
// module lives and how to run it. Flags override everything here.
type FileConfig struct {
	Module  string            `yaml:"module"`
	Timeout time.Duration     `yaml:"timeout"`
	Env     map[string]string `yaml:"env"`
}

// DefaultConfigPath returns the conventional config location,
// preferring XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "r2d2", "config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "r2d2", "config.yaml")
	}
	return ""
}

// LoadFile reads a YAML config. A missing file at the default location
// is not an error; callers pass explicit=false for that case.
func LoadFile(path string, explicit bool) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Apply fills unset fields of cfg from the file config.
func (f *FileConfig) Apply(cfg *Config) {
	if cfg.ModulePath == "" {
		cfg.ModulePath = f.Module
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = f.Timeout
	}
	if len(f.Env) > 0 {
		if cfg.Env == nil {
			cfg.Env = make(map[string]string, len(f.Env))
		}
		for k, v := range f.Env {
			if _, ok := cfg.Env[k]; !ok {
				cfg.Env[k] = v
			}
		}
	}
}
