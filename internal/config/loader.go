package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/dirharvest/internal/extract"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".dirharvest"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .dirharvest configuration file.
// Every field is optional; unset fields keep their defaults.
type File struct {
	RootURL     string        `yaml:"rootURL,omitempty"`
	Pool        int           `yaml:"pool,omitempty"`
	MaxPages    int           `yaml:"maxPages,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	Delay       time.Duration `yaml:"delay,omitempty"`
	UserAgent   string        `yaml:"userAgent,omitempty"`
	MaxBodySize int64         `yaml:"maxBodySize,omitempty"`
	Proxy       string        `yaml:"proxy,omitempty"`
	Output      string        `yaml:"output,omitempty"`

	// Contracts override parts of the default extraction contracts.
	// Only the parts that are set replace the defaults.
	Contracts extract.Contracts `yaml:"contracts,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .dirharvest in the current directory
// 3. Look for .dirharvest in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
