// ABOUTME: Configuration management for the category hierarchy and sort runs
// ABOUTME: Handles loading/saving TOML config files with fallback to defaults

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/BurntSushi/toml"
)

// ErrInvalidConfig is returned by Validate for inconsistent configurations
var ErrInvalidConfig = errors.New("invalid configuration")

var labelKeyRegex = regexp.MustCompile(`^[a-z]$`)

// Config holds the category hierarchy and the defaults for sort runs
type Config struct {
	// Name of the hierarchy root
	RootName string `toml:"root_name"`

	// Ordered floors, outermost first; each floor is an ordered list of category names
	Floors [][]string `toml:"floors"`

	// Optional mapping from a classification letter to a full category path
	Labels map[string][]string `toml:"labels"`

	// Default locations, overridable from the command line
	Source   string `toml:"source"`
	Target   string `toml:"target"`
	Obsolete string `toml:"obsolete"` // empty: "<target>.obsolete" next to target

	Workers  int    `toml:"workers"`
	LogLevel string `toml:"log_level"`
}

// GetConfigPath returns the default config file path
// First tries current directory, then falls back to ~/.config/crate-sorter/config.toml
func GetConfigPath() string {
	// First try current directory
	if _, err := os.Stat("./crate-sorter.toml"); err == nil {
		return "./crate-sorter.toml"
	}

	// Then try ~/.config/crate-sorter/config.toml
	home, err := os.UserHomeDir()
	if err != nil {
		return "./crate-sorter.toml"
	}

	return filepath.Join(home, ".config", "crate-sorter", "config.toml")
}

// LoadConfig loads configuration from a TOML file
// If the file doesn't exist, returns default config. Keys absent from the
// file keep their default value.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}

		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, &config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

// SaveConfig saves configuration to a TOML file
func SaveConfig(path string, config Config) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfig returns the default hierarchy: envelope stage, clarity and genre
func DefaultConfig() Config {
	return Config{
		RootName: "CRATES",
		Floors: [][]string{
			{"ATTACK", "DECAY", "SUSTAIN", "RELEASE"},
			{"DARK", "NEUTRAL", "BRIGHT"},
			{"DISCO", "ELECTRO", "HOUSE", "ROCK", "TECHNO", "TRANCE"},
		},
		Labels:   map[string][]string{},
		Workers:  1,
		LogLevel: "info",
	}
}

// Validate checks the hierarchy and label mapping for consistency
func (c Config) Validate() error {
	if c.RootName == "" {
		return fmt.Errorf("%w: root_name is empty", ErrInvalidConfig)
	}

	if len(c.Floors) == 0 {
		return fmt.Errorf("%w: no floors defined", ErrInvalidConfig)
	}

	for i, floor := range c.Floors {
		if len(floor) == 0 {
			return fmt.Errorf("%w: floor %d is empty", ErrInvalidConfig, i+1)
		}

		for j, name := range floor {
			if name == "" {
				return fmt.Errorf("%w: floor %d has an empty category name", ErrInvalidConfig, i+1)
			}

			if slices.Contains(floor[:j], name) {
				return fmt.Errorf("%w: floor %d lists %q twice", ErrInvalidConfig, i+1, name)
			}
		}
	}

	for letter, path := range c.Labels {
		if !labelKeyRegex.MatchString(letter) {
			return fmt.Errorf("%w: label key %q is not a single lowercase letter", ErrInvalidConfig, letter)
		}

		if len(path) != len(c.Floors) {
			return fmt.Errorf("%w: label %q has %d categories, want %d", ErrInvalidConfig, letter, len(path), len(c.Floors))
		}
	}

	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}

	return nil
}

// ObsoleteDir returns the folder obsolete target files are moved to
func (c Config) ObsoleteDir(target string) string {
	if c.Obsolete != "" {
		return c.Obsolete
	}

	clean := filepath.Clean(target)

	return filepath.Join(filepath.Dir(clean), filepath.Base(clean)+".obsolete")
}
