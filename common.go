// ABOUTME: Shared initialization code for all commands
// ABOUTME: Loads config, builds the logger and validates run options

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	logcli "github.com/apex/log/handlers/cli"
	"github.com/urfave/cli/v2"

	"crate-sorter/config"
	"crate-sorter/placement"
)

// env bundles what every command needs, built once by the composition root
type env struct {
	cfg    config.Config
	logger log.Interface
}

// SortOptions contains the resolved options of a sort run
type SortOptions struct {
	Source   string
	Target   string
	Obsolete string
	Workers  int
	Sync     bool
	DryRun   bool
	Progress bool
}

// loadEnv reads the config file named by --config (or the default location)
// and sets up logging on stderr
func loadEnv(c *cli.Context) (*env, error) {
	path := c.String("config")
	if path == "" {
		path = config.GetConfigPath()
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if c.Bool("verbose") {
		level = "debug"
	}

	logger, err := newLogger(os.Stderr, level)
	if err != nil {
		return nil, err
	}

	logger.WithField("config", path).Debug("configuration loaded")

	return &env{cfg: cfg, logger: logger}, nil
}

// newLogger creates a CLI-formatted logger writing to w
func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return &log.Logger{Handler: logcli.New(w), Level: lvl}, nil
}

// validate checks the directories of a sort run
func (o SortOptions) validate() error {
	if o.Source == "" {
		return errors.New("no source directory (use --source or set source in the config)")
	}

	if o.Target == "" {
		return errors.New("no target directory (use --target or set target in the config)")
	}

	info, err := os.Stat(o.Source)
	if err != nil {
		return fmt.Errorf("source directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", o.Source)
	}

	source, err := filepath.Abs(o.Source)
	if err != nil {
		return err
	}

	for name, dir := range map[string]string{"target": o.Target, "obsolete": o.Obsolete} {
		if dir == "" {
			continue
		}

		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}

		if isWithin(abs, source) || isWithin(source, abs) {
			return fmt.Errorf("%s directory %s overlaps the source %s", name, dir, o.Source)
		}
	}

	if o.Obsolete == "" {
		return nil
	}

	// Obsolete files inside the target would be found again by every sync
	target, err := filepath.Abs(o.Target)
	if err != nil {
		return err
	}

	obsolete, err := filepath.Abs(o.Obsolete)
	if err != nil {
		return err
	}

	if isWithin(obsolete, target) || isWithin(target, obsolete) {
		return fmt.Errorf("obsolete directory %s overlaps the target %s", o.Obsolete, o.Target)
	}

	return nil
}

// isWithin reports whether path equals dir or lies below it
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// newEngine builds the placement engine for a run, over a dry-run FS when asked
func newEngine(e *env, opts SortOptions) (*placement.Engine, *placement.DryRunFS) {
	var fs placement.FS = placement.OSFS{}

	var dry *placement.DryRunFS
	if opts.DryRun {
		dry = placement.NewDryRunFS(placement.OSFS{})
		fs = dry
	}

	return placement.NewEngine(fs, e.logger, placement.Options{Workers: opts.Workers}), dry
}

// truncate shortens string to maxLen, adding "..." if needed
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return string(r[:maxLen])
	}

	return string(r[:maxLen-3]) + "..."
}
