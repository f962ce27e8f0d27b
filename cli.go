// ABOUTME: Command-line definition: global flags and subcommands
// ABOUTME: Translates flags into run options and dispatches to the command implementations

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"crate-sorter/config"
)

func newApp() *cli.App {
	return &cli.App{
		Name:    "crate-sorter",
		Usage:   "copy audio files into one folder per category letter found in their comment tag",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the TOML config file",
				EnvVars: []string{"CRATE_SORTER_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			sortCommand(),
			watchCommand(),
			browseCommand(),
			diffCommand(),
			treeCommand(),
			initCommand(),
		},
	}
}

// placementFlags are shared by every command that plans or performs a sort
func placementFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "directory scanned for classified tracks"},
		&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "root of the category folders"},
		&cli.StringFlag{Name: "obsolete", Usage: "folder obsolete target files are moved to (default: <target>.obsolete)"},
		&cli.BoolFlag{Name: "sync", Usage: "move target files whose track left the source aside"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: "tracks placed concurrently (default from config)"},
	}
}

func sortCommand() *cli.Command {
	return &cli.Command{
		Name:  "sort",
		Usage: "copy every classified track into its category folders",
		Flags: append(placementFlags(),
			&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "print planned operations without touching the disk"},
			&cli.BoolFlag{Name: "progress", Usage: "show a progress bar"},
		),
		Action: func(c *cli.Context) error {
			env, err := loadEnv(c)
			if err != nil {
				return err
			}

			_, err = runSort(env, sortOptionsFrom(c, env.cfg), os.Stdout)

			return err
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "sort once, then again whenever the source tree changes",
		Flags: placementFlags(),
		Action: func(c *cli.Context) error {
			env, err := loadEnv(c)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, env, sortOptionsFrom(c, env.cfg), os.Stdout)
		},
	}
}

func browseCommand() *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "interactively browse what a sort would do",
		Flags: append(placementFlags(),
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "reload when the source tree changes"},
		),
		Action: func(c *cli.Context) error {
			env, err := loadEnv(c)
			if err != nil {
				return err
			}

			return runBrowse(env, sortOptionsFrom(c, env.cfg), c.Bool("watch"))
		},
	}
}

func diffCommand() *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "list tracks found below LEFT but not below RIGHT",
		ArgsUsage: "LEFT RIGHT",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return errors.New("diff needs exactly two directories")
			}

			env, err := loadEnv(c)
			if err != nil {
				return err
			}

			return runDiff(env, c.Args().Get(0), c.Args().Get(1), os.Stdout)
		},
	}
}

func treeCommand() *cli.Command {
	return &cli.Command{
		Name:  "tree",
		Usage: "print the configured category hierarchy",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "also list tracks under their labelled categories"},
			&cli.StringFlag{Name: "mkdir", Usage: "create every category path below this directory"},
		},
		Action: func(c *cli.Context) error {
			env, err := loadEnv(c)
			if err != nil {
				return err
			}

			return runTree(env, c.String("source"), c.String("mkdir"), os.Stdout)
		},
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "write the default configuration file",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("config")
			if path == "" {
				path = config.GetConfigPath()
			}

			if _, err := os.Stat(path); err == nil && !c.Bool("force") {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
				return err
			}

			fmt.Printf("Wrote default configuration to %s\n", path)

			return nil
		},
	}
}

// sortOptionsFrom merges command flags over the configured defaults
func sortOptionsFrom(c *cli.Context, cfg config.Config) SortOptions {
	opts := SortOptions{
		Source:   cfg.Source,
		Target:   cfg.Target,
		Obsolete: cfg.Obsolete,
		Workers:  cfg.Workers,
		Sync:     c.Bool("sync"),
		DryRun:   c.Bool("dry-run"),
		Progress: c.Bool("progress"),
	}

	if c.IsSet("source") {
		opts.Source = c.String("source")
	}

	if c.IsSet("target") {
		opts.Target = c.String("target")
	}

	if c.IsSet("obsolete") {
		opts.Obsolete = c.String("obsolete")
	}

	if c.IsSet("workers") {
		opts.Workers = c.Int("workers")
	}

	if opts.Obsolete == "" && opts.Target != "" {
		opts.Obsolete = cfg.ObsoleteDir(opts.Target)
	}

	return opts
}
