package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taproom/internal/browse"
	"github.com/colonyops/taproom/internal/commands"
	"github.com/colonyops/taproom/internal/printer"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := printer.NewContext(context.Background(), printer.New(os.Stderr))

	flags := &commands.Flags{}
	taproomApp := &browse.App{}
	lc := &lifecycle{flags: flags, app: taproomApp}

	app := &cli.Command{
		Name:      "taproom",
		Usage:     "Browse beer recipes through a sliding window",
		UsageText: "taproom [global options] command [command options]",
		Description: `Taproom pages through a recipe catalogue and keeps a fixed size window of
recipes in view. Moving past either edge slides the window a step at a time,
fetching only the pages it needs.

Run 'taproom' with no arguments to open the interactive browser.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TAPROOM_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/taproom.log, - for stderr)",
				Sources:     cli.EnvVars("TAPROOM_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TAPROOM_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TAPROOM_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, lc.start()
		},
		After: func(ctx context.Context, c *cli.Command) error {
			return lc.stop()
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, taproomApp)

	app = tuiCmd.Register(app)
	app = commands.NewWindowCmd(flags, taproomApp).Register(app)
	app = commands.NewPageCmd(flags, taproomApp).Register(app)
	app = commands.NewShowCmd(flags, taproomApp).Register(app)
	app = commands.NewRemoveCmd(flags, taproomApp).Register(app)
	app = commands.NewRemovedCmd(flags, taproomApp).Register(app)
	app = commands.NewCacheCmd(flags, taproomApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'taproom --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	if err := app.Run(ctx, os.Args); err != nil {
		printer.Ctx(ctx).Errorf("%v", err)
		os.Exit(1)
	}
}
