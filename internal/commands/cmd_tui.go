package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taproom/internal/browse"
	"github.com/colonyops/taproom/internal/tui"
	"github.com/colonyops/taproom/pkg/profiler"
)

type TuiCmd struct {
	flags *Flags
	app   *browse.App
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *browse.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("TAPROOM_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
	}
}

// Register adds the browse command, an explicit alias of the default action.
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "browse",
		Usage:     "Browse recipes interactively",
		UsageText: "taproom browse",
		Description: `Opens the recipe browser. Moving past the first or last row slides the
window over the catalogue; space selects, d removes and enter shows details.`,
		Action: cmd.run,
	})

	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	svc, err := cmd.app.NewService(ctx, browse.Persisted)
	if err != nil {
		return err
	}

	// Start profiler server if enabled
	if cmd.flags.ProfilerPort > 0 {
		profServer := profiler.New(profiler.Options{
			Port:   cmd.flags.ProfilerPort,
			State:  func() any { return newWindowState("", svc.Snapshot()) },
			Logger: log.Logger,
		})
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		log.Info().
			Str("url", fmt.Sprintf("http://%s/debug/pprof/", profServer.Addr())).
			Msg("profiler endpoint available")
	}

	return tui.Run(ctx, svc, tui.Options{Title: cmd.app.Stack.Name})
}
