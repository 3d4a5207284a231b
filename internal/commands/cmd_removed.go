package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taproom/internal/browse"
	"github.com/colonyops/taproom/internal/printer"
	"github.com/colonyops/taproom/pkg/iojson"
)

type RemovedCmd struct {
	flags *Flags
	app   *browse.App

	// flags
	jsonOutput bool
}

// NewRemovedCmd creates a new removed command
func NewRemovedCmd(flags *Flags, app *browse.App) *RemovedCmd {
	return &RemovedCmd{flags: flags, app: app}
}

// Register adds the removed command and its subcommands to the application
func (cmd *RemovedCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "removed",
		Usage:     "List and restore removed recipes",
		UsageText: "taproom removed [command] [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runList,
		Commands: []*cli.Command{
			{
				Name:          "restore",
				Usage:         "Show removed recipes again",
				UsageText:     "taproom removed restore <id>...",
				ShellComplete: RemovedIDCompleter(cmd.app),
				Action:        cmd.runRestore,
			},
			{
				Name:      "clear",
				Usage:     "Forget every removal",
				UsageText: "taproom removed clear",
				Action:    cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *RemovedCmd) runList(ctx context.Context, c *cli.Command) error {
	items, err := cmd.app.Removals.List(ctx)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		if !cmd.jsonOutput {
			printer.Ctx(ctx).Infof("No removed recipes")
		}
		return nil
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, item := range items {
			if err := iojson.WriteLine(out, item); err != nil {
				return fmt.Errorf("encode removed recipe: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tREMOVED")
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", item.ID, item.Name, item.RemovedAt.Format(time.DateTime))
	}
	return w.Flush()
}

func (cmd *RemovedCmd) runRestore(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	ids, err := parseIDs(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("expected at least one recipe id")
	}

	restored := 0
	for _, id := range ids {
		ok, err := cmd.app.Removals.Restore(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			p.Warnf("Recipe %d was not removed", id)
			continue
		}
		restored++
	}

	if restored > 0 {
		p.Successf("Restored %d recipe(s)", restored)
	}
	return nil
}

func (cmd *RemovedCmd) runClear(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	n, err := cmd.app.Removals.Clear(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		p.Infof("No removed recipes")
		return nil
	}

	p.Successf("Restored %d recipe(s)", n)
	return nil
}
