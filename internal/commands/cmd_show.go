package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/taproom/internal/browse"
	"github.com/colonyops/taproom/internal/tui"
	"github.com/colonyops/taproom/pkg/iojson"
)

type ShowCmd struct {
	flags *Flags
	app   *browse.App

	// flags
	raw        bool
	jsonOutput bool
}

// NewShowCmd creates a new show command
func NewShowCmd(flags *Flags, app *browse.App) *ShowCmd {
	return &ShowCmd{flags: flags, app: app}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:          "show",
		Usage:         "Show one recipe",
		UsageText:     "taproom show [--raw | --json] <id>",
		Description:   "Searches the source page by page for the recipe and renders it.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print markdown without rendering",
				Destination: &cmd.raw,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the recipe as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one recipe id")
	}
	ids, err := parseIDs(c.Args().Slice())
	if err != nil {
		return err
	}

	r, err := browse.Find(ctx, cmd.app.Stack.Source, ids[0])
	if err != nil {
		return err
	}

	out := c.Root().Writer
	switch {
	case cmd.jsonOutput:
		return iojson.WriteIndented(out, c.Root().ErrWriter, r)
	case cmd.raw:
		md, err := r.Markdown()
		if err != nil {
			return fmt.Errorf("render recipe: %w", err)
		}
		_, err = fmt.Fprint(out, md)
		return err
	}

	width := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}
	rendered, err := tui.RenderRecipe(r, width)
	if err != nil {
		return fmt.Errorf("render recipe: %w", err)
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}
