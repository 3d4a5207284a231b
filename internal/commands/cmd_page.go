package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/taproom/internal/browse"
	"github.com/colonyops/taproom/internal/core/window"
	"github.com/colonyops/taproom/internal/printer"
	"github.com/colonyops/taproom/pkg/iojson"
)

type PageCmd struct {
	flags *Flags
	app   *browse.App

	// flags
	jsonOutput bool
}

// NewPageCmd creates a new page command
func NewPageCmd(flags *Flags, app *browse.App) *PageCmd {
	return &PageCmd{flags: flags, app: app}
}

// Register adds the page command to the application
func (cmd *PageCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "page",
		Usage:     "Print one page of recipes from the source",
		UsageText: "taproom page [--json] <number>",
		Description: `Fetches a page through the configured source and cache, without applying
removals or exclude patterns.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output recipes as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		ShellComplete: CachedPageCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *PageCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one page number")
	}
	number, err := strconv.Atoi(c.Args().First())
	if err != nil || number < 1 {
		return fmt.Errorf("invalid page number %q", c.Args().First())
	}

	items, err := cmd.app.Stack.Source.FetchPage(ctx, number)
	if err != nil {
		if errors.Is(err, window.ErrNoPage) {
			return fmt.Errorf("page %d does not exist", number)
		}
		return fmt.Errorf("fetch page %d: %w", number, err)
	}
	if len(items) == 0 {
		printer.Ctx(ctx).Infof("Page %d is empty", number)
		return nil
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, r := range items {
			if err := iojson.WriteLine(out, newRecipeRow(r)); err != nil {
				return fmt.Errorf("encode recipe: %w", err)
			}
		}
		return nil
	}

	width := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}
	return writeRecipeTable(out, items, width)
}
