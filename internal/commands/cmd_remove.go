package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/taproom/internal/browse"
	"github.com/colonyops/taproom/internal/core/window"
	"github.com/colonyops/taproom/internal/data/stores"
	"github.com/colonyops/taproom/internal/printer"
	"github.com/colonyops/taproom/pkg/iojson"
)

type RemoveCmd struct {
	flags *Flags
	app   *browse.App

	// flags
	yes    bool
	reader iojson.Reader[[]window.ID]
}

// NewRemoveCmd creates a new remove command
func NewRemoveCmd(flags *Flags, app *browse.App) *RemoveCmd {
	return &RemoveCmd{flags: flags, app: app}
}

// Register adds the remove command to the application
func (cmd *RemoveCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Hide recipes from browsing",
		UsageText: "taproom remove [--yes] <id>...\n   echo '[1,2]' | taproom remove",
		Description: `Records recipes as removed so the browser skips them from now on.

Ids are taken from the arguments, or read as a JSON array from --file or stdin
when no arguments are given. Asks for confirmation when run in a terminal
unless --yes is set.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation prompt",
				Destination: &cmd.yes,
			},
			cmd.reader.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RemoveCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	ids, err := cmd.ids(c)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		p.Infof("No recipes to remove")
		return nil
	}

	items := make([]stores.RemovedItem, 0, len(ids))
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		r, err := browse.Find(ctx, cmd.app.Stack.Source, id)
		if err != nil {
			if !errors.Is(err, browse.ErrNotFound) {
				return err
			}
			p.Warnf("Recipe %d not found, skipping", id)
			continue
		}
		items = append(items, stores.RemovedItem{ID: r.ID, Name: r.Name, RemovedAt: time.Now()})
		names = append(names, fmt.Sprintf("%d %s", r.ID, r.Name))
	}
	if len(items) == 0 {
		return fmt.Errorf("none of the given recipes exist")
	}

	if !cmd.yes && term.IsTerminal(int(os.Stdin.Fd())) {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Remove %d recipe(s)?", len(items))).
			Description(strings.Join(names, "\n")).
			Affirmative("Remove").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("confirm: %w", err)
		}
		if !confirmed {
			p.Infof("Nothing removed")
			return nil
		}
	}

	if err := cmd.app.Removals.Add(ctx, items...); err != nil {
		return fmt.Errorf("record removals: %w", err)
	}

	p.Successf("Removed %d recipe(s)", len(items))
	return nil
}

func (cmd *RemoveCmd) ids(c *cli.Command) ([]window.ID, error) {
	if c.Args().Present() {
		return parseIDs(c.Args().Slice())
	}

	if in := c.Root().Reader; cmd.reader.Stdin == nil && in != nil && in != os.Stdin {
		cmd.reader.Stdin = in
	}
	ids, err := cmd.reader.Read()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if id < 1 {
			return nil, fmt.Errorf("invalid recipe id %d", id)
		}
	}
	return ids, nil
}
