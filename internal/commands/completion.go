package commands

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taproom/internal/browse"
)

// candidate is one positional completion, printed as "value:description"
// for shells that show descriptions.
type candidate struct {
	value string
	desc  string
}

// positionalCompleter completes positional arguments with the candidates
// returned by list, leaving out values already typed. A trailing argument
// that starts with "-" falls back to flag completion.
func positionalCompleter(list func(ctx context.Context) ([]candidate, error)) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		typed := cmd.Args().Slice()
		if n := len(typed); n > 0 && strings.HasPrefix(typed[n-1], "-") {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}

		candidates, err := list(ctx)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, c := range candidates {
			if slices.Contains(typed, c.value) {
				continue
			}
			if c.desc == "" {
				_, _ = fmt.Fprintln(w, c.value)
				continue
			}
			_, _ = fmt.Fprintf(w, "%s:%s\n", c.value, c.desc)
		}
	}
}

// RemovedIDCompleter suggests the ids of removed recipes, described by name.
func RemovedIDCompleter(app *browse.App) cli.ShellCompleteFunc {
	return positionalCompleter(func(ctx context.Context) ([]candidate, error) {
		if app.Removals == nil {
			return nil, nil
		}
		items, err := app.Removals.List(ctx)
		if err != nil {
			return nil, err
		}

		out := make([]candidate, 0, len(items))
		for _, item := range items {
			out = append(out, candidate{value: strconv.FormatInt(item.ID, 10), desc: item.Name})
		}
		return out, nil
	})
}

// CachedPageCompleter suggests the page numbers held in the page cache.
func CachedPageCompleter(app *browse.App) cli.ShellCompleteFunc {
	return positionalCompleter(func(ctx context.Context) ([]candidate, error) {
		if app.Stack == nil || app.Stack.Persistent == nil {
			return nil, nil
		}
		pages, err := app.Stack.Persistent.Pages(ctx)
		if err != nil {
			return nil, err
		}

		out := make([]candidate, 0, len(pages))
		for _, p := range pages {
			out = append(out, candidate{value: strconv.Itoa(p), desc: "cached"})
		}
		return out, nil
	})
}
