package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taproom/internal/browse"
	"github.com/colonyops/taproom/internal/core/window"
	"github.com/colonyops/taproom/internal/printer"
)

// errPageCacheDisabled is returned by cache commands that need the
// persistent page cache.
var errPageCacheDisabled = errors.New("page cache is disabled (cache.disabled: true)")

type CacheCmd struct {
	flags *Flags
	app   *browse.App

	// flags
	pages int
}

// NewCacheCmd creates a new cache command
func NewCacheCmd(flags *Flags, app *browse.App) *CacheCmd {
	return &CacheCmd{flags: flags, app: app}
}

// Register adds the cache command and its subcommands to the application
func (cmd *CacheCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "cache",
		Usage: "Inspect and maintain the page cache",
		Commands: []*cli.Command{
			{
				Name:        "ls",
				Usage:       "List cached pages for the configured source",
				UsageText:   "taproom cache ls",
				Action:      cmd.runList,
				Description: "Pages are cached per source URL and page size.",
			},
			{
				Name:      "prune",
				Usage:     "Delete expired cache entries now",
				UsageText: "taproom cache prune",
				Action:    cmd.runPrune,
			},
			{
				Name:      "clear",
				Usage:     "Delete every cached page for the configured source",
				UsageText: "taproom cache clear",
				Action:    cmd.runClear,
			},
			{
				Name:      "warm",
				Usage:     "Fetch pages into the cache ahead of browsing",
				UsageText: "taproom cache warm [--pages N]",
				Description: `Fetches pages from the first one on. Without --pages every page is
fetched until the source runs out.`,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "pages",
						Usage:       "number of pages to fetch (0 fetches all)",
						Destination: &cmd.pages,
					},
				},
				Action: cmd.runWarm,
			},
		},
	})

	return app
}

func (cmd *CacheCmd) runList(ctx context.Context, c *cli.Command) error {
	if cmd.app.Stack.Persistent == nil {
		return errPageCacheDisabled
	}

	pages, err := cmd.app.Stack.Persistent.Pages(ctx)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		printer.Ctx(ctx).Infof("No cached pages")
		return nil
	}

	nums := make([]string, len(pages))
	for i, p := range pages {
		nums[i] = fmt.Sprint(p)
	}
	_, err = fmt.Fprintf(c.Root().Writer, "%d page(s): %s\n", len(pages), strings.Join(nums, " "))
	return err
}

func (cmd *CacheCmd) runPrune(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	n, err := cmd.app.KV.SweepExpired(ctx)
	if err != nil {
		return fmt.Errorf("sweep cache: %w", err)
	}
	if n == 0 {
		p.Infof("No expired entries")
		return nil
	}

	p.Successf("Pruned %d expired cache entries", n)
	return nil
}

func (cmd *CacheCmd) runClear(ctx context.Context, _ *cli.Command) error {
	if cmd.app.Stack.Persistent == nil {
		return errPageCacheDisabled
	}

	n, err := cmd.app.Stack.Persistent.Clear(ctx)
	if err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Cleared %d cached page(s)", n)
	return nil
}

func (cmd *CacheCmd) runWarm(ctx context.Context, c *cli.Command) error {
	if cmd.app.Stack.Persistent == nil {
		return errPageCacheDisabled
	}
	if cmd.pages < 0 {
		return fmt.Errorf("--pages cannot be negative")
	}

	total := int64(cmd.pages)
	if total == 0 {
		total = -1
	}

	ew := errWriter(c)
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetDescription("warming "+cmd.app.Stack.Name),
		progressbar.OptionSetWriter(ew),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprint(ew, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)

	fetched := 0
	for page := 1; cmd.pages == 0 || page <= cmd.pages; page++ {
		items, err := cmd.app.Stack.Persistent.FetchPage(ctx, page)
		if errors.Is(err, window.ErrNoPage) || (err == nil && len(items) == 0) {
			break
		}
		if err != nil {
			_ = bar.Exit()
			return fmt.Errorf("fetch page %d: %w", page, err)
		}
		fetched++
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	printer.Ctx(ctx).Successf("Cached %d page(s)", fetched)
	return nil
}

func errWriter(c *cli.Command) io.Writer {
	if w := c.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
