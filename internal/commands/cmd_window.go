package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taproom/internal/browse"
	"github.com/colonyops/taproom/internal/core/window"
	"github.com/colonyops/taproom/internal/printer"
	"github.com/colonyops/taproom/pkg/iojson"
)

type moveKind int

const (
	moveForward moveKind = iota
	moveBack
	moveRemove
)

func (k moveKind) String() string {
	switch k {
	case moveBack:
		return "back"
	case moveRemove:
		return "remove"
	default:
		return "forward"
	}
}

type move struct {
	kind moveKind
	ids  []window.ID
}

// parseMoves parses a move script: f or forward, b or back, and
// r:<id>[,<id>...] or remove:<ids>.
func parseMoves(args []string) ([]move, error) {
	moves := make([]move, 0, len(args))
	for _, arg := range args {
		name, rest, hasIDs := strings.Cut(arg, ":")
		switch strings.ToLower(name) {
		case "f", "forward":
			if hasIDs {
				return nil, fmt.Errorf("move %q takes no ids", arg)
			}
			moves = append(moves, move{kind: moveForward})
		case "b", "back":
			if hasIDs {
				return nil, fmt.Errorf("move %q takes no ids", arg)
			}
			moves = append(moves, move{kind: moveBack})
		case "r", "remove":
			if !hasIDs || rest == "" {
				return nil, fmt.Errorf("move %q needs ids, e.g. r:1,2", arg)
			}
			ids, err := parseIDs(strings.Split(rest, ","))
			if err != nil {
				return nil, fmt.Errorf("move %q: %w", arg, err)
			}
			moves = append(moves, move{kind: moveRemove, ids: ids})
		default:
			return nil, fmt.Errorf("unknown move %q", arg)
		}
	}
	return moves, nil
}

type WindowCmd struct {
	flags *Flags
	app   *browse.App

	// flags
	jsonOutput bool
	trace      bool
	persist    bool
}

// NewWindowCmd creates a new window command
func NewWindowCmd(flags *Flags, app *browse.App) *WindowCmd {
	return &WindowCmd{flags: flags, app: app}
}

// Register adds the window command to the application
func (cmd *WindowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "window",
		Usage:     "Run a sequence of window moves and print the result",
		UsageText: "taproom window [--json] [--trace] [--persist] [move...]",
		Description: `Establishes the render window and applies each move in order:

  f, forward       slide one step toward later recipes
  b, back          slide one step toward earlier recipes
  r:<ids>          remove recipes, e.g. r:4,7

Stored removals are applied, but removals made by the script are kept in
memory unless --persist is set.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output window state as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "trace",
				Usage:       "print the window after every move",
				Destination: &cmd.trace,
			},
			&cli.BoolFlag{
				Name:        "persist",
				Usage:       "record removals made by the script",
				Destination: &cmd.persist,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *WindowCmd) run(ctx context.Context, c *cli.Command) error {
	moves, err := parseMoves(c.Args().Slice())
	if err != nil {
		return err
	}

	mode := browse.LoadOnly
	if cmd.persist {
		mode = browse.Persisted
	}

	svc, err := cmd.app.NewService(ctx, mode)
	if err != nil {
		return err
	}

	snap, err := svc.Establish(ctx)
	if err != nil {
		return err
	}
	state := newWindowState("establish", snap)
	if cmd.trace {
		if err := cmd.emit(ctx, c, state, snap); err != nil {
			return err
		}
	}

	for _, mv := range moves {
		var overflow bool
		switch mv.kind {
		case moveForward:
			var res window.SlideResult
			snap, res, err = svc.Forward(ctx)
			overflow = res.Overflow
		case moveBack:
			var res window.SlideResult
			snap, res, err = svc.Back(ctx)
			overflow = res.Overflow
		case moveRemove:
			var res window.RemoveResult
			snap, res, err = svc.Remove(ctx, mv.ids...)
			overflow = res.Overflow
		}
		if err != nil {
			return fmt.Errorf("%s: %w", mv.kind, err)
		}

		state = newWindowState(mv.kind.String(), snap)
		state.Overflow = overflow
		if cmd.trace {
			if err := cmd.emit(ctx, c, state, snap); err != nil {
				return err
			}
		}
	}

	if cmd.trace {
		return nil
	}
	return cmd.emit(ctx, c, state, snap)
}

func (cmd *WindowCmd) emit(ctx context.Context, c *cli.Command, state windowState, snap browse.Snapshot) error {
	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, state)
	}

	p := printer.Ctx(ctx)
	rng := "none"
	if state.Range != nil {
		rng = state.Range.String()
	}
	p.Infof("%s: %d item(s) in %s, start=%t end=%t overflow=%t",
		state.Op, len(state.IDs), rng, state.AtStart, state.AtEnd, state.Overflow)

	if len(snap.Items) == 0 {
		p.Infof("Window is empty")
		return nil
	}
	return writeRecipeTable(out, snap.Items, 0)
}
