package browse

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/taproom/internal/core/config"
	"github.com/colonyops/taproom/internal/data/db"
	"github.com/colonyops/taproom/internal/data/stores"
	"github.com/colonyops/taproom/internal/source/exclude"
)

// App is the central entry point for browsing operations.
// Commands and the TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config   *config.Config
	DB       *db.DB
	KV       *stores.KVStore
	Removals *stores.RemovalStore
	Stack    *Stack
	Exclude  *exclude.Matcher
	Log      zerolog.Logger
}

// NewApp constructs an App on top of an open database.
func NewApp(cfg *config.Config, database *db.DB, log zerolog.Logger) (*App, error) {
	matcher, err := exclude.New(cfg.Exclude...)
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}

	kvStore := stores.NewKVStore(database)

	stack, err := NewStack(cfg, kvStore, log)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		DB:       database,
		KV:       kvStore,
		Removals: stores.NewRemovalStore(database),
		Stack:    stack,
		Exclude:  matcher,
		Log:      log,
	}, nil
}

// Persistence selects how a service treats stored removals.
type Persistence int

const (
	// Persisted loads stored removals and records new ones.
	Persisted Persistence = iota
	// LoadOnly loads stored removals but keeps new ones in memory.
	LoadOnly
	// Ephemeral ignores the store entirely.
	Ephemeral
)

// NewService creates a browsing service over the app's source stack.
func (a *App) NewService(ctx context.Context, mode Persistence) (*Service, error) {
	var removals Removals
	if a.Removals != nil {
		switch mode {
		case Persisted:
			removals = a.Removals
		case LoadOnly:
			removals = loadOnly{a.Removals}
		}
	}

	return New(ctx, a.Stack.Source, removals, Options{
		Size:       a.Config.Window.Size,
		Parts:      a.Config.Window.Parts,
		StartPage:  a.Config.Window.StartPage,
		SourceName: a.Stack.Name,
		Exclude:    a.Exclude,
		Logger:     a.Log,
	})
}

type loadOnly struct {
	Removals
}

func (loadOnly) Add(context.Context, ...stores.RemovedItem) error { return nil }
