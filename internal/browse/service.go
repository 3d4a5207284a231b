// Package browse hosts a render window of recipes for the TUI and the
// command line.
package browse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taproom/internal/core/logging"
	"github.com/colonyops/taproom/internal/core/recipe"
	"github.com/colonyops/taproom/internal/core/window"
	"github.com/colonyops/taproom/internal/data/stores"
	"github.com/colonyops/taproom/internal/source/exclude"
)

// Removals persists removed recipes.
type Removals interface {
	Add(ctx context.Context, items ...stores.RemovedItem) error
	IDs(ctx context.Context) ([]window.ID, error)
}

// Options configures a Service.
type Options struct {
	Size      int
	Parts     int
	StartPage int
	// SourceName tags log events with the page source in use.
	SourceName string
	// Exclude hides recipes by name. Nil excludes nothing.
	Exclude *exclude.Matcher
	Logger  zerolog.Logger
}

// Snapshot is a copy of the window state taken after an operation.
type Snapshot struct {
	Items       []recipe.Recipe
	Range       window.Range
	Established bool
	AtStart     bool
	AtEnd       bool
	Size        int
	Step        int
	Removed     int
}

// Service owns a window engine and serializes access to it. Removals are
// written to the store so that they apply again on the next run.
type Service struct {
	mu       sync.Mutex
	engine   *window.Engine[recipe.Recipe]
	removals Removals
	size     int
	source   string
	seq      uint64
	log      zerolog.Logger
}

// New creates a service reading from src. Removals already persisted in
// removals are hidden from the start. removals may be nil, in which case
// removals last only as long as the service.
func New(ctx context.Context, src Source, removals Removals, opts Options) (*Service, error) {
	var removed []window.ID
	if removals != nil {
		ids, err := removals.IDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("load removed recipes: %w", err)
		}
		removed = ids
	}

	log := opts.Logger.With().Str("cmp", "browse").Logger()

	engine := window.New(src, window.Options{
		StartPage: opts.StartPage,
		Parts:     opts.Parts,
		Removed:   removed,
		Logger:    &log,
	})
	if skip := exclude.Func[recipe.Recipe](opts.Exclude); skip != nil {
		engine.ExcludeWhere(skip)
	}

	return &Service{
		engine:   engine,
		removals: removals,
		size:     opts.Size,
		source:   opts.SourceName,
		log:      log,
	}, nil
}

// ctx tags ctx with the next operation number. Callers hold s.mu.
func (s *Service) ctx(ctx context.Context, op string) context.Context {
	s.seq++
	return logging.WithScope(ctx, logging.Scope{Op: op, Source: s.source, Seq: s.seq})
}

// Establish builds the first window. Calling it again does nothing.
func (s *Service) Establish(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = s.ctx(ctx, "establish")
	start := time.Now()
	if err := s.engine.Establish(ctx, s.size); err != nil {
		return s.snapshot(), fmt.Errorf("establish window: %w", err)
	}

	snap := s.snapshot()
	s.log.Debug().Ctx(ctx).Int("items", len(snap.Items)).Dur("elapsed", time.Since(start)).Msg("window ready")
	return snap, nil
}

// Forward slides the window toward later recipes.
func (s *Service) Forward(ctx context.Context) (Snapshot, window.SlideResult, error) {
	return s.slide(ctx, window.Forward)
}

// Back slides the window toward earlier recipes.
func (s *Service) Back(ctx context.Context) (Snapshot, window.SlideResult, error) {
	return s.slide(ctx, window.Back)
}

func (s *Service) slide(ctx context.Context, dir window.Direction) (Snapshot, window.SlideResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = s.ctx(ctx, "slide-"+dir.String())
	if s.engine.Size() == 0 {
		// Never established: establish instead so the first move shows data.
		if err := s.engine.Establish(ctx, s.size); err != nil {
			return s.snapshot(), window.SlideResult{}, fmt.Errorf("establish window: %w", err)
		}
		return s.snapshot(), window.SlideResult{}, nil
	}

	res, err := s.engine.Slide(ctx, dir)
	if err != nil {
		return s.snapshot(), res, fmt.Errorf("slide %s: %w", dir, err)
	}

	if res.Boundary == window.BoundaryFetchFailed {
		s.log.Warn().Ctx(ctx).Stringer("direction", dir).Msg("slide stopped by a failed fetch")
	}
	return s.snapshot(), res, nil
}

// Remove hides the recipes with the given ids and refills the window. The
// removal is persisted after the window changes; when persisting fails the
// window keeps the change and the error says the removal will not survive a
// restart.
func (s *Service) Remove(ctx context.Context, ids ...window.ID) (Snapshot, window.RemoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = s.ctx(ctx, "remove")
	if len(ids) == 0 {
		return s.snapshot(), window.RemoveResult{}, nil
	}

	names := make(map[window.ID]string, len(ids))
	for _, r := range s.engine.Window() {
		names[r.ID] = r.Name
	}

	if s.engine.Size() == 0 {
		// Nothing to refill yet; only the filter is seeded.
		if err := s.engine.Establish(ctx, s.size); err != nil {
			return s.snapshot(), window.RemoveResult{}, fmt.Errorf("establish window: %w", err)
		}
	}

	res, err := s.engine.Remove(ctx, ids...)
	if err != nil {
		return s.snapshot(), res, fmt.Errorf("remove recipes: %w", err)
	}

	if s.removals != nil {
		now := time.Now()
		items := make([]stores.RemovedItem, 0, len(ids))
		for _, id := range ids {
			items = append(items, stores.RemovedItem{ID: id, Name: names[id], RemovedAt: now})
		}
		if err := s.removals.Add(ctx, items...); err != nil {
			s.log.Error().Ctx(ctx).Err(err).Int("count", len(items)).Msg("failed to persist removals")
			return s.snapshot(), res, fmt.Errorf("persist removals: %w", err)
		}
	}

	s.log.Info().Ctx(ctx).
		Int("removed", res.Added).
		Int("refilled", res.Refilled).
		Msg("recipes removed")
	return s.snapshot(), res, nil
}

// Snapshot returns the current state.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Removed reports whether id has been removed.
func (s *Service) Removed(id window.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Filter().Contains(id)
}

func (s *Service) snapshot() Snapshot {
	rng, ok := s.engine.Range()
	return Snapshot{
		Items:       s.engine.Window(),
		Range:       rng,
		Established: ok,
		AtStart:     s.engine.AtStart(),
		AtEnd:       s.engine.AtEnd(),
		Size:        s.engine.Size(),
		Step:        s.engine.Step(),
		Removed:     s.engine.Filter().Len(),
	}
}

// IsCanceled reports whether err came from a cancelled operation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
