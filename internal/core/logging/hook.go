package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ScopeHook writes the Scope of an event's context onto the event. Events
// logged without Ctx carry nothing extra.
type ScopeHook struct{}

func (ScopeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	s := ScopeFrom(e.GetCtx())
	if s.Op != "" {
		e.Str("op", s.Op)
	}
	if s.Source != "" {
		e.Str("source", s.Source)
	}
	if s.Seq != 0 {
		e.Uint64("seq", s.Seq)
	}
}

// Cmp returns the global logger tagged with a component name.
func Cmp(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}
