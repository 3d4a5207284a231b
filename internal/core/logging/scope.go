// Package logging attaches browsing context to zerolog events.
package logging

import "context"

// Scope names the window operation a log event belongs to.
type Scope struct {
	Op     string
	Source string
	// Seq numbers the operations of one browse service, starting at 1.
	Seq uint64
}

type scopeKey struct{}

// WithScope returns a context carrying s. Fields left empty in s keep the
// value of any scope already on ctx.
func WithScope(ctx context.Context, s Scope) context.Context {
	merged := ScopeFrom(ctx)
	if s.Op != "" {
		merged.Op = s.Op
	}
	if s.Source != "" {
		merged.Source = s.Source
	}
	if s.Seq != 0 {
		merged.Seq = s.Seq
	}
	return context.WithValue(ctx, scopeKey{}, merged)
}

// ScopeFrom returns the scope carried by ctx, or the zero Scope.
func ScopeFrom(ctx context.Context) Scope {
	if ctx == nil {
		return Scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(Scope)
	return s
}
