// Package exclude hides items whose names match configured glob patterns.
package exclude

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Named is an item with a display name.
type Named interface {
	Title() string
}

// Matcher matches names against a set of glob patterns. Matching ignores case.
type Matcher struct {
	patterns []string
}

// New compiles patterns. An invalid pattern is an error.
func New(patterns ...string) (*Matcher, error) {
	m := &Matcher{patterns: make([]string, 0, len(patterns))}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
		m.patterns = append(m.patterns, strings.ToLower(p))
	}
	return m, nil
}

// Empty reports whether the matcher has no patterns.
func (m *Matcher) Empty() bool {
	return m == nil || len(m.patterns) == 0
}

// Patterns returns the compiled patterns, lowercased.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}

// Match reports whether name matches any pattern.
func (m *Matcher) Match(name string) bool {
	if m.Empty() {
		return false
	}
	name = strings.ToLower(name)
	for _, p := range m.patterns {
		// Patterns were validated in New, so Match cannot fail.
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Func returns a predicate for items with names, or nil when there is
// nothing to exclude.
func Func[T Named](m *Matcher) func(T) bool {
	if m.Empty() {
		return nil
	}
	return func(item T) bool {
		return m.Match(item.Title())
	}
}
