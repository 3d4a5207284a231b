package window

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// RemovalFilter is the append-only set of item identifiers excluded from every
// materialized page.
type RemovalFilter struct {
	ids mapset.Set[ID]
}

func newRemovalFilter(ids ...ID) *RemovalFilter {
	return &RemovalFilter{ids: mapset.NewSet(ids...)}
}

// Contains reports whether id has been removed.
func (f *RemovalFilter) Contains(id ID) bool {
	return f.ids.Contains(id)
}

// Len returns the number of removed identifiers.
func (f *RemovalFilter) Len() int {
	return f.ids.Cardinality()
}

// Removed returns the removed identifiers in ascending order.
func (f *RemovalFilter) Removed() []ID {
	ids := f.ids.ToSlice()
	slices.Sort(ids)
	return ids
}

// add inserts ids and returns how many were new.
func (f *RemovalFilter) add(ids ...ID) int {
	return f.ids.Append(ids...)
}

func (f *RemovalFilter) clone() *RemovalFilter {
	return &RemovalFilter{ids: f.ids.Clone()}
}
