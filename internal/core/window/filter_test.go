package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemovalFilter_AddCountsNewIDs(t *testing.T) {
	f := newRemovalFilter(4, 2)

	assert.Equal(t, 1, f.add(2, 7, 7))
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []ID{2, 4, 7}, f.Removed())
	assert.True(t, f.Contains(7))
	assert.False(t, f.Contains(3))
}

func TestRemovalFilter_CloneIsIndependent(t *testing.T) {
	f := newRemovalFilter(1)
	staged := f.clone()
	staged.add(2)

	assert.Equal(t, []ID{1}, f.Removed())
	assert.Equal(t, []ID{1, 2}, staged.Removed())
}
