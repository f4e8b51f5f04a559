package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeenWindow_Filter(t *testing.T) {
	w := newSeenWindow(3)

	assert.Equal(t, []int64{1, 2}, w.filter([]int64{1, 2}))
	assert.Equal(t, []int64{3}, w.filter([]int64{2, 3, 3}))
	assert.Empty(t, w.filter([]int64{1, 2, 3}))

	// 4 pushes 1 out of the window.
	assert.Equal(t, []int64{4}, w.filter([]int64{4}))
	assert.Equal(t, []int64{1}, w.filter([]int64{1}))
	assert.Len(t, w.ids, 3)
	assert.Len(t, w.order, 3)
}
