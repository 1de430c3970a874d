package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRanger(t *testing.T) {
	var (
		w   Window
		err error
	)
	// Box parsing
	{
		w, err = ParseBox("0:8,0:4,4")
		require.NoError(t, err)
		assert.Equal(t, [3]int{0, 0, 4}, w.Lo)
		assert.Equal(t, [3]int{8, 4, 4}, w.Hi)
		assert.Equal(t, [3]int{9, 5, 1}, w.Dims())
		assert.Equal(t, []int{2}, w.ConstantAxes())
		assert.Equal(t, "0:8,0:4,4:4", w.String())

		w, err = ParseBox(" 4:0, 2:2 ,1:3")
		require.NoError(t, err)
		assert.Equal(t, [3]int{0, 2, 1}, w.Lo)
		assert.Equal(t, [3]int{4, 2, 3}, w.Hi)

		_, err = ParseBox("0:8,0:4")
		assert.Error(t, err)
		_, err = ParseBox("0:8,a:4,1")
		assert.Error(t, err)
		_, err = ParseBox("0:8:9,0:4,1")
		assert.Error(t, err)
	}
	// Indexing, i fastest
	{
		w = NewWindow([3]int{-1, 0, 1}, [3]int{1, 1, 2})
		assert.Equal(t, 12, w.Size())
		assert.Equal(t, 0, w.Index(-1, 0, 1))
		assert.Equal(t, 1, w.Index(0, 0, 1))
		assert.Equal(t, 3, w.Index(-1, 1, 1))
		assert.Equal(t, 6, w.Index(-1, 0, 2))
		assert.Equal(t, 11, w.Index(1, 1, 2))
		assert.True(t, w.Contains(1, 1, 2))
		assert.False(t, w.Contains(2, 1, 2))
		var order []int
		w.Each(func(i, j, k int) {
			order = append(order, w.Index(i, j, k))
		})
		for n, idx := range order {
			assert.Equal(t, n, idx)
		}
	}
	// Empty window
	{
		w = NewWindow([3]int{1, 1, 1}, [3]int{0, 4, 4})
		assert.Equal(t, 0, w.Size())
		var visited int
		w.Each(func(i, j, k int) { visited++ })
		assert.Equal(t, 0, visited)
	}
	// Scaling for coarse levels
	{
		w = NewWindow([3]int{0, 4, 8}, [3]int{8, 8, 8})
		ws, err := w.Scale(4)
		require.NoError(t, err)
		assert.Equal(t, [3]int{0, 1, 2}, ws.Lo)
		assert.Equal(t, [3]int{2, 2, 2}, ws.Hi)
		_, err = w.Scale(8)
		assert.Error(t, err)
	}
}
