package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/arscene/internal/engine/mesh"
)

func TestAppendBoundsLines(t *testing.T) {
	b := mesh.Bounds{Min: [3]float32{-1, 0, -2}, Max: [3]float32{1, 3, 2}}
	v := AppendBoundsLines(nil, b, 0)
	require.Len(t, v, BoundsVertexCount*3)

	// Every edge is axis-aligned and spans the full box along its axis.
	size := [3]float32{2, 3, 4}
	perAxis := [3]int{}
	for i := 0; i < len(v); i += 6 {
		diff := 0
		for k := 0; k < 3; k++ {
			if d := v[i+3+k] - v[i+k]; d != 0 {
				diff++
				perAxis[k]++
				assert.Equal(t, size[k], d)
			}
		}
		assert.Equal(t, 1, diff, "edge %d changes one axis", i/6)
	}
	assert.Equal(t, [3]int{4, 4, 4}, perAxis)
}

func TestAppendBoundsLinesPadding(t *testing.T) {
	b := mesh.Bounds{Min: [3]float32{0, 0, 0}, Max: [3]float32{1, 1, 1}}
	v := AppendBoundsLines([]float32{9}, b, 0.5)
	require.Len(t, v, 1+BoundsVertexCount*3)
	assert.Equal(t, float32(9), v[0], "appends after existing data")
	for _, c := range v[1:] {
		assert.True(t, c == -0.5 || c == 1.5, "coordinate %v", c)
	}
}

func TestAppendBoundsLinesEmpty(t *testing.T) {
	assert.Empty(t, AppendBoundsLines(nil, mesh.EmptyBounds(), 0.1))
}
