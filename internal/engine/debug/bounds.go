package debug

import (
	"github.com/Faultbox/arscene/internal/engine/mesh"
)

// BoundsVertexCount is the number of line vertices per box (12 edges × 2).
const BoundsVertexCount = 24

// BoundsPadding keeps the box lines off the surfaces they enclose.
const BoundsPadding = 0.02

// AppendBoundsLines appends the 12 edges of b, grown by pad on every side,
// to dst as a line list of x, y, z triples. Empty bounds append nothing.
func AppendBoundsLines(dst []float32, b mesh.Bounds, pad float32) []float32 {
	if b.IsEmpty() {
		return dst
	}
	lo := [3]float32{b.Min[0] - pad, b.Min[1] - pad, b.Min[2] - pad}
	hi := [3]float32{b.Max[0] + pad, b.Max[1] + pad, b.Max[2] + pad}

	corner := func(i int) [3]float32 {
		c := lo
		if i&1 != 0 {
			c[0] = hi[0]
		}
		if i&2 != 0 {
			c[1] = hi[1]
		}
		if i&4 != 0 {
			c[2] = hi[2]
		}
		return c
	}
	// Corners are indexed by bits x=1, y=2, z=4; every edge flips one bit.
	for i := 0; i < 8; i++ {
		for _, bit := range [3]int{1, 2, 4} {
			if i&bit != 0 {
				continue
			}
			a, c := corner(i), corner(i|bit)
			dst = append(dst, a[0], a[1], a[2], c[0], c[1], c[2])
		}
	}
	return dst
}
