package layout

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/arscene/pkg/math"
)

func TestSingleItemAtFocalPoint(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, math.Vec3{Y: p.ObjectHeight}, Position(0, 1, p))
}

func TestCircleProperties(t *testing.T) {
	p := DefaultParams()
	for _, n := range []int{2, 3, 5, 8, 12, 40} {
		pts := Positions(n, p)
		require.Len(t, pts, n)

		r := p.Radius(n)
		angles := make(map[int]bool, n)
		for i, pt := range pts {
			assert.Equal(t, p.ObjectHeight, pt.Y, "n=%d i=%d", n, i)
			assert.InDelta(t, r, math32.Hypot(pt.X, pt.Z), 1e-3, "n=%d i=%d", n, i)

			// bucket the angle to a thousandth of a turn
			a := math32.Atan2(-pt.X, pt.Z)
			bucket := int(math32.Floor(math.WrapAngle(a)/math.Tau*1000 + 0.5))
			assert.False(t, angles[bucket], "duplicate angle for n=%d i=%d", n, i)
			angles[bucket] = true
		}
	}
}

func TestFirstItemFacesCamera(t *testing.T) {
	pt := Position(0, 4, DefaultParams())
	assert.InDelta(t, 0, pt.X, 1e-5)
	assert.Greater(t, pt.Z, float32(0))
}

func TestClockwiseFromAbove(t *testing.T) {
	// From above with +Z toward the viewer, clockwise from the front goes to -X.
	pt := Position(1, 4, DefaultParams())
	assert.Less(t, pt.X, float32(0))
	assert.InDelta(t, 0, pt.Z, 1e-4)
}

func TestRadiusGrowsWithCount(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, p.BaseRadius, p.Radius(2))
	assert.Equal(t, float32(20)*p.Spacing, p.Radius(20))
}

func TestNoOverlapBetweenNeighbours(t *testing.T) {
	p := DefaultParams()
	for _, n := range []int{2, 6, 30} {
		pts := Positions(n, p)
		for i := range pts {
			j := (i + 1) % n
			// footprint of each item is about 2 units wide
			assert.Greater(t, pts[i].Distance(pts[j]), float32(1.5), "n=%d i=%d", n, i)
		}
	}
}
