// Package layout computes where each experience item stands in the scene.
package layout

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/arscene/pkg/math"
)

// Params controls the radial arrangement.
type Params struct {
	ObjectHeight float32 // y of every item
	BaseRadius   float32 // smallest circle radius
	Spacing      float32 // radius grows by this much per item
}

// DefaultParams returns the stock arrangement.
func DefaultParams() Params {
	return Params{ObjectHeight: 1, BaseRadius: 3, Spacing: 0.8}
}

// Radius returns the circle radius used for total items.
func (p Params) Radius(total int) float32 {
	return math32.Max(p.BaseRadius, float32(total)*p.Spacing)
}

// Position returns the base position of item index out of total.
//
// A single item sits at the focal point in front of the default camera. More
// items are spread evenly on a circle around the focal axis, starting at the
// front (+Z, facing the camera) and going clockwise seen from above.
func Position(index, total int, p Params) math.Vec3 {
	if total <= 1 {
		return math.Vec3{Y: p.ObjectHeight}
	}
	r := p.Radius(total)
	theta := math.Tau * float32(index) / float32(total)
	s, c := math32.Sincos(theta)
	return math.Vec3{X: -r * s, Y: p.ObjectHeight, Z: r * c}
}

// Positions returns the positions of all total items in order.
func Positions(total int, p Params) []math.Vec3 {
	out := make([]math.Vec3, total)
	for i := range out {
		out[i] = Position(i, total, p)
	}
	return out
}
