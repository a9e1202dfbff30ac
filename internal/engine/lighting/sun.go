// Package lighting holds the light setup shared by the shading and shadow
// passes.
package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/arscene/pkg/math"
)

// Sun is the single directional light of the scene.
type Sun struct {
	Direction math.Vec3 // normalized, pointing towards the sun
	Color     [3]float32
	Ambient   [3]float32
}

// SunDirection converts an azimuth around +Y and an elevation above the
// horizon, both in degrees, to a unit vector pointing towards the sun.
// Elevation is clamped to [1, 90] so the floor is always lit from above.
func SunDirection(azimuth, elevation float32) math.Vec3 {
	elevation = math.Clamp(elevation, 1, 90)
	az := math.Radians(azimuth)
	el := math.Radians(elevation)
	return math.Vec3{
		X: math32.Cos(el) * math32.Sin(az),
		Y: math32.Sin(el),
		Z: math32.Cos(el) * math32.Cos(az),
	}
}

// NewSun returns a warm daylight sun at the given angles.
func NewSun(azimuth, elevation float32) Sun {
	return Sun{
		Direction: SunDirection(azimuth, elevation),
		Color:     [3]float32{1.0, 0.96, 0.9},
		Ambient:   [3]float32{0.45, 0.47, 0.52},
	}
}
