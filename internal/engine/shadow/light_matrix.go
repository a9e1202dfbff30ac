package shadow

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/arscene/internal/engine/mesh"
	"github.com/Faultbox/arscene/pkg/math"
)

// Radius returns the half-diagonal of b.
func Radius(b mesh.Bounds) float32 {
	return b.Size().Length() / 2
}

// DirectionalLightMatrix computes the light view-projection covering b.
// lightDir points towards the light. Empty bounds yield the identity.
func DirectionalLightMatrix(lightDir math.Vec3, b mesh.Bounds) math.Mat4 {
	if b.IsEmpty() {
		return math.Identity()
	}
	center := b.Center()
	radius := math32.Max(Radius(b), 0.5)

	dist := radius * 2
	eye := center.Add(lightDir.Normalize().Scale(dist))

	up := math.Vec3{Y: 1}
	if math32.Abs(lightDir.Normalize().Y) > 0.99 {
		up = math.Vec3{Z: 1}
	}
	view := math.LookAt(eye, center, up)

	half := radius * 1.1
	proj := math.Ortho(-half, half, -half, half, 0.1, dist+half)
	return proj.Mul(view)
}

// CasterBounds returns the world bounds of every shadow-casting part plus
// the floor patch under the nodes, so shadows never fall off the map.
func CasterBounds(parts []mesh.Bounds, floor mesh.Bounds) mesh.Bounds {
	out := floor
	for _, p := range parts {
		out = out.Union(p)
	}
	return out
}
