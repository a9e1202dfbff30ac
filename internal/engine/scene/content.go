// Package scene owns the node arena for one composed experience: one node per
// asset, positioned by the layout, with content attached as loads finish.
package scene

import (
	"image"

	"github.com/Faultbox/arscene/internal/engine/mesh"
	"github.com/Faultbox/arscene/pkg/math"
)

// Material describes how a part is shaded.
type Material struct {
	Color    [4]float32  // base color, multiplied with Texture when present
	Emissive [3]float32  // added after lighting
	Texture  *image.RGBA // optional

	Unlit         bool // skip lighting, used for screens and signs
	CastShadow    bool
	ReceiveShadow bool
}

// Part is one drawable piece of a node's content.
type Part struct {
	Name      string
	Mesh      *mesh.Mesh
	Material  Material
	Transform math.Mat4 // relative to the node
}

// Content is the visual representation built for one asset.
type Content struct {
	Parts  []Part
	Bounds mesh.Bounds // union of part bounds in node space
}

// NewContent builds content and computes its bounds.
func NewContent(parts ...Part) *Content {
	c := &Content{Parts: parts}
	c.Bounds = mesh.EmptyBounds()
	for _, p := range parts {
		c.Bounds = c.Bounds.Union(p.Mesh.Bounds.Transform(p.Transform))
	}
	return c
}

// TriangleCount sums the triangles of every part.
func (c *Content) TriangleCount() int {
	n := 0
	for _, p := range c.Parts {
		n += p.Mesh.TriangleCount()
	}
	return n
}
