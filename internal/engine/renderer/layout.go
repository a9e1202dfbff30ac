package renderer

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/Faultbox/arscene/internal/engine/mesh"
	"github.com/Faultbox/arscene/internal/engine/scene"
	"github.com/Faultbox/arscene/pkg/math"
)

// floorMargin extends the shadow catcher past the outermost node.
const floorMargin = 1.5

// CoverFit returns the texture coordinate scale and offset that fill a
// viewW x viewH viewport with a frameW x frameH image, preserving the image
// aspect and cropping the overflow evenly on both sides.
func CoverFit(frameW, frameH, viewW, viewH float32) (scale, offset [2]float32) {
	scale = [2]float32{1, 1}
	if frameW <= 0 || frameH <= 0 || viewW <= 0 || viewH <= 0 {
		return scale, offset
	}
	frameAspect := frameW / frameH
	viewAspect := viewW / viewH
	if frameAspect > viewAspect {
		scale[0] = viewAspect / frameAspect
		offset[0] = (1 - scale[0]) / 2
	} else {
		scale[1] = frameAspect / viewAspect
		offset[1] = (1 - scale[1]) / 2
	}
	return scale, offset
}

// FloorExtent returns the square floor patch under the nodes, at y = 0.
func FloorExtent(nodes []*scene.Node) mesh.Bounds {
	half := float32(floorMargin)
	for _, n := range nodes {
		half = math32.Max(half, math32.Max(math32.Abs(n.Position.X), math32.Abs(n.Position.Z))+floorMargin)
	}
	return mesh.Bounds{Min: [3]float32{-half, 0, -half}, Max: [3]float32{half, 0, half}}
}

// drawItem is one part ready for a draw call.
type drawItem struct {
	node  *scene.Node
	part  *gpuPart
	model math.Mat4
	depth float32 // squared distance to the eye
}

// transparent reports whether the part needs blending.
func (d drawItem) transparent() bool {
	return d.part.material.Color[3] < 1 || d.part.blend
}

// sortDrawItems puts opaque parts first, then transparent parts far to near.
func sortDrawItems(items []drawItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := items[i].transparent(), items[j].transparent()
		if ti != tj {
			return !ti
		}
		if ti {
			return items[i].depth > items[j].depth
		}
		return false
	})
}

// worldBounds returns the world bounds of every node that has content.
func worldBounds(nodes []*scene.Node) []mesh.Bounds {
	out := make([]mesh.Bounds, 0, len(nodes))
	for _, n := range nodes {
		if n.Content == nil {
			continue
		}
		out = append(out, n.Content.Bounds.Transform(n.WorldMatrix()))
	}
	return out
}
