package loader

import (
	"context"

	"github.com/Faultbox/arscene/internal/engine/mesh"
	"github.com/Faultbox/arscene/internal/engine/scene"
	"github.com/Faultbox/arscene/pkg/experience"
	"github.com/Faultbox/arscene/pkg/math"
)

// Emissive tints of the two placeholder screens. They must stay distinct so
// video and web content can be told apart at a glance.
var (
	VideoTint = [3]float32{0.10, 0.22, 0.55}
	WebTint   = [3]float32{0.05, 0.45, 0.38}
)

var (
	bezelColor  = [4]float32{0.08, 0.08, 0.09, 1}
	screenColor = [4]float32{0.03, 0.03, 0.05, 1}
	glyphColor  = [4]float32{0.95, 0.95, 0.95, 1}
	chromeColor = [4]float32{0.82, 0.84, 0.86, 1}
)

// buildVideo returns a screen with a play glyph. Video is never decoded.
func (l *Loader) buildVideo(_ context.Context, _ string, _ experience.Asset) (*scene.Content, error) {
	const w, h = Footprint, Footprint * 9 / 16
	return scene.NewContent(
		scene.Part{
			Name:      "bezel",
			Mesh:      mesh.Box(w+0.1, h+0.1, 0.06),
			Material:  scene.Material{Color: bezelColor, CastShadow: true, ReceiveShadow: true},
			Transform: math.Translate(0, 0, -0.035),
		},
		scene.Part{
			Name:      "screen",
			Mesh:      mesh.Quad(w, h),
			Material:  scene.Material{Color: screenColor, Emissive: VideoTint, Unlit: true},
			Transform: math.Identity(),
		},
		scene.Part{
			Name:      "play",
			Mesh:      mesh.Triangle(0.45),
			Material:  scene.Material{Color: glyphColor, Unlit: true},
			Transform: math.Translate(0.03, 0, 0.01),
		},
	), nil
}

// buildWebContent returns a monitor mockup: bezel, screen with a browser bar,
// neck and foot.
func (l *Loader) buildWebContent(_ context.Context, _ string, _ experience.Asset) (*scene.Content, error) {
	const w, h = 1.8, 1.1
	const bezelH = h + 0.1
	neckH := float32(0.35)
	neckY := -bezelH/2 - neckH/2

	return scene.NewContent(
		scene.Part{
			Name:      "bezel",
			Mesh:      mesh.Box(w+0.1, bezelH, 0.06),
			Material:  scene.Material{Color: bezelColor, CastShadow: true, ReceiveShadow: true},
			Transform: math.Translate(0, 0, -0.035),
		},
		scene.Part{
			Name:      "screen",
			Mesh:      mesh.Quad(w, h),
			Material:  scene.Material{Color: screenColor, Emissive: WebTint, Unlit: true},
			Transform: math.Identity(),
		},
		scene.Part{
			Name:      "address-bar",
			Mesh:      mesh.Quad(w, 0.1),
			Material:  scene.Material{Color: chromeColor, Unlit: true},
			Transform: math.Translate(0, h/2-0.05, 0.005),
		},
		scene.Part{
			Name:      "neck",
			Mesh:      mesh.Box(0.12, neckH, 0.06),
			Material:  scene.Material{Color: bezelColor, CastShadow: true},
			Transform: math.Translate(0, neckY, -0.05),
		},
		scene.Part{
			Name:      "foot",
			Mesh:      mesh.Box(0.7, 0.04, 0.35),
			Material:  scene.Material{Color: bezelColor, CastShadow: true, ReceiveShadow: true},
			Transform: math.Translate(0, neckY-neckH/2-0.02, -0.05),
		},
	), nil
}
