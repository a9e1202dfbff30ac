package loader

import (
	"context"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"

	"github.com/Faultbox/arscene/internal/engine/mesh"
	"github.com/Faultbox/arscene/internal/engine/scene"
	"github.com/Faultbox/arscene/internal/engine/texture"
	"github.com/Faultbox/arscene/pkg/experience"
	"github.com/Faultbox/arscene/pkg/math"
)

// Picture frame dimensions.
const (
	PanelHeight    = 1.5
	frameThickness = 0.06
	frameDepth     = 0.05
)

var frameColor = [4]float32{0.22, 0.16, 0.11, 1}

func (l *Loader) buildImage(ctx context.Context, baseDir string, a experience.Asset) (*scene.Content, error) {
	res, err := l.fetchResource(ctx, baseDir, a)
	if err != nil {
		return nil, err
	}
	img, format, err := texture.Decode(res.Data, res.Name, res.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: decode image (%s): %v", ErrUnsupportedFormat, res.ContentType, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty %s image", ErrUnsupportedFormat, format)
	}
	return framedPicture(fitTexture(img, l.opts.MaxTextureSize), float32(b.Dx())/float32(b.Dy())), nil
}

// framedPicture builds a panel of fixed height with the given aspect ratio,
// surrounded by a four-sided frame and backed by a board.
func framedPicture(tex *image.RGBA, aspect float32) *scene.Content {
	h := float32(PanelHeight)
	w := h * aspect

	parts := []scene.Part{{
		Name: "picture",
		Mesh: mesh.Quad(w, h),
		Material: scene.Material{
			Color:      [4]float32{1, 1, 1, 1},
			Texture:    tex,
			CastShadow: true,
		},
		Transform: math.Identity(),
	}, {
		Name:      "backing",
		Mesh:      mesh.Box(w+2*frameThickness, h+2*frameThickness, 0.02),
		Material:  scene.Material{Color: frameColor, CastShadow: true},
		Transform: math.Translate(0, 0, -0.02),
	}}
	for i, bar := range mesh.Frame(w, h, frameThickness, frameDepth) {
		parts = append(parts, scene.Part{
			Name:      fmt.Sprintf("frame%d", i),
			Mesh:      bar,
			Material:  scene.Material{Color: frameColor, CastShadow: true, ReceiveShadow: true},
			Transform: math.Identity(),
		})
	}
	return scene.NewContent(parts...)
}

// fitTexture converts img to RGBA, downscaling so neither side exceeds max.
func fitTexture(img image.Image, max int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if max <= 0 || (w <= max && h <= max) {
		return clone.AsRGBA(img)
	}
	if w >= h {
		h = h * max / w
		w = max
	} else {
		w = w * max / h
		h = max
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return transform.Resize(img, w, h, transform.Linear)
}
