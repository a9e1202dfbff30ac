package loader

import (
	"context"
	"fmt"
	"image"

	"github.com/Faultbox/arscene/internal/engine/mesh"
	"github.com/Faultbox/arscene/internal/engine/scene"
	"github.com/Faultbox/arscene/pkg/experience"
	"github.com/Faultbox/arscene/pkg/formats"
	"github.com/Faultbox/arscene/pkg/math"
)

func (l *Loader) buildModel(ctx context.Context, baseDir string, a experience.Asset) (*scene.Content, error) {
	res, err := l.fetchResource(ctx, baseDir, a)
	if err != nil {
		return nil, err
	}

	mime := a.MimeType
	if mime == "" {
		mime = res.ContentType
	}
	format := formats.DetectModelFormat(res.Data, res.Name, mime)
	if format == formats.FormatUnknown {
		return nil, fmt.Errorf("%w: cannot identify model %s", ErrUnsupportedFormat, res.Name)
	}
	model, err := formats.ParseModel(res.Data, format)
	if err != nil {
		return nil, fmt.Errorf("parse %v: %w", format, err)
	}
	return l.modelContent(model), nil
}

// modelContent recenters and rescales the model so its largest dimension is
// Footprint, with shadows on every part.
func (l *Loader) modelContent(model *formats.Model) *scene.Content {
	meshes := make([]*mesh.Mesh, len(model.Primitives))
	bounds := mesh.EmptyBounds()
	for i, p := range model.Primitives {
		meshes[i] = mesh.FromPrimitive(p)
		bounds = bounds.Union(meshes[i].Bounds)
	}

	fit := mesh.FitTransform(bounds, Footprint)
	parts := make([]scene.Part, 0, len(meshes))
	for i, m := range meshes {
		if m.TriangleCount() == 0 {
			continue
		}
		m.Apply(fit)
		prim := model.Primitives[i]
		parts = append(parts, scene.Part{
			Name: fmt.Sprintf("primitive%d", i),
			Mesh: m,
			Material: scene.Material{
				Color:         prim.BaseColor,
				Texture:       l.texture(prim.Texture),
				CastShadow:    true,
				ReceiveShadow: true,
			},
			Transform: math.Identity(),
		})
	}
	return scene.NewContent(parts...)
}

func (l *Loader) texture(img image.Image) *image.RGBA {
	if img == nil {
		return nil
	}
	return fitTexture(img, l.opts.MaxTextureSize)
}
