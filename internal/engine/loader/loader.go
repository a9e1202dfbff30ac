// Package loader builds the visual representation of each asset type.
package loader

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/Faultbox/arscene/internal/assets"
	"github.com/Faultbox/arscene/internal/engine/scene"
	"github.com/Faultbox/arscene/pkg/experience"
)

// Footprint is the size every representation is normalized to, in world units.
const Footprint = 2.0

// Loader errors.
var (
	ErrNoURL             = assets.ErrNoURL
	ErrUnsupportedFormat = errors.New("unsupported resource format")
	ErrUnhandledType     = errors.New("no handler for asset type")
)

// Fetcher retrieves the bytes behind an asset URL.
type Fetcher interface {
	Fetch(ctx context.Context, baseDir, ref string) (*assets.Resource, error)
}

// Options tunes the loader.
type Options struct {
	MaxTextureSize int // textures are downscaled to fit
}

type handler struct {
	immediate bool
	build     func(ctx context.Context, baseDir string, a experience.Asset) (*scene.Content, error)
}

// Loader dispatches an asset to the builder for its type.
type Loader struct {
	fetch Fetcher
	opts  Options
	log   *zap.Logger
	font  *opentype.Font

	handlers [experience.NumAssetTypes]handler
}

// New creates a loader. fetch may be nil if only inline types will be loaded.
func New(fetch Fetcher, opts Options, log *zap.Logger) (*Loader, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxTextureSize <= 0 {
		opts.MaxTextureSize = 2048
	}
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse sign font: %w", err)
	}

	l := &Loader{fetch: fetch, opts: opts, log: log, font: f}
	l.handlers = [experience.NumAssetTypes]handler{
		experience.Model3D:    {build: l.buildModel},
		experience.Image:      {build: l.buildImage},
		experience.Video:      {immediate: true, build: l.buildVideo},
		experience.Message:    {immediate: true, build: l.buildMessage},
		experience.WebContent: {immediate: true, build: l.buildWebContent},
	}
	return l, nil
}

// Immediate reports whether type t is built without I/O.
func (l *Loader) Immediate(t experience.AssetType) bool {
	return t.Valid() && l.handlers[t].immediate
}

// Load builds content for a.
func (l *Loader) Load(ctx context.Context, baseDir string, a experience.Asset) (*scene.Content, error) {
	if !a.Type.Valid() || l.handlers[a.Type].build == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnhandledType, a.Type)
	}
	c, err := l.handlers[a.Type].build(ctx, baseDir, a)
	if err != nil {
		return nil, fmt.Errorf("%v %q: %w", a.Type, a.DisplayName(), err)
	}
	return c, nil
}

func (l *Loader) fetchResource(ctx context.Context, baseDir string, a experience.Asset) (*assets.Resource, error) {
	if a.URL == "" {
		return nil, ErrNoURL
	}
	if l.fetch == nil {
		return nil, fmt.Errorf("no fetcher configured for %s", a.URL)
	}
	res, err := l.fetch.Fetch(ctx, baseDir, a.URL)
	if err != nil {
		return nil, err
	}
	l.log.Debug("fetched asset",
		zap.String("asset", a.DisplayName()),
		zap.String("url", a.URL),
		zap.Int("bytes", len(res.Data)),
		zap.String("content_type", res.ContentType))
	return res, nil
}
