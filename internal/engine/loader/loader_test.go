package loader

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/arscene/internal/assets"
	"github.com/Faultbox/arscene/pkg/experience"
	"github.com/Faultbox/arscene/pkg/formats"
)

type mapFetcher map[string]*assets.Resource

func (m mapFetcher) Fetch(_ context.Context, _, ref string) (*assets.Resource, error) {
	if r, ok := m[ref]; ok {
		return r, nil
	}
	return nil, errors.New("blocked by CORS")
}

func newTestLoader(t *testing.T, f Fetcher) *Loader {
	t.Helper()
	l, err := New(f, Options{MaxTextureSize: 256}, nil)
	require.NoError(t, err)
	return l
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

const pyramidOBJ = `
v -5 0 -5
v 5 0 -5
v 5 0 5
v -5 0 5
v 0 4 0
f 1 2 3 4
f 1 5 2
f 2 5 3
f 3 5 4
f 4 5 1
`

func TestEveryTypeHasHandler(t *testing.T) {
	l := newTestLoader(t, nil)
	for _, typ := range experience.AllAssetTypes() {
		assert.NotNil(t, l.handlers[typ].build, "no handler for %v", typ)
	}
}

func TestImmediateTypes(t *testing.T) {
	l := newTestLoader(t, nil)
	assert.False(t, l.Immediate(experience.Model3D))
	assert.False(t, l.Immediate(experience.Image))
	assert.True(t, l.Immediate(experience.Video))
	assert.True(t, l.Immediate(experience.Message))
	assert.True(t, l.Immediate(experience.WebContent))
	assert.False(t, l.Immediate(experience.AssetType(0)))
}

func TestUnhandledType(t *testing.T) {
	_, err := newTestLoader(t, nil).Load(context.Background(), "", experience.Asset{Type: 42})
	assert.ErrorIs(t, err, ErrUnhandledType)
}

func TestModelIsRecenteredAndRescaled(t *testing.T) {
	l := newTestLoader(t, mapFetcher{
		"pyramid.obj": {Data: []byte(pyramidOBJ), Name: "pyramid.obj"},
	})
	c, err := l.Load(context.Background(), "", experience.Asset{Type: experience.Model3D, URL: "pyramid.obj"})
	require.NoError(t, err)

	size := c.Bounds.Size()
	assert.InDelta(t, Footprint, size.X, 1e-4)
	assert.InDelta(t, Footprint, size.Z, 1e-4)
	assert.InDelta(t, 0.8, size.Y, 1e-4)
	center := c.Bounds.Center()
	assert.InDelta(t, 0, center.X, 1e-4)
	assert.InDelta(t, 0, center.Y, 1e-4)
	assert.InDelta(t, 0, center.Z, 1e-4)
	for _, p := range c.Parts {
		assert.True(t, p.Material.CastShadow)
		assert.True(t, p.Material.ReceiveShadow)
	}
}

func TestModelFailures(t *testing.T) {
	l := newTestLoader(t, mapFetcher{
		"notes.txt": {Data: []byte("hello"), Name: "notes.txt"},
	})
	ctx := context.Background()

	_, err := l.Load(ctx, "", experience.Asset{Type: experience.Model3D, URL: "notes.txt"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.Load(ctx, "", experience.Asset{Type: experience.Model3D, URL: "https://other.origin/m.glb"})
	assert.ErrorContains(t, err, "CORS")

	_, err = l.Load(ctx, "", experience.Asset{Type: experience.Model3D})
	assert.ErrorIs(t, err, ErrNoURL)
}

const loopGLTF = `{"asset":{"version":"2.0"},"scenes":[{"nodes":[0]}],"nodes":[{"children":[1]},{"children":[0]}]}`

func TestMalformedModelReturnsError(t *testing.T) {
	l := newTestLoader(t, mapFetcher{
		"loop.gltf":   {Data: []byte(loopGLTF), Name: "loop.gltf"},
		"broken.gltf": {Data: []byte(`{"asset":{"version":"2.0"},"nodes":[{"mesh":3}]}`), Name: "broken.gltf"},
	})
	for _, url := range []string{"loop.gltf", "broken.gltf"} {
		c, err := l.Load(context.Background(), "", experience.Asset{Type: experience.Model3D, URL: url})
		assert.ErrorIs(t, err, formats.ErrInvalidGLTF, url)
		assert.Nil(t, c, url)
	}
}

func TestImagePanelFollowsAspect(t *testing.T) {
	l := newTestLoader(t, mapFetcher{
		"wide.png": {Data: encodePNG(t, 400, 200), Name: "wide.png"},
	})
	c, err := l.Load(context.Background(), "", experience.Asset{Type: experience.Image, URL: "wide.png"})
	require.NoError(t, err)

	size := c.Bounds.Size()
	assert.InDelta(t, 2*PanelHeight+2*frameThickness, size.X, 1e-4)
	assert.InDelta(t, PanelHeight+2*frameThickness, size.Y, 1e-4)

	pic := c.Parts[0]
	require.NotNil(t, pic.Material.Texture)
	assert.Equal(t, image.Rect(0, 0, 256, 128), pic.Material.Texture.Bounds(), "texture downscaled to the limit")
	// picture, backing and four frame bars
	assert.Len(t, c.Parts, 6)
}

func TestImageDecodeFailure(t *testing.T) {
	l := newTestLoader(t, mapFetcher{
		"broken.png": {Data: []byte("not a png"), Name: "broken.png"},
	})
	_, err := l.Load(context.Background(), "", experience.Asset{Type: experience.Image, URL: "broken.png"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestPlaceholdersAreDistinct(t *testing.T) {
	l := newTestLoader(t, nil)
	ctx := context.Background()

	video, err := l.Load(ctx, "", experience.Asset{Type: experience.Video, URL: "clip.mp4"})
	require.NoError(t, err)
	web, err := l.Load(ctx, "", experience.Asset{Type: experience.WebContent})
	require.NoError(t, err)

	var vt, wt [3]float32
	for _, p := range video.Parts {
		if p.Name == "screen" {
			vt = p.Material.Emissive
		}
	}
	for _, p := range web.Parts {
		if p.Name == "screen" {
			wt = p.Material.Emissive
		}
	}
	assert.Equal(t, VideoTint, vt)
	assert.Equal(t, WebTint, wt)
	assert.NotEqual(t, vt, wt)
	assert.LessOrEqual(t, video.Bounds.Size().X, float32(Footprint+0.2))
}

func TestMessageSign(t *testing.T) {
	l := newTestLoader(t, nil)
	for _, a := range []experience.Asset{
		{Type: experience.Message, TextContent: "Welcome to the gallery. Please enjoy the exhibits and mind the step."},
		{Type: experience.Message, Name: "Only a name"},
		{Type: experience.Message},
	} {
		c, err := l.Load(context.Background(), "", a)
		require.NoError(t, err)
		face := c.Parts[0]
		require.NotNil(t, face.Material.Texture)
		assert.Equal(t, image.Rect(0, 0, SignWidth, SignHeight), face.Material.Texture.Bounds())

		post := c.Parts[2]
		require.Equal(t, "post", post.Name)
		size := post.Mesh.Bounds.Size()
		assert.InDelta(t, 0.08, size.X, 1e-5, "round post")
		assert.InDelta(t, 0.08, size.Z, 1e-5)
		assert.InDelta(t, 0.5, size.Y, 1e-5)
	}
}

func TestSignText(t *testing.T) {
	assert.Equal(t, "hi", signText(experience.Asset{TextContent: "  hi  ", Name: "n"}))
	assert.Equal(t, "n", signText(experience.Asset{TextContent: "   ", Name: "n"}))
	assert.Equal(t, emptyMessage, signText(experience.Asset{}))
	// NFD input is composed before rendering
	assert.Equal(t, "\u00e9", signText(experience.Asset{TextContent: "e\u0301"}))
}

func TestRenderSignWrapsWithinWidth(t *testing.T) {
	l := newTestLoader(t, nil)
	_, lines, err := l.renderSign(strings.Repeat("lorem ipsum ", 12))
	require.NoError(t, err)
	assert.Greater(t, len(lines), 1)
}

func TestWrapLinesGreedy(t *testing.T) {
	measure := func(s string) int { return len(s) * 10 }

	tests := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{"fits", "one two", 100, []string{"one two"}},
		{"breaks", "one two three", 80, []string{"one two", "three"}},
		{"exact width breaks", "abc def", 70, []string{"abc", "def"}},
		{"reaching the limit breaks", "aaaa bbbbb", 100, []string{"aaaa", "bbbbb"}},
		{"newline", "a\nb", 100, []string{"a", "b"}},
		{"long word split", "abcdefghij", 45, []string{"abcd", "efgh", "ij"}},
		{"collapses spaces", "  a    b  ", 100, []string{"a b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapLines(tt.text, tt.max, measure)
			assert.Equal(t, tt.want, got)
			for _, line := range got {
				assert.Less(t, measure(line), tt.max)
			}
		})
	}
}

func TestWrapLinesIsGreedy(t *testing.T) {
	// Each line must be unable to take the first word of the next one.
	measure := func(s string) int { return len(s) * 7 }
	lines := WrapLines("the quick brown fox jumps over the lazy dog again and again", 120, measure)
	for i := 0; i+1 < len(lines); i++ {
		next := strings.Fields(lines[i+1])[0]
		assert.GreaterOrEqual(t, measure(lines[i]+" "+next), 120, "line %d could have taken %q", i, next)
	}
}

func TestFitTexture(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{100, 50, 256, 100, 50},
		{4000, 1000, 2048, 2048, 512},
		{500, 1000, 250, 125, 250},
	}
	for _, tt := range tests {
		got := fitTexture(image.NewRGBA(image.Rect(0, 0, tt.w, tt.h)), tt.max)
		assert.Equal(t, tt.wantW, got.Bounds().Dx())
		assert.Equal(t, tt.wantH, got.Bounds().Dy())
	}
}
