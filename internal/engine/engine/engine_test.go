package engine

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/arscene/internal/assets"
	"github.com/Faultbox/arscene/internal/engine/camfeed"
	"github.com/Faultbox/arscene/internal/engine/layout"
	"github.com/Faultbox/arscene/internal/engine/loader"
	"github.com/Faultbox/arscene/internal/engine/scene"
	"github.com/Faultbox/arscene/pkg/experience"
	"github.com/Faultbox/arscene/pkg/math"
)

const (
	dt     = float32(1.0 / 60)
	width  = 800
	height = 600
)

type offlineFetcher struct{}

func (offlineFetcher) Fetch(context.Context, string, string) (*assets.Resource, error) {
	return nil, errors.New("network unreachable")
}

type deniedSource struct{}

func (deniedSource) Open(context.Context) (camfeed.Stream, error) {
	return nil, camfeed.ErrDenied
}

func newEngine(t *testing.T, feed *camfeed.Feed) *Engine {
	t.Helper()
	l, err := loader.New(offlineFetcher{}, loader.Options{MaxTextureSize: 256}, nil)
	require.NoError(t, err)
	e := New(l, feed, DefaultOptions(), nil)
	e.SetViewport(width, height)
	t.Cleanup(e.Unmount)
	return e
}

func run(e *Engine, frames int) {
	for i := 0; i < frames; i++ {
		e.Frame(dt)
	}
}

func mixedExperience() *experience.Experience {
	return &experience.Experience{
		Title: "Mixed",
		Assets: []experience.Asset{
			{ID: "a", Type: experience.Message, TextContent: "Welcome"},
			{ID: "b", Type: experience.Video, URL: "clip.mp4"},
			{ID: "c", Type: experience.WebContent, URL: "https://example.com"},
			{ID: "d", Type: experience.Message, Name: "Signpost"},
		},
	}
}

func TestScenarioSingleMessage(t *testing.T) {
	e := newEngine(t, nil)
	e.Mount(context.Background(), &experience.Experience{
		Assets: []experience.Asset{{Type: experience.Message, TextContent: "Hello World"}},
	})
	run(e, 1)

	nodes := e.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, layout.Position(0, 1, layout.DefaultParams()), nodes[0].Position)
	require.NotNil(t, nodes[0].Content)
	require.NotNil(t, nodes[0].Content.Parts[0].Material.Texture, "baked text panel")

	var got []int
	e.OnSelectionChanged(func(i int) { got = append(got, i) })
	idx, ok := e.PickAt(width/2+13, height/2+20)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 0, e.Selected())
	assert.Equal(t, []int{0}, got)
}

func TestScenarioMixedSelection(t *testing.T) {
	e := newEngine(t, nil)
	e.Mount(context.Background(), mixedExperience())
	run(e, 1)

	nodes := e.Nodes()
	require.Len(t, nodes, 4)
	angles := map[float32]bool{}
	for _, n := range nodes {
		assert.Equal(t, nodes[0].Position.Y, n.Position.Y)
		angles[math32.Atan2(n.Position.X, n.Position.Z)] = true
	}
	assert.Len(t, angles, 4)

	e.Select(2)
	run(e, 1)
	assert.NotEqual(t, nodes[2].Position, e.Controls().Target(), "camera target does not snap")

	run(e, 600)
	for i, n := range nodes {
		want := float32(1)
		if i == 2 {
			want = 1.15
		}
		assert.Equal(t, want, n.TargetScale)
		assert.InDelta(t, want, n.Scale, 1e-3)
	}
	assert.InDelta(t, 0, e.Controls().Target().Distance(nodes[2].Position), 1e-3)
}

func TestScenarioFailedImage(t *testing.T) {
	e := newEngine(t, nil)
	e.Mount(context.Background(), &experience.Experience{
		Assets: []experience.Asset{
			{ID: "img", Type: experience.Image, URL: "https://unreachable.example/p.png"},
			{ID: "msg", Type: experience.Message, TextContent: "still here"},
		},
	})

	require.Eventually(t, func() bool {
		e.Frame(dt)
		return e.Nodes()[0].State == scene.Failed
	}, 2*time.Second, time.Millisecond)
	run(e, 30)

	img := e.Nodes()[0]
	assert.Equal(t, layout.Position(0, 2, layout.DefaultParams()), img.Position)
	assert.Nil(t, img.Content)
	assert.NotNil(t, e.Nodes()[1].Content)
	done, total := e.Progress()
	assert.Equal(t, 2, done)
	assert.Equal(t, 2, total)
}

type modelFetcher map[string][]byte

func (m modelFetcher) Fetch(_ context.Context, _, ref string) (*assets.Resource, error) {
	if data, ok := m[ref]; ok {
		return &assets.Resource{Data: data, Name: ref}, nil
	}
	return nil, errors.New("not found")
}

func TestCyclicModelLeavesNodeEmpty(t *testing.T) {
	l, err := loader.New(modelFetcher{
		"loop.gltf": []byte(`{"asset":{"version":"2.0"},"scenes":[{"nodes":[0]}],"nodes":[{"children":[1]},{"children":[0]}]}`),
	}, loader.Options{MaxTextureSize: 256}, nil)
	require.NoError(t, err)
	e := New(l, nil, DefaultOptions(), nil)
	e.SetViewport(width, height)
	t.Cleanup(e.Unmount)

	e.Mount(context.Background(), &experience.Experience{
		Assets: []experience.Asset{
			{ID: "model", Type: experience.Model3D, URL: "loop.gltf"},
			{ID: "msg", Type: experience.Message, TextContent: "still here"},
		},
	})
	require.Eventually(t, func() bool {
		e.Frame(dt)
		return e.Nodes()[0].State == scene.Failed
	}, 2*time.Second, time.Millisecond)
	run(e, 10)

	assert.Nil(t, e.Nodes()[0].Content)
	assert.NotNil(t, e.Nodes()[1].Content)
}

func TestExactlyOneSelectedScaleTarget(t *testing.T) {
	e := newEngine(t, nil)
	e.Mount(context.Background(), mixedExperience())
	for _, i := range []int{0, 3, 1, 1, 2} {
		e.Select(i)
		selected := 0
		for _, n := range e.Nodes() {
			if n.TargetScale != 1 {
				selected++
				assert.Equal(t, i, n.Index)
			}
		}
		assert.Equal(t, 1, selected)
	}
	e.Select(17) // out of range
	assert.Equal(t, 2, e.Selected())
}

func TestMissKeepsSelection(t *testing.T) {
	e := newEngine(t, nil)
	e.Mount(context.Background(), mixedExperience())
	run(e, 1)
	e.Select(1)

	calls := 0
	e.OnSelectionChanged(func(int) { calls++ })
	_, ok := e.PickAt(2, 2) // top-left corner, empty sky
	assert.False(t, ok)
	assert.Equal(t, 1, e.Selected())
	assert.Zero(t, calls)
}

func TestRotateSelected(t *testing.T) {
	e := newEngine(t, nil)
	e.Mount(context.Background(), mixedExperience())

	assert.False(t, e.RotateSelected(), "no selection")
	for _, n := range e.Nodes() {
		assert.Zero(t, n.Yaw)
	}

	e.Select(0)
	n := e.Nodes()[0]
	for i := 1; i <= 5; i++ {
		require.True(t, e.RotateSelected())
		want := math.WrapAngle(float32(i) * math32.Pi / 2)
		assert.InDelta(t, 0, angleBetween(want, n.Yaw), 1e-5)
		assert.GreaterOrEqual(t, n.Yaw, float32(0))
		assert.Less(t, n.Yaw, math.Tau)
	}
}

// angleBetween returns the unsigned difference of two angles on the circle.
func angleBetween(a, b float32) float32 {
	d := math.WrapAngle(a - b)
	return math32.Min(d, math.Tau-d)
}

func TestZoomNeverLeavesRange(t *testing.T) {
	e := newEngine(t, nil)
	e.Mount(context.Background(), mixedExperience())
	cfg := e.Controls().Config()

	for i := 0; i < 40; i++ {
		e.ZoomIn()
		e.Frame(dt)
		d := e.Controls().Distance()
		assert.GreaterOrEqual(t, d, cfg.MinDistance-1e-4)
	}
	assert.False(t, e.ZoomIn())
	for i := 0; i < 40; i++ {
		e.ZoomOut()
		e.Frame(dt)
		assert.LessOrEqual(t, e.Controls().Distance(), cfg.MaxDistance+1e-4)
	}
	assert.False(t, e.ZoomOut())
}

func TestIdleAnimationIsPhased(t *testing.T) {
	e := newEngine(t, nil)
	e.Mount(context.Background(), mixedExperience())
	run(e, 20)

	nodes := e.Nodes()
	assert.NotEqual(t, nodes[0].Float, nodes[1].Float, "nodes do not move in lockstep")
	for _, n := range nodes {
		assert.LessOrEqual(t, math32.Abs(n.Float), e.opts.Animation.FloatAmplitude+1e-6)
		assert.LessOrEqual(t, math32.Abs(n.IdleYaw), e.opts.Animation.YawAmplitude+1e-6)
	}
}

func TestWorksWithCameraDenied(t *testing.T) {
	feed := camfeed.New(deniedSource{}, nil)
	e := newEngine(t, feed)
	e.Mount(context.Background(), mixedExperience())

	require.Eventually(t, func() bool {
		e.Frame(dt)
		_, ok := e.CameraNotice()
		return ok
	}, 2*time.Second, time.Millisecond)

	_, _, ok := e.Background()
	assert.False(t, ok)

	// navigation
	e.Orbit(50, 10)
	e.Pan(10, 0)
	e.Zoom(1)
	e.Pinch(1.2)
	run(e, 10)
	assert.True(t, e.ZoomOut() || e.ZoomIn())

	// selection and rotation
	e.Select(3)
	assert.True(t, e.RotateSelected())
	run(e, 10)
	assert.Greater(t, e.Nodes()[3].Scale, float32(1))

	e.DismissCameraNotice()
	_, ok = e.CameraNotice()
	assert.False(t, ok)
}

func TestBackgroundOnlyAfterFirstFrame(t *testing.T) {
	frames := make(chan *image.RGBA, 1)
	feed := camfeed.New(chanSource(frames), nil)
	e := newEngine(t, feed)
	e.Mount(context.Background(), mixedExperience())
	run(e, 3)

	_, _, ok := e.Background()
	assert.False(t, ok, "no frame decoded yet")

	frames <- image.NewRGBA(image.Rect(0, 0, 8, 6))
	require.Eventually(t, func() bool {
		e.Frame(dt)
		_, _, ok := e.Background()
		return ok
	}, 2*time.Second, time.Millisecond)
	img, seq, _ := e.Background()
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, uint64(1), seq)
}

type chanSource chan *image.RGBA

func (c chanSource) Open(context.Context) (camfeed.Stream, error) { return c, nil }
func (c chanSource) ReadFrame(ctx context.Context) (*image.RGBA, error) {
	select {
	case img := <-c:
		return img, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
func (c chanSource) Close() error { return nil }

func TestUnmountReleasesEverything(t *testing.T) {
	frames := make(chan *image.RGBA, 1)
	feed := camfeed.New(chanSource(frames), nil)
	e := newEngine(t, feed)
	e.Mount(context.Background(), mixedExperience())
	e.Select(1)

	calls := 0
	e.OnSelectionChanged(func(int) { calls++ })
	e.Unmount()

	assert.False(t, e.Mounted())
	assert.Empty(t, e.Nodes())
	assert.Equal(t, camfeed.Stopped, feed.Status())
	assert.Equal(t, NoSelection, e.Selected())

	e.Frame(dt) // no-op
	e.Mount(context.Background(), mixedExperience())
	e.Select(2)
	assert.Zero(t, calls, "listeners do not survive unmount")
}

func TestListenerCancel(t *testing.T) {
	e := newEngine(t, nil)
	e.Mount(context.Background(), mixedExperience())

	var a, b []int
	cancelA := e.OnSelectionChanged(func(i int) { a = append(a, i) })
	e.OnSelectionChanged(func(i int) { b = append(b, i) })
	e.Select(1)
	cancelA()
	e.Select(2)

	assert.Equal(t, []int{1}, a)
	assert.Equal(t, []int{1, 2}, b)
}

func TestRecomposeClearsSelection(t *testing.T) {
	e := newEngine(t, nil)
	e.Mount(context.Background(), mixedExperience())
	gen := e.Generation()
	e.Select(3)

	var got []int
	e.OnSelectionChanged(func(i int) { got = append(got, i) })
	e.Recompose(context.Background(), &experience.Experience{
		Assets: []experience.Asset{{Type: experience.Message, TextContent: "only one"}},
	})

	assert.NotEqual(t, gen, e.Generation())
	assert.Len(t, e.Nodes(), 1)
	assert.Equal(t, []int{NoSelection}, got)
}

func TestRecomposeStopsRetarget(t *testing.T) {
	e := newEngine(t, nil)
	e.Mount(context.Background(), mixedExperience())
	old := e.Nodes()[3].Position
	e.Select(3)
	run(e, 2)
	require.True(t, e.Controls().Retargeting())

	e.Recompose(context.Background(), &experience.Experience{
		Assets: []experience.Asset{{Type: experience.Message, TextContent: "only one"}},
	})
	assert.False(t, e.Controls().Retargeting())
	stopped := e.Controls().Target()
	run(e, 120)
	assert.Equal(t, stopped, e.Controls().Target())
	assert.Greater(t, e.Controls().Target().Distance(old), float32(0.01))
}
