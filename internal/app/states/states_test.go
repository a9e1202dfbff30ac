package states

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/arscene/internal/assets"
	"github.com/Faultbox/arscene/internal/engine/camfeed"
	"github.com/Faultbox/arscene/internal/engine/engine"
	"github.com/Faultbox/arscene/internal/engine/input"
	"github.com/Faultbox/arscene/internal/engine/loader"
	"github.com/Faultbox/arscene/internal/engine/ui2d"
	"github.com/Faultbox/arscene/pkg/experience"
)

const dt = float32(1.0 / 60)

// fakeOverlay records what a state draws. Buttons listed in click report a
// click; windows listed in close report their close box pressed.
type fakeOverlay struct {
	click map[string]bool
	close map[string]bool

	windows  []string
	titles   []string
	buttons  []string
	labels   []string
	progress []string
}

func newOverlay() *fakeOverlay {
	return &fakeOverlay{click: map[string]bool{}, close: map[string]bool{}}
}

func (o *fakeOverlay) ScreenSize() (float32, float32) { return 1280, 720 }

func (o *fakeOverlay) BeginWindow(id string, x, y, w, h float32, title string, closable bool) bool {
	o.windows = append(o.windows, id)
	o.titles = append(o.titles, title)
	return closable && o.close[id]
}

func (o *fakeOverlay) EndWindow() {}

func (o *fakeOverlay) Button(id string, width float32, label string) bool {
	o.buttons = append(o.buttons, id)
	return o.click[id]
}

func (o *fakeOverlay) ButtonAt(id string, rect ui2d.Rect, label string) bool {
	o.buttons = append(o.buttons, id)
	return o.click[id]
}

func (o *fakeOverlay) Label(text string)                       { o.labels = append(o.labels, text) }
func (o *fakeOverlay) LabelColored(text string, _ ui2d.Color)  { o.labels = append(o.labels, text) }
func (o *fakeOverlay) LabelCentered(text string, _ ui2d.Color) { o.labels = append(o.labels, text) }
func (o *fakeOverlay) Spacer(float32)                          {}

func (o *fakeOverlay) ProgressBar(fraction, height float32, label string) {
	o.progress = append(o.progress, label)
}

func (o *fakeOverlay) MeasureText(text string, scale float32) (float32, float32) {
	return float32(len([]rune(text))*7) * scale, 13 * scale
}

type offlineFetcher struct{}

func (offlineFetcher) Fetch(context.Context, string, string) (*assets.Resource, error) {
	return nil, errors.New("network unreachable")
}

// blockingFetcher never finishes before its context ends.
type blockingFetcher struct{}

func (blockingFetcher) Fetch(ctx context.Context, _, _ string) (*assets.Resource, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type deniedSource struct{}

func (deniedSource) Open(context.Context) (camfeed.Stream, error) {
	return nil, camfeed.ErrDenied
}

type countingCue struct{ n int }

func (c *countingCue) PlayCue() error {
	c.n++
	return nil
}

func newEngine(t *testing.T, fetch loader.Fetcher, feed *camfeed.Feed) *engine.Engine {
	t.Helper()
	l, err := loader.New(fetch, loader.Options{MaxTextureSize: 256}, nil)
	require.NoError(t, err)
	e := engine.New(l, feed, engine.DefaultOptions(), nil)
	e.SetViewport(1280, 720)
	t.Cleanup(e.Unmount)
	return e
}

func signs(n int) *experience.Experience {
	exp := &experience.Experience{Title: fmt.Sprintf("%d signs", n)}
	for i := 0; i < n; i++ {
		exp.Assets = append(exp.Assets, experience.Asset{
			ID:          fmt.Sprintf("m%d", i),
			Type:        experience.Message,
			TextContent: fmt.Sprintf("Sign %d", i),
		})
	}
	return exp
}

func enterView(t *testing.T, cfg ViewConfig) *ViewState {
	t.Helper()
	s := NewViewState(cfg)
	require.NoError(t, s.Enter())
	t.Cleanup(func() { s.Exit() })
	require.NoError(t, s.Update(dt))
	return s
}

type recordState struct {
	name string
	log  *[]string
}

func (s recordState) Enter() error             { *s.log = append(*s.log, "enter "+s.name); return nil }
func (s recordState) Exit() error              { *s.log = append(*s.log, "exit "+s.name); return nil }
func (s recordState) Update(float32) error     { *s.log = append(*s.log, "update "+s.name); return nil }
func (s recordState) DrawOverlay(Overlay)      {}
func (s recordState) HandleKey(input.Key) bool { return s.name == "b" }

func TestManagerTransitions(t *testing.T) {
	var log []string
	m := NewManager()
	assert.False(t, m.HandleKey(input.KeyInfo))

	m.Change(recordState{"a", &log})
	assert.Nil(t, m.Current(), "change waits for Update")
	require.NoError(t, m.Update(dt))
	m.Change(recordState{"b", &log})
	require.NoError(t, m.Update(dt))
	assert.True(t, m.HandleKey(input.KeyInfo))
	require.NoError(t, m.Close())

	assert.Equal(t, []string{"enter a", "update a", "exit a", "enter b", "update b", "exit b"}, log)
	assert.Nil(t, m.Current())
}

func TestViewMountsAndUnmounts(t *testing.T) {
	e := newEngine(t, offlineFetcher{}, nil)
	s := NewViewState(ViewConfig{Engine: e, Experience: signs(3)})

	require.NoError(t, s.Enter())
	require.NoError(t, s.Update(dt))
	assert.True(t, e.Mounted())
	assert.Len(t, e.Nodes(), 3)

	require.NoError(t, s.Exit())
	assert.False(t, e.Mounted())
	assert.Empty(t, e.Nodes())
}

func TestViewKeys(t *testing.T) {
	e := newEngine(t, offlineFetcher{}, nil)
	s := enterView(t, ViewConfig{Engine: e, Experience: signs(2)})

	d := e.Controls().Distance()
	assert.True(t, s.HandleKey(input.KeyZoomIn))
	assert.Less(t, e.Controls().Distance(), d)

	assert.False(t, s.HandleKey(input.KeyEscape), "nothing to deselect")
	e.Select(1)
	yaw := e.Nodes()[1].Yaw
	assert.True(t, s.HandleKey(input.KeyRotate))
	assert.NotEqual(t, yaw, e.Nodes()[1].Yaw)

	assert.True(t, s.HandleKey(input.KeyEscape))
	assert.Equal(t, engine.NoSelection, e.Selected())

	assert.False(t, s.ShowInfo)
	assert.True(t, s.HandleKey(input.KeyInfo))
	assert.True(t, s.ShowInfo)

	assert.False(t, s.HandleKey(input.KeyOpen))
	assert.False(t, s.HandleKey(input.KeyScreenshot))
}

func TestSelectionPlaysCue(t *testing.T) {
	e := newEngine(t, offlineFetcher{}, nil)
	cue := &countingCue{}
	s := enterView(t, ViewConfig{Engine: e, Experience: signs(2), Cue: cue})

	e.Select(0)
	e.Select(1)
	e.Select(engine.NoSelection)
	assert.Equal(t, 2, cue.n)

	require.NoError(t, s.Exit())
	e.Select(0)
	assert.Equal(t, 2, cue.n, "no cue once unmounted")
}

func TestReload(t *testing.T) {
	e := newEngine(t, offlineFetcher{}, nil)
	next := signs(4)
	var loadErr error
	var notes []string
	s := enterView(t, ViewConfig{
		Engine:     e,
		Experience: signs(2),
		Path:       "gallery.yaml",
		Load: func(string) (*experience.Experience, error) {
			return next, loadErr
		},
		Notify: func(msg string) { notes = append(notes, msg) },
	})

	e.Select(0)
	assert.True(t, s.HandleKey(input.KeyReload))
	require.NoError(t, s.Update(dt))
	assert.Len(t, e.Nodes(), 4)
	assert.Equal(t, engine.NoSelection, e.Selected())
	assert.Same(t, next, s.Experience())

	loadErr = errors.New("bad yaml")
	next = nil
	assert.False(t, s.Reload())
	assert.Len(t, e.Nodes(), 4, "scene kept on failure")
	require.Len(t, notes, 2)
	assert.Contains(t, notes[1], "bad yaml")
}

func TestReloadWithoutPath(t *testing.T) {
	e := newEngine(t, offlineFetcher{}, nil)
	s := enterView(t, ViewConfig{Engine: e, Experience: signs(1)})
	assert.False(t, s.Reload())
}

const watchedYAML = `
title: Watched
assets:
%s`

func writeSigns(t *testing.T, path string, n int) {
	t.Helper()
	items := ""
	for i := 0; i < n; i++ {
		items += fmt.Sprintf("  - id: m%d\n    type: MESSAGE\n    text_content: Sign %d\n", i, i)
	}
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(watchedYAML, items)), 0o644))
}

func TestWatchedFileRecomposes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exp.yaml")
	writeSigns(t, path, 1)
	exp, err := experience.Load(path)
	require.NoError(t, err)

	e := newEngine(t, offlineFetcher{}, nil)
	s := enterView(t, ViewConfig{
		Engine:     e,
		Experience: exp,
		Path:       path,
		Watch:      true,
		Debounce:   20 * time.Millisecond,
	})
	require.Len(t, e.Nodes(), 1)

	writeSigns(t, path, 3)
	require.Eventually(t, func() bool {
		s.Update(dt)
		return len(e.Nodes()) == 3
	}, 3*time.Second, 5*time.Millisecond)
}

func TestOverlayButtons(t *testing.T) {
	e := newEngine(t, offlineFetcher{}, nil)
	s := enterView(t, ViewConfig{Engine: e, Experience: signs(2)})

	ui := newOverlay()
	s.DrawOverlay(ui)
	assert.Equal(t, []string{"zoom_in", "zoom_out", "rotate", "info"}, ui.buttons)
	assert.Empty(t, ui.windows, "no info without selection, no notice, nothing loading")

	d := e.Controls().Distance()
	ui = newOverlay()
	ui.click["zoom_out"] = true
	ui.click["info"] = true
	s.DrawOverlay(ui)
	assert.Greater(t, e.Controls().Distance(), d)
	assert.True(t, s.ShowInfo)
}

func TestInfoPanel(t *testing.T) {
	e := newEngine(t, offlineFetcher{}, nil)
	s := enterView(t, ViewConfig{Engine: e, Experience: signs(2), ShowInfo: true})
	e.Select(1)

	ui := newOverlay()
	s.DrawOverlay(ui)
	require.Contains(t, ui.windows, "info")
	assert.Contains(t, ui.titles, "m1")
	assert.Contains(t, ui.labels, "Type: MESSAGE")
	assert.Contains(t, ui.labels, "Status: ready")
	assert.Contains(t, ui.labels, "Text: Sign 1")

	ui = newOverlay()
	ui.close["info"] = true
	s.DrawOverlay(ui)
	assert.False(t, s.ShowInfo)
}

func TestCameraNoticeCanBeDismissed(t *testing.T) {
	feed := camfeed.New(deniedSource{}, nil)
	e := newEngine(t, offlineFetcher{}, feed)
	s := enterView(t, ViewConfig{Engine: e, Experience: signs(1)})

	require.Eventually(t, func() bool {
		s.Update(dt)
		_, ok := e.CameraNotice()
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	ui := newOverlay()
	s.DrawOverlay(ui)
	require.Contains(t, ui.windows, "camera")
	assert.NotEmpty(t, ui.labels)

	ui = newOverlay()
	ui.close["camera"] = true
	s.DrawOverlay(ui)
	_, ok := e.CameraNotice()
	assert.False(t, ok)

	ui = newOverlay()
	s.DrawOverlay(ui)
	assert.NotContains(t, ui.windows, "camera")
	assert.Len(t, e.Nodes(), 1, "scene unaffected")
}

func TestLoadingProgress(t *testing.T) {
	e := newEngine(t, blockingFetcher{}, nil)
	exp := signs(1)
	exp.Assets = append(exp.Assets, experience.Asset{ID: "img", Type: experience.Image, URL: "poster.png"})
	s := enterView(t, ViewConfig{Engine: e, Experience: exp})

	ui := newOverlay()
	s.DrawOverlay(ui)
	assert.Equal(t, []string{"Loading 1/2"}, ui.progress)
}

func TestEmptyState(t *testing.T) {
	opened := 0
	s := NewEmptyState(func() { opened++ }, "")
	require.NoError(t, s.Enter())
	assert.False(t, s.HandleKey(input.KeyOpen))

	ui := newOverlay()
	s.DrawOverlay(ui)
	assert.Equal(t, []string{"empty"}, ui.windows)
	assert.Contains(t, ui.labels, "No experience loaded")
	assert.Equal(t, 0, opened)

	ui = newOverlay()
	ui.click["open"] = true
	s.Error = "open gallery.yaml: no such file or directory"
	s.DrawOverlay(ui)
	assert.Equal(t, 1, opened)
	assert.Contains(t, ui.labels, s.Error)
	require.NoError(t, s.Exit())
}

func TestClip(t *testing.T) {
	ui := newOverlay()
	assert.Equal(t, "short", clip(ui, "short", 100))
	got := clip(ui, "a rather long line of text", 70)
	assert.Equal(t, "a rathe...", got)
}
