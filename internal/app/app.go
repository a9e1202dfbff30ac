// Package app hosts the viewer: it owns the window, the renderer and the
// overlay, routes input and switches between the viewer states.
package app

import (
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/arscene/internal/app/states"
	"github.com/Faultbox/arscene/internal/assets"
	"github.com/Faultbox/arscene/internal/config"
	"github.com/Faultbox/arscene/internal/engine/audio"
	"github.com/Faultbox/arscene/internal/engine/camfeed"
	"github.com/Faultbox/arscene/internal/engine/debug"
	"github.com/Faultbox/arscene/internal/engine/engine"
	"github.com/Faultbox/arscene/internal/engine/gesture"
	"github.com/Faultbox/arscene/internal/engine/input"
	"github.com/Faultbox/arscene/internal/engine/loader"
	"github.com/Faultbox/arscene/internal/engine/renderer"
	"github.com/Faultbox/arscene/internal/engine/ui2d"
	"github.com/Faultbox/arscene/internal/engine/window"
	"github.com/Faultbox/arscene/internal/logger"
	"github.com/Faultbox/arscene/pkg/experience"
)

const (
	windowTitle  = "AR Viewer"
	floorOpacity = 0.35
	toastSeconds = 3
)

// App is the viewer instance.
type App struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	ui       *ui2d.Context
	engine   *engine.Engine
	router   *input.Router
	loop     *engine.Loop
	states   *states.Manager
	shots    *debug.Screenshots
	cue      *audio.Player // nil when audio is off

	// Paths picked in the file dialog, which runs off the frame thread.
	picked     chan string
	dialogOpen atomic.Bool

	toast    toast
	quit     bool
	wantShot bool
}

// New creates the window and everything drawn into it. It must be called on
// the main thread.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:    cfg,
		log:    logger.Named("app"),
		loop:   engine.NewLoop(),
		states: states.NewManager(),
		shots:  debug.NewScreenshots(cfg.UI.ScreenshotDir, ""),
		picked: make(chan string, 1),
	}

	var err error
	a.window, err = window.New(window.Config{
		Title:      windowTitle,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	ww, wh := a.window.Size()
	dw, dh := a.window.DrawableSize()
	if dw != ww {
		a.log.Info("HiDPI detected", zap.Int("window", ww), zap.Int("drawable", dw))
	}

	a.renderer, err = renderer.New(renderer.Config{
		Width:            dw,
		Height:           dh,
		Shadows:          cfg.Graphics.Shadows,
		ShadowResolution: cfg.Graphics.ShadowResolution,
		SunAzimuth:       cfg.Graphics.SunAzimuth,
		SunElevation:     cfg.Graphics.SunElevation,
		FloorOpacity:     floorOpacity,
		ClearColor:       [4]float32{0.08, 0.09, 0.11, 1},
		ShowBounds:       cfg.Graphics.ShowBounds,
	}, logger.Named("renderer"))
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	a.ui, err = ui2d.NewContext(ww, wh)
	if err != nil {
		a.renderer.Close()
		a.window.Close()
		return nil, fmt.Errorf("create overlay: %w", err)
	}

	fetcher := assets.NewFetcher(assets.Options{
		BaseDir:   cfg.Assets.BaseDir,
		Timeout:   cfg.Assets.FetchTimeout,
		MaxBytes:  cfg.Assets.MaxBytes,
		UserAgent: cfg.Assets.UserAgent,
	}, nil)
	ldr, err := loader.New(fetcher, loader.Options{MaxTextureSize: cfg.Assets.MaxTextureSize}, logger.Named("loader"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create loader: %w", err)
	}

	var feed *camfeed.Feed
	if cfg.CameraFeed.Enabled {
		feed = camfeed.New(&camfeed.V4L2Source{
			Devices: cfg.CameraFeed.Devices,
			Facing:  cfg.CameraFeed.Facing,
			Width:   cfg.CameraFeed.Width,
			Height:  cfg.CameraFeed.Height,
			Log:     logger.Named("webcam"),
		}, logger.Named("camfeed"))
	} else {
		a.log.Info("camera feed disabled")
	}

	a.engine = engine.New(ldr, feed, engine.OptionsFromConfig(cfg), logger.Named("engine"))
	a.engine.SetViewport(float32(ww), float32(wh))

	a.router = input.NewRouter(gesture.New(a.engine), a.ui, input.Handlers{
		Quit:   func() { a.quit = true },
		Resize: a.resize,
		Key:    a.handleKey,
		Drop:   func(path string) { a.Open(path) },
	})

	if cfg.Audio.Enabled {
		a.cue = a.initAudio()
	}

	a.states.Change(states.NewEmptyState(a.openDialog, ""))
	return a, nil
}

func (a *App) initAudio() *audio.Player {
	p := audio.New(logger.Named("audio"))
	p.SetVolume(float64(a.cfg.Audio.Volume))
	if path := a.cfg.Audio.SelectionSound; path != "" {
		if err := p.LoadCueFile(path); err != nil {
			a.log.Warn("using built-in selection cue", zap.String("path", path), zap.Error(err))
		}
	}
	if err := p.Init(); err != nil {
		a.log.Warn("audio disabled", zap.Error(err))
		return nil
	}
	return p
}

// Open loads an experience file and shows it. On failure the current state
// is kept and the error is shown.
func (a *App) Open(path string) error {
	exp, err := experience.Load(path)
	if err != nil {
		a.log.Error("open experience", zap.String("path", path), zap.Error(err))
		a.toast.show("Could not open "+filepath.Base(path), toastSeconds)
		if empty, ok := a.states.Current().(*states.EmptyState); ok {
			empty.Error = err.Error()
		}
		return err
	}
	for _, issue := range exp.Validate() {
		a.log.Warn("experience issue", zap.String("path", path), zap.String("issue", issue.String()))
	}

	title := exp.Title
	if title == "" {
		title = filepath.Base(path)
	}
	a.window.SetTitle(title + " - " + windowTitle)
	a.shots.SetPrefix(title)

	cfg := states.ViewConfig{
		Engine:     a.engine,
		Experience: exp,
		Path:       path,
		Watch:      a.cfg.UI.WatchFile,
		ShowInfo:   a.cfg.UI.ShowInfo,
		Notify:     func(msg string) { a.toast.show(msg, toastSeconds) },
		Log:        logger.Named("view"),
	}
	if a.cue != nil {
		cfg.Cue = a.cue
	}
	a.states.Change(states.NewViewState(cfg))
	return nil
}

// Run runs the frame loop until the window closes or Stop is called.
func (a *App) Run() {
	a.log.Info("starting frame loop")
	a.loop.Run(a.step)
	a.log.Info("frame loop ended")
}

// Stop ends Run from another goroutine. It returns once no frame is in
// progress.
func (a *App) Stop() {
	a.loop.Stop()
}

func (a *App) step(f *engine.Frame) {
	for _, ev := range a.window.PollEvents() {
		a.router.Route(ev)
	}
	if a.quit {
		f.Stop()
		return
	}

	select {
	case path := <-a.picked:
		a.Open(path)
	default:
	}

	if err := a.states.Update(f.DT); err != nil {
		a.log.Error("state update", zap.Error(err))
	}
	a.toast.tick(f.DT)

	if a.engine.Mounted() {
		a.renderer.Render(a.engine)
	} else {
		a.renderer.Clear()
	}
	if a.wantShot {
		a.wantShot = false
		a.screenshot()
	}

	a.ui.Begin()
	a.states.DrawOverlay(a.ui)
	w, h := a.ui.ScreenSize()
	a.toast.draw(a.ui.Renderer(), w, h)
	a.ui.End()

	a.window.SwapBuffers()
}

func (a *App) handleKey(k input.Key) {
	if a.states.HandleKey(k) {
		return
	}
	switch k {
	case input.KeyOpen:
		a.openDialog()
	case input.KeyScreenshot:
		a.wantShot = true
	case input.KeyEscape:
		a.quit = true
	}
}

func (a *App) resize(w, h int) {
	dw, dh := a.window.DrawableSize()
	a.renderer.Resize(dw, dh)
	a.ui.Resize(w, h)
	a.engine.SetViewport(float32(w), float32(h))
	a.router.Reset()
}

// openDialog shows the native file dialog. It runs on its own goroutine and
// hands the path back to the frame thread.
func (a *App) openDialog() {
	if !a.dialogOpen.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer a.dialogOpen.Store(false)
		filename, err := dialog.File().
			Filter("Experiences", "json", "yaml", "yml", "toml").
			Filter("All Files", "*").
			Title("Open experience").
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				a.log.Warn("file dialog", zap.Error(err))
			}
			return
		}
		select {
		case a.picked <- filename:
		default:
		}
	}()
}

func (a *App) screenshot() {
	if !a.engine.Mounted() {
		a.toast.show("Nothing to capture", toastSeconds)
		return
	}
	img, err := a.renderer.Capture(a.engine)
	if err == nil {
		var path string
		path, err = a.shots.Save(img)
		if err == nil {
			a.log.Info("screenshot saved", zap.String("path", path))
			a.toast.show("Saved "+filepath.Base(path), toastSeconds)
			return
		}
	}
	a.log.Error("screenshot failed", zap.Error(err))
	a.toast.show("Screenshot failed", toastSeconds)
}

// Close unmounts the experience and releases the window.
func (a *App) Close() {
	a.log.Info("closing viewer")
	if err := a.states.Close(); err != nil {
		a.log.Warn("closing state", zap.Error(err))
	}
	if a.cue != nil {
		a.cue.Close()
	}
	if a.ui != nil {
		a.ui.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
