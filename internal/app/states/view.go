package states

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/arscene/internal/engine/engine"
	"github.com/Faultbox/arscene/internal/engine/input"
	"github.com/Faultbox/arscene/internal/engine/loader"
	"github.com/Faultbox/arscene/internal/engine/scene"
	"github.com/Faultbox/arscene/internal/engine/ui2d"
	"github.com/Faultbox/arscene/internal/watch"
	"github.com/Faultbox/arscene/pkg/experience"
)

// Cue is played when a node becomes selected.
type Cue interface {
	PlayCue() error
}

// ViewConfig configures a ViewState.
type ViewConfig struct {
	Engine     *engine.Engine
	Experience *experience.Experience

	// Path is the file the experience came from. Empty disables reloads.
	Path  string
	Watch bool
	// Debounce for file watching; zero uses the watcher default.
	Debounce time.Duration
	// Load rereads Path. Defaults to experience.Load.
	Load func(path string) (*experience.Experience, error)

	ShowInfo bool
	Cue      Cue
	// Notify shows a short message to the user.
	Notify func(msg string)
	Log    *zap.Logger
}

// ViewState shows a mounted experience. Enter mounts the engine and Exit
// unmounts it, so leaving the state releases the camera and pending loads.
type ViewState struct {
	cfg ViewConfig
	eng *engine.Engine
	log *zap.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	watcher     *watch.Watcher

	// ShowInfo toggles the info panel for the selected asset.
	ShowInfo bool
}

// NewViewState creates the state for cfg.Experience.
func NewViewState(cfg ViewConfig) *ViewState {
	if cfg.Load == nil {
		cfg.Load = experience.Load
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	return &ViewState{
		cfg:      cfg,
		eng:      cfg.Engine,
		log:      cfg.Log,
		ShowInfo: cfg.ShowInfo,
	}
}

// Engine returns the engine this state drives.
func (s *ViewState) Engine() *engine.Engine { return s.eng }

// Experience returns the experience on screen.
func (s *ViewState) Experience() *experience.Experience { return s.cfg.Experience }

// Enter mounts the experience.
func (s *ViewState) Enter() error {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.eng.Mount(s.ctx, s.cfg.Experience)
	s.unsubscribe = s.eng.OnSelectionChanged(s.selectionChanged)

	if s.cfg.Watch && s.cfg.Path != "" {
		w, err := watch.New(s.cfg.Path, s.cfg.Debounce, s.log.Named("watch"))
		if err != nil {
			s.log.Warn("file watching disabled", zap.String("path", s.cfg.Path), zap.Error(err))
		} else {
			s.watcher = w
		}
	}

	s.log.Info("experience mounted",
		zap.String("title", s.cfg.Experience.Title),
		zap.Int("assets", len(s.cfg.Experience.Assets)),
	)
	return nil
}

// Exit unmounts the experience.
func (s *ViewState) Exit() error {
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			s.log.Debug("closing watcher", zap.Error(err))
		}
		s.watcher = nil
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.eng.Unmount()
	return nil
}

// Update applies file changes and advances the scene.
func (s *ViewState) Update(dt float32) error {
	if s.watcher != nil {
		select {
		case <-s.watcher.Changes():
			s.Reload()
		default:
		}
	}
	s.eng.Frame(dt)
	return nil
}

// Reload rereads the experience file and recomposes the scene. On failure
// the current scene stays.
func (s *ViewState) Reload() bool {
	if s.cfg.Path == "" {
		return false
	}
	exp, err := s.cfg.Load(s.cfg.Path)
	if err != nil {
		s.log.Warn("reload failed", zap.String("path", s.cfg.Path), zap.Error(err))
		s.notify(fmt.Sprintf("Reload failed: %v", err))
		return false
	}
	s.cfg.Experience = exp
	s.eng.Recompose(s.ctx, exp)
	s.log.Info("experience reloaded", zap.String("path", s.cfg.Path), zap.Int("assets", len(exp.Assets)))
	s.notify("Reloaded " + exp.Title)
	return true
}

func (s *ViewState) notify(msg string) {
	if s.cfg.Notify != nil {
		s.cfg.Notify(msg)
	}
}

func (s *ViewState) selectionChanged(i int) {
	if i == engine.NoSelection || s.cfg.Cue == nil {
		return
	}
	if err := s.cfg.Cue.PlayCue(); err != nil {
		s.log.Debug("selection cue", zap.Error(err))
	}
}

// HandleKey maps the viewer keys onto engine commands.
func (s *ViewState) HandleKey(k input.Key) bool {
	switch k {
	case input.KeyZoomIn:
		s.eng.ZoomIn()
	case input.KeyZoomOut:
		s.eng.ZoomOut()
	case input.KeyRotate:
		s.eng.RotateSelected()
	case input.KeyInfo:
		s.ShowInfo = !s.ShowInfo
	case input.KeyReload:
		s.Reload()
	case input.KeyEscape:
		if s.eng.Selected() == engine.NoSelection {
			return false
		}
		s.eng.Select(engine.NoSelection)
	default:
		return false
	}
	return true
}

// DrawOverlay draws the navigation buttons, the info panel, the camera
// notice and the loading progress.
func (s *ViewState) DrawOverlay(ui Overlay) {
	width, height := ui.ScreenSize()
	s.drawControls(ui, width)
	s.drawNotice(ui, width)
	s.drawInfo(ui, height)
	s.drawProgress(ui, width, height)
}

func (s *ViewState) drawControls(ui Overlay, width float32) {
	x := width - margin - controlW
	y := margin
	button := func(id, label string) bool {
		r := ui2d.Rect{X: x, Y: y, W: controlW, H: controlH}
		y += controlH + controlGap
		return ui.ButtonAt(id, r, label)
	}

	if button("zoom_in", "+") {
		s.eng.ZoomIn()
	}
	if button("zoom_out", "-") {
		s.eng.ZoomOut()
	}
	if button("rotate", "Rotate") {
		s.eng.RotateSelected()
	}
	if button("info", "Info") {
		s.ShowInfo = !s.ShowInfo
	}
}

func (s *ViewState) drawNotice(ui Overlay, width float32) {
	msg, ok := s.eng.CameraNotice()
	if !ok {
		return
	}
	lines := loader.WrapLines(msg, int(noticeW-16), func(t string) int {
		w, _ := ui.MeasureText(t, 1)
		return int(w)
	})
	h := chromeH + float32(len(lines))*(lineHeight+4)
	if ui.BeginWindow("camera", (width-noticeW)/2, margin, noticeW, h, "Camera", true) {
		s.eng.DismissCameraNotice()
	}
	for _, l := range lines {
		ui.LabelColored(l, ui2d.ColorWarning)
	}
	ui.EndWindow()
}

func (s *ViewState) drawInfo(ui Overlay, height float32) {
	if !s.ShowInfo {
		return
	}
	sel := s.eng.Selected()
	if sel == engine.NoSelection || sel >= len(s.eng.Nodes()) {
		return
	}
	n := s.eng.Nodes()[sel]
	lines := infoLines(n)

	h := chromeH + float32(len(lines))*(lineHeight+4)
	if ui.BeginWindow("info", margin, height-margin-h, infoW, h, clip(ui, n.Asset.DisplayName(), infoW-48), true) {
		s.ShowInfo = false
	}
	for _, l := range lines {
		ui.Label(clip(ui, l, infoW-16))
	}
	ui.EndWindow()
}

func infoLines(n *scene.Node) []string {
	a := n.Asset
	lines := []string{
		fmt.Sprintf("Type: %v", a.Type),
		fmt.Sprintf("Status: %v", n.State),
	}
	switch {
	case a.Type == experience.Message:
		text := strings.Join(strings.Fields(a.TextContent), " ")
		lines = append(lines, "Text: "+text)
	case a.URL != "":
		lines = append(lines, "URL: "+a.URL)
	}
	if n.Content != nil {
		lines = append(lines, fmt.Sprintf("Triangles: %d", n.Content.TriangleCount()))
	}
	return lines
}

func (s *ViewState) drawProgress(ui Overlay, width, height float32) {
	done, total := s.eng.Progress()
	if done >= total {
		return
	}
	h := chromeH + 18
	ui.BeginWindow("loading", (width-progressW)/2, height-margin-h, progressW, h, "", false)
	ui.ProgressBar(float32(done)/float32(total), 18, fmt.Sprintf("Loading %d/%d", done, total))
	ui.EndWindow()
}
