// Package engine ties the scene engine together: it mounts an experience,
// runs the per-frame update, resolves picks into a selection and exposes the
// discrete navigation commands.
package engine

import (
	"context"
	"image"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/arscene/internal/engine/camera"
	"github.com/Faultbox/arscene/internal/engine/camfeed"
	"github.com/Faultbox/arscene/internal/engine/picking"
	"github.com/Faultbox/arscene/internal/engine/scene"
	"github.com/Faultbox/arscene/pkg/experience"
	"github.com/Faultbox/arscene/pkg/math"
)

// NoSelection is the selected index when nothing is selected.
const NoSelection = -1

type listener struct {
	id uint64
	fn func(int)
}

// Engine owns one mounted experience. All methods run on the frame thread.
type Engine struct {
	opts Options
	log  *zap.Logger

	composer *scene.Composer
	controls *camera.OrbitControls
	feed     *camfeed.Feed // nil when the compositor is disabled

	mounted   bool
	selected  int
	clock     float32
	viewportW float32
	viewportH float32

	listeners []listener
	nextID    uint64
}

// New creates an engine. feed may be nil to run without a camera backdrop.
func New(loader scene.Loader, feed *camfeed.Feed, opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		opts:      opts,
		log:       log,
		composer:  scene.NewComposer(loader, opts.Layout, log.Named("scene")),
		controls:  camera.NewOrbitControls(opts.Camera),
		feed:      feed,
		selected:  NoSelection,
		viewportW: 1280,
		viewportH: 720,
	}
}

// Mount composes exp and starts the camera feed. A mounted experience is
// unmounted first.
func (e *Engine) Mount(ctx context.Context, exp *experience.Experience) {
	if e.mounted {
		e.Unmount()
	}
	e.mounted = true
	e.clock = 0
	e.selected = NoSelection
	e.controls.Reset()
	if e.feed != nil {
		e.feed.Start(ctx)
	}
	e.composer.Compose(ctx, exp)
}

// Recompose replaces the node set with exp while keeping the camera feed,
// the camera pose and the listeners. The selection is cleared and the
// camera stops any move toward the old selection.
func (e *Engine) Recompose(ctx context.Context, exp *experience.Experience) {
	if !e.mounted {
		e.Mount(ctx, exp)
		return
	}
	e.composer.Compose(ctx, exp)
	e.controls.CancelRetarget()
	if e.selected != NoSelection {
		e.selected = NoSelection
		e.notify()
	}
}

// Unmount releases everything Mount acquired: the camera device, pending
// loads and the selection listeners. Loads finishing later are ignored.
func (e *Engine) Unmount() {
	if !e.mounted {
		return
	}
	if e.feed != nil {
		e.feed.Stop()
	}
	e.composer.Reset()
	e.listeners = nil
	e.selected = NoSelection
	e.mounted = false
	e.log.Debug("engine unmounted")
}

// Mounted reports whether an experience is mounted.
func (e *Engine) Mounted() bool { return e.mounted }

// Frame advances the scene by dt seconds.
func (e *Engine) Frame(dt float32) {
	if !e.mounted {
		return
	}
	if dt < 0 {
		dt = 0
	}
	if e.feed != nil {
		e.feed.Poll()
	}
	e.composer.Drain()
	e.controls.Update(dt)

	e.clock += dt
	a := e.opts.Animation
	blend := math32.Min(1, a.ScaleRate*dt)
	for _, n := range e.composer.Nodes() {
		phase := float32(n.Index) * a.PhaseStep
		n.Float = a.FloatAmplitude * math32.Sin(e.clock*a.FloatSpeed+phase)
		n.IdleYaw = a.YawAmplitude * math32.Sin(e.clock*a.YawSpeed+phase)
		n.Scale += (n.TargetScale - n.Scale) * blend
	}
}

// SetViewport records the drawable size used for picking and projection.
func (e *Engine) SetViewport(w, h float32) {
	if w <= 0 || h <= 0 {
		return
	}
	e.viewportW, e.viewportH = w, h
	e.controls.SetAspect(w / h)
}

// Viewport returns the drawable size.
func (e *Engine) Viewport() (w, h float32) { return e.viewportW, e.viewportH }

// PickAt selects the node under the screen point (x, y). A miss leaves the
// selection unchanged. It returns the picked index.
func (e *Engine) PickAt(x, y float32) (int, bool) {
	ray := picking.ScreenToRay(x, y, e.viewportW, e.viewportH, e.controls.ViewProjection().Inverse())
	hit, ok := picking.Pick(ray, e.composer.Nodes())
	if !ok {
		return NoSelection, false
	}
	e.Select(hit.Index)
	return hit.Index, true
}

// Select makes node i the selection. NoSelection clears it. Out-of-range
// indices are ignored.
func (e *Engine) Select(i int) {
	if i == e.selected {
		return
	}
	next := e.composer.Node(i)
	if next == nil && i != NoSelection {
		return
	}
	if prev := e.composer.Node(e.selected); prev != nil {
		prev.TargetScale = 1
	}
	e.selected = i
	if next != nil {
		next.TargetScale = e.opts.Animation.SelectedScale
		e.controls.RetargetTo(next.Position)
		e.log.Debug("selected", zap.Int("index", i), zap.String("asset", next.Asset.DisplayName()))
	}
	e.notify()
}

// Selected returns the selected index or NoSelection.
func (e *Engine) Selected() int { return e.selected }

// OnSelectionChanged registers fn to receive every new selected index. The
// returned func removes it.
func (e *Engine) OnSelectionChanged(fn func(int)) (cancel func()) {
	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) notify() {
	for _, l := range append([]listener(nil), e.listeners...) {
		l.fn(e.selected)
	}
}

// ZoomIn moves the camera one step toward the target if that keeps the
// distance in range.
func (e *Engine) ZoomIn() bool { return e.controls.ZoomStep(e.opts.ZoomStep) }

// ZoomOut moves the camera one step away from the target if that keeps the
// distance in range.
func (e *Engine) ZoomOut() bool { return e.controls.ZoomStep(-e.opts.ZoomStep) }

// RotateSelected turns the selected node a quarter turn. It does nothing
// without a selection.
func (e *Engine) RotateSelected() bool {
	n := e.composer.Node(e.selected)
	if n == nil {
		return false
	}
	n.Yaw = math.WrapAngle(n.Yaw + math32.Pi/2)
	return true
}

// Orbit implements gesture.Target.
func (e *Engine) Orbit(dx, dy float32) { e.controls.Rotate(dx, dy, e.viewportH) }

// Pan implements gesture.Target.
func (e *Engine) Pan(dx, dy float32) { e.controls.Pan(dx, dy, e.viewportH) }

// Zoom implements gesture.Target.
func (e *Engine) Zoom(steps float32) { e.controls.Dolly(steps) }

// Pinch implements gesture.Target.
func (e *Engine) Pinch(ratio float32) { e.controls.Pinch(ratio) }

// Tap implements gesture.Target.
func (e *Engine) Tap(x, y float32) { e.PickAt(x, y) }

// CameraNotice returns the degraded-mode message while the camera is
// unavailable and the notice has not been dismissed.
func (e *Engine) CameraNotice() (string, bool) {
	if e.feed == nil {
		return "", false
	}
	return e.feed.Notice()
}

// DismissCameraNotice hides the camera notice.
func (e *Engine) DismissCameraNotice() {
	if e.feed != nil {
		e.feed.DismissNotice()
	}
}

// Background returns the newest camera frame once one has been decoded.
func (e *Engine) Background() (*image.RGBA, uint64, bool) {
	if e.feed == nil || !e.feed.HasCurrentFrame() {
		return nil, 0, false
	}
	img, seq := e.feed.Frame()
	return img, seq, true
}

// Progress returns how many nodes finished loading, successfully or not.
func (e *Engine) Progress() (done, total int) {
	nodes := e.composer.Nodes()
	for _, n := range nodes {
		if n.State != scene.Loading {
			done++
		}
	}
	return done, len(nodes)
}

// Controls returns the navigation controller.
func (e *Engine) Controls() *camera.OrbitControls { return e.controls }

// Nodes returns the scene nodes in asset order.
func (e *Engine) Nodes() []*scene.Node { return e.composer.Nodes() }

// Generation identifies the current node set.
func (e *Engine) Generation() uint64 { return e.composer.Generation() }

// Experience returns the mounted experience.
func (e *Engine) Experience() *experience.Experience { return e.composer.Experience() }
