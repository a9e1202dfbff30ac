// Package input routes window events to the overlay, the gesture recognizer
// and the key bindings. It has no SDL dependency; the window translates SDL
// events into Events.
package input

import "github.com/Faultbox/arscene/internal/engine/gesture"

// Kind is the event type.
type Kind int

// Event kinds.
const (
	None Kind = iota
	Quit
	Resize
	KeyDown
	PointerDown
	PointerMove
	PointerUp
	Wheel
	TouchDown
	TouchMove
	TouchUp
	FileDrop
)

// Key is a bound key. Unbound keys are not reported.
type Key int

// Key bindings.
const (
	KeyUnknown Key = iota
	KeyZoomIn
	KeyZoomOut
	KeyRotate
	KeyInfo
	KeyOpen
	KeyScreenshot
	KeyEscape
	KeyReload
)

func (k Key) String() string {
	switch k {
	case KeyZoomIn:
		return "zoom-in"
	case KeyZoomOut:
		return "zoom-out"
	case KeyRotate:
		return "rotate"
	case KeyInfo:
		return "info"
	case KeyOpen:
		return "open"
	case KeyScreenshot:
		return "screenshot"
	case KeyEscape:
		return "escape"
	case KeyReload:
		return "reload"
	}
	return "unknown"
}

// Event is one window event in window pixels.
type Event struct {
	Kind   Kind
	Key    Key
	Button gesture.Button
	X, Y   float32
	Wheel  float32 // steps, positive away from the user
	Finger int64
	Width  int
	Height int
	Path   string // FileDrop
}

// Overlay is the UI layer drawn over the scene.
type Overlay interface {
	// Captures reports whether the point is on an overlay element.
	Captures(x, y float32) bool
	PointerMove(x, y float32)
	PointerButton(x, y float32, down bool)
}

// Handlers receive the events the router does not consume itself. Nil
// handlers are skipped.
type Handlers struct {
	Quit   func()
	Resize func(w, h int)
	Key    func(Key)
	Drop   func(path string)
}

// Router sends each event to exactly one consumer. A press that starts on the
// overlay belongs to the overlay until it is released; everything else drives
// the gestures.
type Router struct {
	gestures *gesture.Recognizer
	overlay  Overlay
	handlers Handlers

	pointerOnOverlay bool
	overlayFinger    int64
	fingerOnOverlay  bool
}

// NewRouter creates a router. overlay may be nil.
func NewRouter(g *gesture.Recognizer, overlay Overlay, h Handlers) *Router {
	return &Router{gestures: g, overlay: overlay, handlers: h}
}

// Route dispatches ev.
func (r *Router) Route(ev Event) {
	switch ev.Kind {
	case Quit:
		if r.handlers.Quit != nil {
			r.handlers.Quit()
		}
	case Resize:
		if r.handlers.Resize != nil {
			r.handlers.Resize(ev.Width, ev.Height)
		}
	case KeyDown:
		if ev.Key != KeyUnknown && r.handlers.Key != nil {
			r.handlers.Key(ev.Key)
		}
	case FileDrop:
		if r.handlers.Drop != nil {
			r.handlers.Drop(ev.Path)
		}

	case PointerDown:
		if r.captures(ev.X, ev.Y) && ev.Button == gesture.Left {
			r.pointerOnOverlay = true
			r.overlay.PointerButton(ev.X, ev.Y, true)
			return
		}
		r.gestures.PointerDown(ev.Button, ev.X, ev.Y)
	case PointerMove:
		if r.overlay != nil {
			r.overlay.PointerMove(ev.X, ev.Y)
		}
		if !r.pointerOnOverlay {
			r.gestures.PointerMove(ev.X, ev.Y)
		}
	case PointerUp:
		if r.pointerOnOverlay && ev.Button == gesture.Left {
			r.pointerOnOverlay = false
			r.overlay.PointerButton(ev.X, ev.Y, false)
			return
		}
		r.gestures.PointerUp(ev.Button, ev.X, ev.Y)
	case Wheel:
		if !r.captures(ev.X, ev.Y) {
			r.gestures.Wheel(ev.Wheel)
		}

	case TouchDown:
		if !r.fingerOnOverlay && r.captures(ev.X, ev.Y) {
			r.fingerOnOverlay = true
			r.overlayFinger = ev.Finger
			r.overlay.PointerMove(ev.X, ev.Y)
			r.overlay.PointerButton(ev.X, ev.Y, true)
			return
		}
		r.gestures.TouchDown(ev.Finger, ev.X, ev.Y)
	case TouchMove:
		if r.fingerOnOverlay && ev.Finger == r.overlayFinger {
			r.overlay.PointerMove(ev.X, ev.Y)
			return
		}
		r.gestures.TouchMove(ev.Finger, ev.X, ev.Y)
	case TouchUp:
		if r.fingerOnOverlay && ev.Finger == r.overlayFinger {
			r.fingerOnOverlay = false
			r.overlay.PointerButton(ev.X, ev.Y, false)
			return
		}
		r.gestures.TouchUp(ev.Finger, ev.X, ev.Y)
	}
}

// Reset drops any gesture in progress, e.g. after the scene was replaced.
func (r *Router) Reset() {
	r.gestures.Reset()
	r.pointerOnOverlay = false
	r.fingerOnOverlay = false
}

func (r *Router) captures(x, y float32) bool {
	return r.overlay != nil && r.overlay.Captures(x, y)
}
