package input

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/arscene/internal/engine/gesture"
)

type recorder struct{ calls []string }

func (r *recorder) Orbit(dx, dy float32) { r.calls = append(r.calls, "orbit") }
func (r *recorder) Pan(dx, dy float32)   { r.calls = append(r.calls, "pan") }
func (r *recorder) Zoom(steps float32)   { r.calls = append(r.calls, fmt.Sprintf("zoom %g", steps)) }
func (r *recorder) Pinch(ratio float32)  { r.calls = append(r.calls, "pinch") }
func (r *recorder) Tap(x, y float32)     { r.calls = append(r.calls, fmt.Sprintf("tap %g,%g", x, y)) }

// fakeOverlay owns the top-left 100x50 corner.
type fakeOverlay struct{ calls []string }

func (o *fakeOverlay) Captures(x, y float32) bool { return x < 100 && y < 50 }
func (o *fakeOverlay) PointerMove(x, y float32)   { o.calls = append(o.calls, "move") }
func (o *fakeOverlay) PointerButton(x, y float32, down bool) {
	o.calls = append(o.calls, fmt.Sprintf("button %v", down))
}

func newRouter(h Handlers) (*Router, *recorder, *fakeOverlay) {
	rec := &recorder{}
	ov := &fakeOverlay{}
	return NewRouter(gesture.New(rec), ov, h), rec, ov
}

func TestClickOnSceneTaps(t *testing.T) {
	r, rec, ov := newRouter(Handlers{})
	r.Route(Event{Kind: PointerDown, Button: gesture.Left, X: 300, Y: 200})
	r.Route(Event{Kind: PointerUp, Button: gesture.Left, X: 301, Y: 200})
	assert.Equal(t, []string{"tap 301,200"}, rec.calls)
	assert.Empty(t, ov.calls)
}

func TestClickOnOverlayNeverReachesScene(t *testing.T) {
	r, rec, ov := newRouter(Handlers{})
	r.Route(Event{Kind: PointerDown, Button: gesture.Left, X: 10, Y: 10})
	r.Route(Event{Kind: PointerMove, X: 300, Y: 300})
	r.Route(Event{Kind: PointerUp, Button: gesture.Left, X: 300, Y: 300})
	assert.Empty(t, rec.calls, "no orbit, no tap")
	assert.Equal(t, []string{"button true", "move", "button false"}, ov.calls)
}

func TestWheelOverOverlayIgnored(t *testing.T) {
	r, rec, _ := newRouter(Handlers{})
	r.Route(Event{Kind: Wheel, X: 10, Y: 10, Wheel: 1})
	r.Route(Event{Kind: Wheel, X: 400, Y: 10, Wheel: -2})
	assert.Equal(t, []string{"zoom -2"}, rec.calls)
}

func TestTouchOnOverlay(t *testing.T) {
	r, rec, ov := newRouter(Handlers{})
	r.Route(Event{Kind: TouchDown, Finger: 1, X: 20, Y: 20})
	r.Route(Event{Kind: TouchDown, Finger: 2, X: 400, Y: 400})
	r.Route(Event{Kind: TouchUp, Finger: 2, X: 400, Y: 400})
	r.Route(Event{Kind: TouchUp, Finger: 1, X: 20, Y: 20})

	assert.Equal(t, []string{"move", "button true", "button false"}, ov.calls)
	assert.Equal(t, []string{"tap 400,400"}, rec.calls)
}

func TestHandlers(t *testing.T) {
	var got []string
	r, _, _ := newRouter(Handlers{
		Quit:   func() { got = append(got, "quit") },
		Resize: func(w, h int) { got = append(got, fmt.Sprintf("resize %dx%d", w, h)) },
		Key:    func(k Key) { got = append(got, k.String()) },
		Drop:   func(p string) { got = append(got, "drop "+p) },
	})
	r.Route(Event{Kind: Resize, Width: 640, Height: 480})
	r.Route(Event{Kind: KeyDown, Key: KeyRotate})
	r.Route(Event{Kind: KeyDown, Key: KeyUnknown})
	r.Route(Event{Kind: FileDrop, Path: "demo.yaml"})
	r.Route(Event{Kind: Quit})
	assert.Equal(t, []string{"resize 640x480", "rotate", "drop demo.yaml", "quit"}, got)
}

func TestNilHandlersAndOverlay(t *testing.T) {
	rec := &recorder{}
	r := NewRouter(gesture.New(rec), nil, Handlers{})
	assert.NotPanics(t, func() {
		r.Route(Event{Kind: Quit})
		r.Route(Event{Kind: KeyDown, Key: KeyInfo})
		r.Route(Event{Kind: PointerDown, Button: gesture.Left, X: 10, Y: 10})
		r.Route(Event{Kind: PointerUp, Button: gesture.Left, X: 10, Y: 10})
	})
	assert.Equal(t, []string{"tap 10,10"}, rec.calls)
}
