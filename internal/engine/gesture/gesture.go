// Package gesture turns raw pointer and touch events into navigation
// intents: orbit, pan, zoom, pinch and tap.
package gesture

import "github.com/chewxy/math32"

// TapSlop is how far, in pixels, a press may travel and still count as a tap.
const TapSlop = 5

// Button identifies a mouse button.
type Button uint8

// Mouse buttons.
const (
	Left Button = iota
	Middle
	Right
)

// Target receives recognized gestures. Distances are in pixels.
type Target interface {
	Orbit(dx, dy float32)
	Pan(dx, dy float32)
	Zoom(steps float32)
	Pinch(ratio float32)
	Tap(x, y float32)
}

type point struct{ x, y float32 }

func (p point) dist(o point) float32 { return math32.Hypot(p.x-o.x, p.y-o.y) }

// Recognizer tracks pointer state between events. It is not safe for
// concurrent use; feed it from the event loop.
type Recognizer struct {
	target Target

	// mouse
	pressed  bool
	button   Button
	start    point
	last     point
	dragging bool

	// touch
	touches      map[int64]point
	order        []int64
	touchStart   point
	touchMoved   bool
	multi        bool // a second finger joined this touch sequence
	lastSpread   float32
	lastCentroid point
}

// New creates a recognizer that forwards gestures to t.
func New(t Target) *Recognizer {
	return &Recognizer{target: t, touches: make(map[int64]point)}
}

// PointerDown starts a mouse press. A second button while one is held is ignored.
func (r *Recognizer) PointerDown(b Button, x, y float32) {
	if r.pressed {
		return
	}
	r.pressed = true
	r.button = b
	r.start = point{x, y}
	r.last = r.start
	r.dragging = false
}

// PointerMove reports cursor motion.
func (r *Recognizer) PointerMove(x, y float32) {
	if !r.pressed {
		return
	}
	p := point{x, y}
	if !r.dragging && p.dist(r.start) <= TapSlop {
		return
	}
	if !r.dragging {
		r.dragging = true
		r.last = r.start
	}
	dx, dy := p.x-r.last.x, p.y-r.last.y
	r.last = p
	if r.button == Left {
		r.target.Orbit(dx, dy)
	} else {
		r.target.Pan(dx, dy)
	}
}

// PointerUp ends a mouse press. A left press that never left the slop
// radius is a tap.
func (r *Recognizer) PointerUp(b Button, x, y float32) {
	if !r.pressed || b != r.button {
		return
	}
	r.pressed = false
	if !r.dragging && b == Left && (point{x, y}).dist(r.start) <= TapSlop {
		r.target.Tap(x, y)
	}
	r.dragging = false
}

// Wheel reports wheel notches; positive scrolls away from the user and zooms in.
func (r *Recognizer) Wheel(dy float32) {
	if dy != 0 {
		r.target.Zoom(dy)
	}
}

// TouchDown adds a finger.
func (r *Recognizer) TouchDown(id int64, x, y float32) {
	if _, ok := r.touches[id]; ok {
		return
	}
	p := point{x, y}
	r.touches[id] = p
	r.order = append(r.order, id)
	switch len(r.order) {
	case 1:
		r.touchStart = p
		r.touchMoved = false
		r.multi = false
	case 2:
		r.multi = true
		r.lastSpread, r.lastCentroid = r.pair()
	}
}

// TouchMove updates a finger.
func (r *Recognizer) TouchMove(id int64, x, y float32) {
	prev, ok := r.touches[id]
	if !ok {
		return
	}
	p := point{x, y}
	r.touches[id] = p

	switch {
	case len(r.order) == 1 && !r.multi:
		if !r.touchMoved && p.dist(r.touchStart) <= TapSlop {
			return
		}
		if !r.touchMoved {
			r.touchMoved = true
			prev = r.touchStart
		}
		r.target.Orbit(p.x-prev.x, p.y-prev.y)
	case len(r.order) >= 2:
		if id != r.order[0] && id != r.order[1] {
			return
		}
		spread, centroid := r.pair()
		if r.lastSpread > 0 && spread > 0 {
			r.target.Pinch(spread / r.lastSpread)
		}
		r.target.Pan(centroid.x-r.lastCentroid.x, centroid.y-r.lastCentroid.y)
		r.lastSpread, r.lastCentroid = spread, centroid
	}
}

// TouchUp removes a finger. Lifting a single finger that did not move is a tap.
func (r *Recognizer) TouchUp(id int64, x, y float32) {
	if _, ok := r.touches[id]; !ok {
		return
	}
	delete(r.touches, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	switch len(r.order) {
	case 0:
		if !r.multi && !r.touchMoved && (point{x, y}).dist(r.touchStart) <= TapSlop {
			r.target.Tap(x, y)
		}
	case 1:
		// back to one finger mid-gesture; no orbit jump, no tap
		r.touchMoved = true
	default:
		r.lastSpread, r.lastCentroid = r.pair()
	}
}

// Reset forgets all pressed buttons and fingers.
func (r *Recognizer) Reset() {
	r.pressed = false
	r.dragging = false
	r.touches = make(map[int64]point)
	r.order = nil
}

// pair returns the spread and centroid of the first two fingers.
func (r *Recognizer) pair() (float32, point) {
	a, b := r.touches[r.order[0]], r.touches[r.order[1]]
	return a.dist(b), point{(a.x + b.x) / 2, (a.y + b.y) / 2}
}
