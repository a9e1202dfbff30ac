package app

import (
	"github.com/Faultbox/arscene/internal/engine/ui2d"
)

// toast is a short message shown at the bottom of the screen.
type toast struct {
	text string
	left float32 // seconds
}

func (t *toast) show(text string, seconds float32) {
	t.text = text
	t.left = seconds
}

func (t *toast) tick(dt float32) {
	if t.left <= 0 {
		return
	}
	t.left -= dt
	if t.left <= 0 {
		t.text = ""
	}
}

func (t *toast) visible() bool { return t.left > 0 && t.text != "" }

// alpha fades the message out over its last half second.
func (t *toast) alpha() float32 {
	if t.left >= 0.5 {
		return 1
	}
	if t.left <= 0 {
		return 0
	}
	return t.left / 0.5
}

func (t *toast) draw(r *ui2d.Renderer, width, height float32) {
	if !t.visible() {
		return
	}
	a := t.alpha()
	tw, th := r.MeasureText(t.text, 1)
	w := tw + 20
	x := (width - w) / 2
	y := height - 60
	r.DrawRect(x, y, w, th+10, ui2d.ColorPanelBg.WithAlpha(0.8*a))
	r.DrawText(x+10, y+5, t.text, 1, ui2d.ColorText.WithAlpha(a))
}
