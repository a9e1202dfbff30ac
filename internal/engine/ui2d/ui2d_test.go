package ui2d

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() *Context {
	return newContext(&Renderer{screenWidth: 800, screenHeight: 600, font: NewFont()})
}

// frame runs one UI frame without touching GL.
func frame(c *Context, draw func()) {
	c.Begin()
	draw()
	c.finish()
}

func TestFontAtlas(t *testing.T) {
	f := NewFont()
	gw, gh := f.GlyphSize()
	assert.Equal(t, 7, gw)
	assert.Equal(t, 13, gh)

	b := f.atlas.Bounds()
	assert.Equal(t, 16*7, b.Dx())
	assert.Equal(t, 6*13, b.Dy())

	inked := func(r rune) bool {
		u0, v0, u1, v1 := f.GlyphUV(r)
		for y := int(v0 * float32(b.Dy())); y < int(v1*float32(b.Dy())); y++ {
			for x := int(u0 * float32(b.Dx())); x < int(u1*float32(b.Dx())); x++ {
				if f.atlas.RGBAAt(x, y).A > 0 {
					return true
				}
			}
		}
		return false
	}
	assert.True(t, inked('A'))
	assert.True(t, inked('+'))
	assert.False(t, inked(' '))

	u0, v0, u1, v1 := f.GlyphUV('é')
	q0, r0, q1, r1 := f.GlyphUV('?')
	assert.Equal(t, []float32{q0, r0, q1, r1}, []float32{u0, v0, u1, v1}, "unknown runes fall back")
}

func TestMeasureText(t *testing.T) {
	f := NewFont()
	w, h := f.MeasureText("abc", 2)
	assert.Equal(t, float32(42), w)
	assert.Equal(t, float32(26), h)

	w, h = f.MeasureText("a\nlonger\n", 1)
	assert.Equal(t, float32(42), w)
	assert.Equal(t, float32(39), h)
}

func TestDrawTextSkipsSpaces(t *testing.T) {
	c := testContext()
	c.renderer.DrawText(0, 0, "a b", 1, ColorText)
	assert.Len(t, c.renderer.text, 2*6*textStride)

	c.renderer.DrawRect(0, 0, 10, 10, ColorWhite)
	assert.Len(t, c.renderer.solid, 6*solidStride)
}

func TestButtonAtClick(t *testing.T) {
	c := testContext()
	rect := Rect{10, 10, 40, 30}

	var clicked bool
	frame(c, func() { clicked = c.ButtonAt("plus", rect, "+") })
	assert.False(t, clicked)

	c.Input().MouseX, c.Input().MouseY = 20, 20
	c.Input().MouseLeftDown = true
	frame(c, func() { clicked = c.ButtonAt("plus", rect, "+") })
	assert.True(t, clicked)
	assert.Equal(t, "plus", c.Hot())

	// Held down: no repeat.
	frame(c, func() { clicked = c.ButtonAt("plus", rect, "+") })
	assert.False(t, clicked)
}

func TestClickGoesToOneButton(t *testing.T) {
	c := testContext()
	c.Input().MouseX, c.Input().MouseY = 15, 15
	c.Input().MouseLeftClicked = true

	var a, b bool
	frame(c, func() {
		a = c.ButtonAt("a", Rect{0, 0, 30, 30}, "A")
		b = c.ButtonAt("b", Rect{10, 10, 30, 30}, "B")
	})
	assert.True(t, a)
	assert.False(t, b)
}

func TestCapturesUsesLastFrame(t *testing.T) {
	c := testContext()
	assert.False(t, c.Captures(5, 5))

	frame(c, func() { c.ButtonAt("x", Rect{0, 0, 10, 10}, "x") })
	assert.True(t, c.Captures(5, 5))
	assert.False(t, c.Captures(50, 50))

	frame(c, func() {})
	assert.False(t, c.Captures(5, 5), "nothing drawn in the last frame")
}

func TestWindowLayout(t *testing.T) {
	c := testContext()
	var closed bool
	c.Input().MouseX, c.Input().MouseY = 195, 105
	c.Input().MouseLeftClicked = true
	frame(c, func() {
		closed = c.BeginWindow("info", 0, 100, 200, 150, "Info", true)
		c.Label("one")
		c.Label("two")
		c.EndWindow()
	})
	assert.True(t, closed)
	require.NotEmpty(t, c.renderer.text)

	// First label sits below the title bar, the second one row further.
	ys := map[float32]bool{}
	for i := 1; i < len(c.renderer.text); i += textStride * 6 {
		ys[c.renderer.text[i]] = true
	}
	assert.True(t, ys[100+titleBarH+padding])
	assert.True(t, ys[100+titleBarH+padding+13+rowSpacing])
}

func TestRectContains(t *testing.T) {
	r := Rect{0, 0, 10, 5}
	assert.True(t, r.Contains(0, 0))
	assert.True(t, r.Contains(9.9, 4.9))
	assert.False(t, r.Contains(10, 0))
	assert.False(t, r.Contains(-1, 2))
}

func TestQuickTapStillClicks(t *testing.T) {
	c := testContext()
	c.PointerButton(5, 5, true)
	c.PointerButton(5, 5, false)

	var clicked bool
	frame(c, func() { clicked = c.ButtonAt("tap", Rect{0, 0, 10, 10}, "t") })
	assert.True(t, clicked)
}
