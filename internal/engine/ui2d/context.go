package ui2d

import "fmt"

const (
	titleBarH  = float32(22)
	padding    = float32(8)
	rowSpacing = float32(4)
	buttonH    = float32(28)
)

// Context is the main UI context that manages rendering and input.
type Context struct {
	renderer *Renderer
	input    *InputState

	hotWidget    string
	activeWidget string

	// Rectangles drawn this frame and last frame. Pointer presses inside
	// them belong to the overlay, not the scene.
	regions     []Rect
	lastRegions []Rect

	currentWindow *Rect
	windowID      string

	cursorX  float32
	cursorY  float32
	rowH     float32
	sameLine bool
}

// NewContext creates a UI context with its GL renderer.
func NewContext(width, height int) (*Context, error) {
	r, err := New(width, height)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	return newContext(r), nil
}

func newContext(r *Renderer) *Context {
	return &Context{renderer: r, input: &InputState{}}
}

// Close releases resources.
func (c *Context) Close() {
	if c.renderer != nil {
		c.renderer.Close()
	}
}

// Renderer returns the underlying renderer.
func (c *Context) Renderer() *Renderer { return c.renderer }

// Resize updates the screen size.
func (c *Context) Resize(width, height int) { c.renderer.Resize(width, height) }

// Input returns the input state for modification.
func (c *Context) Input() *InputState { return c.input }

// ScreenSize returns the current screen dimensions.
func (c *Context) ScreenSize() (float32, float32) {
	w, h := c.renderer.ScreenSize()
	return float32(w), float32(h)
}

// Begin starts a new UI frame.
func (c *Context) Begin() {
	c.input.Update()
	c.renderer.Begin()
	c.lastRegions, c.regions = c.regions, c.lastRegions[:0]
	c.hotWidget = ""
}

// End draws the frame and clears per-frame input.
func (c *Context) End() {
	c.renderer.End()
	c.finish()
}

func (c *Context) finish() {
	if c.input.MouseLeftReleased {
		c.activeWidget = ""
	}
	c.input.EndFrame()
}

// Captures reports whether (x, y) lies on an overlay element drawn in the
// previous frame.
func (c *Context) Captures(x, y float32) bool {
	for _, r := range c.lastRegions {
		if r.Contains(x, y) {
			return true
		}
	}
	return false
}

// PointerMove implements input.Overlay.
func (c *Context) PointerMove(x, y float32) {
	c.input.MouseX, c.input.MouseY = x, y
}

// PointerButton implements input.Overlay. A press is remembered as a click
// even if the release arrives before the next frame.
func (c *Context) PointerButton(x, y float32, down bool) {
	c.input.MouseX, c.input.MouseY = x, y
	c.input.MouseLeftDown = down
	if down {
		c.input.MouseLeftClicked = true
	}
}

// Hot returns the widget under the pointer this frame.
func (c *Context) Hot() string { return c.hotWidget }

// BeginWindow starts a fixed panel with a title bar. When closable, an "x"
// button is drawn and BeginWindow returns closed=true on the frame it is
// clicked.
func (c *Context) BeginWindow(id string, x, y, w, h float32, title string, closable bool) (closed bool) {
	rect := Rect{x, y, w, h}
	c.regions = append(c.regions, rect)
	c.currentWindow = &rect
	c.windowID = id

	c.renderer.DrawPanel(x, y, w, h, ColorPanelBg, ColorPanelBorder)
	if title != "" {
		c.renderer.DrawRect(x+1, y+1, w-2, titleBarH-1, ColorButtonNormal)
		_, th := c.renderer.MeasureText(title, 1)
		c.renderer.DrawText(x+padding, y+(titleBarH-th)/2, title, 1, ColorText)
		if closable {
			closed = c.ButtonAt(id+"_close", Rect{x + w - titleBarH, y, titleBarH, titleBarH}, "x")
		}
		c.cursorY = y + titleBarH + padding
	} else {
		c.cursorY = y + padding
	}
	c.cursorX = x + padding
	c.rowH = 0
	c.sameLine = false
	return closed
}

// EndWindow ends the current window.
func (c *Context) EndWindow() {
	c.currentWindow = nil
	c.windowID = ""
}

// Row starts a new row with the given height.
func (c *Context) Row(height float32) {
	if c.currentWindow == nil {
		return
	}
	c.cursorX = c.currentWindow.X + padding
	if c.rowH > 0 {
		c.cursorY += c.rowH + rowSpacing
	}
	c.rowH = height
	c.sameLine = false
}

// SameLine keeps the next widget on the current row.
func (c *Context) SameLine() { c.sameLine = true }

// next returns the rectangle for a widget of width w in the current window
// and advances the cursor.
func (c *Context) next(w, h float32) Rect {
	if c.rowH == 0 || !c.sameLine {
		c.Row(h)
	}
	if w <= 0 {
		w = c.currentWindow.X + c.currentWindow.W - padding - c.cursorX
	}
	r := Rect{c.cursorX, c.cursorY, w, c.rowH}
	c.cursorX += w + rowSpacing
	c.sameLine = false
	return r
}

// Button draws a button in the current window and returns true if clicked.
// A width of 0 fills the row.
func (c *Context) Button(id string, width float32, label string) bool {
	if c.currentWindow == nil {
		return false
	}
	return c.ButtonAt(c.windowID+"_"+id, c.next(width, buttonH), label)
}

// ButtonAt draws a free-standing button and returns true if clicked.
func (c *Context) ButtonAt(id string, rect Rect, label string) bool {
	c.regions = append(c.regions, rect)

	hovered := rect.Contains(c.input.MouseX, c.input.MouseY)
	clicked := false
	if hovered {
		c.hotWidget = id
		if c.input.clicked() {
			c.activeWidget = id
			c.input.consumed = true
			clicked = true
		}
	}

	bg := ColorButtonNormal
	switch {
	case c.activeWidget == id && c.input.MouseLeftDown:
		bg = ColorButtonActive
	case hovered:
		bg = ColorButtonHover
	}
	c.renderer.DrawPanel(rect.X, rect.Y, rect.W, rect.H, bg, ColorPanelBorder)

	scale := float32(1)
	tw, th := c.renderer.MeasureText(label, scale)
	c.renderer.DrawText(rect.X+(rect.W-tw)/2, rect.Y+(rect.H-th)/2, label, scale, ColorText)
	return clicked
}

// Label draws a text label.
func (c *Context) Label(text string) {
	c.LabelColored(text, ColorText)
}

// LabelColored draws a text label with a specific color.
func (c *Context) LabelColored(text string, color Color) {
	if c.currentWindow == nil {
		return
	}
	_, h := c.renderer.MeasureText(text, 1)
	r := c.next(0, h)
	c.renderer.DrawText(r.X, r.Y, text, 1, color)
}

// LabelCentered draws text centered in the current window.
func (c *Context) LabelCentered(text string, color Color) {
	if c.currentWindow == nil {
		return
	}
	w, h := c.renderer.MeasureText(text, 1)
	r := c.next(0, h)
	c.renderer.DrawText(c.currentWindow.X+(c.currentWindow.W-w)/2, r.Y, text, 1, color)
}

// Spacer adds vertical space.
func (c *Context) Spacer(height float32) {
	if c.currentWindow == nil {
		return
	}
	c.next(0, height)
}

// Separator draws a horizontal line across the current window.
func (c *Context) Separator() {
	if c.currentWindow == nil {
		return
	}
	r := c.next(0, 5)
	c.renderer.DrawRect(c.currentWindow.X+padding, r.Y+2, c.currentWindow.W-padding*2, 1, ColorPanelBorder)
}

// ProgressBar draws a bar filled to fraction with an optional label.
func (c *Context) ProgressBar(fraction, height float32, label string) {
	if c.currentWindow == nil {
		return
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	r := c.next(0, height)
	c.renderer.DrawPanel(r.X, r.Y, r.W, r.H, ColorButtonNormal, ColorPanelBorder)
	if fraction > 0 {
		c.renderer.DrawRect(r.X+1, r.Y+1, (r.W-2)*fraction, r.H-2, ColorHighlight)
	}
	if label != "" {
		tw, th := c.renderer.MeasureText(label, 1)
		c.renderer.DrawText(r.X+(r.W-tw)/2, r.Y+(r.H-th)/2, label, 1, ColorText)
	}
}

// TextAt draws unframed text at an absolute position.
func (c *Context) TextAt(x, y float32, text string, scale float32, color Color) {
	c.renderer.DrawText(x, y, text, scale, color)
}

// MeasureText returns the size of text at scale.
func (c *Context) MeasureText(text string, scale float32) (float32, float32) {
	return c.renderer.MeasureText(text, scale)
}

// Rect is a simple rectangle struct.
type Rect struct {
	X, Y, W, H float32
}

// Contains checks if a point is inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}
