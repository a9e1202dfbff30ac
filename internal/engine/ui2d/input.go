package ui2d

// InputState is the pointer state the widgets read each frame.
type InputState struct {
	MouseX, MouseY float32
	MouseLeftDown  bool

	// Edges, derived by Update.
	MouseLeftPressed  bool
	MouseLeftReleased bool

	// MouseLeftClicked is set by the event pump for a press that may have
	// been released within the same frame.
	MouseLeftClicked bool

	// consumed is set once a widget took this frame's click.
	consumed bool

	prevMouseLeft bool
}

// Update derives the press/release edges. Call it once per frame after the
// raw values were updated.
func (i *InputState) Update() {
	i.MouseLeftPressed = i.MouseLeftDown && !i.prevMouseLeft
	i.MouseLeftReleased = !i.MouseLeftDown && i.prevMouseLeft
	i.prevMouseLeft = i.MouseLeftDown
}

// EndFrame clears per-frame events.
func (i *InputState) EndFrame() {
	i.MouseLeftClicked = false
	i.consumed = false
}

// clicked reports an unconsumed click this frame.
func (i *InputState) clicked() bool {
	return !i.consumed && (i.MouseLeftPressed || i.MouseLeftClicked)
}

// IsMouseInRect checks if the mouse is within a rectangle.
func (i *InputState) IsMouseInRect(x, y, w, h float32) bool {
	return i.MouseX >= x && i.MouseX < x+w &&
		i.MouseY >= y && i.MouseY < y+h
}
