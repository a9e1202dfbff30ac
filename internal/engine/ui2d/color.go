package ui2d

// Color represents an RGBA color with float components (0.0 to 1.0).
type Color struct {
	R, G, B, A float32
}

// Overlay theme. Panels are translucent so the camera feed stays visible.
var (
	ColorTransparent = Color{0, 0, 0, 0}
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}

	ColorPanelBg      = Color{0.05, 0.06, 0.08, 0.72}
	ColorPanelBorder  = Color{1, 1, 1, 0.18}
	ColorButtonNormal = Color{0.1, 0.11, 0.14, 0.78}
	ColorButtonHover  = Color{0.18, 0.2, 0.26, 0.88}
	ColorButtonActive = Color{0.12, 0.42, 0.78, 0.95}
	ColorText         = Color{0.95, 0.95, 0.95, 1}
	ColorTextDim      = Color{0.65, 0.67, 0.72, 1}
	ColorHighlight    = Color{0.25, 0.62, 0.98, 1}
	ColorWarning      = Color{0.98, 0.76, 0.28, 1}
)

// RGBA creates a color from 8-bit RGBA values (0-255).
func RGBA(r, g, b, a uint8) Color {
	return Color{float32(r) / 255, float32(g) / 255, float32(b) / 255, float32(a) / 255}
}

// RGB creates an opaque color from 8-bit values.
func RGB(r, g, b uint8) Color {
	return RGBA(r, g, b, 255)
}

// WithAlpha returns a copy of the color with a different alpha value.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// Lighten moves the color towards white by factor.
func (c Color) Lighten(factor float32) Color {
	return Color{
		R: c.R + (1-c.R)*factor,
		G: c.G + (1-c.G)*factor,
		B: c.B + (1-c.B)*factor,
		A: c.A,
	}
}
