// Package window handles the SDL2 window, its OpenGL context and the
// translation of SDL events into input events.
package window

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/arscene/internal/engine/gesture"
	"github.com/Faultbox/arscene/internal/engine/input"
	"github.com/Faultbox/arscene/internal/logger"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// Window wraps SDL2 window and OpenGL context.
type Window struct {
	config    Config
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	events    []input.Event
}

// New creates a new window with an OpenGL 4.1 core context.
func New(cfg Config) (*Window, error) {
	w := &Window{config: cfg, events: make([]input.Event, 0, 32)}

	logger.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// 4.1 core is the newest profile macOS offers.
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	// Touch screens report fingers separately; keep the synthetic mouse
	// events out of the way so a tap is not seen twice.
	sdl.SetHint(sdl.HINT_TOUCH_MOUSE_EVENTS, "0")

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width), int32(cfg.Height), flags)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		logger.Warn("failed to set swap interval", zap.Int("interval", interval), zap.Error(err))
	}

	sdl.EventState(sdl.DROPFILE, sdl.ENABLE)

	logger.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

// Close destroys the window and cleans up SDL2.
func (w *Window) Close() {
	logger.Info("closing window")
	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}
	sdl.Quit()
}

// SwapBuffers presents the frame. With vsync it blocks until the display
// refresh, which paces the frame loop.
func (w *Window) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// Size returns the window size in logical pixels, the space input events
// are reported in.
func (w *Window) Size() (int, int) {
	width, height := w.sdlWindow.GetSize()
	return int(width), int(height)
}

// DrawableSize returns the framebuffer size in physical pixels.
func (w *Window) DrawableSize() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}

// PollEvents drains the SDL queue. The returned slice is reused by the next
// call.
func (w *Window) PollEvents() []input.Event {
	w.events = w.events[:0]
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if ev, ok := w.translate(event); ok {
			w.events = append(w.events, ev)
		}
	}
	return w.events
}

func (w *Window) translate(event sdl.Event) (input.Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return input.Event{Kind: input.Quit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return input.Event{Kind: input.Resize, Width: int(e.Data1), Height: int(e.Data2)}, true
		}

	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
			return input.Event{}, false
		}
		if k := bindKey(e.Keysym.Sym); k != input.KeyUnknown {
			return input.Event{Kind: input.KeyDown, Key: k}, true
		}

	case *sdl.MouseMotionEvent:
		if e.Which == sdl.TOUCH_MOUSEID {
			return input.Event{}, false
		}
		return input.Event{Kind: input.PointerMove, X: float32(e.X), Y: float32(e.Y)}, true

	case *sdl.MouseButtonEvent:
		if e.Which == sdl.TOUCH_MOUSEID {
			return input.Event{}, false
		}
		ev := input.Event{Kind: input.PointerDown, Button: mapButton(e.Button), X: float32(e.X), Y: float32(e.Y)}
		if e.Type == sdl.MOUSEBUTTONUP {
			ev.Kind = input.PointerUp
		}
		return ev, true

	case *sdl.MouseWheelEvent:
		dy := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			dy = -dy
		}
		x, y, _ := sdl.GetMouseState()
		return input.Event{Kind: input.Wheel, Wheel: dy, X: float32(x), Y: float32(y)}, true

	case *sdl.TouchFingerEvent:
		// Finger coordinates are normalized to the window.
		width, height := w.Size()
		ev := input.Event{Finger: int64(e.FingerID), X: e.X * float32(width), Y: e.Y * float32(height)}
		switch e.Type {
		case sdl.FINGERDOWN:
			ev.Kind = input.TouchDown
		case sdl.FINGERMOTION:
			ev.Kind = input.TouchMove
		case sdl.FINGERUP:
			ev.Kind = input.TouchUp
		}
		return ev, ev.Kind != input.None

	case *sdl.DropEvent:
		if e.Type == sdl.DROPFILE {
			return input.Event{Kind: input.FileDrop, Path: e.File}, true
		}
	}
	return input.Event{}, false
}

func bindKey(sym sdl.Keycode) input.Key {
	switch sym {
	case sdl.K_PLUS, sdl.K_EQUALS, sdl.K_KP_PLUS:
		return input.KeyZoomIn
	case sdl.K_MINUS, sdl.K_KP_MINUS:
		return input.KeyZoomOut
	case sdl.K_r:
		return input.KeyRotate
	case sdl.K_i:
		return input.KeyInfo
	case sdl.K_o:
		return input.KeyOpen
	case sdl.K_F5:
		return input.KeyReload
	case sdl.K_F12:
		return input.KeyScreenshot
	case sdl.K_ESCAPE:
		return input.KeyEscape
	}
	return input.KeyUnknown
}

func mapButton(b uint8) gesture.Button {
	switch b {
	case sdl.BUTTON_MIDDLE:
		return gesture.Middle
	case sdl.BUTTON_RIGHT:
		return gesture.Right
	}
	return gesture.Left
}
