// Package camfeed captures a live camera stream for use as the scene
// backdrop. Capture runs on its own goroutine; the frame thread picks up the
// newest frame with Poll.
package camfeed

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"
)

// Sentinel errors reported through Err.
var (
	ErrUnavailable = errors.New("camera unavailable")
	ErrDenied      = errors.New("camera access denied")
)

// Source opens a camera stream.
type Source interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream delivers decoded frames until closed.
type Stream interface {
	// ReadFrame blocks until the next frame or ctx is done.
	ReadFrame(ctx context.Context) (*image.RGBA, error)
	Close() error
}

// Status is the acquisition state seen by the frame thread.
type Status uint8

// Feed states.
const (
	Idle Status = iota
	Starting
	Live
	Unavailable
	Stopped
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Live:
		return "live"
	case Unavailable:
		return "unavailable"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// maxReadErrors is how many consecutive failed reads end a live stream.
const maxReadErrors = 30

type statusUpdate struct {
	status Status
	err    error
}

// Feed owns one capture session.
type Feed struct {
	src Source
	log *zap.Logger

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	frames  chan *image.RGBA
	updates chan statusUpdate

	// frame thread state
	status    Status
	err       error
	current   *image.RGBA
	seq       uint64
	dismissed bool
}

// New creates an idle feed reading from src.
func New(src Source, log *zap.Logger) *Feed {
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{src: src, log: log}
}

// Start begins acquiring the camera in the background and returns at once.
// Calling Start on a running feed does nothing.
func (f *Feed) Start(ctx context.Context) {
	if f.cancel != nil {
		return
	}
	ctx, f.cancel = context.WithCancel(ctx)
	f.frames = make(chan *image.RGBA, 1)
	f.updates = make(chan statusUpdate, 4)
	f.status = Starting
	f.err = nil
	f.dismissed = false

	f.wg.Add(1)
	go f.run(ctx, f.frames, f.updates)
}

func (f *Feed) run(ctx context.Context, frames chan *image.RGBA, updates chan<- statusUpdate) {
	defer f.wg.Done()

	if f.src == nil {
		updates <- statusUpdate{Unavailable, fmt.Errorf("%w: no camera source", ErrUnavailable)}
		return
	}
	stream, err := f.src.Open(ctx)
	if err != nil {
		if ctx.Err() == nil {
			updates <- statusUpdate{Unavailable, err}
		}
		return
	}
	defer func() {
		if err := stream.Close(); err != nil {
			f.log.Warn("close camera", zap.Error(err))
		}
	}()
	updates <- statusUpdate{status: Live}

	failures := 0
	for {
		img, err := stream.ReadFrame(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			failures++
			f.log.Debug("camera frame dropped", zap.Error(err))
			if failures >= maxReadErrors {
				updates <- statusUpdate{Unavailable, fmt.Errorf("%w: %v", ErrUnavailable, err)}
				return
			}
			continue
		}
		failures = 0
		offer(frames, img)
	}
}

// offer puts img in the single-slot channel, replacing any unread frame.
func offer(frames chan *image.RGBA, img *image.RGBA) {
	for {
		select {
		case frames <- img:
			return
		default:
		}
		select {
		case <-frames:
		default:
		}
	}
}

// Poll takes status changes and the newest frame. Call once per frame on
// the frame thread. It reports whether a new frame arrived.
func (f *Feed) Poll() bool {
	if f.cancel == nil {
		return false
	}
	for drained := false; !drained; {
		select {
		case u := <-f.updates:
			f.setStatus(u)
		default:
			drained = true
		}
	}
	select {
	case img := <-f.frames:
		f.current = img
		f.seq++
		return true
	default:
		return false
	}
}

func (f *Feed) setStatus(u statusUpdate) {
	f.status = u.status
	f.err = u.err
	switch u.status {
	case Live:
		f.log.Info("camera feed live")
	case Unavailable:
		f.log.Warn("camera feed unavailable, continuing without background", zap.Error(u.err))
	}
}

// HasCurrentFrame reports whether at least one decoded frame is available.
func (f *Feed) HasCurrentFrame() bool { return f.current != nil }

// Frame returns the newest frame and its sequence number. The sequence
// increases by one for every frame taken by Poll.
func (f *Feed) Frame() (*image.RGBA, uint64) { return f.current, f.seq }

// Status returns the acquisition state.
func (f *Feed) Status() Status { return f.status }

// Err returns why the camera is unavailable, or nil.
func (f *Feed) Err() error { return f.err }

// Notice returns the message to show while the camera is unavailable and
// the notice has not been dismissed.
func (f *Feed) Notice() (string, bool) {
	if f.status != Unavailable || f.dismissed {
		return "", false
	}
	if errors.Is(f.err, ErrDenied) {
		return "Camera access was denied. The scene stays fully interactive without the live background.", true
	}
	return "No camera available. The scene stays fully interactive without the live background.", true
}

// DismissNotice hides the notice until the next Start.
func (f *Feed) DismissNotice() { f.dismissed = true }

// Stop cancels acquisition and waits until the device is released. The
// last frame is dropped.
func (f *Feed) Stop() {
	if f.cancel == nil {
		return
	}
	f.cancel()
	f.wg.Wait()
	f.cancel = nil
	f.frames = nil
	f.updates = nil
	f.current = nil
	f.status = Stopped
	f.log.Debug("camera feed stopped")
}
