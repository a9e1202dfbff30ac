package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// MaxFrameTime caps dt so a stall does not make animations jump.
const MaxFrameTime = 0.1

// Frame is handed to each loop step.
type Frame struct {
	DT    float32 // seconds since the previous step
	Count uint64

	loop *Loop
}

// Stop ends the loop after the current step returns. Safe to call from
// inside the step.
func (f *Frame) Stop() { f.loop.stop.Store(true) }

// Loop runs a step function once per displayed frame. The step paces itself
// (a vsync'd buffer swap); the loop only measures time and honors Stop.
type Loop struct {
	mu      sync.Mutex // held while a step runs
	stop    atomic.Bool
	running atomic.Bool
	now     func() time.Time
}

// NewLoop creates a stopped loop.
func NewLoop() *Loop {
	return &Loop{now: time.Now}
}

// Run calls step until the loop is stopped. It blocks and must be called
// from the frame thread. A loop runs at most once; Stop before Run makes
// Run return immediately.
func (l *Loop) Run(step func(*Frame)) {
	if !l.running.CompareAndSwap(false, true) {
		return
	}
	defer l.running.Store(false)

	last := l.now()
	f := &Frame{loop: l}
	for {
		l.mu.Lock()
		if l.stop.Load() {
			l.mu.Unlock()
			return
		}
		now := l.now()
		dt := float32(now.Sub(last).Seconds())
		last = now
		if dt > MaxFrameTime {
			dt = MaxFrameTime
		}
		f.DT = dt
		step(f)
		f.Count++
		l.mu.Unlock()
	}
}

// Stop ends the loop. When it returns no step is running and none will run
// again. Do not call it from inside a step; use Frame.Stop there.
func (l *Loop) Stop() {
	l.stop.Store(true)
	l.mu.Lock()
	defer l.mu.Unlock()
}

// Stopped reports whether Stop was requested.
func (l *Loop) Stopped() bool { return l.stop.Load() }
