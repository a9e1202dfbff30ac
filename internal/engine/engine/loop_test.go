package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameStopEndsLoop(t *testing.T) {
	l := NewLoop()
	count := 0
	l.Run(func(f *Frame) {
		count++
		if f.Count == 2 {
			f.Stop()
		}
	})
	assert.Equal(t, 3, count)
	assert.True(t, l.Stopped())
}

func TestStopIsSynchronous(t *testing.T) {
	l := NewLoop()
	var steps atomic.Int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(func(*Frame) {
			steps.Add(1)
			time.Sleep(time.Millisecond)
		})
	}()

	require.Eventually(t, func() bool { return steps.Load() > 3 }, 2*time.Second, time.Millisecond)
	l.Stop()
	after := steps.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, steps.Load(), "no step runs once Stop returns")
	<-done
}

func TestStopBeforeRun(t *testing.T) {
	l := NewLoop()
	l.Stop()
	called := false
	l.Run(func(*Frame) { called = true })
	assert.False(t, called)
}

func TestFrameTimeIsCapped(t *testing.T) {
	l := NewLoop()
	now := time.Unix(0, 0)
	l.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	var dts []float32
	l.Run(func(f *Frame) {
		dts = append(dts, f.DT)
		if len(dts) == 2 {
			f.Stop()
		}
	})
	assert.Equal(t, []float32{MaxFrameTime, MaxFrameTime}, dts)
}
