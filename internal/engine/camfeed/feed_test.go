package camfeed

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	err    error
	frames chan *image.RGBA
	closed atomic.Bool
}

func (s *fakeSource) Open(ctx context.Context) (Stream, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s, nil
}

func (s *fakeSource) ReadFrame(ctx context.Context) (*image.RGBA, error) {
	select {
	case img := <-s.frames:
		return img, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *fakeSource) Close() error {
	s.closed.Store(true)
	return nil
}

func pollUntil(t *testing.T, f *Feed, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		f.Poll()
		return cond()
	}, 2*time.Second, time.Millisecond)
}

func frameOf(w int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, 1))
}

func TestNoFrameBeforeFirstDecode(t *testing.T) {
	src := &fakeSource{frames: make(chan *image.RGBA)}
	f := New(src, nil)
	f.Start(context.Background())
	defer f.Stop()

	pollUntil(t, f, func() bool { return f.Status() == Live })
	assert.False(t, f.HasCurrentFrame())
	img, seq := f.Frame()
	assert.Nil(t, img)
	assert.Zero(t, seq)

	src.frames <- frameOf(4)
	pollUntil(t, f, f.HasCurrentFrame)
	img, seq = f.Frame()
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, uint64(1), seq)
}

func TestLatestFrameWins(t *testing.T) {
	frames := make(chan *image.RGBA, 1)
	offer(frames, frameOf(1))
	offer(frames, frameOf(2))
	offer(frames, frameOf(3))
	require.Len(t, frames, 1)
	assert.Equal(t, 3, (<-frames).Bounds().Dx())
}

func TestUnavailableSurfacesDismissibleNotice(t *testing.T) {
	f := New(&fakeSource{err: ErrDenied}, nil)
	f.Start(context.Background())
	defer f.Stop()

	pollUntil(t, f, func() bool { return f.Status() == Unavailable })
	assert.ErrorIs(t, f.Err(), ErrDenied)
	assert.False(t, f.HasCurrentFrame())

	msg, ok := f.Notice()
	require.True(t, ok)
	assert.Contains(t, msg, "denied")

	f.DismissNotice()
	_, ok = f.Notice()
	assert.False(t, ok)
}

func TestNilSourceIsUnavailable(t *testing.T) {
	f := New(nil, nil)
	f.Start(context.Background())
	defer f.Stop()

	pollUntil(t, f, func() bool { return f.Status() == Unavailable })
	assert.ErrorIs(t, f.Err(), ErrUnavailable)
	msg, ok := f.Notice()
	require.True(t, ok)
	assert.Contains(t, msg, "No camera")
}

func TestStopReleasesDevice(t *testing.T) {
	src := &fakeSource{frames: make(chan *image.RGBA)}
	f := New(src, nil)
	f.Start(context.Background())
	pollUntil(t, f, func() bool { return f.Status() == Live })

	f.Stop()
	assert.True(t, src.closed.Load(), "device closed before Stop returns")
	assert.Equal(t, Stopped, f.Status())
	assert.False(t, f.HasCurrentFrame())
	assert.False(t, f.Poll())

	f.Stop() // second stop is a no-op
}

func TestReadErrorsEndStream(t *testing.T) {
	f := New(failingSource{}, nil)
	f.Start(context.Background())
	defer f.Stop()
	pollUntil(t, f, func() bool { return f.Status() == Unavailable })
	assert.ErrorIs(t, f.Err(), ErrUnavailable)
}

type failingSource struct{}

func (failingSource) Open(context.Context) (Stream, error) { return failingSource{}, nil }
func (failingSource) ReadFrame(context.Context) (*image.RGBA, error) {
	return nil, errors.New("bad frame")
}
func (failingSource) Close() error { return nil }

func TestYUYV(t *testing.T) {
	// two pixels: black and white sharing neutral chroma
	img, err := yuyvToRGBA([]byte{16, 128, 235, 128}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 255}, img.Pix[0:4])
	assert.Equal(t, []byte{255, 255, 255, 255}, img.Pix[4:8])

	_, err = yuyvToRGBA([]byte{1, 2}, 2, 1)
	assert.Error(t, err)
	_, err = yuyvToRGBA(make([]byte, 6), 3, 1)
	assert.Error(t, err)
}

func TestDecodeFrameRejectsUnknownFormat(t *testing.T) {
	_, err := decodeFrame(0x1234, nil, 2, 2)
	assert.Error(t, err)
}

func TestRankDevices(t *testing.T) {
	names := []string{"Integrated Camera", "USB Rear Cam", "Capture card"}
	assert.Equal(t, []int{1, 0, 2}, rankDevices(names, "environment"))
	assert.Equal(t, []int{0, 1, 2}, rankDevices(names, "user"))
	assert.Equal(t, []int{0, 1, 2}, rankDevices(names, ""))
}
