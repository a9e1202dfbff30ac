//go:build linux

package camfeed

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/blackjack/webcam"
	"go.uber.org/zap"
)

// waitSeconds bounds each frame wait so cancellation is noticed promptly.
const waitSeconds = 1

// V4L2Source captures from Video4Linux devices.
type V4L2Source struct {
	Devices []string // tried in order after facing preference
	Facing  string
	Width   uint32
	Height  uint32
	Log     *zap.Logger
}

type v4l2Stream struct {
	cam    *webcam.Webcam
	format uint32
	width  int
	height int
}

type candidate struct {
	path string
	cam  *webcam.Webcam
}

// Open probes every configured device and starts streaming on the first
// usable one, preferring cards whose name matches Facing.
func (s *V4L2Source) Open(ctx context.Context) (Stream, error) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	var (
		cands   []candidate
		names   []string
		denied  bool
		lastErr error
	)
	for _, path := range s.Devices {
		cam, err := webcam.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrPermission) {
				denied = true
			}
			if !errors.Is(err, os.ErrNotExist) {
				lastErr = err
			}
			continue
		}
		name, err := cam.GetName()
		if err != nil {
			name = path
		}
		cands = append(cands, candidate{path: path, cam: cam})
		names = append(names, name)
	}
	defer func() {
		for _, c := range cands {
			if c.cam != nil {
				c.cam.Close()
			}
		}
	}()

	for _, i := range rankDevices(names, s.Facing) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c := &cands[i]
		st, err := s.configure(c.cam)
		if err != nil {
			log.Debug("camera device rejected", zap.String("device", c.path), zap.String("name", names[i]), zap.Error(err))
			lastErr = err
			continue
		}
		log.Info("camera opened",
			zap.String("device", c.path),
			zap.String("name", names[i]),
			zap.Int("width", st.width),
			zap.Int("height", st.height))
		c.cam = nil // owned by the stream now
		return st, nil
	}

	switch {
	case denied:
		return nil, fmt.Errorf("%w: %v", ErrDenied, lastErr)
	case lastErr != nil:
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	}
	return nil, fmt.Errorf("%w: no capture device found", ErrUnavailable)
}

func (s *V4L2Source) configure(cam *webcam.Webcam) (*v4l2Stream, error) {
	supported := cam.GetSupportedFormats()
	var format webcam.PixelFormat
	for _, f := range []uint32{FormatMJPEG, FormatYUYV} {
		if _, ok := supported[webcam.PixelFormat(f)]; ok {
			format = webcam.PixelFormat(f)
			break
		}
	}
	if format == 0 {
		return nil, errors.New("no MJPEG or YUYV support")
	}

	got, w, h, err := cam.SetImageFormat(format, s.Width, s.Height)
	if err != nil {
		return nil, fmt.Errorf("set image format: %w", err)
	}
	if err := cam.SetBufferCount(2); err != nil {
		return nil, fmt.Errorf("set buffer count: %w", err)
	}
	if err := cam.StartStreaming(); err != nil {
		return nil, fmt.Errorf("start streaming: %w", err)
	}
	return &v4l2Stream{cam: cam, format: uint32(got), width: int(w), height: int(h)}, nil
}

func (st *v4l2Stream) ReadFrame(ctx context.Context) (*image.RGBA, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := st.cam.WaitForFrame(waitSeconds)
		switch err.(type) {
		case nil:
		case *webcam.Timeout:
			continue
		default:
			return nil, fmt.Errorf("wait for frame: %w", err)
		}

		data, err := st.cam.ReadFrame()
		if err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}
		if len(data) == 0 {
			continue
		}
		return decodeFrame(st.format, data, st.width, st.height)
	}
}

func (st *v4l2Stream) Close() error {
	if err := st.cam.StopStreaming(); err != nil {
		st.cam.Close()
		return fmt.Errorf("stop streaming: %w", err)
	}
	return st.cam.Close()
}
