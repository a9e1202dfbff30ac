//go:build !linux

package camfeed

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// V4L2Source has no capture backend on this platform; Open always fails.
type V4L2Source struct {
	Devices []string
	Facing  string
	Width   uint32
	Height  uint32
	Log     *zap.Logger
}

// Open reports ErrUnavailable.
func (s *V4L2Source) Open(context.Context) (Stream, error) {
	return nil, fmt.Errorf("%w: no capture backend for %s", ErrUnavailable, runtime.GOOS)
}
