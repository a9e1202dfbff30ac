package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/arscene/pkg/math"
)

const frame = float32(1.0 / 60)

func settleFrames(c *OrbitControls, n int) {
	for i := 0; i < n; i++ {
		c.Update(frame)
	}
}

func assertWithinLimits(t *testing.T, c *OrbitControls) {
	t.Helper()
	cfg := c.Config()
	assert.GreaterOrEqual(t, c.Distance(), cfg.MinDistance-1e-4)
	assert.LessOrEqual(t, c.Distance(), cfg.MaxDistance+1e-4)
	assert.LessOrEqual(t, c.PolarAngle(), cfg.MaxPolarAngle+1e-4)
}

func TestDefaults(t *testing.T) {
	c := NewOrbitControls(DefaultConfig())
	assert.Equal(t, math.V3(0, 1, 0), c.Target())
	assert.InDelta(t, math32.Sqrt(1.5*1.5+49), c.Distance(), 1e-4)
	assertWithinLimits(t, c)
}

func TestMaxPolarCappedBelowHorizon(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPolarAngle = math.Radians(120)
	c := NewOrbitControls(cfg)
	assert.Less(t, c.Config().MaxPolarAngle, math32.Pi/2)
}

func TestProgrammaticMovesAreClamped(t *testing.T) {
	tests := []struct {
		name string
		pos  math.Vec3
	}{
		{"far away", math.V3(0, 1, 100)},
		{"too close", math.V3(0, 1, 0.5)},
		{"below the floor", math.V3(0, -5, 5)},
		{"straight down", math.V3(0, -10, 0)},
		{"on the target", math.V3(0, 1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOrbitControls(DefaultConfig())
			c.SetPosition(tt.pos)
			c.Update(frame)
			assertWithinLimits(t, c)
		})
	}
}

func TestDragCannotPassLimits(t *testing.T) {
	c := NewOrbitControls(DefaultConfig())
	for i := 0; i < 50; i++ {
		c.Rotate(0, -400, 720) // drag up: camera dips toward the floor
		c.Dolly(-10)
		c.Update(frame)
		assertWithinLimits(t, c)
	}
	for i := 0; i < 50; i++ {
		c.Dolly(20)
		c.Update(frame)
		assertWithinLimits(t, c)
	}
	assert.InDelta(t, c.Config().MinDistance, c.Distance(), 1e-3)
}

func TestRotationIsDamped(t *testing.T) {
	c := NewOrbitControls(DefaultConfig())
	start := c.Position()

	c.Rotate(360, 0, 720) // half a turn
	c.Update(frame)
	first := c.Position()
	require.NotEqual(t, start, first)

	settleFrames(c, 400)
	final := c.Position()
	// half a turn about Y mirrors the eye through the target
	assert.InDelta(t, -start.Z, final.Z, 1e-2)
	assert.Greater(t, first.Distance(final), float32(1), "one frame covers only part of the turn")
}

func TestRetargetIsSmooth(t *testing.T) {
	c := NewOrbitControls(DefaultConfig())
	goal := math.V3(3, 1, 0)
	c.RetargetTo(goal)
	c.Update(frame)

	assert.True(t, c.Retargeting())
	assert.Greater(t, c.Target().X, float32(0))
	assert.Less(t, c.Target().X, float32(3), "target does not snap")

	settleFrames(c, 600)
	assert.False(t, c.Retargeting())
	assert.Equal(t, goal, c.Target())
	assertWithinLimits(t, c)
}

func TestCancelRetarget(t *testing.T) {
	c := NewOrbitControls(DefaultConfig())
	c.RetargetTo(math.V3(3, 1, 0))
	c.Update(frame)
	c.CancelRetarget()
	assert.False(t, c.Retargeting())

	at := c.Target()
	settleFrames(c, 60)
	assert.Equal(t, at, c.Target())
}

func TestZoomStep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Position = math.V3(0, 1, 5)
	c := NewOrbitControls(cfg)

	require.True(t, c.ZoomStep(1))
	assert.InDelta(t, 4, c.Distance(), 1e-4)

	require.True(t, c.ZoomStep(1))
	require.True(t, c.ZoomStep(1))
	assert.InDelta(t, 2, c.Distance(), 1e-4)
	assert.False(t, c.ZoomStep(1), "would pass MinDistance")
	assert.InDelta(t, 2, c.Distance(), 1e-4)

	c.SetPosition(math.V3(0, 1, 19.5))
	assert.False(t, c.ZoomStep(-1), "would pass MaxDistance")
	assert.True(t, c.ZoomStep(-0.5))
}

func TestPanMovesTargetAndEye(t *testing.T) {
	c := NewOrbitControls(DefaultConfig())
	before := c.Position().Sub(c.Target())

	c.Pan(100, 0, 720)
	settleFrames(c, 400)

	assert.Less(t, c.Target().X, float32(0), "dragging right slides the scene right")
	after := c.Position().Sub(c.Target())
	assert.InDelta(t, before.Length(), after.Length(), 1e-3)
}

func TestPinch(t *testing.T) {
	c := NewOrbitControls(DefaultConfig())
	d := c.Distance()
	c.Pinch(1.5)
	settleFrames(c, 400)
	assert.Less(t, c.Distance(), d)

	c.Pinch(0) // ignored
	c.Update(frame)
	assertWithinLimits(t, c)
}

func TestViewProjectionCentersTarget(t *testing.T) {
	c := NewOrbitControls(DefaultConfig())
	c.SetAspect(2)
	p := c.ViewProjection().TransformPoint(c.Target().Array())
	assert.InDelta(t, 0, p[0], 1e-4)
	assert.InDelta(t, 0, p[1], 1e-4)
}
