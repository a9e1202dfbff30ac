// Package camera provides the orbit navigation used by the scene viewer.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/arscene/pkg/math"
)

const (
	// minPolar keeps the camera off the pole so LookAt never degenerates.
	minPolar = 1e-3
	// polarCeiling is the highest MaxPolarAngle accepted; the camera stays above the floor.
	polarCeiling = math32.Pi/2 - 0.01

	wheelZoom = 0.0513 // ln(1/0.95), one wheel notch
	settle    = 1e-5
)

// Config holds the orbit limits and feel. Angles are in radians.
type Config struct {
	Position      math.Vec3
	Target        math.Vec3
	MinDistance   float32
	MaxDistance   float32
	MaxPolarAngle float32
	DampingFactor float32
	RotateSpeed   float32
	PanSpeed      float32
	ZoomSpeed     float32
	RetargetRate  float32 // 1/s
	FieldOfView   float32
	Near, Far     float32
}

// DefaultConfig returns the stock navigation setup.
func DefaultConfig() Config {
	return Config{
		Position:      math.V3(0, 2.5, 7),
		Target:        math.V3(0, 1, 0),
		MinDistance:   2,
		MaxDistance:   20,
		MaxPolarAngle: math.Radians(85),
		DampingFactor: 0.08,
		RotateSpeed:   1,
		PanSpeed:      1,
		ZoomSpeed:     1,
		RetargetRate:  4,
		FieldOfView:   math.Radians(60),
		Near:          0.1,
		Far:           200,
	}
}

// OrbitControls orbits a camera around a target point. Input accumulates
// into deltas that Update applies with damping; every Update also enforces
// the distance and polar limits, so positions set directly are corrected on
// the next frame.
type OrbitControls struct {
	cfg Config

	position math.Vec3
	target   math.Vec3
	aspect   float32

	// pending input
	dTheta, dPhi float32
	panOffset    math.Vec3
	zoomLog      float32

	goal    math.Vec3
	hasGoal bool
}

// NewOrbitControls creates controls from cfg. Out-of-range values are
// repaired: MaxPolarAngle is capped below π/2 and MinDistance never exceeds
// MaxDistance.
func NewOrbitControls(cfg Config) *OrbitControls {
	if cfg.MaxPolarAngle <= minPolar || cfg.MaxPolarAngle > polarCeiling {
		cfg.MaxPolarAngle = polarCeiling
	}
	if cfg.MinDistance <= 0 {
		cfg.MinDistance = 0.1
	}
	if cfg.MaxDistance < cfg.MinDistance {
		cfg.MaxDistance = cfg.MinDistance
	}
	if cfg.DampingFactor < 0 || cfg.DampingFactor > 1 {
		cfg.DampingFactor = 0
	}
	if cfg.FieldOfView <= 0 {
		cfg.FieldOfView = math.Radians(60)
	}
	if cfg.Near <= 0 {
		cfg.Near = 0.1
	}
	if cfg.Far <= cfg.Near {
		cfg.Far = cfg.Near * 1000
	}

	c := &OrbitControls{cfg: cfg, aspect: 16.0 / 9.0}
	c.Reset()
	return c
}

// Reset returns to the configured position and target and drops pending input.
func (c *OrbitControls) Reset() {
	c.position = c.cfg.Position
	c.target = c.cfg.Target
	c.dTheta, c.dPhi, c.zoomLog = 0, 0, 0
	c.panOffset = math.Vec3{}
	c.hasGoal = false
	c.Update(0)
}

// Config returns the effective configuration.
func (c *OrbitControls) Config() Config { return c.cfg }

// Position returns the camera eye.
func (c *OrbitControls) Position() math.Vec3 { return c.position }

// Target returns the orbit center.
func (c *OrbitControls) Target() math.Vec3 { return c.target }

// SetPosition moves the eye. Limits are applied on the next Update.
func (c *OrbitControls) SetPosition(p math.Vec3) { c.position = p }

// SetTarget moves the orbit center immediately and cancels any retarget.
func (c *OrbitControls) SetTarget(p math.Vec3) {
	c.target = p
	c.hasGoal = false
}

// SetAspect sets the viewport aspect ratio used for projection.
func (c *OrbitControls) SetAspect(aspect float32) {
	if aspect > 0 {
		c.aspect = aspect
	}
}

// Rotate orbits by a pointer drag of (dx, dy) pixels. A drag across the full
// viewport height is one full turn.
func (c *OrbitControls) Rotate(dx, dy, viewportH float32) {
	if viewportH <= 0 {
		return
	}
	c.dTheta -= math.Tau * dx / viewportH * c.cfg.RotateSpeed
	c.dPhi -= math.Tau * dy / viewportH * c.cfg.RotateSpeed
}

// Pan shifts target and eye in the view plane by a drag of (dx, dy) pixels,
// scaled so the point under the cursor follows it at the target distance.
func (c *OrbitControls) Pan(dx, dy, viewportH float32) {
	if viewportH <= 0 {
		return
	}
	dist := c.Distance() * math32.Tan(c.cfg.FieldOfView/2)
	right, up := c.axes()
	move := right.Scale(-2 * dx * dist / viewportH * c.cfg.PanSpeed).
		Add(up.Scale(2 * dy * dist / viewportH * c.cfg.PanSpeed))
	c.panOffset = c.panOffset.Add(move)
}

// Dolly zooms by wheel notches. Positive steps move closer.
func (c *OrbitControls) Dolly(steps float32) {
	c.zoomLog -= steps * wheelZoom * c.cfg.ZoomSpeed
}

// Pinch zooms by a pinch ratio (current/previous finger distance). Spreading
// the fingers (ratio > 1) moves closer.
func (c *OrbitControls) Pinch(ratio float32) {
	if ratio <= 0 {
		return
	}
	c.zoomLog -= math32.Log(ratio) * c.cfg.ZoomSpeed
}

// ZoomStep moves the eye step units toward the target (away for negative
// step) only if the resulting distance stays within limits. It reports
// whether the camera moved.
func (c *OrbitControls) ZoomStep(step float32) bool {
	offset := c.position.Sub(c.target)
	dist := offset.Length()
	next := dist - step
	if dist == 0 || next < c.cfg.MinDistance || next > c.cfg.MaxDistance {
		return false
	}
	c.position = c.target.Add(offset.Scale(next / dist))
	c.zoomLog = 0
	return true
}

// RetargetTo starts a smooth move of the orbit center toward p. The eye
// keeps its place; the orbit follows from there.
func (c *OrbitControls) RetargetTo(p math.Vec3) {
	c.goal = p
	c.hasGoal = true
}

// CancelRetarget stops a retarget in progress. The orbit center stays
// wherever it has got to.
func (c *OrbitControls) CancelRetarget() { c.hasGoal = false }

// Retargeting reports whether a retarget is still in progress.
func (c *OrbitControls) Retargeting() bool { return c.hasGoal }

// Update applies damped input and the limits. dt is the frame time in seconds.
func (c *OrbitControls) Update(dt float32) {
	if c.hasGoal {
		c.target = c.target.Lerp(c.goal, math.ExpDecay(c.cfg.RetargetRate, dt))
		if c.target.Distance(c.goal) < settle {
			c.target = c.goal
			c.hasGoal = false
		}
	}

	damp := c.cfg.DampingFactor
	if damp == 0 {
		damp = 1
	}

	offset := c.position.Sub(c.target)
	radius := offset.Length()
	var theta, phi float32
	if radius < settle {
		radius = c.cfg.MinDistance
		phi = c.cfg.MaxPolarAngle / 2
	} else {
		theta = math32.Atan2(offset.X, offset.Z)
		phi = math32.Acos(math.Clamp(offset.Y/radius, -1, 1))
	}

	theta += c.dTheta * damp
	phi += c.dPhi * damp
	phi = math.Clamp(phi, minPolar, c.cfg.MaxPolarAngle)

	radius *= math32.Exp(c.zoomLog * damp)
	radius = math.Clamp(radius, c.cfg.MinDistance, c.cfg.MaxDistance)

	c.target = c.target.Add(c.panOffset.Scale(damp))
	if c.hasGoal {
		c.goal = c.goal.Add(c.panOffset.Scale(damp))
	}

	sinPhi, cosPhi := math32.Sincos(phi)
	sinTheta, cosTheta := math32.Sincos(theta)
	c.position = c.target.Add(math.V3(
		radius*sinPhi*sinTheta,
		radius*cosPhi,
		radius*sinPhi*cosTheta,
	))

	keep := 1 - damp
	c.dTheta *= keep
	c.dPhi *= keep
	c.zoomLog *= keep
	c.panOffset = c.panOffset.Scale(keep)
}

// Distance returns the eye to target distance.
func (c *OrbitControls) Distance() float32 {
	return c.position.Distance(c.target)
}

// PolarAngle returns the angle between the world up axis and the eye offset.
func (c *OrbitControls) PolarAngle() float32 {
	offset := c.position.Sub(c.target)
	r := offset.Length()
	if r == 0 {
		return 0
	}
	return math32.Acos(math.Clamp(offset.Y/r, -1, 1))
}

// ViewMatrix returns the view matrix.
func (c *OrbitControls) ViewMatrix() math.Mat4 {
	return math.LookAt(c.position, c.target, math.V3(0, 1, 0))
}

// ProjectionMatrix returns the perspective projection.
func (c *OrbitControls) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.cfg.FieldOfView, c.aspect, c.cfg.Near, c.cfg.Far)
}

// ViewProjection returns projection * view.
func (c *OrbitControls) ViewProjection() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// axes returns the camera right and up vectors in world space.
func (c *OrbitControls) axes() (right, up math.Vec3) {
	forward := c.target.Sub(c.position).Normalize()
	right = forward.Cross(math.V3(0, 1, 0)).Normalize()
	if right == (math.Vec3{}) {
		right = math.V3(1, 0, 0)
	}
	up = right.Cross(forward)
	return right, up
}
