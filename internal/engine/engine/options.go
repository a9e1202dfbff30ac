package engine

import (
	"github.com/Faultbox/arscene/internal/config"
	"github.com/Faultbox/arscene/internal/engine/camera"
	"github.com/Faultbox/arscene/internal/engine/layout"
	"github.com/Faultbox/arscene/pkg/math"
)

// Animation holds the per-node idle motion and selection scaling.
type Animation struct {
	SelectedScale  float32 // scale target of the selected node
	ScaleRate      float32 // 1/s, how fast Scale approaches its target
	FloatAmplitude float32
	FloatSpeed     float32 // rad/s
	YawAmplitude   float32 // rad
	YawSpeed       float32 // rad/s
	PhaseStep      float32 // phase offset between consecutive nodes
}

// Options configures an Engine.
type Options struct {
	Camera    camera.Config
	Layout    layout.Params
	Animation Animation
	ZoomStep  float32
}

// DefaultOptions returns the stock engine setup.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig converts viewer configuration, which keeps angles in
// degrees, into engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	nav := cfg.Navigation
	cam := camera.DefaultConfig()
	cam.Position = math.FromArray(nav.InitialPosition)
	cam.Target = math.FromArray(nav.InitialTarget)
	cam.MinDistance = nav.MinDistance
	cam.MaxDistance = nav.MaxDistance
	cam.MaxPolarAngle = math.Radians(nav.MaxPolarAngle)
	cam.DampingFactor = nav.DampingFactor
	cam.RotateSpeed = nav.RotateSpeed
	cam.PanSpeed = nav.PanSpeed
	cam.ZoomSpeed = nav.ZoomSpeed
	cam.RetargetRate = nav.RetargetRate
	cam.FieldOfView = math.Radians(nav.FieldOfView)

	sc := cfg.Scene
	return Options{
		Camera: cam,
		Layout: layout.Params{
			ObjectHeight: cfg.Layout.ObjectHeight,
			BaseRadius:   cfg.Layout.BaseRadius,
			Spacing:      cfg.Layout.Spacing,
		},
		Animation: Animation{
			SelectedScale:  sc.SelectedScale,
			ScaleRate:      sc.ScaleRate,
			FloatAmplitude: sc.FloatAmplitude,
			FloatSpeed:     sc.FloatSpeed,
			YawAmplitude:   sc.YawAmplitude,
			YawSpeed:       sc.YawSpeed,
			PhaseStep:      sc.PhaseStep,
		},
		ZoomStep: nav.ZoomStep,
	}
}
