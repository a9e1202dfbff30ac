// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Graphics   GraphicsConfig   `yaml:"graphics"`
	CameraFeed CameraFeedConfig `yaml:"camera_feed"`
	Navigation NavigationConfig `yaml:"navigation"`
	Layout     LayoutConfig     `yaml:"layout"`
	Scene      SceneConfig      `yaml:"scene"`
	Assets     AssetsConfig     `yaml:"assets"`
	Audio      AudioConfig      `yaml:"audio"`
	UI         UIConfig         `yaml:"ui"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GraphicsConfig holds window and rendering settings.
type GraphicsConfig struct {
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	Fullscreen       bool    `yaml:"fullscreen"`
	VSync            bool    `yaml:"vsync"`
	Shadows          bool    `yaml:"shadows"`
	ShadowResolution int32   `yaml:"shadow_resolution"`
	SunAzimuth       float32 `yaml:"sun_azimuth"`   // degrees
	SunElevation     float32 `yaml:"sun_elevation"` // degrees
	ShowBounds       bool    `yaml:"show_bounds"`
}

// CameraFeedConfig selects the capture device used as the scene backdrop.
type CameraFeedConfig struct {
	Enabled bool     `yaml:"enabled"`
	Devices []string `yaml:"devices"` // tried in order
	Facing  string   `yaml:"facing"`  // "environment" prefers rear cameras, "user" front ones
	Width   uint32   `yaml:"width"`
	Height  uint32   `yaml:"height"`
}

// NavigationConfig holds orbit controller limits and feel.
type NavigationConfig struct {
	MinDistance     float32    `yaml:"min_distance"`
	MaxDistance     float32    `yaml:"max_distance"`
	MaxPolarAngle   float32    `yaml:"max_polar_angle"` // degrees, must stay below 90
	DampingFactor   float32    `yaml:"damping_factor"`
	RotateSpeed     float32    `yaml:"rotate_speed"`
	PanSpeed        float32    `yaml:"pan_speed"`
	ZoomSpeed       float32    `yaml:"zoom_speed"`
	ZoomStep        float32    `yaml:"zoom_step"`
	RetargetRate    float32    `yaml:"retarget_rate"` // 1/s
	FieldOfView     float32    `yaml:"fov"`           // degrees
	InitialPosition [3]float32 `yaml:"initial_position"`
	InitialTarget   [3]float32 `yaml:"initial_target"`
}

// LayoutConfig drives the radial arrangement of nodes.
type LayoutConfig struct {
	ObjectHeight float32 `yaml:"object_height"`
	BaseRadius   float32 `yaml:"base_radius"`
	Spacing      float32 `yaml:"spacing"`
}

// SceneConfig holds per-node animation parameters.
type SceneConfig struct {
	SelectedScale  float32 `yaml:"selected_scale"`
	ScaleRate      float32 `yaml:"scale_rate"`
	FloatAmplitude float32 `yaml:"float_amplitude"`
	FloatSpeed     float32 `yaml:"float_speed"`
	YawAmplitude   float32 `yaml:"yaw_amplitude"`
	YawSpeed       float32 `yaml:"yaw_speed"`
	PhaseStep      float32 `yaml:"phase_step"`
}

// AssetsConfig controls fetching and decoding of asset resources.
type AssetsConfig struct {
	BaseDir        string        `yaml:"base_dir"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	MaxBytes       int64         `yaml:"max_bytes"`
	MaxTextureSize int           `yaml:"max_texture_size"`
	UserAgent      string        `yaml:"user_agent"`
}

// AudioConfig holds the optional selection cue.
type AudioConfig struct {
	Enabled        bool    `yaml:"enabled"`
	SelectionSound string  `yaml:"selection_sound"` // WAV file
	Volume         float32 `yaml:"volume"`
}

// UIConfig holds overlay settings.
type UIConfig struct {
	ShowInfo      bool   `yaml:"show_info"`
	ScreenshotDir string `yaml:"screenshot_dir"`
	WatchFile     bool   `yaml:"watch_file"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the stock values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:            1280,
			Height:           720,
			VSync:            true,
			Shadows:          true,
			ShadowResolution: 2048,
			SunAzimuth:       35,
			SunElevation:     55,
		},
		CameraFeed: CameraFeedConfig{
			Enabled: true,
			Devices: []string{"/dev/video0", "/dev/video1", "/dev/video2"},
			Facing:  "environment",
			Width:   1280,
			Height:  720,
		},
		Navigation: NavigationConfig{
			MinDistance:     2,
			MaxDistance:     20,
			MaxPolarAngle:   85,
			DampingFactor:   0.08,
			RotateSpeed:     1,
			PanSpeed:        1,
			ZoomSpeed:       1,
			ZoomStep:        1,
			RetargetRate:    4,
			FieldOfView:     60,
			InitialPosition: [3]float32{0, 2.5, 7},
			InitialTarget:   [3]float32{0, 1, 0},
		},
		Layout: LayoutConfig{
			ObjectHeight: 1,
			BaseRadius:   3,
			Spacing:      0.8,
		},
		Scene: SceneConfig{
			SelectedScale:  1.15,
			ScaleRate:      8,
			FloatAmplitude: 0.05,
			FloatSpeed:     1.5,
			YawAmplitude:   0.1,
			YawSpeed:       0.5,
			PhaseStep:      0.9,
		},
		Assets: AssetsConfig{
			FetchTimeout:   30 * time.Second,
			MaxBytes:       64 << 20,
			MaxTextureSize: 2048,
			UserAgent:      "arviewer/1.0",
		},
		Audio: AudioConfig{
			Volume: 0.8,
		},
		UI: UIConfig{
			ShowInfo:      true,
			ScreenshotDir: "screenshots",
			WatchFile:     true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
