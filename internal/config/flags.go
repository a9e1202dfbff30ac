package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagExperience = flag.String("experience", "", "Experience file to open (json, yaml or toml)")
	flagNoCamera   = flag.Bool("no-camera", false, "Do not open the camera feed")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path given with -config.
func ConfigPath() string {
	return *flagConfig
}

// ExperiencePath returns the experience file from -experience, or the first
// positional argument.
func ExperiencePath() string {
	if *flagExperience != "" {
		return *flagExperience
	}
	return flag.Arg(0)
}

// applyFlags applies CLI overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagNoCamera {
		cfg.CameraFeed.Enabled = false
	}
}
