// Package config handles application configuration loading and management.
package config

// Config holds all application settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	XR       XRConfig       `yaml:"xr"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds the desktop window settings.
type GraphicsConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	VSync  bool `yaml:"vsync"`
}

// XRConfig holds backend selection and extension settings.
type XRConfig struct {
	// Backend selects "sim" (emulated runtime) or "runtime" (native loader).
	Backend string `yaml:"backend"`
	// RuntimeLib is the loader library for the native backend; empty uses
	// the platform default.
	RuntimeLib string `yaml:"runtime_lib"`
	// Extensions to request before session creation.
	Extensions []string `yaml:"extensions"`

	LeftControllerPath  string `yaml:"left_controller_path"`
	RightControllerPath string `yaml:"right_controller_path"`
	WithAnimation       bool   `yaml:"with_animation"`

	RefreshRateCandidates []int `yaml:"refresh_rate_candidates"`

	// DepthResolution is "quarter", "half" or "full".
	DepthResolution string `yaml:"depth_resolution"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		XR: XRConfig{
			Backend:               "sim",
			LeftControllerPath:    "/model_fb/controller/left",
			RightControllerPath:   "/model_fb/controller/right",
			WithAnimation:         true,
			RefreshRateCandidates: []int{30, 60, 72, 80, 90, 100, 110, 120, 144, 165, 240, 360},
			DepthResolution:       "half",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
