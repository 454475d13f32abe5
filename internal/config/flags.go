package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagBackend    = flag.String("backend", "", "XR backend: sim or runtime")
	flagNoAnim     = flag.Bool("no-anim", false, "Disable controller animations")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagDepthRes   = flag.String("depth-resolution", "", "Depth resolution: quarter, half or full")
	flagRuntimeLib = flag.String("runtime-lib", "", "OpenXR loader library path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagBackend != "" {
		cfg.XR.Backend = *flagBackend
	}
	if *flagNoAnim {
		cfg.XR.WithAnimation = false
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagDepthRes != "" {
		cfg.XR.DepthResolution = *flagDepthRes
	}
	if *flagRuntimeLib != "" {
		cfg.XR.RuntimeLib = *flagRuntimeLib
	}
}
