package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagCeiling  = flag.Int("ceiling", 0, "Display segment ceiling per side")
	flagRadius   = flag.Float64("radius", 0, "Default brush radius (world units)")
	flagStrength = flag.Float64("strength", 0, "Default brush strength")
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
	if *flagCeiling > 0 {
		cfg.Editor.SegmentCeiling = *flagCeiling
	}
	if *flagRadius > 0 {
		cfg.Brush.DefaultRadius = float32(*flagRadius)
	}
	if *flagStrength > 0 {
		cfg.Brush.DefaultStrength = float32(*flagStrength)
	}
}
