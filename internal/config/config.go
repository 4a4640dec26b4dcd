// Package config handles editor configuration loading and management.
package config

// Config holds all editor settings.
type Config struct {
	Editor  EditorConfig  `yaml:"editor"`
	Brush   BrushConfig   `yaml:"brush"`
	Logging LoggingConfig `yaml:"logging"`
}

// EditorConfig holds edit/display resolution and stroke settings.
type EditorConfig struct {
	// SegmentCeiling is the largest per-side segment count before the
	// display grid is downsampled.
	SegmentCeiling int `yaml:"segment_ceiling"`
	// StrokeThrottleMs is the minimum interval between dispatched
	// pointer-move strokes. The core imposes no rate limit itself;
	// hosts read this value.
	StrokeThrottleMs int `yaml:"stroke_throttle_ms"`
}

// BrushConfig holds default stroke parameters.
type BrushConfig struct {
	DefaultRadius   float32 `yaml:"default_radius"`
	DefaultStrength float32 `yaml:"default_strength"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			SegmentCeiling:   512,
			StrokeThrottleMs: 16,
		},
		Brush: BrushConfig{
			DefaultRadius:   50,
			DefaultStrength: 10,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
