// Package config handles configuration loading and management.
package config

// Config holds all runtime settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Filter   FilterConfig   `yaml:"filter"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings for the viewer.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// FilterConfig holds environment map filtering settings.
type FilterConfig struct {
	Workers         int `yaml:"workers"` // 0 means one per CPU
	DiffuseSize     int `yaml:"diffuse_size"`
	DiffuseSamples  int `yaml:"diffuse_samples"`
	SpecularSamples int `yaml:"specular_samples"`
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
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Filter: FilterConfig{
			Workers:         0,
			DiffuseSize:     32,
			DiffuseSamples:  512,
			SpecularSamples: 256,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
