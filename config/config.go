// Package config reads the YAML configuration of minecart programs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	minecart "github.com/ajh123/Minecart"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the file the example programs look for next to the
// working directory.
const DefaultFilename = "minecart.yml"

type Window struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Resizable bool   `yaml:"resizable"`
	VSync     bool   `yaml:"vsync"`
}

type Graphics struct {
	// Validation enables the Vulkan validation layers and debug reporting.
	Validation     bool       `yaml:"validation"`
	ClearColor     [4]float32 `yaml:"clear_color,flow"`
	FramesInFlight int        `yaml:"frames_in_flight"`
}

type Camera struct {
	FOVDegrees       float32 `yaml:"fov_degrees"`
	Near             float32 `yaml:"near"`
	Far              float32 `yaml:"far"`
	MoveSpeed        float32 `yaml:"move_speed"`
	MouseSensitivity float32 `yaml:"mouse_sensitivity"`
}

type Shaders struct {
	// Dir is searched for shader files before the embedded ones.
	Dir string `yaml:"dir"`
}

type Log struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`
}

type Config struct {
	Window   Window   `yaml:"window"`
	Graphics Graphics `yaml:"graphics"`
	Camera   Camera   `yaml:"camera"`
	Shaders  Shaders  `yaml:"shaders"`
	Log      Log      `yaml:"log"`
}

// Default returns the configuration used when no file exists. Fields left
// out of a file keep these values.
func Default() *Config {
	wc := minecart.DefaultWindowConfig()
	return &Config{
		Window: Window{
			Title:     wc.Title,
			Width:     wc.Width,
			Height:    wc.Height,
			Resizable: wc.Resizable,
			VSync:     wc.VSync,
		},
		Graphics: Graphics{
			Validation:     wc.Validation,
			ClearColor:     wc.ClearColor,
			FramesInFlight: wc.FramesInFlight,
		},
		Camera: Camera{
			FOVDegrees:       60,
			Near:             0.1,
			Far:              1000,
			MoveSpeed:        2.5,
			MouseSensitivity: 0.0025,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		minecart.Logger().Debug("config file not found, using defaults", "path", path)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Graphics.FramesInFlight < 1 || c.Graphics.FramesInFlight > 3 {
		errs = append(errs, fmt.Errorf("frames_in_flight must be between 1 and 3, got %d", c.Graphics.FramesInFlight))
	}
	for i, v := range c.Graphics.ClearColor {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("clear_color[%d] must be within [0, 1], got %v", i, v))
		}
	}
	if c.Camera.FOVDegrees <= 0 || c.Camera.FOVDegrees >= 180 {
		errs = append(errs, fmt.Errorf("camera fov_degrees must be within (0, 180), got %v", c.Camera.FOVDegrees))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera planes must satisfy 0 < near < far, got near=%v far=%v", c.Camera.Near, c.Camera.Far))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// WindowConfig converts the window and graphics sections.
func (c *Config) WindowConfig() minecart.WindowConfig {
	return minecart.WindowConfig{
		Title:          c.Window.Title,
		Width:          c.Window.Width,
		Height:         c.Window.Height,
		Resizable:      c.Window.Resizable,
		VSync:          c.Window.VSync,
		Validation:     c.Graphics.Validation,
		ClearColor:     c.Graphics.ClearColor,
		FramesInFlight: c.Graphics.FramesInFlight,
	}
}

// LogLevel returns the configured level, Info when it is not recognised.
func (c *Config) LogLevel() slog.Level {
	l, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
