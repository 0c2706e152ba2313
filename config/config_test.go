package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
window:
  title: test
  width: 1280
graphics:
  validation: true
  clear_color: [0, 0.5, 1, 1]
camera:
  fov_degrees: 75
log:
  level: debug
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Window.Title != "test" || cfg.Window.Width != 1280 {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Window.Height != Default().Window.Height {
		t.Errorf("height should keep its default, got %d", cfg.Window.Height)
	}
	if !cfg.Graphics.Validation {
		t.Error("validation not set")
	}
	if cfg.Graphics.ClearColor != [4]float32{0, 0.5, 1, 1} {
		t.Errorf("clear color = %v", cfg.Graphics.ClearColor)
	}
	if cfg.Camera.FOVDegrees != 75 || cfg.Camera.Near != 0.1 {
		t.Errorf("camera = %+v", cfg.Camera)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.LogLevel())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"malformed", "window: [", "unable to parse config"},
		{"zero width", "window: {width: 0}", "window size"},
		{"frames", "graphics: {frames_in_flight: 5}", "frames_in_flight"},
		{"clear color", "graphics: {clear_color: [2, 0, 0, 1]}", "clear_color[0]"},
		{"fov", "camera: {fov_degrees: 180}", "fov_degrees"},
		{"planes", "camera: {near: 10, far: 1}", "near < far"},
		{"log level", "log: {level: loud}", "unknown log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.yml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if cfg.Window != Default().Window {
		t.Errorf("missing file should give defaults, got %+v", cfg.Window)
	}

	path := filepath.Join(dir, DefaultFilename)
	if err := os.WriteFile(path, []byte("shaders:\n  dir: assets/shaders\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Shaders.Dir != "assets/shaders" {
		t.Errorf("shaders dir = %q", cfg.Shaders.Dir)
	}

	if err := os.WriteFile(path, []byte("window: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), path) {
		t.Errorf("malformed file error should name the path, got %v", err)
	}
}

func TestWindowConfig(t *testing.T) {
	cfg := Default()
	cfg.Window.Title = "cube"
	cfg.Graphics.Validation = true
	cfg.Graphics.FramesInFlight = 3

	wc := cfg.WindowConfig()
	if wc.Title != "cube" || !wc.Validation || wc.FramesInFlight != 3 {
		t.Errorf("unexpected window config %+v", wc)
	}
	if wc.Width != cfg.Window.Width || wc.ClearColor != cfg.Graphics.ClearColor {
		t.Errorf("size or clear color not carried over: %+v", wc)
	}
}

func TestLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		cfg := Default()
		cfg.Log.Level = in
		if got := cfg.LogLevel(); got != want {
			t.Errorf("LogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
