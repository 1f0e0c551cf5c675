package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, [3]float32{0, 2, -12}, cfg.Camera.Position)
	assert.Equal(t, float32(60), cfg.Controller.Sensitivity)
	assert.Equal(t, "vsync", cfg.Renderer.PresentMode)
	assert.Equal(t, "up", cfg.Renderer.DispatchRounding)
	assert.Equal(t, Duration(time.Second), cfg.Profiler.Interval)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecodePartialOverridesDefaults(t *testing.T) {
	src := `
[window]
width = 640

[camera]
position = [1.0, 0.5, -3.0]

[renderer]
dispatch_rounding = "down"

[profiler]
enabled = true
interval = "250ms"
`
	cfg, err := Decode(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "oxy-rt", cfg.Window.Title)
	assert.Equal(t, [3]float32{1, 0.5, -3}, cfg.Camera.Position)
	assert.Equal(t, float32(45), cfg.Camera.Fov)
	assert.Equal(t, "down", cfg.Renderer.DispatchRounding)
	assert.True(t, cfg.Profiler.Enabled)
	assert.Equal(t, Duration(250*time.Millisecond), cfg.Profiler.Interval)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("[window]\nfullscreen = true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys")
	assert.Contains(t, err.Error(), "fullscreen")
}

func TestDecodeRejectsBadDuration(t *testing.T) {
	_, err := Decode(strings.NewReader("[profiler]\ninterval = \"soon\"\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }, "window size"},
		{"negative height", func(c *Config) { c.Window.Height = -1 }, "window size"},
		{"zero fov", func(c *Config) { c.Camera.Fov = 0 }, "fov"},
		{"straight fov", func(c *Config) { c.Camera.Fov = 180 }, "fov"},
		{"zero near", func(c *Config) { c.Camera.Near = 0 }, "near must be positive"},
		{"far equals near", func(c *Config) { c.Camera.Far = c.Camera.Near }, "must be greater than near"},
		{"negative speed", func(c *Config) { c.Controller.Speed = -1 }, "speed"},
		{"negative sensitivity", func(c *Config) { c.Controller.Sensitivity = -0.5 }, "sensitivity"},
		{"present mode", func(c *Config) { c.Renderer.PresentMode = "mailbox" }, "present_mode"},
		{"rounding", func(c *Config) { c.Renderer.DispatchRounding = "nearest" }, "dispatch_rounding"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
		{"profiler interval", func(c *Config) { c.Profiler.Enabled = true; c.Profiler.Interval = 0 }, "interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = 0
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window size")
	assert.Contains(t, err.Error(), "log format")
}

func TestValidateAcceptsUppercaseLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "DEBUG"
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxy-rt.toml")
	require.NoError(t, os.WriteFile(path, []byte("[controller]\nspeed = 4.0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float32(4), cfg.Controller.Speed)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFileNamesPathOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[camera]\nfov = 200.0\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestEncodeDecodeDefaults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Default()))
	assert.Contains(t, buf.String(), "1s")

	cfg, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
