package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the complete viewer configuration. Every key is optional; missing keys keep
// the values from Default.
type Config struct {
	Window     WindowConfig     `toml:"window"`
	Camera     CameraConfig     `toml:"camera"`
	Controller ControllerConfig `toml:"controller"`
	Renderer   RendererConfig   `toml:"renderer"`
	Shaders    ShaderConfig     `toml:"shaders"`
	Log        LogConfig        `toml:"log"`
	Profiler   ProfilerConfig   `toml:"profiler"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type CameraConfig struct {
	Position [3]float32 `toml:"position"`
	Fov      float32    `toml:"fov"`
	Near     float32    `toml:"near"`
	Far      float32    `toml:"far"`
}

type ControllerConfig struct {
	Speed       float32 `toml:"speed"`
	Sensitivity float32 `toml:"sensitivity"`
}

type RendererConfig struct {
	PresentMode      string `toml:"present_mode"`
	DispatchRounding string `toml:"dispatch_rounding"`
	ForceSoftware    bool   `toml:"force_software"`
	ValidateShaders  bool   `toml:"validate_shaders"`
}

// ShaderConfig holds optional WGSL paths. An empty path selects the embedded source.
type ShaderConfig struct {
	Compute  string `toml:"compute"`
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ProfilerConfig struct {
	Enabled  bool     `toml:"enabled"`
	Interval Duration `toml:"interval"`
}

// Duration is a time.Duration read from and written as a Go duration string such as "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "oxy-rt",
			Width:  1280,
			Height: 720,
		},
		Camera: CameraConfig{
			Position: [3]float32{0, 2, -12},
			Fov:      45,
			Near:     1,
			Far:      100,
		},
		Controller: ControllerConfig{
			Speed:       10,
			Sensitivity: 60,
		},
		Renderer: RendererConfig{
			PresentMode:      "vsync",
			DispatchRounding: "up",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Profiler: ProfilerConfig{
			Interval: Duration(time.Second),
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
// An empty path returns the defaults.
//
// Parameters:
//   - path: the TOML file path, or "" for defaults
//
// Returns:
//   - Config: the loaded configuration
//   - error: if the file cannot be read, contains unknown keys, or fails validation
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r over the defaults and validates the result.
//
// Parameters:
//   - r: the TOML source
//
// Returns:
//   - Config: the decoded configuration
//   - error: on syntax errors, unknown keys, type mismatches or validation failures
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(cfg)
}

// Validate reports every invalid value in c.
//
// Returns:
//   - error: the joined validation errors, or nil
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	check(c.Camera.Fov > 0 && c.Camera.Fov < 180, "camera fov must be in (0, 180), got %g", c.Camera.Fov)
	check(c.Camera.Near > 0, "camera near must be positive, got %g", c.Camera.Near)
	check(c.Camera.Far > c.Camera.Near, "camera far (%g) must be greater than near (%g)", c.Camera.Far, c.Camera.Near)
	check(c.Controller.Speed >= 0, "controller speed must not be negative, got %g", c.Controller.Speed)
	check(c.Controller.Sensitivity >= 0, "controller sensitivity must not be negative, got %g", c.Controller.Sensitivity)
	check(oneOf(c.Renderer.PresentMode, "vsync", "uncapped"), "unknown present_mode %q", c.Renderer.PresentMode)
	check(oneOf(c.Renderer.DispatchRounding, "up", "down"), "unknown dispatch_rounding %q", c.Renderer.DispatchRounding)
	check(oneOf(strings.ToLower(c.Log.Level), "debug", "info", "warn", "error"), "unknown log level %q", c.Log.Level)
	check(oneOf(strings.ToLower(c.Log.Format), "text", "json"), "unknown log format %q", c.Log.Format)
	check(!c.Profiler.Enabled || c.Profiler.Interval > 0, "profiler interval must be positive")

	return errors.Join(errs...)
}

func oneOf(v string, allowed ...string) bool {
	return slices.Contains(allowed, v)
}
