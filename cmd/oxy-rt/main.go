// Command oxy-rt opens a window and renders a compute-shader ray tracer seen through a
// free-flying camera.
//
// Controls: W/A/S/D or the arrow keys move, Space rises, Left Shift sinks, the right mouse
// button toggles mouse look, Escape quits.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine"
	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/config"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-rt/engine/window"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	dumpConfig := flag.Bool("print-config", false, "print the effective configuration and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "oxy-rt: %v\n", err)
		os.Exit(1)
	}
	if *dumpConfig {
		if err := config.Encode(os.Stdout, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "oxy-rt: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger, err := common.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "oxy-rt: %v\n", err)
		os.Exit(1)
	}
	common.SetLogger(logger)

	if err := run(cfg); err != nil {
		logger.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run builds the window, renderer and engine from cfg and blocks until the window closes.
// Setup panics from the window and renderer are returned as errors.
func run(cfg config.Config) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	presentMode, _ := renderer.ParsePresentMode(cfg.Renderer.PresentMode)
	rounding, _ := renderer.ParseDispatchRounding(cfg.Renderer.DispatchRounding)

	// ── Window ──────────────────────────────────────────────────────────
	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	defer win.Close()

	// ── Renderer ────────────────────────────────────────────────────────
	r := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(presentMode),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceSoftware),
	)

	// ── Camera ──────────────────────────────────────────────────────────
	p := cfg.Camera.Position
	cam := camera.NewCamera(
		camera.WithPosition(p[0], p[1], p[2]),
		camera.WithFov(cfg.Camera.Fov),
		camera.WithNear(cfg.Camera.Near),
		camera.WithFar(cfg.Camera.Far),
	)
	controller := camera.NewCameraController(
		camera.WithSpeed(cfg.Controller.Speed),
		camera.WithSensitivity(cfg.Controller.Sensitivity),
	)

	// ── Stages ──────────────────────────────────────────────────────────
	computeOptions := []renderer.ComputeStageOption{
		renderer.WithDispatchRounding(rounding),
		renderer.WithKernelValidation(cfg.Renderer.ValidateShaders),
	}
	if cfg.Shaders.Compute != "" {
		computeOptions = append(computeOptions, renderer.WithKernel(
			shader.NewShaderFromPath(renderer.ComputePipelineKey, shader.ShaderTypeCompute, cfg.Shaders.Compute),
		))
	}

	presentOptions := []renderer.PresentStageOption{
		renderer.WithPresentValidation(cfg.Renderer.ValidateShaders),
	}
	if cfg.Shaders.Vertex != "" || cfg.Shaders.Fragment != "" {
		var vertex, fragment shader.Shader
		if cfg.Shaders.Vertex != "" {
			vertex = shader.NewShaderFromPath("fullscreen_vertex", shader.ShaderTypeVertex, cfg.Shaders.Vertex)
		}
		if cfg.Shaders.Fragment != "" {
			fragment = shader.NewShaderFromPath("fullscreen_fragment", shader.ShaderTypeFragment, cfg.Shaders.Fragment)
		}
		presentOptions = append(presentOptions, renderer.WithPresentShaders(vertex, fragment))
	}

	// ── Engine ──────────────────────────────────────────────────────────
	eng, err := engine.NewEngine(win, r,
		engine.WithCamera(cam),
		engine.WithCameraController(controller),
		engine.WithComputeStageOptions(computeOptions...),
		engine.WithPresentStageOptions(presentOptions...),
		engine.WithProfiling(cfg.Profiler.Enabled, time.Duration(cfg.Profiler.Interval)),
	)
	if err != nil {
		r.Release()
		return err
	}
	defer eng.Release()

	return eng.Run()
}
