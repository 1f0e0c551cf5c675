package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables periodic performance logging.
//
// Parameters:
//   - enabled: if true, frame rate and memory statistics are logged
//   - interval: time between records (defaults to 1 second if <= 0)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool, interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
		if interval > 0 {
			e.profilerInterval = interval
		}
	}
}

// WithCamera sets the camera the engine drives instead of the default one.
//
// Parameters:
//   - c: a configured Camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithCameraController sets the controller translating input into camera motion.
//
// Parameters:
//   - cc: a configured CameraController
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCameraController(cc camera.CameraController) EngineBuilderOption {
	return func(e *engine) {
		e.controller = cc
	}
}

// WithComputeStageOptions forwards options to the compute stage, such as a custom kernel or
// the dispatch rounding policy.
func WithComputeStageOptions(options ...renderer.ComputeStageOption) EngineBuilderOption {
	return func(e *engine) {
		e.computeOptions = append(e.computeOptions, options...)
	}
}

// WithPresentStageOptions forwards options to the present stage.
func WithPresentStageOptions(options ...renderer.PresentStageOption) EngineBuilderOption {
	return func(e *engine) {
		e.presentOptions = append(e.presentOptions, options...)
	}
}
