package renderer

import "github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"

// ComputeStageOption is a functional option applied to a compute stage during construction via NewComputeStage.
type ComputeStageOption func(*computeStage)

// WithKernel replaces the embedded ray-tracing kernel. The shader must bind a write-only
// storage texture at group 0 binding 0 and the camera uniform at group 1 binding 0.
//
// Parameters:
//   - s: a compute shader
//
// Returns:
//   - ComputeStageOption: a function that sets the kernel
func WithKernel(s shader.Shader) ComputeStageOption {
	return func(c *computeStage) {
		c.shader = s
	}
}

// WithDispatchRounding sets how partial tiles at the image edges are handled. Default RoundUp.
//
// Parameters:
//   - rounding: the rounding policy
//
// Returns:
//   - ComputeStageOption: a function that sets the policy
func WithDispatchRounding(rounding DispatchRounding) ComputeStageOption {
	return func(c *computeStage) {
		c.rounding = rounding
	}
}

// WithKernelValidation compiles the kernel with naga before the pipeline is created.
func WithKernelValidation(validate bool) ComputeStageOption {
	return func(c *computeStage) {
		c.validate = validate
	}
}
