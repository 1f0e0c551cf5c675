package renderer

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/raytrace.wgsl
var raytraceSource string

const (
	// ComputePipelineKey is the pipeline cache key of the ray-tracing kernel.
	ComputePipelineKey = "raytrace"

	// outputGroup and cameraGroup are the kernel's bind group indices.
	outputGroup = 0
	cameraGroup = 1

	outputBinding = 0
)

// DispatchRounding decides how a surface size that is not a multiple of the tile size
// is turned into a workgroup count.
type DispatchRounding int

const (
	// RoundUp covers every pixel. The kernel discards invocations outside the image.
	RoundUp DispatchRounding = iota

	// RoundDown dispatches whole tiles only. Remainder pixels on the right and bottom edges
	// are not written.
	RoundDown
)

// ParseDispatchRounding maps a configuration value to a DispatchRounding.
//
// Parameters:
//   - s: "up" or "down"
//
// Returns:
//   - DispatchRounding: the parsed policy
//   - bool: false if s names no policy
func ParseDispatchRounding(s string) (DispatchRounding, bool) {
	switch s {
	case "up":
		return RoundUp, true
	case "down":
		return RoundDown, true
	default:
		return RoundUp, false
	}
}

// WorkgroupCount returns how many workgroups of size tile cover a width by height image.
//
// Parameters:
//   - width: image width in pixels
//   - height: image height in pixels
//   - tile: the kernel's workgroup size, zero dimensions are treated as 1
//   - rounding: the rounding policy for partial tiles
//
// Returns:
//   - [3]uint32: the workgroup count in x, y and z
func WorkgroupCount(width, height uint32, tile [3]uint32, rounding DispatchRounding) [3]uint32 {
	tx, ty := max(tile[0], 1), max(tile[1], 1)
	if rounding == RoundDown {
		return [3]uint32{width / tx, height / ty, 1}
	}
	return [3]uint32{(width + tx - 1) / tx, (height + ty - 1) / ty, 1}
}

// computeStage is the implementation of the ComputeStage interface.
type computeStage struct {
	renderer Renderer
	shader   shader.Shader
	pipeline pipeline.Pipeline
	rounding DispatchRounding
	validate bool

	output         bind_group_provider.BindGroupProvider
	cameraProvider bind_group_provider.BindGroupProvider

	width, height uint32
}

// ComputeStage runs the ray-tracing kernel over a storage image sized to the surface.
// Group 0 holds the storage image, group 1 the camera uniform buffer.
type ComputeStage interface {
	// Resize recreates the storage image and its bind group at the new size. Views handed
	// out by OutputView before the call are released.
	//
	// Parameters:
	//   - width: image width in pixels, non-zero
	//   - height: image height in pixels, non-zero
	//
	// Returns:
	//   - error: an error if texture or bind group creation fails
	Resize(width, height uint32) error

	// Dispatch encodes the kernel into the current frame. The workgroup grid covers the image
	// according to the rounding policy. A grid with a zero dimension is not dispatched.
	//
	// Returns:
	//   - error: if the image has not been created or the pipeline is missing
	Dispatch() error

	// OutputView returns the view of the storage image, nil before the first Resize.
	OutputView() *wgpu.TextureView

	// Workgroups returns the grid Dispatch would encode at the current size.
	Workgroups() [3]uint32

	// Size returns the current storage image size.
	Size() (width, height uint32)

	// Release releases the storage image and the output bind group. The camera provider is
	// owned by the camera and left alone.
	Release()
}

var _ ComputeStage = &computeStage{}

// NewComputeStage builds the kernel shader, registers the compute pipeline and creates the
// camera bind group on cameraProvider. The storage image is created by the first Resize.
//
// Parameters:
//   - r: the Renderer resources are created with
//   - cameraProvider: the camera's provider, bound at group 1
//   - options: functional options for shader, rounding and validation
//
// Returns:
//   - ComputeStage: the stage
//   - error: if validation, pipeline or bind group creation fails
func NewComputeStage(r Renderer, cameraProvider bind_group_provider.BindGroupProvider, options ...ComputeStageOption) (ComputeStage, error) {
	c := &computeStage{
		renderer:       r,
		rounding:       RoundUp,
		output:         bind_group_provider.NewBindGroupProvider("compute_output"),
		cameraProvider: cameraProvider,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.shader == nil {
		c.shader = shader.NewShader(ComputePipelineKey, shader.ShaderTypeCompute, raytraceSource)
	}
	if c.shader.ShaderType() != shader.ShaderTypeCompute {
		return nil, fmt.Errorf("compute stage: shader %s is a %s shader", c.shader.Key(), c.shader.ShaderType())
	}
	if c.shader.EntryPoint() == "" {
		return nil, fmt.Errorf("compute stage: shader %s has no @compute entry point", c.shader.Key())
	}
	if c.validate {
		if err := c.shader.Validate(); err != nil {
			return nil, fmt.Errorf("compute stage: %w", err)
		}
	}

	c.pipeline = pipeline.NewPipeline(ComputePipelineKey, pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(c.shader),
	)
	if err := r.RegisterPipelines(c.pipeline); err != nil {
		return nil, fmt.Errorf("compute stage: %w", err)
	}
	if err := r.InitBindGroup(cameraProvider, c.shader.BindGroupLayoutDescriptor(cameraGroup)); err != nil {
		return nil, fmt.Errorf("compute stage: camera bind group: %w", err)
	}
	return c, nil
}

func (c *computeStage) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("compute stage: invalid size %dx%d", width, height)
	}

	// The old texture may still be referenced by the present bind group until it is rebound,
	// which the caller does right after Resize.
	c.output.Release()

	err := c.renderer.InitStorageTexture(c.output, outputBinding, common.StorageTextureStagingData{
		Width:  width,
		Height: height,
		Format: wgpu.TextureFormatRGBA8Unorm,
	})
	if err != nil {
		return fmt.Errorf("compute stage: storage image: %w", err)
	}
	if err := c.renderer.InitBindGroup(c.output, c.shader.BindGroupLayoutDescriptor(outputGroup)); err != nil {
		return fmt.Errorf("compute stage: output bind group: %w", err)
	}

	c.width, c.height = width, height
	common.Logger().Debug("storage image recreated", "width", width, "height", height, "workgroups", c.Workgroups())
	return nil
}

func (c *computeStage) Dispatch() error {
	if c.width == 0 || c.height == 0 {
		return fmt.Errorf("compute stage: dispatch before resize")
	}
	wg := c.Workgroups()
	if wg[0] == 0 || wg[1] == 0 {
		return nil
	}
	return c.renderer.DispatchCompute(ComputePipelineKey,
		[]bind_group_provider.BindGroupProvider{c.output, c.cameraProvider}, wg)
}

func (c *computeStage) OutputView() *wgpu.TextureView {
	return c.output.TextureView(outputBinding)
}

func (c *computeStage) Workgroups() [3]uint32 {
	return WorkgroupCount(c.width, c.height, c.shader.WorkgroupSize(), c.rounding)
}

func (c *computeStage) Size() (uint32, uint32) {
	return c.width, c.height
}

func (c *computeStage) Release() {
	c.output.Release()
	c.width, c.height = 0, 0
}
