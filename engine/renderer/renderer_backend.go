package renderer

import (
	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately. May tear.
	PresentModeUncapped
)

// ParsePresentMode maps a configuration value to a PresentMode.
//
// Parameters:
//   - s: "vsync" or "uncapped"
//
// Returns:
//   - PresentMode: the parsed mode
//   - bool: false if s names no mode
func ParsePresentMode(s string) (PresentMode, bool) {
	switch s {
	case "vsync":
		return PresentModeVSync, true
	case "uncapped":
		return PresentModeUncapped, true
	default:
		return PresentModeVSync, false
	}
}

// RendererBackend is the GPU API seam beneath the Renderer. All methods are called from
// the render thread.
type RendererBackend interface {
	// ConfigureSurface (re)configures the swapchain at the given size with the current present mode.
	ConfigureSurface(width, height int)

	// SetPresentMode selects the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// SurfaceFormat returns the configured swapchain format.
	SurfaceFormat() wgpu.TextureFormat

	// RegisterRenderPipeline creates the GPU render pipeline for p and stores it on p.
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// RegisterComputePipeline creates the GPU compute pipeline for p and stores it on p.
	RegisterComputePipeline(p pipeline.Pipeline) error

	// InitBindGroup creates missing buffers and the bind group described by descriptor.
	// Texture, storage texture and sampler bindings must already be present on the provider.
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// InitStorageTexture allocates a 2D texture and view and stores both at binding.
	InitStorageTexture(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.StorageTextureStagingData) error

	// InitSampler creates a sampler and stores it at binding.
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.SamplerStagingData) error

	// WriteBuffers queues each write. Writes targeting a binding without a buffer are skipped.
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// BeginFrame acquires the surface texture and opens the frame's command encoder.
	// Acquisition failures are returned wrapping one of the ErrSurface sentinels.
	BeginFrame() error

	// DispatchCompute encodes one compute pass with groups bound in order from group 0.
	DispatchCompute(p pipeline.Pipeline, groups []bind_group_provider.BindGroupProvider, workgroups [3]uint32)

	// DrawFullscreen encodes one render pass into the surface texture that clears to opaque
	// black and draws 3 vertices with no vertex buffer.
	DrawFullscreen(p pipeline.Pipeline, groups []bind_group_provider.BindGroupProvider)

	// EndFrame finishes the encoder and submits the command buffer.
	EndFrame() error

	// Present presents the acquired surface texture and releases it.
	Present()

	// Release drops the device, adapter, surface and instance.
	Release()
}
