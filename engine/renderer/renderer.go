package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-rt/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// collected from builder options before the backend exists
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
}

// Renderer is the frame-level GPU API used by the compute and present stages.
//
// The Renderer caches pipelines by key and forwards resource creation and frame encoding to
// its backend. A frame is BeginFrame, any number of DispatchCompute and DrawFullscreen calls,
// EndFrame and Present, all recorded into a single submission.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key, or nil.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the cached Pipeline, or nil if not registered
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU objects for each pipeline and caches them by PipelineKey.
	// Pipelines whose keys are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: the first creation error
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface. Must not be called with a zero dimension.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode selects VSync or uncapped presentation. Takes effect on the next Resize.
	SetPresentMode(mode PresentMode)

	// SurfaceFormat returns the configured surface texture format.
	SurfaceFormat() wgpu.TextureFormat

	// InitBindGroup creates missing buffers and the bind group described by descriptor, storing
	// both on the provider. Views and samplers must be set on the provider beforehand.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to populate
	//   - descriptor: the layout descriptor, usually reflected from a shader
	//
	// Returns:
	//   - error: an error if resource or bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// InitStorageTexture allocates a texture a compute kernel can write and sample later.
	//
	// Parameters:
	//   - provider: the BindGroupProvider that takes ownership of the texture and view
	//   - binding: the binding index the view is stored under
	//   - stagingData: size, format and usage
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitStorageTexture(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.StorageTextureStagingData) error

	// InitSampler creates a sampler and stores it on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the sampler on
	//   - binding: the binding index the sampler is stored under
	//   - stagingData: the sampler configuration, zero fields take defaults
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.SamplerStagingData) error

	// WriteBuffers queues buffer uploads ahead of the next submission.
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// BeginFrame acquires the surface texture and opens the frame encoder.
	//
	// Returns:
	//   - error: acquisition errors wrap ErrSurfaceLost, ErrSurfaceOutdated, ErrSurfaceTimeout
	//     or ErrSurfaceOutOfMemory when the status is recognized
	BeginFrame() error

	// DispatchCompute encodes a compute pass using the cached pipeline.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered compute pipeline
	//   - groups: providers bound to groups 0..n-1 in order
	//   - workgroups: the number of workgroups in x, y and z
	//
	// Returns:
	//   - error: if the pipeline is not registered
	DispatchCompute(pipelineKey string, groups []bind_group_provider.BindGroupProvider, workgroups [3]uint32) error

	// DrawFullscreen encodes a render pass into the surface texture drawing one full-screen triangle.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered render pipeline
	//   - groups: providers bound to groups 0..n-1 in order
	//
	// Returns:
	//   - error: if the pipeline is not registered
	DrawFullscreen(pipelineKey string, groups []bind_group_provider.BindGroupProvider) error

	// EndFrame finishes and submits the frame's commands. Call Present afterwards.
	EndFrame() error

	// Present shows the frame and releases the surface texture.
	Present()

	// Release releases every cached pipeline and the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing into the given window's surface and configures the
// surface at the window's current size.
//
// Parameters:
//   - backendType: the rendering backend to use
//   - win: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured Renderer
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
	}

	// options first so forceFallbackAdapter is known before the adapter request
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(win.Width(), win.Height())
	return r
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		var err error
		switch p.Type() {
		case pipeline.PipelineTypeCompute:
			err = r.backend.RegisterComputePipeline(p)
		case pipeline.PipelineTypeRender:
			err = r.backend.RegisterRenderPipeline(p)
		default:
			err = fmt.Errorf("unknown pipeline type %d", p.Type())
		}
		if err != nil {
			return fmt.Errorf("register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	return r.backend.InitBindGroup(provider, descriptor)
}

func (r *renderer) InitStorageTexture(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.StorageTextureStagingData) error {
	return r.backend.InitStorageTexture(provider, binding, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, binding, stagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	return r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DispatchCompute(pipelineKey string, groups []bind_group_provider.BindGroupProvider, workgroups [3]uint32) error {
	p, exists := r.pipelineCache[pipelineKey]
	if !exists || p.Type() != pipeline.PipelineTypeCompute {
		return fmt.Errorf("compute pipeline %q not found in cache", pipelineKey)
	}
	r.backend.DispatchCompute(p, groups, workgroups)
	return nil
}

func (r *renderer) DrawFullscreen(pipelineKey string, groups []bind_group_provider.BindGroupProvider) error {
	p, exists := r.pipelineCache[pipelineKey]
	if !exists || p.Type() != pipeline.PipelineTypeRender {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	r.backend.DrawFullscreen(p, groups)
	return nil
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.backend.Release()
}
