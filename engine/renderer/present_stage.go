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

var (
	//go:embed assets/fullscreen.vert.wgsl
	fullscreenVertexSource string

	//go:embed assets/fullscreen.frag.wgsl
	fullscreenFragmentSource string
)

const (
	// PresentPipelineKey is the pipeline cache key of the full-screen present pass.
	PresentPipelineKey = "present"

	presentGroup   = 0
	samplerBinding = 0
	frameBinding   = 1
)

// presentStage is the implementation of the PresentStage interface.
type presentStage struct {
	renderer       Renderer
	vertexShader   shader.Shader
	fragmentShader shader.Shader
	pipeline       pipeline.Pipeline
	validate       bool

	provider bind_group_provider.BindGroupProvider
}

// PresentStage copies the compute stage's storage image to the surface with one full-screen
// triangle. The image is read with a nearest, non-filtering sampler.
type PresentStage interface {
	// Rebind points the present bind group at a new storage image view. Must be called after
	// every compute stage Resize. The view stays owned by the compute stage.
	//
	// Parameters:
	//   - view: the storage image view
	//
	// Returns:
	//   - error: if view is nil or bind group creation fails
	Rebind(view *wgpu.TextureView) error

	// Draw encodes the present pass into the current frame.
	//
	// Returns:
	//   - error: if Rebind was never called or the pipeline is missing
	Draw() error

	// Release releases the sampler and the bind group.
	Release()
}

var _ PresentStage = &presentStage{}

// NewPresentStage builds the present shaders, registers the render pipeline and creates the
// sampler. The sampled binding is declared non-filtering and unfilterable-float because the
// storage image format is not guaranteed to be filterable.
//
// Parameters:
//   - r: the Renderer resources are created with
//   - options: functional options for shaders and validation
//
// Returns:
//   - PresentStage: the stage
//   - error: if validation, pipeline or sampler creation fails
func NewPresentStage(r Renderer, options ...PresentStageOption) (PresentStage, error) {
	p := &presentStage{
		renderer: r,
		provider: bind_group_provider.NewBindGroupProvider("present"),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.vertexShader == nil {
		p.vertexShader = shader.NewShader("fullscreen_vertex", shader.ShaderTypeVertex, fullscreenVertexSource)
	}
	if p.fragmentShader == nil {
		p.fragmentShader = shader.NewShader("fullscreen_fragment", shader.ShaderTypeFragment, fullscreenFragmentSource)
	}
	if p.validate {
		for _, s := range []shader.Shader{p.vertexShader, p.fragmentShader} {
			if err := s.Validate(); err != nil {
				return nil, fmt.Errorf("present stage: %w", err)
			}
		}
	}

	overrides := []wgpu.BindGroupLayoutEntry{
		{
			Binding:    samplerBinding,
			Visibility: wgpu.ShaderStageFragment,
			Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeNonFiltering},
		},
		{
			Binding:    frameBinding,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		},
	}
	for _, entry := range overrides {
		if err := p.fragmentShader.OverrideBindingLayout(presentGroup, entry); err != nil {
			return nil, fmt.Errorf("present stage: %w", err)
		}
	}

	p.pipeline = pipeline.NewPipeline(PresentPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(p.vertexShader),
		pipeline.WithFragmentShader(p.fragmentShader),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithFrontFace(wgpu.FrontFaceCCW),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
	)
	if err := r.RegisterPipelines(p.pipeline); err != nil {
		return nil, fmt.Errorf("present stage: %w", err)
	}

	err := r.InitSampler(p.provider, samplerBinding, common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeNearest,
		MinFilter:    wgpu.FilterModeNearest,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
	})
	if err != nil {
		return nil, fmt.Errorf("present stage: sampler: %w", err)
	}
	return p, nil
}

func (p *presentStage) Rebind(view *wgpu.TextureView) error {
	if view == nil {
		return fmt.Errorf("present stage: nil frame view")
	}
	p.provider.ReleaseBindGroup()
	p.provider.BorrowTextureView(frameBinding, view)
	if err := p.renderer.InitBindGroup(p.provider, p.fragmentShader.BindGroupLayoutDescriptor(presentGroup)); err != nil {
		return fmt.Errorf("present stage: %w", err)
	}
	return nil
}

func (p *presentStage) Draw() error {
	if p.provider.TextureView(frameBinding) == nil {
		return fmt.Errorf("present stage: draw before rebind")
	}
	return p.renderer.DrawFullscreen(PresentPipelineKey, []bind_group_provider.BindGroupProvider{p.provider})
}

func (p *presentStage) Release() {
	p.provider.Release()
}
