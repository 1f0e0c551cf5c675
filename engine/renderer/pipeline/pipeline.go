package pipeline

import (
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType distinguishes compute pipelines from render pipelines.
type PipelineType int

const (
	// PipelineTypeCompute is a pipeline with a single compute stage.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender is a pipeline with a vertex and a fragment stage.
	PipelineTypeRender
)

// ReplaceBlend writes the fragment output over the target unchanged.
var ReplaceBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
		Operation: wgpu.BlendOperationAdd,
	},
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineType PipelineType
	pipelineKey  string

	vertexShader, fragmentShader, computeShader shader.Shader

	// set by the Renderer in RegisterPipelines
	renderPipeline  *wgpu.RenderPipeline
	computePipeline *wgpu.ComputePipeline

	cullMode   wgpu.CullMode
	topology   wgpu.PrimitiveTopology
	frontFace  wgpu.FrontFace
	writeMask  wgpu.ColorWriteMask
	blendState *wgpu.BlendState
}

// Pipeline describes a compute or render pipeline: its shaders and fixed-function state.
// The Renderer creates the GPU object from the description and stores it back on the pipeline.
type Pipeline interface {
	// Type returns whether this is a compute or render pipeline.
	Type() PipelineType

	// PipelineKey returns the unique key the Renderer caches the pipeline under.
	PipelineKey() string

	// Shader returns the shader for a stage, or nil if the stage is unused.
	//
	// Parameters:
	//   - shaderType: the stage
	//
	// Returns:
	//   - shader.Shader: the stage's shader or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// RenderPipeline returns the GPU render pipeline, nil until registered.
	RenderPipeline() *wgpu.RenderPipeline

	// ComputePipeline returns the GPU compute pipeline, nil until registered.
	ComputePipeline() *wgpu.ComputePipeline

	// CullMode returns which triangle faces are discarded.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the winding order of front faces.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color channels the fragment stage writes.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the color target blend state, or nil to disable blending.
	BlendState() *wgpu.BlendState

	// SetRenderPipeline stores the GPU render pipeline.
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// SetComputePipeline stores the GPU compute pipeline.
	SetComputePipeline(p *wgpu.ComputePipeline)

	// Release releases the GPU pipeline object.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a pipeline description. Render pipelines default to triangle lists,
// counter-clockwise front faces, back-face culling, all channels written and replace blending.
//
// Parameters:
//   - pipelineKey: the unique cache key
//   - pipelineType: compute or render
//   - opts: functional options for shaders and fixed-function state
//
// Returns:
//   - Pipeline: the pipeline description
func NewPipeline(pipelineKey string, pipelineType PipelineType, opts ...PipelineBuilderOption) Pipeline {
	blend := ReplaceBlend
	p := &pipeline{
		pipelineKey:  pipelineKey,
		pipelineType: pipelineType,
		cullMode:     wgpu.CullModeBack,
		topology:     wgpu.PrimitiveTopologyTriangleList,
		frontFace:    wgpu.FrontFaceCCW,
		writeMask:    wgpu.ColorWriteMaskAll,
		blendState:   &blend,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	case shader.ShaderTypeCompute:
		return p.computeShader
	default:
		return nil
	}
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) ComputePipeline() *wgpu.ComputePipeline {
	return p.computePipeline
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) {
	p.computePipeline = cp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.computePipeline != nil {
		p.computePipeline.Release()
		p.computePipeline = nil
	}
}
