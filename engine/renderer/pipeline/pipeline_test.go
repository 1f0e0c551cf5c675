package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexSource = `
@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(f32(index), 0.0, 0.0, 1.0);
}
`

const fragmentSource = `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("present", PipelineTypeRender)

	assert.Equal(t, "present", p.PipelineKey())
	assert.Equal(t, PipelineTypeRender, p.Type())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	require.NotNil(t, p.BlendState())
	assert.Equal(t, ReplaceBlend, *p.BlendState())
	assert.Nil(t, p.RenderPipeline())
	assert.Nil(t, p.ComputePipeline())
}

func TestDefaultBlendIsACopy(t *testing.T) {
	p := NewPipeline("a", PipelineTypeRender)
	p.BlendState().Color.DstFactor = wgpu.BlendFactorOne

	assert.Equal(t, wgpu.BlendFactorZero, ReplaceBlend.Color.DstFactor)
	assert.Equal(t, wgpu.BlendFactorZero, NewPipeline("b", PipelineTypeRender).BlendState().Color.DstFactor)
}

func TestPipelineOptions(t *testing.T) {
	vs := shader.NewShader("vs", shader.ShaderTypeVertex, vertexSource)
	fs := shader.NewShader("fs", shader.ShaderTypeFragment, fragmentSource)

	p := NewPipeline("custom", PipelineTypeRender,
		WithVertexShader(vs),
		WithFragmentShader(fs),
		WithCullMode(wgpu.CullModeNone),
		WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
		WithFrontFace(wgpu.FrontFaceCW),
		WithWriteMask(wgpu.ColorWriteMaskRed),
		WithBlendState(nil),
	)

	assert.Same(t, vs, p.Shader(shader.ShaderTypeVertex))
	assert.Same(t, fs, p.Shader(shader.ShaderTypeFragment))
	assert.Nil(t, p.Shader(shader.ShaderTypeCompute))
	assert.Nil(t, p.Shader(shader.ShaderType(42)))
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleStrip, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskRed, p.WriteMask())
	assert.Nil(t, p.BlendState())
}

func TestComputePipelineShader(t *testing.T) {
	cs := shader.NewShader("cs", shader.ShaderTypeCompute, `
@compute @workgroup_size(8, 8)
fn main() {}
`)
	p := NewPipeline("kernel", PipelineTypeCompute, WithComputeShader(cs))

	assert.Equal(t, PipelineTypeCompute, p.Type())
	assert.Same(t, cs, p.Shader(shader.ShaderTypeCompute))
	assert.Nil(t, p.Shader(shader.ShaderTypeVertex))
	assert.NotPanics(t, p.Release)
}
