package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkgroupCount(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		tile          [3]uint32
		rounding      DispatchRounding
		want          [3]uint32
	}{
		{"exact up", 1280, 720, [3]uint32{8, 8, 1}, RoundUp, [3]uint32{160, 90, 1}},
		{"exact down", 1280, 720, [3]uint32{8, 8, 1}, RoundDown, [3]uint32{160, 90, 1}},
		{"remainder up", 1281, 721, [3]uint32{8, 8, 1}, RoundUp, [3]uint32{161, 91, 1}},
		{"remainder down", 1287, 727, [3]uint32{8, 8, 1}, RoundDown, [3]uint32{160, 90, 1}},
		{"16x16 tiles", 800, 600, [3]uint32{16, 16, 1}, RoundUp, [3]uint32{50, 38, 1}},
		{"16x16 tiles down", 800, 600, [3]uint32{16, 16, 1}, RoundDown, [3]uint32{50, 37, 1}},
		{"smaller than a tile up", 5, 3, [3]uint32{8, 8, 1}, RoundUp, [3]uint32{1, 1, 1}},
		{"smaller than a tile down", 5, 3, [3]uint32{8, 8, 1}, RoundDown, [3]uint32{0, 0, 1}},
		{"zero tile treated as one", 4, 2, [3]uint32{0, 0, 0}, RoundUp, [3]uint32{4, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WorkgroupCount(tt.width, tt.height, tt.tile, tt.rounding))
		})
	}
}

func TestParseDispatchRounding(t *testing.T) {
	r, ok := ParseDispatchRounding("up")
	assert.True(t, ok)
	assert.Equal(t, RoundUp, r)

	r, ok = ParseDispatchRounding("down")
	assert.True(t, ok)
	assert.Equal(t, RoundDown, r)

	_, ok = ParseDispatchRounding("nearest")
	assert.False(t, ok)
}

func TestNewComputeStageRegistersKernelAndCameraGroup(t *testing.T) {
	r, b := newFakeRenderer()
	cam := bind_group_provider.NewBindGroupProvider("camera_test")

	_, err := NewComputeStage(r, cam)
	require.NoError(t, err)

	assert.Equal(t, []string{ComputePipelineKey}, b.registered)
	require.Len(t, b.bindGroups, 1)
	assert.Equal(t, "camera_test", b.bindGroups[0].label)

	entries := b.bindGroups[0].descriptor.Entries
	require.Len(t, entries, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, entries[0].Buffer.Type)
	assert.Equal(t, uint64(camera.GPUCameraUniformSize), entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageCompute, entries[0].Visibility)
}

func TestNewComputeStageRejectsNonComputeShader(t *testing.T) {
	r, _ := newFakeRenderer()
	frag := shader.NewShader("frag", shader.ShaderTypeFragment, fullscreenFragmentSource)

	_, err := NewComputeStage(r, bind_group_provider.NewBindGroupProvider("cam"), WithKernel(frag))
	assert.Error(t, err)
}

func TestNewComputeStageRegisterError(t *testing.T) {
	r, b := newFakeRenderer()
	b.registerErr = errFakeRegister

	_, err := NewComputeStage(r, bind_group_provider.NewBindGroupProvider("cam"))
	assert.ErrorIs(t, err, errFakeRegister)
}

func TestComputeStageResizeRecreatesImage(t *testing.T) {
	r, b := newFakeRenderer()
	stage, err := NewComputeStage(r, bind_group_provider.NewBindGroupProvider("cam"))
	require.NoError(t, err)

	require.NoError(t, stage.Resize(640, 480))
	require.NoError(t, stage.Resize(1024, 768))

	require.Len(t, b.storageTextures, 2)
	assert.Equal(t, uint32(640), b.storageTextures[0].staging.Width)
	assert.Equal(t, uint32(1024), b.storageTextures[1].staging.Width)
	assert.Equal(t, uint32(768), b.storageTextures[1].staging.Height)
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, b.storageTextures[1].staging.Format)
	assert.Equal(t, "compute_output", b.storageTextures[1].label)

	// camera group once, output group per resize
	require.Len(t, b.bindGroups, 3)
	out := b.bindGroups[2].descriptor.Entries
	require.Len(t, out, 1)
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, out[0].StorageTexture.Format)
	assert.Equal(t, wgpu.StorageTextureAccessWriteOnly, out[0].StorageTexture.Access)
	assert.Equal(t, wgpu.TextureViewDimension2D, out[0].StorageTexture.ViewDimension)

	w, h := stage.Size()
	assert.Equal(t, uint32(1024), w)
	assert.Equal(t, uint32(768), h)
}

func TestComputeStageResizeRejectsZero(t *testing.T) {
	r, b := newFakeRenderer()
	stage, err := NewComputeStage(r, bind_group_provider.NewBindGroupProvider("cam"))
	require.NoError(t, err)

	assert.Error(t, stage.Resize(0, 480))
	assert.Error(t, stage.Resize(640, 0))
	assert.Empty(t, b.storageTextures)
}

func TestComputeStageDispatch(t *testing.T) {
	r, b := newFakeRenderer()
	stage, err := NewComputeStage(r, bind_group_provider.NewBindGroupProvider("cam"))
	require.NoError(t, err)

	assert.Error(t, stage.Dispatch(), "dispatch before the image exists")

	require.NoError(t, stage.Resize(1281, 721))
	require.NoError(t, stage.Dispatch())

	require.Len(t, b.dispatches, 1)
	assert.Equal(t, ComputePipelineKey, b.dispatches[0].key)
	assert.Equal(t, []string{"compute_output", "cam"}, b.dispatches[0].groups)
	assert.Equal(t, [3]uint32{161, 91, 1}, b.dispatches[0].workgroups)
}

func TestComputeStageDispatchRoundDownSkipsEmptyGrid(t *testing.T) {
	r, b := newFakeRenderer()
	stage, err := NewComputeStage(r, bind_group_provider.NewBindGroupProvider("cam"), WithDispatchRounding(RoundDown))
	require.NoError(t, err)

	require.NoError(t, stage.Resize(7, 7))
	require.NoError(t, stage.Dispatch())
	assert.Empty(t, b.dispatches)

	require.NoError(t, stage.Resize(1287, 727))
	require.NoError(t, stage.Dispatch())
	require.Len(t, b.dispatches, 1)
	assert.Equal(t, [3]uint32{160, 90, 1}, b.dispatches[0].workgroups)
}

func TestComputeStageCustomKernelTileSize(t *testing.T) {
	src := `
@group(0) @binding(0) var out_image: texture_storage_2d<rgba8unorm, write>;
//@oxy:group 1 0 uniform camera camera

@compute @workgroup_size(16, 16)
fn trace(@builtin(global_invocation_id) id: vec3<u32>) {
    textureStore(out_image, vec2<i32>(id.xy), vec4<f32>(camera.view_position.xyz, 1.0));
}
`
	r, b := newFakeRenderer()
	kernel := shader.NewShader("custom", shader.ShaderTypeCompute, src)
	stage, err := NewComputeStage(r, bind_group_provider.NewBindGroupProvider("cam"), WithKernel(kernel))
	require.NoError(t, err)

	require.NoError(t, stage.Resize(800, 600))
	assert.Equal(t, [3]uint32{50, 38, 1}, stage.Workgroups())
	require.NoError(t, stage.Dispatch())
	assert.Equal(t, [3]uint32{50, 38, 1}, b.dispatches[0].workgroups)
}

func TestEmbeddedKernelContract(t *testing.T) {
	s := shader.NewShader(ComputePipelineKey, shader.ShaderTypeCompute, raytraceSource)
	assert.Equal(t, "main", s.EntryPoint())
	assert.Equal(t, [3]uint32{8, 8, 1}, s.WorkgroupSize())
	assert.Equal(t, "out_image", s.BindGroupVarName(0, 0))
	assert.Equal(t, "camera", s.BindGroupVarName(1, 0))
	assert.Contains(t, s.Source(), "struct CameraUniform")
}
