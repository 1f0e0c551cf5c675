package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("camera_0")

	assert.Equal(t, "camera_0", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.BindGroupLayout())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.Texture(0))
	assert.Nil(t, p.TextureView(0))
	assert.Nil(t, p.Sampler(0))
}

func TestBorrowedViewSurvivesRelease(t *testing.T) {
	view := &wgpu.TextureView{}
	p := NewBindGroupProvider("present", WithBorrowedTextureView(1, view))
	assert.Same(t, view, p.TextureView(1))

	// a borrowed view is forgotten, not released
	p.Release()
	assert.Nil(t, p.TextureView(1))

	p.BorrowTextureView(1, view)
	p.ReleaseBindGroup()
	assert.Same(t, view, p.TextureView(1))
}

func TestSetTextureViewClearsBorrowedFlag(t *testing.T) {
	impl := NewBindGroupProvider("p").(*bindGroupProvider)

	impl.BorrowTextureView(2, &wgpu.TextureView{})
	assert.True(t, impl.borrowed[2])

	impl.SetTextureView(2, nil)
	assert.False(t, impl.borrowed[2])

	impl.BorrowTextureView(2, &wgpu.TextureView{})
	impl.SetTexture(2, nil, nil)
	assert.False(t, impl.borrowed[2])
}

func TestReleaseWithNothingAllocated(t *testing.T) {
	p := NewBindGroupProvider("empty",
		WithBuffer(0, nil),
		WithSampler(1, nil),
	)
	assert.NotPanics(t, p.Release)
	assert.NotPanics(t, p.ReleaseBindGroup)
}
