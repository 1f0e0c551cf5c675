package camera

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFloat(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestNewGPUCameraUniformIdentity(t *testing.T) {
	u := NewGPUCameraUniform()
	id := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	assert.Equal(t, id, u.View)
	assert.Equal(t, id, u.Proj)
	assert.Equal(t, [4]float32{}, u.ViewPosition)
	assert.Equal(t, 144, u.Size())
}

func TestGPUCameraUniformMarshalLayout(t *testing.T) {
	u := NewGPUCameraUniform()
	u.ViewPosition = [4]float32{1, 2, 3, 1}
	u.View[0] = 5
	u.View[15] = 6
	u.Proj[0] = 7
	u.Proj[15] = 8

	buf := u.Marshal()
	require.Len(t, buf, GPUCameraUniformSize)

	assert.Equal(t, float32(1), readFloat(buf, 0))
	assert.Equal(t, float32(3), readFloat(buf, 8))
	assert.Equal(t, float32(1), readFloat(buf, 12))
	assert.Equal(t, float32(5), readFloat(buf, 16))
	assert.Equal(t, float32(6), readFloat(buf, 16+15*4))
	assert.Equal(t, float32(7), readFloat(buf, 80))
	assert.Equal(t, float32(8), readFloat(buf, 140))
}

func TestGPUCameraUniformUpdates(t *testing.T) {
	cam := NewCamera(WithPosition(1, 2, 3))
	u := NewGPUCameraUniform()

	u.UpdateView(cam)
	assert.Equal(t, [4]float32{1, 2, 3, 1}, u.ViewPosition)
	assert.Equal(t, [16]float32(cam.CalcView()), u.View)

	u.UpdateProj(cam, 800, 600)
	assert.Equal(t, [16]float32(cam.CalcProj(800, 600)), u.Proj)
}

func TestGPUCameraUniformSourceMatchesLayout(t *testing.T) {
	src := GPUCameraUniformSource
	assert.Contains(t, src, "struct CameraUniform")
	pos := strings.Index(src, "view_position: vec4<f32>")
	view := strings.Index(src, "view: mat4x4<f32>")
	proj := strings.Index(src, "proj: mat4x4<f32>")
	require.True(t, pos >= 0 && view >= 0 && proj >= 0)
	assert.Less(t, pos, view)
	assert.Less(t, view, proj)
}
