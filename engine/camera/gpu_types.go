package camera

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-rt/common"
)

// GPUCameraUniformSource is the WGSL definition of the CameraUniform struct.
// It is spliced into shaders by the `//@oxy:include camera` directive.
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniformSize is the byte size of the CameraUniform block.
const GPUCameraUniformSize = 144

// GPUCameraUniform is the CPU copy of the camera uniform read by the compute kernel.
// Matches the WGSL CameraUniform struct exactly (see GPUCameraUniformSource), 144 bytes, no padding.
type GPUCameraUniform struct {
	ViewPosition [4]float32  // offset   0: camera position, w = 1 (vec4<f32>)
	View         [16]float32 // offset  16: inverse look-at times clip correction (mat4x4<f32>)
	Proj         [16]float32 // offset  80: inverse perspective (mat4x4<f32>)
}

// NewGPUCameraUniform returns a uniform with identity matrices and a zero position.
//
// Returns:
//   - *GPUCameraUniform: the new uniform block
func NewGPUCameraUniform() *GPUCameraUniform {
	u := &GPUCameraUniform{}
	common.Identity(u.View[:])
	common.Identity(u.Proj[:])
	return u
}

// UpdateView copies the camera position and recomputes the view matrix.
//
// Parameters:
//   - cam: the camera to read
func (g *GPUCameraUniform) UpdateView(cam Camera) {
	p := cam.Position()
	g.ViewPosition = [4]float32{p[0], p[1], p[2], 1}
	g.View = cam.CalcView()
}

// UpdateProj recomputes the projection matrix for a surface size.
//
// Parameters:
//   - cam: the camera to read
//   - width, height: surface size in pixels, both non-zero
func (g *GPUCameraUniform) UpdateProj(cam Camera, width, height uint32) {
	g.Proj = cam.CalcProj(width, height)
}

// Size returns the size of the uniform block in bytes.
//
// Returns:
//   - int: 144
func (g *GPUCameraUniform) Size() int {
	return GPUCameraUniformSize
}

// Marshal serializes the uniform into little-endian bytes for a single buffer write.
//
// Returns:
//   - []byte: the serialized block
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, GPUCameraUniformSize)
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewPosition[i]))
	}
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.View[i]))
	}
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[80+i*4:], math.Float32bits(g.Proj[i]))
	}
	return buf
}
