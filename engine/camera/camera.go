package camera

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// cameraCount is an atomic counter used to generate unique bind group provider names for each camera instance.
var cameraCount atomic.Uint64

// WorldUp is the fixed up vector used for the look-at basis and for yaw rotation.
var WorldUp = mgl32.Vec3{0, 1, 0}

type cameraImpl struct {
	position  mgl32.Vec3
	direction mgl32.Vec3

	fov  float32
	near float32
	far  float32

	// yaw and pitch are the rotation applied during the last controller update, in degrees.
	yaw   float32
	pitch float32

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Camera is a free-flying perspective camera described by a position and a unit direction.
// Orientation is never stored as angles: each frame the controller composes the per-frame
// yaw and pitch into the direction vector.
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition moves the camera.
	//
	// Parameters:
	//   - p: the new world-space position
	SetPosition(p mgl32.Vec3)

	// Direction returns the unit forward vector.
	//
	// Returns:
	//   - mgl32.Vec3: the forward vector
	Direction() mgl32.Vec3

	// SetDirection sets the forward vector. The vector is normalized; a zero vector is ignored.
	//
	// Parameters:
	//   - d: the new forward vector
	SetDirection(d mgl32.Vec3)

	// Yaw returns the horizontal rotation applied during the last update, in degrees.
	Yaw() float32

	// Pitch returns the vertical rotation applied during the last update, in degrees.
	Pitch() float32

	// SetYaw records the horizontal rotation for the current frame.
	SetYaw(deg float32)

	// SetPitch records the vertical rotation for the current frame.
	SetPitch(deg float32)

	// Fov returns the vertical field of view in degrees.
	Fov() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// SetFov sets the vertical field of view in degrees.
	SetFov(deg float32)

	// SetNear sets the near clipping plane distance.
	SetNear(near float32)

	// SetFar sets the far clipping plane distance.
	SetFar(far float32)

	// CalcView returns the inverse of the left-handed look-at matrix from the position along the
	// direction, post-multiplied by common.ClipCorrection. The compute kernel uses it to turn
	// view-space rays into world space.
	// Panics if the look-at matrix is singular (direction parallel to the world up vector).
	//
	// Returns:
	//   - mgl32.Mat4: the column-major inverse view matrix
	CalcView() mgl32.Mat4

	// CalcProj returns the inverse of the OpenGL-convention perspective matrix for a surface of
	// the given size. Panics if the projection is singular: near == far, fov <= 0 or a zero
	// dimension. Callers guard against zero sizes.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	//
	// Returns:
	//   - mgl32.Mat4: the column-major inverse projection matrix
	CalcProj(width, height uint32) mgl32.Mat4

	// BindGroupProvider returns the provider holding the camera uniform buffer.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider replaces the camera's bind group provider.
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera at (0, 2, -12) looking down +Z with a 45 degree field of view,
// near plane 1 and far plane 100. Options override any of these.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		position:  mgl32.Vec3{0, 2, -12},
		direction: mgl32.Vec3{0, 0, 1},
		fov:       45,
		near:      1,
		far:       100,
	}
	for _, option := range options {
		option(c)
	}
	if c.bindGroupProvider == nil {
		c.bindGroupProvider = bind_group_provider.NewBindGroupProvider(
			"camera_" + strconv.FormatUint(cameraCount.Add(1)-1, 10),
		)
	}
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	return c.position
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.position = p
}

func (c *cameraImpl) Direction() mgl32.Vec3 {
	return c.direction
}

func (c *cameraImpl) SetDirection(d mgl32.Vec3) {
	if d.Len() == 0 {
		return
	}
	c.direction = d.Normalize()
}

func (c *cameraImpl) Yaw() float32 {
	return c.yaw
}

func (c *cameraImpl) Pitch() float32 {
	return c.pitch
}

func (c *cameraImpl) SetYaw(deg float32) {
	c.yaw = deg
}

func (c *cameraImpl) SetPitch(deg float32) {
	c.pitch = deg
}

func (c *cameraImpl) Fov() float32 {
	return c.fov
}

func (c *cameraImpl) Near() float32 {
	return c.near
}

func (c *cameraImpl) Far() float32 {
	return c.far
}

func (c *cameraImpl) SetFov(deg float32) {
	c.fov = deg
}

func (c *cameraImpl) SetNear(near float32) {
	c.near = near
}

func (c *cameraImpl) SetFar(far float32) {
	c.far = far
}

func (c *cameraImpl) CalcView() mgl32.Mat4 {
	var lookAt [16]float32
	common.LookAtLH(lookAt[:], c.position, c.position.Add(c.direction), WorldUp)

	var view mgl32.Mat4
	if !common.Invert4(view[:], lookAt[:]) {
		panic(fmt.Sprintf("camera: could not invert view matrix (position %v, direction %v)", c.position, c.direction))
	}
	common.Mul4(view[:], view[:], common.ClipCorrection[:])
	return view
}

func (c *cameraImpl) CalcProj(width, height uint32) mgl32.Mat4 {
	if c.fov <= 0 {
		panic(fmt.Sprintf("camera: could not invert projection matrix (fov %v)", c.fov))
	}
	aspect := float32(width) / float32(height)
	proj := mgl32.Perspective(common.DegToRad(c.fov), aspect, c.near, c.far)

	var inv mgl32.Mat4
	if !common.Invert4(inv[:], proj[:]) {
		panic(fmt.Sprintf("camera: could not invert projection matrix (%dx%d, fov %v, near %v, far %v)",
			width, height, c.fov, c.near, c.far))
	}
	return inv
}

func (c *cameraImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return c.bindGroupProvider
}

func (c *cameraImpl) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	c.bindGroupProvider = provider
}
