package camera

import (
	"time"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/go-gl/mathgl/mgl32"
)

// degenerateAxis is the length below which the right vector is treated as zero.
const degenerateAxis = 1e-6

// cameraControllerImpl is the concrete implementation of CameraController.
type cameraControllerImpl struct {
	amountForward  float32
	amountBackward float32
	amountLeft     float32
	amountRight    float32
	amountUp       float32
	amountDown     float32

	rotateHorizontal float32
	rotateVertical   float32

	lastX, lastY float64

	speed       float32
	sensitivity float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a CameraController moving at 10 units per second and turning
// 60 degrees per pixel per second of pointer movement.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the configured controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		speed:       10,
		sensitivity: 60,
	}
	for _, opt := range options {
		opt(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) ProcessKeyboard(key uint32, pressed bool) bool {
	var amount float32
	if pressed {
		amount = 1
	}

	switch key {
	case common.KeyW, common.KeyUp:
		cc.amountForward = amount
	case common.KeyS, common.KeyDown:
		cc.amountBackward = amount
	case common.KeyA, common.KeyLeft:
		cc.amountLeft = amount
	case common.KeyD, common.KeyRight:
		cc.amountRight = amount
	case common.KeySpace:
		cc.amountUp = amount
	case common.KeyLeftShift:
		cc.amountDown = amount
	default:
		return false
	}
	return true
}

func (cc *cameraControllerImpl) ProcessMouse(x, y float64) {
	cc.rotateHorizontal = float32(x - cc.lastX)
	cc.rotateVertical = float32(y - cc.lastY)
	cc.lastX, cc.lastY = x, y
}

func (cc *cameraControllerImpl) ResetPointer(x, y float64) {
	cc.lastX, cc.lastY = x, y
	cc.rotateHorizontal, cc.rotateVertical = 0, 0
}

func (cc *cameraControllerImpl) UpdateCamera(cam Camera, dt time.Duration, uniform *GPUCameraUniform) {
	secs := float32(dt.Seconds())

	forward := cam.Direction()
	right := WorldUp.Cross(forward)

	pos := cam.Position()
	pos = pos.Add(forward.Mul((cc.amountForward - cc.amountBackward) * cc.speed * secs))
	pos = pos.Add(right.Mul((cc.amountRight - cc.amountLeft) * cc.speed * secs))
	pos[1] += (cc.amountUp - cc.amountDown) * cc.speed * secs
	cam.SetPosition(pos)

	yaw := cc.rotateHorizontal * cc.sensitivity * secs
	pitch := cc.rotateVertical * cc.sensitivity * secs
	cc.rotateHorizontal, cc.rotateVertical = 0, 0
	pitch = mgl32.Clamp(pitch, MinPitch, MaxPitch)
	cam.SetYaw(yaw)
	cam.SetPitch(pitch)

	dir := forward
	if right.Len() > degenerateAxis {
		dir = mgl32.QuatRotate(common.DegToRad(pitch), right.Normalize()).Rotate(dir)
	}
	dir = mgl32.QuatRotate(common.DegToRad(yaw), WorldUp).Rotate(dir)
	cam.SetDirection(dir)

	if uniform != nil {
		uniform.UpdateView(cam)
	}
}

func (cc *cameraControllerImpl) Speed() float32 {
	return cc.speed
}

func (cc *cameraControllerImpl) Sensitivity() float32 {
	return cc.sensitivity
}

func (cc *cameraControllerImpl) PendingRotation() (horizontal, vertical float32) {
	return cc.rotateHorizontal, cc.rotateVertical
}
