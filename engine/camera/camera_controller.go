package camera

import "time"

// Pitch limits in degrees applied to the per-frame pitch. The range is asymmetric:
// the camera can tilt past vertical in one direction only.
const (
	MinPitch float32 = -90
	MaxPitch float32 = 180
)

// CameraController turns key and pointer events into per-frame camera motion.
// Key state is binary (held or not); pointer movement is stored as the delta between the
// last two samples and consumed by the next UpdateCamera.
type CameraController interface {
	// ProcessKeyboard records a key press or release.
	// W/Up, S/Down, A/Left, D/Right move along the view plane, Space moves up and Left Shift down.
	//
	// Parameters:
	//   - key: GLFW key code (see common.Key*)
	//   - pressed: true on press or repeat, false on release
	//
	// Returns:
	//   - bool: true if the key is bound to a motion, false if it was ignored
	ProcessKeyboard(key uint32, pressed bool) bool

	// ProcessMouse stores the delta between the pointer position and the last seen position,
	// then remembers the new position. Only called while the pointer is captured.
	//
	// Parameters:
	//   - x, y: pointer position in window coordinates
	ProcessMouse(x, y float64)

	// ResetPointer sets the last seen pointer position without producing a delta.
	//
	// Parameters:
	//   - x, y: pointer position in window coordinates
	ResetPointer(x, y float64)

	// UpdateCamera integrates dt into the camera: translates along the current direction and
	// its right vector, applies this frame's yaw and pitch, then refreshes the view half of the
	// uniform. Pointer deltas are cleared whether or not a new sample arrived.
	// Must be called exactly once per frame, before the uniform upload.
	//
	// Parameters:
	//   - cam: the camera to move
	//   - dt: time elapsed since the previous frame
	//   - uniform: uniform block to refresh, may be nil
	UpdateCamera(cam Camera, dt time.Duration, uniform *GPUCameraUniform)

	// Speed returns the translation speed in world units per second.
	Speed() float32

	// Sensitivity returns the rotation in degrees per pointer pixel per second.
	Sensitivity() float32

	// PendingRotation returns the pointer deltas waiting to be consumed.
	//
	// Returns:
	//   - horizontal, vertical: deltas in pixels
	PendingRotation() (horizontal, vertical float32)
}
