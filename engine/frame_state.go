package engine

import (
	"errors"
	"fmt"
)

// FrameState is a step of the per-frame sequence. A frame walks
// Idle -> CameraUpdated -> UniformUploaded -> ComputeDispatched -> Presented -> Idle.
type FrameState int

const (
	FrameIdle FrameState = iota
	FrameCameraUpdated
	FrameUniformUploaded
	FrameComputeDispatched
	FramePresented
)

// ErrFrameOrder is returned when a frame step is attempted out of sequence.
var ErrFrameOrder = errors.New("frame step out of order")

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "Idle"
	case FrameCameraUpdated:
		return "CameraUpdated"
	case FrameUniformUploaded:
		return "UniformUploaded"
	case FrameComputeDispatched:
		return "ComputeDispatched"
	case FramePresented:
		return "Presented"
	default:
		return fmt.Sprintf("FrameState(%d)", int(s))
	}
}

// next returns the only state reachable from s.
func (s FrameState) next() FrameState {
	if s == FramePresented {
		return FrameIdle
	}
	return s + 1
}

// frameTracker enforces the step order of a frame.
type frameTracker struct {
	state FrameState
}

// advance moves to the given state if it directly follows the current one.
//
// Parameters:
//   - to: the state being entered
//
// Returns:
//   - error: wraps ErrFrameOrder if the step is out of sequence
func (t *frameTracker) advance(to FrameState) error {
	if t.state.next() != to {
		return fmt.Errorf("%w: %s -> %s", ErrFrameOrder, t.state, to)
	}
	t.state = to
	return nil
}

// abandon drops a partially built frame. Skipped frames return to Idle this way.
func (t *frameTracker) abandon() {
	t.state = FrameIdle
}
