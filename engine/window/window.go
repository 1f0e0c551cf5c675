package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
//
// All callbacks run on the thread that calls ProcessMessages.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	// Minimizing reports a zero size.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyCallback sets the callback for key press, repeat and release events. Escape is
	// consumed by the window and closes it.
	//
	// Parameters:
	//   - callback: function receiving the key code and whether it is held
	SetKeyCallback(callback func(keyCode uint32, pressed bool))

	// SetMouseButtonCallback sets the callback for mouse button events.
	//
	// Parameters:
	//   - callback: function receiving the button index and whether it is held
	SetMouseButtonCallback(callback func(button uint32, pressed bool))

	// SetCursorPosCallback sets the callback for pointer movement. While the pointer is
	// captured the position is virtual and unbounded.
	//
	// Parameters:
	//   - callback: function receiving the pointer x, y position
	SetCursorPosCallback(callback func(x, y float64))

	// SetPointerCaptured hides and locks the pointer to the window, or releases it.
	SetPointerCaptured(captured bool)

	// PointerCaptured reports whether the pointer is captured.
	PointerCaptured() bool

	// CursorPos returns the current pointer position.
	CursorPos() (x, y float64)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration.
	RequestClose()

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	title string

	// width and height track the framebuffer, not the window, in pixels
	width  int
	height int

	pointerCaptured bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate      func()
	onResize      func(width, height int)
	onKey         func(keyCode uint32, pressed bool)
	onMouseButton func(button uint32, pressed bool)
	onCursorPos   func(x, y float64)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a new Window with the specified options.
// Applies default values first, then each option in order.
// Panics if the platform window cannot be created.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
func NewWindow(options ...WindowBuilderOption) Window {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

// newEngineWindow applies defaults and options without touching the platform layer.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:  "oxy-rt",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyCallback(callback func(keyCode uint32, pressed bool)) {
	w.onKey = callback
}

func (w *engineWindow) SetMouseButtonCallback(callback func(button uint32, pressed bool)) {
	w.onMouseButton = callback
}

func (w *engineWindow) SetCursorPosCallback(callback func(x, y float64)) {
	w.onCursorPos = callback
}

func (w *engineWindow) SetPointerCaptured(captured bool) {
	if w.pointerCaptured == captured {
		return
	}
	w.pointerCaptured = captured
	platformSetPointerCaptured(w, captured)
}

func (w *engineWindow) PointerCaptured() bool {
	return w.pointerCaptured
}

func (w *engineWindow) CursorPos() (float64, float64) {
	return platformCursorPos(w)
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// The emit* methods translate platform events into callbacks.

func (w *engineWindow) emitKey(keyCode uint32, pressed bool) {
	if w.onKey != nil {
		w.onKey(keyCode, pressed)
	}
}

func (w *engineWindow) emitMouseButton(button uint32, pressed bool) {
	if w.onMouseButton != nil {
		w.onMouseButton(button, pressed)
	}
}

func (w *engineWindow) emitCursorPos(x, y float64) {
	if w.onCursorPos != nil {
		w.onCursorPos(x, y)
	}
}

func (w *engineWindow) emitResize(width, height int) {
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
