package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/profiler"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// frameRenderer is the part of renderer.Renderer the frame loop drives.
type frameRenderer interface {
	Resize(width, height int)
	WriteBuffers(writes []bind_group_provider.BufferWrite) error
	BeginFrame() error
	EndFrame() error
	Present()
	Release()
}

// computeDispatcher is the part of renderer.ComputeStage the frame loop drives.
type computeDispatcher interface {
	Resize(width, height uint32) error
	Dispatch() error
	OutputView() *wgpu.TextureView
	Release()
}

// presenter is the part of renderer.PresentStage the frame loop drives.
type presenter interface {
	Rebind(view *wgpu.TextureView) error
	Draw() error
	Release()
}

// engine implements the Engine interface.
// Owns the camera, the controller, the uniform block and both stages. Every method runs on
// the thread that runs the window message loop.
type engine struct {
	window   window.Window
	renderer frameRenderer
	compute  computeDispatcher
	present  presenter

	camera     camera.Camera
	controller camera.CameraController
	uniform    *camera.GPUCameraUniform

	computeOptions []renderer.ComputeStageOption
	presentOptions []renderer.PresentStageOption

	profiler         *profiler.Profiler
	profilingEnabled bool
	profilerInterval time.Duration

	frame frameTracker

	// width and height are the size the stages were last built for; minimized is set while
	// the framebuffer has a zero dimension and frames are skipped.
	width, height uint32
	minimized     bool

	lastFrame time.Time
	now       func() time.Time

	// fatal ends Run once the current callback returns.
	fatal error
}

// Engine runs the ray-tracing viewer: each frame it moves the camera, uploads the camera
// uniform, dispatches the compute kernel and presents its image.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Camera returns the camera being driven.
	Camera() camera.Camera

	// Controller returns the controller translating input into camera motion.
	Controller() camera.CameraController

	// State returns the current frame step. Between frames it is always FrameIdle.
	State() FrameState

	// Frame runs one complete frame: camera update, uniform upload, compute dispatch, present.
	// Surface loss or an outdated surface reconfigures the surface and retries once; a timeout
	// or an unclassified acquisition failure skips the frame.
	//
	// Parameters:
	//   - dt: time elapsed since the previous frame
	//
	// Returns:
	//   - error: on out-of-memory acquisition or a failed submission
	Frame(dt time.Duration) error

	// Resize rebuilds the surface, the projection, the storage image and the present binding
	// for a new framebuffer size. A zero width or height is ignored.
	//
	// Parameters:
	//   - width, height: framebuffer size in pixels
	//
	// Returns:
	//   - error: if the storage image or present binding cannot be rebuilt
	Resize(width, height int) error

	// Run drives frames from the window message loop until the window closes or a frame
	// fails fatally.
	//
	// Returns:
	//   - error: the fatal error that ended the loop, or nil on a normal close
	Run() error

	// Release releases the stages, the camera uniform buffer and the renderer. The engine owns
	// the renderer once NewEngine succeeds.
	Release()
}

var _ Engine = &engine{}

// NewEngine builds the camera, the controller, the compute and present stages, sizes them to
// the window and wires window input to the controller.
//
// Parameters:
//   - win: the window frames are presented to
//   - r: a Renderer created for win
//   - options: functional options for the camera, controller, stages and profiling
//
// Returns:
//   - Engine: the ready engine
//   - error: if a stage cannot be built; r is left for the caller to release
func NewEngine(win window.Window, r renderer.Renderer, options ...EngineBuilderOption) (Engine, error) {
	e := newEngine(win, r, options...)

	compute, err := renderer.NewComputeStage(r, e.camera.BindGroupProvider(), e.computeOptions...)
	if err != nil {
		return nil, fmt.Errorf("compute stage: %w", err)
	}
	e.compute = compute

	present, err := renderer.NewPresentStage(r, e.presentOptions...)
	if err != nil {
		e.releaseStages()
		return nil, fmt.Errorf("present stage: %w", err)
	}
	e.present = present

	if err := e.start(); err != nil {
		e.releaseStages()
		return nil, err
	}
	return e, nil
}

// newEngine applies defaults and options without building any GPU resources.
func newEngine(win window.Window, r frameRenderer, options ...EngineBuilderOption) *engine {
	e := &engine{
		window:           win,
		renderer:         r,
		uniform:          camera.NewGPUCameraUniform(),
		profilerInterval: time.Second,
		now:              time.Now,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	if e.controller == nil {
		e.controller = camera.NewCameraController()
	}
	if e.profilingEnabled {
		e.profiler = profiler.NewProfiler(e.profilerInterval)
	}
	e.uniform.UpdateView(e.camera)
	return e
}

// start sizes everything to the window and attaches the input callbacks.
func (e *engine) start() error {
	w, h := e.window.Width(), e.window.Height()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("window has no drawable area: %dx%d", w, h)
	}
	if err := e.Resize(w, h); err != nil {
		return err
	}
	e.attachInput()
	return nil
}

func (e *engine) attachInput() {
	e.window.SetKeyCallback(func(keyCode uint32, pressed bool) {
		e.controller.ProcessKeyboard(keyCode, pressed)
	})

	// Right click toggles pointer capture. The controller's last position is reset so the
	// jump into or out of the disabled cursor mode does not turn the camera.
	e.window.SetMouseButtonCallback(func(button uint32, pressed bool) {
		if button != common.MouseButtonRight || !pressed {
			return
		}
		captured := !e.window.PointerCaptured()
		e.window.SetPointerCaptured(captured)
		e.controller.ResetPointer(e.window.CursorPos())
		common.Logger().Debug("pointer capture", slog.Bool("captured", captured))
	})

	e.window.SetCursorPosCallback(func(x, y float64) {
		if e.window.PointerCaptured() {
			e.controller.ProcessMouse(x, y)
		}
	})

	e.window.SetResizeCallback(func(width, height int) {
		if err := e.Resize(width, height); err != nil {
			e.fail(fmt.Errorf("resize: %w", err))
		}
	})
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Controller() camera.CameraController {
	return e.controller
}

func (e *engine) State() FrameState {
	return e.frame.state
}

func (e *engine) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		e.minimized = true
		return nil
	}
	e.minimized = false
	w, h := uint32(width), uint32(height)

	e.renderer.Resize(width, height)
	e.uniform.UpdateProj(e.camera, w, h)
	if err := e.compute.Resize(w, h); err != nil {
		return err
	}
	if err := e.present.Rebind(e.compute.OutputView()); err != nil {
		return err
	}
	e.width, e.height = w, h

	common.Logger().Info("resized", slog.Int("width", width), slog.Int("height", height))
	return nil
}

func (e *engine) Frame(dt time.Duration) error {
	if e.minimized {
		return nil
	}

	e.controller.UpdateCamera(e.camera, dt, e.uniform)
	if err := e.frame.advance(FrameCameraUpdated); err != nil {
		return err
	}

	write := bind_group_provider.WholeBufferWrite(e.camera.BindGroupProvider(), 0, e.uniform.Marshal())
	if err := e.renderer.WriteBuffers([]bind_group_provider.BufferWrite{write}); err != nil {
		e.frame.abandon()
		return fmt.Errorf("upload camera uniform: %w", err)
	}
	if err := e.frame.advance(FrameUniformUploaded); err != nil {
		return err
	}

	if ok, err := e.acquire(); !ok {
		e.frame.abandon()
		return err
	}

	if err := e.compute.Dispatch(); err != nil {
		e.frame.abandon()
		return fmt.Errorf("dispatch: %w", err)
	}
	if err := e.frame.advance(FrameComputeDispatched); err != nil {
		return err
	}

	if err := e.present.Draw(); err != nil {
		e.frame.abandon()
		return fmt.Errorf("present pass: %w", err)
	}
	if err := e.renderer.EndFrame(); err != nil {
		e.frame.abandon()
		return fmt.Errorf("submit: %w", err)
	}
	e.renderer.Present()
	if err := e.frame.advance(FramePresented); err != nil {
		return err
	}

	if e.profiler != nil {
		e.profiler.Tick()
	}
	return e.frame.advance(FrameIdle)
}

// acquire begins the frame on the renderer and applies the surface error policy.
//
// Returns:
//   - bool: true if the frame is open and should be recorded
//   - error: non-nil only when the failure ends the session
func (e *engine) acquire() (bool, error) {
	err := e.renderer.BeginFrame()
	if err != nil && renderer.IsSurfaceRecoverable(err) {
		common.Logger().Info("reconfiguring surface", slog.String("reason", err.Error()))
		e.renderer.Resize(int(e.width), int(e.height))
		err = e.renderer.BeginFrame()
	}
	if err == nil {
		return true, nil
	}

	switch {
	case errors.Is(err, renderer.ErrSurfaceOutOfMemory):
		return false, fmt.Errorf("acquire surface texture: %w", err)
	case errors.Is(err, renderer.ErrSurfaceTimeout):
		common.Logger().Warn("surface timeout, frame skipped")
	default:
		common.Logger().Error("surface acquisition failed, frame skipped", slog.String("error", err.Error()))
	}
	return false, nil
}

func (e *engine) Run() error {
	e.lastFrame = e.now()
	e.window.SetUpdateCallback(func() {
		now := e.now()
		dt := now.Sub(e.lastFrame)
		e.lastFrame = now
		if err := e.Frame(dt); err != nil {
			e.fail(err)
		}
	})

	common.Logger().Info("frame loop started")
	e.window.ProcessMessages()
	common.Logger().Info("frame loop stopped")
	return e.fatal
}

// fail records the first fatal error and asks the window to close.
func (e *engine) fail(err error) {
	if e.fatal == nil {
		e.fatal = err
	}
	e.window.RequestClose()
}

func (e *engine) Release() {
	e.releaseStages()
	if e.renderer != nil {
		e.renderer.Release()
		e.renderer = nil
	}
}

// releaseStages releases everything the engine created, leaving the renderer alive.
func (e *engine) releaseStages() {
	if e.present != nil {
		e.present.Release()
		e.present = nil
	}
	if e.compute != nil {
		e.compute.Release()
		e.compute = nil
	}
	if e.camera != nil {
		e.camera.BindGroupProvider().Release()
	}
}
