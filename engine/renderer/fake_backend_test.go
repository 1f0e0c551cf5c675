package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

type bindGroupCall struct {
	label      string
	descriptor wgpu.BindGroupLayoutDescriptor
}

type storageTextureCall struct {
	label   string
	binding int
	staging common.StorageTextureStagingData
}

type dispatchCall struct {
	key        string
	groups     []string
	workgroups [3]uint32
}

// fakeBackend records every call and creates no GPU objects.
type fakeBackend struct {
	calls []string

	registered      []string
	bindGroups      []bindGroupCall
	storageTextures []storageTextureCall
	samplers        []common.SamplerStagingData
	writes          []bind_group_provider.BufferWrite
	dispatches      []dispatchCall
	draws           []dispatchCall
	presentMode     PresentMode
	width, height   int

	registerErr error
	beginErrs   []error
}

var _ RendererBackend = &fakeBackend{}

func newFakeRenderer() (*renderer, *fakeBackend) {
	b := &fakeBackend{}
	return &renderer{pipelineCache: make(map[string]pipeline.Pipeline), backend: b}, b
}

func labels(groups []bind_group_provider.BindGroupProvider) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Label()
	}
	return out
}

func (f *fakeBackend) ConfigureSurface(width, height int) {
	f.calls = append(f.calls, "configure")
	f.width, f.height = width, height
}

func (f *fakeBackend) SetPresentMode(mode PresentMode) {
	f.presentMode = mode
}

func (f *fakeBackend) SurfaceFormat() wgpu.TextureFormat {
	return wgpu.TextureFormatBGRA8UnormSrgb
}

func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, p.PipelineKey())
	return nil
}

func (f *fakeBackend) RegisterComputePipeline(p pipeline.Pipeline) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, p.PipelineKey())
	return nil
}

func (f *fakeBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	f.bindGroups = append(f.bindGroups, bindGroupCall{label: provider.Label(), descriptor: descriptor})
	return nil
}

func (f *fakeBackend) InitStorageTexture(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.StorageTextureStagingData) error {
	f.storageTextures = append(f.storageTextures, storageTextureCall{label: provider.Label(), binding: binding, staging: stagingData})
	return nil
}

func (f *fakeBackend) InitSampler(_ bind_group_provider.BindGroupProvider, _ int, stagingData common.SamplerStagingData) error {
	f.samplers = append(f.samplers, stagingData)
	return nil
}

func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	f.writes = append(f.writes, writes...)
	return nil
}

func (f *fakeBackend) BeginFrame() error {
	f.calls = append(f.calls, "begin")
	if len(f.beginErrs) > 0 {
		err := f.beginErrs[0]
		f.beginErrs = f.beginErrs[1:]
		return err
	}
	return nil
}

func (f *fakeBackend) DispatchCompute(p pipeline.Pipeline, groups []bind_group_provider.BindGroupProvider, workgroups [3]uint32) {
	f.calls = append(f.calls, "dispatch")
	f.dispatches = append(f.dispatches, dispatchCall{key: p.PipelineKey(), groups: labels(groups), workgroups: workgroups})
}

func (f *fakeBackend) DrawFullscreen(p pipeline.Pipeline, groups []bind_group_provider.BindGroupProvider) {
	f.calls = append(f.calls, "draw")
	f.draws = append(f.draws, dispatchCall{key: p.PipelineKey(), groups: labels(groups)})
}

func (f *fakeBackend) EndFrame() error {
	f.calls = append(f.calls, "end")
	return nil
}

func (f *fakeBackend) Present() {
	f.calls = append(f.calls, "present")
}

func (f *fakeBackend) Release() {
	f.calls = append(f.calls, "release")
}

var errFakeRegister = errors.New("register failed")
