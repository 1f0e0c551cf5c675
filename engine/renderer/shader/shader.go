package shader

import (
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader module feeds.
type ShaderType int

const (
	// ShaderTypeCompute indicates a shader containing a @compute entry point.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeVertex is the vertex stage of a render pipeline.
	ShaderTypeVertex

	// ShaderTypeFragment is the fragment stage of a render pipeline.
	ShaderTypeFragment
)

// String returns the WGSL attribute name of the stage.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeCompute:
		return "compute"
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// visibility maps the stage to the wgpu visibility flag given to every binding it declares.
func (t ShaderType) visibility() wgpu.ShaderStage {
	switch t {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	case ShaderTypeCompute:
		return wgpu.ShaderStageCompute
	default:
		return wgpu.ShaderStageNone
	}
}

// shader is the implementation of the Shader interface.
type shader struct {
	key           string
	source        string
	shaderType    ShaderType
	layouts       map[int]wgpu.BindGroupLayoutDescriptor
	varNames      map[int]map[int]string
	workgroupSize [3]uint32
	entryPoint    string
	module        *wgpu.ShaderModuleDescriptor
}

// Shader is a pre-processed WGSL module plus the metadata reflected from its source:
// entry point, workgroup size and one bind group layout descriptor per @group index.
type Shader interface {
	// Key returns the unique identifier for this shader, used as the module label.
	Key() string

	// Source returns the pre-processed WGSL source.
	Source() string

	// ShaderType returns the stage this shader feeds.
	ShaderType() ShaderType

	// EntryPoint returns the name of the stage's entry function, or "" if none was found.
	EntryPoint() string

	// WorkgroupSize returns the @workgroup_size of a compute shader.
	// Omitted dimensions are 1; non-compute shaders return [0, 0, 0].
	//
	// Returns:
	//   - [3]uint32: the workgroup size as [x, y, z]
	WorkgroupSize() [3]uint32

	// BindGroupLayoutDescriptor returns the reflected layout of one group, or an empty descriptor.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: entries sorted by binding index
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every reflected layout keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// OverrideBindingLayout replaces the reflected layout entry of one binding. WGSL cannot
	// express some layout properties (non-filtering samplers, unfilterable float textures),
	// so callers patch them before the pipeline is created.
	//
	// Parameters:
	//   - group: the @group index
	//   - entry: the replacement entry; its Binding selects the entry to replace
	//
	// Returns:
	//   - error: if the group or binding was not declared by the shader
	OverrideBindingLayout(group int, entry wgpu.BindGroupLayoutEntry) error

	// BindGroupVarName returns the WGSL variable bound at a group and binding, or "".
	BindGroupVarName(group, binding int) string

	// Module returns the descriptor used to create the GPU shader module.
	Module() *wgpu.ShaderModuleDescriptor

	// Validate compiles the source with naga and reports the first error.
	//
	// Returns:
	//   - error: the compilation error, or nil when the module is valid
	Validate() error
}

var _ Shader = &shader{}

// NewShader pre-processes WGSL source and reflects its metadata.
// Panics if the source is empty or the pre-processor rejects a directive.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and labels
//   - shaderType: the stage the shader feeds
//   - source: raw WGSL source, possibly containing //@oxy: directives
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, source string) Shader {
	if source == "" {
		panic(fmt.Sprintf("shader: %s has no source", key))
	}
	processed, err := NewPreProcessor().Process(source)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to pre-process %s: %v", key, err))
	}

	s := &shader{
		key:        key,
		source:     processed,
		shaderType: shaderType,
		entryPoint: parseEntryPoint(processed, shaderType),
		module: &wgpu.ShaderModuleDescriptor{
			Label:          key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: processed},
		},
	}
	if shaderType == ShaderTypeCompute {
		s.workgroupSize = parseWorkgroupSize(processed)
	}
	s.layouts, s.varNames = parseBindGroupLayouts(processed, shaderType.visibility())
	return s
}

// NewShaderFromPath reads WGSL source from disk and calls NewShader.
// Panics if the file cannot be read.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the shader feeds
//   - path: the file path to read WGSL source from
//
// Returns:
//   - Shader: the parsed shader
func NewShaderFromPath(key string, shaderType ShaderType, path string) Shader {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read source file %q: %v", path, err))
	}
	return NewShader(key, shaderType, string(data))
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) WorkgroupSize() [3]uint32 {
	return s.workgroupSize
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.layouts[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.layouts
}

func (s *shader) OverrideBindingLayout(group int, entry wgpu.BindGroupLayoutEntry) error {
	desc, ok := s.layouts[group]
	if !ok {
		return fmt.Errorf("shader %s: group %d is not declared", s.key, group)
	}
	for i := range desc.Entries {
		if desc.Entries[i].Binding == entry.Binding {
			desc.Entries[i] = entry
			return nil
		}
	}
	return fmt.Errorf("shader %s: group %d has no binding %d", s.key, group, entry.Binding)
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.varNames[group][binding]
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
