package shader

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// entryRegex captures the stage attribute and the function name of an entry point.
	entryRegex = regexp.MustCompile(`(?s)@(compute|vertex|fragment)\b.*?\bfn\s+(\w+)`)

	// workgroupSizeRegex captures 1-3 integer dimensions from @workgroup_size(x[, y[, z]])
	workgroupSizeRegex = regexp.MustCompile(`@workgroup_size\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?(?:,\s*(\d+)\s*)?\)`)

	// bindingRegex captures group, binding, optional address space, variable name and type, e.g.
	// @group(1) @binding(0) var<uniform> camera: CameraUniform;
	bindingRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)

	// structRegex captures a struct name and its body.
	structRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// memberRegex captures the name and type of a struct member, skipping attributes.
	memberRegex = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)$`)
)

// sampledTextureDims maps sampled texture types to their view dimension.
var sampledTextureDims = map[string]wgpu.TextureViewDimension{
	"texture_1d":         wgpu.TextureViewDimension1D,
	"texture_2d":         wgpu.TextureViewDimension2D,
	"texture_2d_array":   wgpu.TextureViewDimension2DArray,
	"texture_3d":         wgpu.TextureViewDimension3D,
	"texture_cube":       wgpu.TextureViewDimensionCube,
	"texture_cube_array": wgpu.TextureViewDimensionCubeArray,
}

// storageTextureDims maps storage texture types to their view dimension.
var storageTextureDims = map[string]wgpu.TextureViewDimension{
	"texture_storage_1d":       wgpu.TextureViewDimension1D,
	"texture_storage_2d":       wgpu.TextureViewDimension2D,
	"texture_storage_2d_array": wgpu.TextureViewDimension2DArray,
	"texture_storage_3d":       wgpu.TextureViewDimension3D,
}

var sampleTypes = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

var storageAccess = map[string]wgpu.StorageTextureAccess{
	"write":      wgpu.StorageTextureAccessWriteOnly,
	"read":       wgpu.StorageTextureAccessReadOnly,
	"read_write": wgpu.StorageTextureAccessReadWrite,
}

// texelFormats lists the storage texel formats the renderer can allocate.
var texelFormats = map[string]wgpu.TextureFormat{
	"rgba8unorm":  wgpu.TextureFormatRGBA8Unorm,
	"rgba8snorm":  wgpu.TextureFormatRGBA8Snorm,
	"rgba16float": wgpu.TextureFormatRGBA16Float,
	"rgba32float": wgpu.TextureFormatRGBA32Float,
	"r32float":    wgpu.TextureFormatR32Float,
	"r32uint":     wgpu.TextureFormatR32Uint,
	"bgra8unorm":  wgpu.TextureFormatBGRA8Unorm,
}

// parseEntryPoint returns the first entry function declared for the given stage, or "".
//
// Parameters:
//   - source: WGSL source
//   - shaderType: the stage to look for
//
// Returns:
//   - string: the function name
func parseEntryPoint(source string, shaderType ShaderType) string {
	for _, m := range entryRegex.FindAllStringSubmatch(stripComments(source), -1) {
		if m[1] == shaderType.String() {
			return m[2]
		}
	}
	return ""
}

// parseWorkgroupSize returns the dimensions of the first @workgroup_size attribute.
// Omitted dimensions are 1, and so is the whole size when the attribute is missing.
//
// Parameters:
//   - source: WGSL source
//
// Returns:
//   - [3]uint32: the workgroup size as [x, y, z]
func parseWorkgroupSize(source string) [3]uint32 {
	size := [3]uint32{1, 1, 1}
	m := workgroupSizeRegex.FindStringSubmatch(stripComments(source))
	if m == nil {
		return size
	}
	for i := range 3 {
		if m[i+1] == "" {
			continue
		}
		if v, err := strconv.ParseUint(m[i+1], 10, 32); err == nil && v > 0 {
			size[i] = uint32(v)
		}
	}
	return size
}

// parseBindGroupLayouts reflects every @group/@binding declaration into layout descriptors.
// Buffer entries get MinBindingSize from the WGSL layout of the bound type when it is known.
//
// Parameters:
//   - source: WGSL source
//   - visibility: stage flag applied to every entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group, entries sorted by binding
//   - map[int]map[int]string: variable names keyed by group then binding
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	cleaned := stripComments(source)
	sizes := structLayouts(parseStructs(cleaned))

	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)
	for _, m := range bindingRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		space := strings.TrimSpace(m[3])
		typeName := strings.TrimSpace(m[5])

		entry := bindingEntry(uint32(binding), visibility, space, typeName)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if l, ok := typeLayout(typeName, sizes); ok {
				entry.Buffer.MinBindingSize = l.size
			}
		}
		entries[group] = append(entries[group], entry)

		if names[group] == nil {
			names[group] = make(map[int]string)
		}
		names[group][binding] = m[4]
	}

	out := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for group, list := range entries {
		slices.SortFunc(list, func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		out[group] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return out, names
}

// bindingEntry classifies one declaration: an address space means a buffer, otherwise the
// type decides between sampler, sampled texture and storage texture.
func bindingEntry(binding uint32, visibility wgpu.ShaderStage, space, typeName string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}

	switch {
	case space == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(space, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.Contains(space, "read_write") {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case typeName == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(typeName, "texture_storage_"):
		base, params := splitTypeParams(typeName)
		entry.StorageTexture.ViewDimension = storageTextureDims[base]
		format, access, _ := strings.Cut(params, ",")
		entry.StorageTexture.Format = texelFormats[strings.TrimSpace(format)]
		entry.StorageTexture.Access = storageAccess[strings.TrimSpace(access)]
	case strings.HasPrefix(typeName, "texture_depth_"):
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		entry.Texture.ViewDimension = sampledTextureDims["texture_"+strings.TrimPrefix(typeName, "texture_depth_")]
	case strings.HasPrefix(typeName, "texture_multisampled_2d"):
		_, param := splitTypeParams(typeName)
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		entry.Texture.SampleType = sampleTypes[param]
		entry.Texture.Multisampled = true
	case strings.HasPrefix(typeName, "texture_"):
		base, param := splitTypeParams(typeName)
		entry.Texture.ViewDimension = sampledTextureDims[base]
		entry.Texture.SampleType = sampleTypes[param]
	}
	return entry
}

// splitTypeParams splits "texture_2d<f32>" into ("texture_2d", "f32").
func splitTypeParams(typeName string) (string, string) {
	base, rest, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return strings.TrimSpace(base), strings.TrimSpace(strings.TrimSuffix(rest, ">"))
}

// stripComments removes line comments and (nested) block comments.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case source[i] == '/' && source[i+1] == '/' && depth == 0:
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
