package shader

import (
	"strconv"
	"strings"
)

// wgslLayout is the byte size and alignment of a WGSL type in host-shareable memory.
type wgslLayout struct {
	size  uint64
	align uint64
}

// wgslStruct is a struct declaration reduced to its member types in order.
type wgslStruct struct {
	name    string
	members []string
}

// primitiveLayouts holds size and alignment of scalar, vector and matrix types.
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var primitiveLayouts = map[string]wgslLayout{
	"f32": {4, 4}, "i32": {4, 4}, "u32": {4, 4}, "f16": {2, 2},
	"atomic<u32>": {4, 4}, "atomic<i32>": {4, 4},

	"vec2<f32>": {8, 8}, "vec2f": {8, 8}, "vec2<i32>": {8, 8}, "vec2i": {8, 8}, "vec2<u32>": {8, 8}, "vec2u": {8, 8},
	"vec3<f32>": {12, 16}, "vec3f": {12, 16}, "vec3<i32>": {12, 16}, "vec3i": {12, 16}, "vec3<u32>": {12, 16}, "vec3u": {12, 16},
	"vec4<f32>": {16, 16}, "vec4f": {16, 16}, "vec4<i32>": {16, 16}, "vec4i": {16, 16}, "vec4<u32>": {16, 16}, "vec4u": {16, 16},

	"mat2x2<f32>": {16, 8}, "mat2x2f": {16, 8},
	"mat3x3<f32>": {48, 16}, "mat3x3f": {48, 16},
	"mat4x4<f32>": {64, 16}, "mat4x4f": {64, 16},
	"mat4x3<f32>": {64, 16}, "mat3x4<f32>": {48, 16},
}

func alignUp(align, v uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) / align * align
}

// parseStructs extracts every struct declaration from comment-free source.
func parseStructs(source string) []wgslStruct {
	var out []wgslStruct
	for _, m := range structRegex.FindAllStringSubmatch(source, -1) {
		s := wgslStruct{name: m[1]}
		for _, member := range splitTopLevel(m[2]) {
			mm := memberRegex.FindStringSubmatch(strings.TrimSpace(member))
			if mm == nil || strings.Contains(member, "@builtin") {
				continue
			}
			s.members = append(s.members, strings.TrimSpace(mm[2]))
		}
		out = append(out, s)
	}
	return out
}

// structLayouts resolves struct layouts, repeating until no struct that depends on another
// struct can be resolved further.
func structLayouts(structs []wgslStruct) map[string]wgslLayout {
	known := make(map[string]wgslLayout, len(structs))
	pending := structs
	for len(pending) > 0 {
		var next []wgslStruct
		for _, s := range pending {
			if l, ok := structLayout(s, known); ok {
				known[s.name] = l
			} else {
				next = append(next, s)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return known
}

// structLayout places each member at its aligned offset and rounds the total up to the
// largest member alignment. A trailing runtime-sized array contributes nothing.
func structLayout(s wgslStruct, known map[string]wgslLayout) (wgslLayout, bool) {
	var offset uint64
	maxAlign := uint64(1)
	for i, member := range s.members {
		if i == len(s.members)-1 && isRuntimeArray(member) {
			break
		}
		l, ok := typeLayout(member, known)
		if !ok {
			return wgslLayout{}, false
		}
		offset = alignUp(l.align, offset) + l.size
		maxAlign = max(maxAlign, l.align)
	}
	return wgslLayout{alignUp(maxAlign, offset), maxAlign}, true
}

// typeLayout resolves primitives, known structs and arrays. A runtime-sized array
// resolves to a single element stride.
func typeLayout(typeName string, known map[string]wgslLayout) (wgslLayout, bool) {
	if l, ok := primitiveLayouts[typeName]; ok {
		return l, true
	}
	if l, ok := known[typeName]; ok {
		return l, true
	}
	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return wgslLayout{}, false
	}
	elemType, count, sized := strings.Cut(strings.TrimSuffix(inner, ">"), ",")
	elem, ok := typeLayout(strings.TrimSpace(elemType), known)
	if !ok {
		return wgslLayout{}, false
	}
	stride := alignUp(elem.align, elem.size)
	if !sized {
		return wgslLayout{stride, elem.align}, true
	}
	n, err := strconv.ParseUint(strings.TrimSpace(count), 10, 64)
	if err != nil {
		return wgslLayout{}, false
	}
	return wgslLayout{n * stride, elem.align}, true
}

func isRuntimeArray(typeName string) bool {
	return strings.HasPrefix(typeName, "array<") && len(splitTopLevel(typeName[6:len(typeName)-1])) == 1
}

// splitTopLevel splits on commas outside angle brackets, so array<T, N> stays whole.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
