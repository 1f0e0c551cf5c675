// pre_processor.go implements the WGSL directive pass. Directives are single-line
// comments starting with //@oxy: and are expanded before the source is reflected.
//
//	//@oxy:include <struct>
//	    splices the WGSL definition of a registered struct (e.g. camera)
//	//@oxy:group <group> <binding> <address_space> <var_name> <struct>
//	    emits `@group(g) @binding(b) var<space> name: Type;` for a registered struct
package shader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
)

const directivePrefix = "//@oxy:"

// registryEntry pairs a WGSL struct definition with its type name.
type registryEntry struct {
	Source string
	Type   string
}

// addressSpaces maps directive address space keys to WGSL var<> syntax.
var addressSpaces = map[string]string{
	"uniform":    "var<uniform>",
	"read":       "var<storage, read>",
	"read_write": "var<storage, read_write>",
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	registry map[string]registryEntry
}

// PreProcessor expands //@oxy: directives in WGSL source.
type PreProcessor interface {
	// Process expands every directive in source. Each struct is spliced at most once
	// even if several directives reference it.
	//
	// Parameters:
	//   - source: raw WGSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: if a directive is malformed or names an unknown struct
	Process(source string) (string, error)

	// Register adds or replaces a struct that directives can reference.
	//
	// Parameters:
	//   - key: the name used in directives
	//   - typeName: the WGSL struct name
	//   - source: the WGSL struct definition
	Register(key, typeName, source string)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor returns a PreProcessor that knows the camera uniform struct.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		registry: map[string]registryEntry{
			"camera": {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
		},
	}
}

func (p *preProcessor) Register(key, typeName, source string) {
	p.registry[key] = registryEntry{Source: source, Type: typeName}
}

func (p *preProcessor) Process(source string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	included := make(map[string]bool)

	include := func(key string) {
		if !included[key] {
			out = append(out, strings.TrimRight(p.registry[key].Source, "\n"))
			included[key] = true
		}
	}

	for i, line := range lines {
		body, ok := strings.CutPrefix(strings.TrimSpace(line), directivePrefix)
		if !ok {
			out = append(out, line)
			continue
		}
		fields := strings.Fields(body)
		if len(fields) == 0 {
			return "", fmt.Errorf("line %d: empty directive", i+1)
		}

		switch fields[0] {
		case "include":
			if len(fields) != 2 {
				return "", fmt.Errorf("line %d: include takes 1 argument, got %d", i+1, len(fields)-1)
			}
			if _, ok := p.registry[fields[1]]; !ok {
				return "", fmt.Errorf("line %d: unknown include %q", i+1, fields[1])
			}
			include(fields[1])
		case "group":
			decl, key, err := p.groupDecl(fields[1:])
			if err != nil {
				return "", fmt.Errorf("line %d: %w", i+1, err)
			}
			include(key)
			out = append(out, decl)
		default:
			return "", fmt.Errorf("line %d: unknown directive %q", i+1, fields[0])
		}
	}
	return strings.Join(out, "\n"), nil
}

// groupDecl builds the declaration for a group directive and returns the struct key it depends on.
func (p *preProcessor) groupDecl(args []string) (string, string, error) {
	if len(args) != 5 {
		return "", "", fmt.Errorf("group takes 5 arguments, got %d", len(args))
	}
	group, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return "", "", fmt.Errorf("bad group index %q", args[0])
	}
	binding, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return "", "", fmt.Errorf("bad binding index %q", args[1])
	}
	space, ok := addressSpaces[args[2]]
	if !ok {
		return "", "", fmt.Errorf("unknown address space %q", args[2])
	}
	entry, ok := p.registry[args[4]]
	if !ok {
		return "", "", fmt.Errorf("unknown struct %q", args[4])
	}
	return fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", group, binding, space, args[3], entry.Type), args[4], nil
}
