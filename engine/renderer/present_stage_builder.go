package renderer

import "github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"

// PresentStageOption is a functional option applied to a present stage during construction via NewPresentStage.
type PresentStageOption func(*presentStage)

// WithPresentShaders replaces the embedded full-screen shaders. The fragment shader must
// declare a sampler at group 0 binding 0 and a texture_2d<f32> at binding 1. A nil shader keeps
// the embedded one for that stage.
//
// Parameters:
//   - vertex: a vertex shader drawing a full-screen triangle from the vertex index
//   - fragment: a fragment shader sampling the frame
//
// Returns:
//   - PresentStageOption: a function that sets both shaders
func WithPresentShaders(vertex, fragment shader.Shader) PresentStageOption {
	return func(p *presentStage) {
		p.vertexShader = vertex
		p.fragmentShader = fragment
	}
}

// WithPresentValidation compiles both shaders with naga before the pipeline is created.
func WithPresentValidation(validate bool) PresentStageOption {
	return func(p *presentStage) {
		p.validate = validate
	}
}
