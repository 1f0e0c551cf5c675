// Package common contains plain types and helpers shared by the engine packages.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero fields fall back to the renderer's defaults (clamp-to-edge, nearest filtering).
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the level of detail range.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy is the anisotropic filtering clamp; 0 means 1.
	MaxAnisotropy uint16
}

// StorageTextureStagingData describes a 2D texture the compute kernel writes into.
type StorageTextureStagingData struct {
	// Width and Height are the texture size in pixels.
	Width, Height uint32
	// Format is the texel format. Zero means RGBA8Unorm.
	Format wgpu.TextureFormat
	// Usage is the texture usage. Zero means storage binding, texture binding and copy destination.
	Usage wgpu.TextureUsage
}
