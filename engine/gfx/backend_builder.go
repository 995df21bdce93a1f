package gfx

import (
	"github.com/cogentcore/webgpu/wgpu"
)

type backendConfig struct {
	presentMode          PresentMode
	clearColor           wgpu.Color
	forceFallbackAdapter bool
}

// BackendBuilderOption is a functional option for configuring a Backend
// during creation.
type BackendBuilderOption func(*backendConfig)

// WithPresentMode sets the presentation mode for the backend's surface.
//
// Parameters:
//   - mode: the PresentMode to use (default PresentModeVSync)
//
// Returns:
//   - BackendBuilderOption: the option to pass to NewBackend
func WithPresentMode(mode PresentMode) BackendBuilderOption {
	return func(cfg *backendConfig) {
		cfg.presentMode = mode
	}
}

// WithClearColor sets the color the surface is cleared to at the start of
// every frame.
//
// Parameters:
//   - r, g, b, a: the clear color components in the range [0, 1]
//
// Returns:
//   - BackendBuilderOption: the option to pass to NewBackend
func WithClearColor(r, g, b, a float64) BackendBuilderOption {
	return func(cfg *backendConfig) {
		cfg.clearColor = wgpu.Color{R: r, G: g, B: b, A: a}
	}
}

// WithFallbackAdapter forces the backend to request a software fallback
// adapter instead of a hardware one. Mostly useful in CI environments.
//
// Returns:
//   - BackendBuilderOption: the option to pass to NewBackend
func WithFallbackAdapter() BackendBuilderOption {
	return func(cfg *backendConfig) {
		cfg.forceFallbackAdapter = true
	}
}

// NewBackend creates a rendering Backend of the requested type targeting the
// given window surface.
//
// Parameters:
//   - backendType: the BackendType to instantiate
//   - surfaceDescriptor: the platform surface to render into
//   - width: initial surface width in pixels
//   - height: initial surface height in pixels
//   - opts: optional BackendBuilderOption values
//
// Returns:
//   - Backend: the configured backend
func NewBackend(backendType BackendType, surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, opts ...BackendBuilderOption) Backend {
	cfg := backendConfig{
		presentMode: PresentModeVSync,
		clearColor:  wgpu.Color{R: 0.01, G: 0.01, B: 0.02, A: 1.0},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch backendType {
	case BackendTypeWGPU:
		return newWGPUBackend(surfaceDescriptor, width, height, cfg)
	default:
		panic("unsupported backend type")
	}
}
