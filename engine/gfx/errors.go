package gfx

import "fmt"

// ShaderCompileError reports that the underlying compiler rejected the source
// text for one shader stage. The Log field carries the compiler diagnostic.
// No stage handle exists after a compile failure.
type ShaderCompileError struct {
	// Stage is the shader stage that failed to compile.
	Stage StageKind
	// Log is the diagnostic text produced by the compiler.
	Log string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("gfx: %s shader compile failed: %s", e.Stage, e.Log)
}

// ShaderLinkError reports that a set of compiled stages could not be linked
// into an executable program. The program remains unusable until a
// subsequent Link succeeds.
type ShaderLinkError struct {
	// Log is the diagnostic text produced by the device, or a description of
	// the stage/layout mismatch detected before reaching the device.
	Log string
}

func (e *ShaderLinkError) Error() string {
	return fmt.Sprintf("gfx: program link failed: %s", e.Log)
}

// ResourceAllocationError reports that the device refused to allocate a GPU
// resource, e.g. when out of device memory.
type ResourceAllocationError struct {
	// Resource names the resource that failed to allocate.
	Resource string
	// Err is the underlying device error.
	Err error
}

func (e *ResourceAllocationError) Error() string {
	return fmt.Sprintf("gfx: failed to allocate %s: %v", e.Resource, e.Err)
}

func (e *ResourceAllocationError) Unwrap() error {
	return e.Err
}
