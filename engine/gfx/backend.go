// Package gfx is the GPU resource binding layer: compiled shader stages,
// linked programs, data buffers, attribute layouts, and the composite vertex
// array state consumed by instanced draw calls. All GPU access goes through
// an explicit Context that owns a Backend; no package-level device state
// exists, so multiple contexts (e.g. one per test) can coexist.
package gfx

import "github.com/cogentcore/webgpu/wgpu"

// BackendType identifies the GPU backend implementation used by a Context.
type BackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based backend.
	BackendTypeWGPU BackendType = iota
)

// StageKind identifies a shader stage.
type StageKind int

const (
	// StageVertex is the vertex shader stage.
	StageVertex StageKind = iota

	// StageFragment is the fragment shader stage.
	StageFragment
)

// String returns the lowercase stage name for diagnostics.
func (k StageKind) String() string {
	switch k {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// BufferTarget identifies the usage a Buffer is bound to.
type BufferTarget int

const (
	// TargetVertex marks a buffer as a vertex attribute source.
	TargetVertex BufferTarget = iota

	// TargetIndex marks a buffer as an index source for indexed draws.
	TargetIndex

	// TargetUniform marks a buffer as uniform storage.
	TargetUniform
)

// String returns the lowercase target name for diagnostics.
func (t BufferTarget) String() string {
	switch t {
	case TargetVertex:
		return "vertex"
	case TargetIndex:
		return "index"
	case TargetUniform:
		return "uniform"
	default:
		return "unknown"
	}
}

// IndexFormat identifies the element width of an index buffer.
type IndexFormat int

const (
	// IndexFormatUint16 interprets index data as unsigned 16-bit values.
	IndexFormatUint16 IndexFormat = iota

	// IndexFormatUint32 interprets index data as unsigned 32-bit values.
	IndexFormatUint32
)

// StageModule pairs a compiled stage handle with the metadata LinkProgram
// needs to wire it into a pipeline.
type StageModule struct {
	// Kind is the stage this module was compiled for.
	Kind StageKind
	// Module is the backend-specific compiled module handle.
	Module any
	// EntryPoint is the stage's entry function name parsed from the source.
	EntryPoint string
}

// UniformKey addresses a single uniform buffer binding within a linked
// program, the WebGPU analogue of a uniform location.
type UniformKey struct {
	// Group is the bind group index.
	Group int
	// Binding is the binding index within the group.
	Binding int
}

// UniformSpec describes one uniform buffer binding a program declares.
type UniformSpec struct {
	// Key addresses the binding.
	Key UniformKey
	// Size is the byte size of the bound type.
	Size uint64
}

// ProgramDescriptor carries everything a Backend needs to link compiled
// stages into an executable pipeline.
type ProgramDescriptor struct {
	// Label identifies the program in captures and error messages.
	Label string
	// Stages are the compiled stage modules, at minimum vertex and fragment.
	Stages []StageModule
	// VertexLayouts are the per-buffer vertex layouts, in binding-slot order.
	VertexLayouts []wgpu.VertexBufferLayout
	// Uniforms are the uniform buffer bindings declared by the stages.
	Uniforms []UniformSpec
}

// LinkedProgram is the backend-side result of a successful link: an opaque
// pipeline handle plus the uniform buffers and bind groups created for it.
type LinkedProgram struct {
	// Pipeline is the backend-specific pipeline handle.
	Pipeline any
	// UniformBuffers maps each uniform binding to its backing buffer handle.
	UniformBuffers map[UniformKey]any
	// BindGroups maps each bind group index to its bind group handle,
	// in the form the backend's BindPipeline expects.
	BindGroups map[int]any
}

// Backend is the device seam for one rendering context. The wgpu
// implementation drives a real device; tests substitute a recording fake.
// Handles are opaque `any` values owned by the backend that created them.
//
// All methods must be called from the thread that owns the context; the
// backend performs no locking of its own.
type Backend interface {
	// CompileShader compiles one stage from source text.
	//
	// Parameters:
	//   - label: a diagnostic label for the module
	//   - kind: the stage being compiled
	//   - source: the shader source text
	//
	// Returns:
	//   - any: the compiled module handle, nil on failure
	//   - error: the compiler diagnostic if the source was rejected
	CompileShader(label string, kind StageKind, source string) (any, error)

	// LinkProgram links compiled stages into an executable pipeline and
	// allocates the uniform buffers and bind groups the descriptor declares.
	//
	// Parameters:
	//   - desc: the program descriptor
	//
	// Returns:
	//   - *LinkedProgram: the linked result, nil on failure
	//   - error: the device diagnostic if the stage combination was rejected
	LinkProgram(desc ProgramDescriptor) (*LinkedProgram, error)

	// CreateBuffer allocates a GPU buffer bound to the given target.
	//
	// Parameters:
	//   - label: a diagnostic label for the buffer
	//   - target: the buffer's usage target
	//   - size: the initial allocation size in bytes (0 is valid)
	//
	// Returns:
	//   - any: the buffer handle, nil on failure
	//   - error: the device error if allocation was refused
	CreateBuffer(label string, target BufferTarget, size int) (any, error)

	// WriteBuffer replaces buffer contents starting at offset. The write is
	// submitted immediately; data must fit within the buffer's allocation.
	//
	// Parameters:
	//   - handle: the buffer handle
	//   - offset: byte offset into the buffer
	//   - data: the bytes to upload
	WriteBuffer(handle any, offset int, data []byte)

	// DestroyBuffer releases a buffer allocation. Safe to call with nil.
	//
	// Parameters:
	//   - handle: the buffer handle to release
	DestroyBuffer(handle any)

	// ConfigureSurface resizes the backend's render surface and depth
	// attachment. No-op for backends without a surface.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	ConfigureSurface(width, height int)

	// BeginFrame acquires the next render target and opens the frame's
	// render pass. Must be paired with EndFrame.
	//
	// Returns:
	//   - error: an error if the render target could not be acquired
	BeginFrame() error

	// EndFrame closes the frame's render pass and submits the recorded
	// commands to the device queue.
	EndFrame()

	// Present presents the finished frame to the display surface.
	// No-op for backends without a surface.
	Present()

	// BindPipeline makes the linked program's pipeline and bind groups
	// current for subsequent draws in the open frame.
	//
	// Parameters:
	//   - lp: the linked program to bind
	BindPipeline(lp *LinkedProgram)

	// BindVertexBuffer assigns a buffer to a vertex binding slot.
	//
	// Parameters:
	//   - slot: the vertex buffer slot index
	//   - handle: the buffer handle
	BindVertexBuffer(slot int, handle any)

	// BindIndexBuffer makes a buffer the current index source.
	//
	// Parameters:
	//   - handle: the buffer handle
	//   - format: the index element width
	BindIndexBuffer(handle any, format IndexFormat)

	// DrawIndexed issues one indexed, instanced draw with the currently
	// bound pipeline, vertex buffers, and index buffer.
	//
	// Parameters:
	//   - indexCount: number of indices to draw
	//   - instanceCount: number of instances to draw (0 is a legal no-op draw)
	//   - firstIndex: offset into the index buffer
	//   - baseVertex: value added to each index
	//   - firstInstance: first instance ID
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}
