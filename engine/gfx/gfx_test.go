package gfx_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dmajster/college-project-computer-graphics/common"
	"github.com/Dmajster/college-project-computer-graphics/engine/gfx"
	"github.com/Dmajster/college-project-computer-graphics/engine/gfx/gfxtest"
)

const testVertexSource = `
struct VertexIn {
    @location(0) position: vec3<f32>,
    @location(1) model0: vec4<f32>,
    @location(2) model1: vec4<f32>,
    @location(3) model2: vec4<f32>,
    @location(4) model3: vec4<f32>,
}

@group(0) @binding(0) var<uniform> uViewProjection: mat4x4<f32>;

@vertex
fn vs_main(in: VertexIn) -> @builtin(position) vec4<f32> {
    let model = mat4x4<f32>(in.model0, in.model1, in.model2, in.model3);
    return uViewProjection * model * vec4<f32>(in.position, 1.0);
}
`

const testFragmentSource = `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 1.0, 1.0);
}
`

func newTestContext() (gfx.Context, *gfxtest.RecordingBackend) {
	backend := &gfxtest.RecordingBackend{}
	return gfx.NewContext(backend), backend
}

// instanceLayouts returns the position + per-instance matrix layouts matching
// testVertexSource's five input locations.
func instanceLayouts(t *testing.T) (gfx.AttributeLayout, gfx.AttributeLayout) {
	t.Helper()
	positions := gfx.NewAttributeLayout()
	require.NoError(t, positions.Add(gfx.ComponentFloat32, 3, 0))
	instances := gfx.NewAttributeLayout()
	require.NoError(t, instances.AddMat4())
	return positions, instances
}

func linkTestProgram(t *testing.T, ctx gfx.Context) gfx.Program {
	t.Helper()
	vertex, err := gfx.CompileStage(ctx, gfx.StageVertex, testVertexSource)
	require.NoError(t, err)
	fragment, err := gfx.CompileStage(ctx, gfx.StageFragment, testFragmentSource)
	require.NoError(t, err)

	program := gfx.NewProgram(ctx)
	program.Attach(vertex)
	program.Attach(fragment)

	positions, instances := instanceLayouts(t)
	require.NoError(t, program.Link(positions, instances))
	return program
}

// --- Shader compilation ---

func TestCompileStage(t *testing.T) {
	ctx, backend := newTestContext()

	stage, err := gfx.CompileStage(ctx, gfx.StageVertex, testVertexSource)
	require.NoError(t, err)

	assert.Equal(t, gfx.StageVertex, stage.Kind())
	assert.Equal(t, "vs_main", stage.EntryPoint())
	assert.NotNil(t, stage.Handle())
	require.Len(t, backend.Modules, 1)
	assert.Equal(t, gfx.StageVertex, backend.Modules[0].Kind)
}

func TestCompileStageMissingEntryPoint(t *testing.T) {
	ctx, backend := newTestContext()

	stage, err := gfx.CompileStage(ctx, gfx.StageVertex, testFragmentSource)
	assert.Nil(t, stage)

	var compileErr *gfx.ShaderCompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, gfx.StageVertex, compileErr.Stage)
	assert.Contains(t, compileErr.Log, "entry point")

	// Validation fails before the backend is reached; no module exists.
	assert.Empty(t, backend.Modules)
}

func TestCompileStageBackendFailure(t *testing.T) {
	ctx, backend := newTestContext()
	backend.CompileErr = errors.New("naga: type mismatch at line 4")

	_, err := gfx.CompileStage(ctx, gfx.StageFragment, testFragmentSource)

	var compileErr *gfx.ShaderCompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, gfx.StageFragment, compileErr.Stage)
	assert.Contains(t, compileErr.Log, "naga: type mismatch")
}

// --- Program linking ---

func TestProgramLinkRequiresBothStages(t *testing.T) {
	ctx, _ := newTestContext()

	vertex, err := gfx.CompileStage(ctx, gfx.StageVertex, testVertexSource)
	require.NoError(t, err)

	program := gfx.NewProgram(ctx)
	program.Attach(vertex)

	var linkErr *gfx.ShaderLinkError
	require.ErrorAs(t, program.Link(), &linkErr)
	assert.Nil(t, program.Linked())
}

func TestProgramLinkLayoutLocationMismatch(t *testing.T) {
	ctx, _ := newTestContext()

	vertex, err := gfx.CompileStage(ctx, gfx.StageVertex, testVertexSource)
	require.NoError(t, err)
	fragment, err := gfx.CompileStage(ctx, gfx.StageFragment, testFragmentSource)
	require.NoError(t, err)

	program := gfx.NewProgram(ctx)
	program.Attach(vertex)
	program.Attach(fragment)

	// Only the position layout: 1 location against the 5 the vertex stage
	// consumes.
	positions := gfx.NewAttributeLayout()
	require.NoError(t, positions.Add(gfx.ComponentFloat32, 3, 0))

	var linkErr *gfx.ShaderLinkError
	require.ErrorAs(t, program.Link(positions), &linkErr)
	assert.Contains(t, linkErr.Log, "5")
}

func TestProgramLinkBackendFailure(t *testing.T) {
	ctx, backend := newTestContext()
	backend.LinkErr = errors.New("pipeline layout incompatible")

	vertex, err := gfx.CompileStage(ctx, gfx.StageVertex, testVertexSource)
	require.NoError(t, err)
	fragment, err := gfx.CompileStage(ctx, gfx.StageFragment, testFragmentSource)
	require.NoError(t, err)

	program := gfx.NewProgram(ctx)
	program.Attach(vertex)
	program.Attach(fragment)

	positions, instances := instanceLayouts(t)
	var linkErr *gfx.ShaderLinkError
	require.ErrorAs(t, program.Link(positions, instances), &linkErr)
	assert.Contains(t, linkErr.Log, "pipeline layout incompatible")
	assert.Nil(t, program.Linked())
}

func TestProgramLink(t *testing.T) {
	ctx, backend := newTestContext()
	program := linkTestProgram(t, ctx)

	require.NotNil(t, program.Linked())
	assert.Equal(t, 5, program.VertexLocationCount())

	require.Len(t, backend.Programs, 1)
	desc := backend.Programs[0]
	assert.Len(t, desc.Stages, 2)
	assert.Len(t, desc.VertexLayouts, 2)
	require.Len(t, desc.Uniforms, 1)
	assert.Equal(t, gfx.UniformKey{Group: 0, Binding: 0}, desc.Uniforms[0].Key)
	assert.Equal(t, uint64(64), desc.Uniforms[0].Size)
}

// --- Uniform lookup and upload ---

func TestUniformLocation(t *testing.T) {
	ctx, _ := newTestContext()
	program := linkTestProgram(t, ctx)

	key, ok := program.UniformLocation("uViewProjection")
	require.True(t, ok)
	assert.Equal(t, gfx.UniformKey{Group: 0, Binding: 0}, key)

	// Second lookup hits the cache and must agree.
	cached, ok := program.UniformLocation("uViewProjection")
	require.True(t, ok)
	assert.Equal(t, key, cached)

	_, ok = program.UniformLocation("uNoSuchUniform")
	assert.False(t, ok)
}

func TestSetUniformMat4(t *testing.T) {
	ctx, backend := newTestContext()
	program := linkTestProgram(t, ctx)

	var matrix [16]float32
	common.Identity(matrix[:])
	require.True(t, program.SetUniformMat4("uViewProjection", matrix))

	require.Len(t, backend.Writes, 1)
	write := backend.Writes[0]
	assert.Equal(t, 0, write.Offset)
	assert.Equal(t, common.SliceToBytes(matrix[:]), write.Data)
	assert.Equal(t, gfx.TargetUniform, write.Buffer.Target)
}

func TestSetUniformMat4UnknownName(t *testing.T) {
	ctx, backend := newTestContext()
	program := linkTestProgram(t, ctx)

	assert.False(t, program.SetUniformMat4("uMissing", [16]float32{}))
	assert.Empty(t, backend.Writes)
}

func TestSetUniformMat4BeforeLink(t *testing.T) {
	ctx, _ := newTestContext()
	program := gfx.NewProgram(ctx)
	assert.False(t, program.SetUniformMat4("uViewProjection", [16]float32{}))
}

func TestRelinkKeepsUniformLookupValid(t *testing.T) {
	ctx, _ := newTestContext()
	program := linkTestProgram(t, ctx)

	_, ok := program.UniformLocation("uViewProjection")
	require.True(t, ok)

	// Linking again rebuilds the lookup cache; the name must still resolve
	// against the fresh linked state.
	positions, instances := instanceLayouts(t)
	require.NoError(t, program.Link(positions, instances))

	key, ok := program.UniformLocation("uViewProjection")
	require.True(t, ok)
	assert.Equal(t, gfx.UniformKey{Group: 0, Binding: 0}, key)
	assert.True(t, program.SetUniformMat4("uViewProjection", [16]float32{}))
}

// --- Buffers ---

func TestBufferSetDataRequiresBind(t *testing.T) {
	ctx, _ := newTestContext()

	buffer, err := gfx.NewBuffer(ctx, gfx.TargetVertex)
	require.NoError(t, err)

	err = buffer.SetData([]byte{1, 2, 3, 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not bound")
}

func TestBufferSetData(t *testing.T) {
	ctx, backend := newTestContext()

	buffer, err := gfx.NewBuffer(ctx, gfx.TargetVertex, gfx.WithBufferLabel("positions"))
	require.NoError(t, err)
	buffer.Bind()

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	require.NoError(t, buffer.SetData(data))

	assert.Equal(t, 8, buffer.Size())
	record := backend.BufferNamed("positions")
	require.NotNil(t, record)
	assert.Equal(t, data, record.Data)
}

func TestBufferGrowthReallocates(t *testing.T) {
	ctx, backend := newTestContext()

	buffer, err := gfx.NewBuffer(ctx, gfx.TargetVertex, gfx.WithInitialCapacity(4))
	require.NoError(t, err)
	buffer.Bind()

	small := buffer.Handle()
	require.NoError(t, buffer.SetData(make([]byte, 16)))

	assert.NotSame(t, small, buffer.Handle())
	assert.True(t, small.(*gfxtest.BufferRecord).Destroyed)
	assert.Len(t, backend.Buffers, 2)
}

func TestBufferShrinkKeepsAllocation(t *testing.T) {
	ctx, _ := newTestContext()

	buffer, err := gfx.NewBuffer(ctx, gfx.TargetVertex)
	require.NoError(t, err)
	buffer.Bind()

	require.NoError(t, buffer.SetData(make([]byte, 64)))
	handle := buffer.Handle()

	require.NoError(t, buffer.SetData(make([]byte, 8)))
	assert.Same(t, handle, buffer.Handle())
	assert.Equal(t, 8, buffer.Size())
}

func TestBufferAllocationFailure(t *testing.T) {
	ctx, backend := newTestContext()
	backend.AllocErr = errors.New("out of device memory")

	_, err := gfx.NewBuffer(ctx, gfx.TargetVertex, gfx.WithInitialCapacity(1024))

	var allocErr *gfx.ResourceAllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.Contains(t, allocErr.Resource, "vertex")
	assert.ErrorIs(t, err, backend.AllocErr)
}

func TestBufferBindIsPerTarget(t *testing.T) {
	ctx, _ := newTestContext()

	vertex, err := gfx.NewBuffer(ctx, gfx.TargetVertex)
	require.NoError(t, err)
	index, err := gfx.NewBuffer(ctx, gfx.TargetIndex)
	require.NoError(t, err)

	vertex.Bind()
	index.Bind()

	assert.Equal(t, vertex, ctx.ActiveBuffer(gfx.TargetVertex))
	assert.Equal(t, index, ctx.ActiveBuffer(gfx.TargetIndex))
	assert.Nil(t, ctx.ActiveBuffer(gfx.TargetUniform))
}

// --- Vertex arrays ---

func TestVertexArrayAssignsSlotsAndLocations(t *testing.T) {
	ctx, _ := newTestContext()
	positions, instances := instanceLayouts(t)

	positionBuffer, err := gfx.NewBuffer(ctx, gfx.TargetVertex)
	require.NoError(t, err)
	instanceBuffer, err := gfx.NewBuffer(ctx, gfx.TargetVertex)
	require.NoError(t, err)

	va := gfx.NewVertexArray(ctx)
	require.NoError(t, va.AddBuffer(positionBuffer, positions))
	require.NoError(t, va.AddBuffer(instanceBuffer, instances))

	bindings := va.Bindings()
	require.Len(t, bindings, 2)
	assert.Equal(t, 0, bindings[0].Slot)
	assert.Equal(t, 0, bindings[0].FirstLocation)
	assert.Equal(t, 1, bindings[1].Slot)
	assert.Equal(t, 1, bindings[1].FirstLocation)
	assert.Equal(t, 5, va.LocationCount())
}

func TestVertexArrayRejectsWrongTarget(t *testing.T) {
	ctx, _ := newTestContext()
	positions, _ := instanceLayouts(t)

	indexBuffer, err := gfx.NewBuffer(ctx, gfx.TargetIndex)
	require.NoError(t, err)

	va := gfx.NewVertexArray(ctx)
	assert.Error(t, va.AddBuffer(indexBuffer, positions))
	assert.Error(t, va.AddBuffer(nil, positions))

	vertexBuffer, err := gfx.NewBuffer(ctx, gfx.TargetVertex)
	require.NoError(t, err)
	assert.Error(t, va.AddBuffer(vertexBuffer, gfx.NewAttributeLayout()))
}

// --- Draws ---

// fullBoundState links a program and binds everything a draw needs,
// returning the context and backend for assertions.
func fullBoundState(t *testing.T) (gfx.Context, *gfxtest.RecordingBackend) {
	t.Helper()
	ctx, backend := newTestContext()
	program := linkTestProgram(t, ctx)

	positions, instances := instanceLayouts(t)
	positionBuffer, err := gfx.NewBuffer(ctx, gfx.TargetVertex)
	require.NoError(t, err)
	instanceBuffer, err := gfx.NewBuffer(ctx, gfx.TargetVertex)
	require.NoError(t, err)
	indexBuffer, err := gfx.NewBuffer(ctx, gfx.TargetIndex)
	require.NoError(t, err)

	va := gfx.NewVertexArray(ctx)
	require.NoError(t, va.AddBuffer(positionBuffer, positions))
	require.NoError(t, va.AddBuffer(instanceBuffer, instances))

	require.NoError(t, program.Bind())
	va.Bind()
	positionBuffer.Bind()
	require.NoError(t, positionBuffer.SetData(make([]byte, 36)))
	instanceBuffer.Bind()
	require.NoError(t, instanceBuffer.SetData(make([]byte, 128)))
	indexBuffer.Bind()
	require.NoError(t, indexBuffer.SetData(make([]byte, 12)))

	require.NoError(t, ctx.BeginFrame())

	return ctx, backend
}

func TestDrawIndexedInstanced(t *testing.T) {
	ctx, backend := fullBoundState(t)

	require.NoError(t, ctx.DrawIndexedInstanced(6, 2))

	require.Len(t, backend.Draws, 1)
	draw := backend.Draws[0]
	assert.Equal(t, uint32(6), draw.IndexCount)
	assert.Equal(t, uint32(2), draw.InstanceCount)
	assert.Equal(t, uint32(0), draw.FirstIndex)
	assert.Equal(t, gfx.IndexFormatUint16, draw.IndexFormat)
	assert.Len(t, draw.VertexBuffers, 2)
	assert.NotNil(t, draw.IndexBuffer)
	assert.NotNil(t, draw.Pipeline)
}

func TestDrawIndexedInstancedZeroInstances(t *testing.T) {
	ctx, backend := fullBoundState(t)

	// Zero instances is a legal draw that renders nothing, not an error.
	require.NoError(t, ctx.DrawIndexedInstanced(6, 0))

	require.Len(t, backend.Draws, 1)
	assert.Equal(t, uint32(0), backend.Draws[0].InstanceCount)
}

func TestDrawIndexedInstancedRequiresOpenFrame(t *testing.T) {
	ctx, backend := fullBoundState(t)
	ctx.EndFrame()

	err := ctx.DrawIndexedInstanced(6, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no open frame")
	assert.Empty(t, backend.Draws)

	// Reopening a frame makes the same bound state drawable again.
	require.NoError(t, ctx.BeginFrame())
	require.NoError(t, ctx.DrawIndexedInstanced(6, 1))
	require.Len(t, backend.Draws, 1)
}

func TestDrawIndexedInstancedValidatesBoundState(t *testing.T) {
	ctx, backend := newTestContext()

	err := ctx.DrawIndexedInstanced(6, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "program")

	program := linkTestProgram(t, ctx)
	require.NoError(t, program.Bind())

	err = ctx.DrawIndexedInstanced(6, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vertex array")

	// A vertex array that covers fewer locations than the program consumes.
	positions := gfx.NewAttributeLayout()
	require.NoError(t, positions.Add(gfx.ComponentFloat32, 3, 0))
	positionBuffer, err := gfx.NewBuffer(ctx, gfx.TargetVertex)
	require.NoError(t, err)
	va := gfx.NewVertexArray(ctx)
	require.NoError(t, va.AddBuffer(positionBuffer, positions))
	va.Bind()

	err = ctx.DrawIndexedInstanced(6, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locations")

	assert.Empty(t, backend.Draws)
}
