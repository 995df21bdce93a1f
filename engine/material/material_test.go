package material_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dmajster/college-project-computer-graphics/common"
	"github.com/Dmajster/college-project-computer-graphics/engine/gfx"
	"github.com/Dmajster/college-project-computer-graphics/engine/gfx/gfxtest"
	"github.com/Dmajster/college-project-computer-graphics/engine/material"
	"github.com/Dmajster/college-project-computer-graphics/engine/model"
)

const vertexSource = `
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

const fragmentSource = `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.5, 0.0, 1.0);
}
`

// vertexSourceNoUniform consumes the same inputs but declares no
// view-projection uniform.
const vertexSourceNoUniform = `
struct VertexIn {
    @location(0) position: vec3<f32>,
    @location(1) model0: vec4<f32>,
    @location(2) model1: vec4<f32>,
    @location(3) model2: vec4<f32>,
    @location(4) model3: vec4<f32>,
}

@vertex
fn vs_main(in: VertexIn) -> @builtin(position) vec4<f32> {
    let model = mat4x4<f32>(in.model0, in.model1, in.model2, in.model3);
    return model * vec4<f32>(in.position, 1.0);
}
`

func newTestMaterial(t *testing.T, options ...material.InstancedMaterialBuilderOption) (material.InstancedMaterial, *gfxtest.RecordingBackend) {
	t.Helper()
	backend := &gfxtest.RecordingBackend{}
	ctx := gfx.NewContext(backend)

	mat, err := material.NewInstancedMaterial(ctx, vertexSource, fragmentSource, options...)
	require.NoError(t, err)
	require.NoError(t, ctx.BeginFrame())
	return mat, backend
}

func identity() [16]float32 {
	var m [16]float32
	common.Identity(m[:])
	return m
}

func TestRenderQuadTwoInstances(t *testing.T) {
	mat, backend := newTestMaterial(t)

	transforms := [][16]float32{identity(), identity()}
	require.NoError(t, mat.Render(model.Quad(), transforms, identity()))

	// Exactly one draw: 6 quad indices, 2 instances, 16-bit index buffer.
	require.Len(t, backend.Draws, 1)
	draw := backend.Draws[0]
	assert.Equal(t, uint32(6), draw.IndexCount)
	assert.Equal(t, uint32(2), draw.InstanceCount)
	assert.Equal(t, gfx.IndexFormatUint16, draw.IndexFormat)

	// Position buffer at slot 0, instance matrices at slot 1.
	require.Len(t, draw.VertexBuffers, 2)
	assert.Equal(t, 4*3*4, len(draw.VertexBuffers[0].Data))
	assert.Equal(t, 2*64, len(draw.VertexBuffers[1].Data))
	require.NotNil(t, draw.IndexBuffer)
	assert.Equal(t, 6*2, len(draw.IndexBuffer.Data))
}

func TestRenderZeroInstances(t *testing.T) {
	mat, backend := newTestMaterial(t)

	require.NoError(t, mat.Render(model.Quad(), nil, identity()))

	require.Len(t, backend.Draws, 1)
	assert.Equal(t, uint32(0), backend.Draws[0].InstanceCount)
}

func TestRenderUploadsViewProjection(t *testing.T) {
	mat, backend := newTestMaterial(t)

	var viewProjection [16]float32
	common.Translation(viewProjection[:], 1, 2, 3)
	require.NoError(t, mat.Render(model.Quad(), [][16]float32{identity()}, viewProjection))

	uniform := backend.BufferNamed("Instanced Material uniform 0.0")
	require.NotNil(t, uniform)
	assert.Equal(t, common.SliceToBytes(viewProjection[:]), uniform.Data)
}

func TestRenderMissingUniformStillDraws(t *testing.T) {
	backend := &gfxtest.RecordingBackend{}
	ctx := gfx.NewContext(backend)

	mat, err := material.NewInstancedMaterial(ctx, vertexSourceNoUniform, fragmentSource)
	require.NoError(t, err)
	require.NoError(t, ctx.BeginFrame())

	// The shader has no uViewProjection; the set silently misses and the
	// draw still goes out.
	require.NoError(t, mat.Render(model.Quad(), [][16]float32{identity()}, identity()))
	assert.Len(t, backend.Draws, 1)
}

func TestRenderNilMesh(t *testing.T) {
	mat, backend := newTestMaterial(t)

	assert.Error(t, mat.Render(nil, nil, identity()))
	assert.Empty(t, backend.Draws)
}

func geometryWrites(backend *gfxtest.RecordingBackend, label string) int {
	record := backend.BufferNamed(label)
	count := 0
	for _, w := range backend.Writes {
		if w.Buffer == record {
			count++
		}
	}
	return count
}

func TestRenderReuploadsGeometryByDefault(t *testing.T) {
	mat, backend := newTestMaterial(t)
	quad := model.Quad()

	require.NoError(t, mat.Render(quad, [][16]float32{identity()}, identity()))
	require.NoError(t, mat.Render(quad, [][16]float32{identity()}, identity()))

	assert.Equal(t, 2, geometryWrites(backend, "Instanced Material Positions"))
	assert.Equal(t, 2, geometryWrites(backend, "Instanced Material Indices"))
}

func TestRenderStaticGeometrySkipsReupload(t *testing.T) {
	mat, backend := newTestMaterial(t, material.WithStaticGeometry())
	quad := model.Quad()

	require.NoError(t, mat.Render(quad, [][16]float32{identity()}, identity()))
	require.NoError(t, mat.Render(quad, [][16]float32{identity()}, identity()))

	// Geometry went up once; instance transforms go up every call.
	assert.Equal(t, 1, geometryWrites(backend, "Instanced Material Positions"))
	assert.Equal(t, 1, geometryWrites(backend, "Instanced Material Indices"))
	assert.Equal(t, 2, geometryWrites(backend, "Instanced Material Instances"))
	assert.Len(t, backend.Draws, 2)
}

func TestRenderStaticGeometryUploadsNewMesh(t *testing.T) {
	mat, backend := newTestMaterial(t, material.WithStaticGeometry())

	require.NoError(t, mat.Render(model.Quad(), [][16]float32{identity()}, identity()))
	require.NoError(t, mat.Render(model.Cube(), [][16]float32{identity()}, identity()))

	assert.Equal(t, 2, geometryWrites(backend, "Instanced Material Positions"))
}

func TestRenderModel(t *testing.T) {
	mat, backend := newTestMaterial(t)

	m := model.NewModel(model.WithMeshes(model.Quad(), model.Cube()))
	require.NoError(t, mat.RenderModel(m, [][16]float32{identity()}, identity()))

	require.Len(t, backend.Draws, 2)
	assert.Equal(t, uint32(6), backend.Draws[0].IndexCount)
	assert.Equal(t, uint32(36), backend.Draws[1].IndexCount)
}

func TestNewInstancedMaterialCompileFailure(t *testing.T) {
	backend := &gfxtest.RecordingBackend{}
	ctx := gfx.NewContext(backend)

	// Fragment source as the vertex stage: no @vertex entry point.
	mat, err := material.NewInstancedMaterial(ctx, fragmentSource, fragmentSource)
	assert.Nil(t, mat)

	var compileErr *gfx.ShaderCompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, gfx.StageVertex, compileErr.Stage)
	assert.Empty(t, backend.Programs)
}

func TestNewInstancedMaterialLinkFailure(t *testing.T) {
	backend := &gfxtest.RecordingBackend{}
	ctx := gfx.NewContext(backend)

	// A vertex stage consuming a single location cannot link against the
	// position + matrix layouts the material always provides.
	single := `
@vertex
fn vs_main(@location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 1.0);
}
`
	mat, err := material.NewInstancedMaterial(ctx, single, fragmentSource)
	assert.Nil(t, mat)

	var linkErr *gfx.ShaderLinkError
	require.ErrorAs(t, err, &linkErr)
}
