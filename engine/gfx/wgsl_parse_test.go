package gfx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parserTestShader = `
// Per-instance cube shader.
struct VertexIn {
    @location(0) position: vec3<f32>,
    @location(1) model0: vec4<f32>,
    @location(2) model1: vec4<f32>,
    @location(3) model2: vec4<f32>,
    @location(4) model3: vec4<f32>,
}

struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
}

@group(0) @binding(0) var<uniform> uViewProjection: mat4x4<f32>;

@vertex
fn vs_main(in: VertexIn) -> VertexOut {
    var out: VertexOut;
    return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    return vec4<f32>(in.color, 1.0);
}
`

func TestParseEntryPoint(t *testing.T) {
	assert.Equal(t, "vs_main", parseEntryPoint(parserTestShader, StageVertex))
	assert.Equal(t, "fs_main", parseEntryPoint(parserTestShader, StageFragment))
}

func TestParseEntryPointMissing(t *testing.T) {
	source := `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`
	assert.Empty(t, parseEntryPoint(source, StageVertex))
	assert.Equal(t, "fs_main", parseEntryPoint(source, StageFragment))
}

func TestParseEntryPointIgnoresComments(t *testing.T) {
	source := `
// @vertex fn commented_out() {}
/* @vertex
fn also_commented() {} */
@vertex
fn real_entry() -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0);
}
`
	assert.Equal(t, "real_entry", parseEntryPoint(source, StageVertex))
}

func TestParseUniformDecls(t *testing.T) {
	decls := parseUniformDecls(parserTestShader)
	require.Len(t, decls, 1)

	assert.Equal(t, "uViewProjection", decls[0].name)
	assert.Equal(t, UniformKey{Group: 0, Binding: 0}, decls[0].key)
	assert.Equal(t, uint64(64), decls[0].size)
}

func TestParseUniformDeclsStructType(t *testing.T) {
	source := `
struct SceneUniforms {
    viewProjection: mat4x4<f32>,
    cameraPosition: vec3<f32>,
    time: f32,
}

@group(0) @binding(0) var<uniform> uScene: SceneUniforms;
@group(1) @binding(2) var<uniform> uTint: vec4<f32>;
`
	decls := parseUniformDecls(source)
	require.Len(t, decls, 2)

	// mat4x4 (64) + vec3 at offset 64 (12) + f32 at offset 76 (4), rounded
	// up to the struct's 16-byte alignment.
	assert.Equal(t, "uScene", decls[0].name)
	assert.Equal(t, uint64(80), decls[0].size)

	assert.Equal(t, "uTint", decls[1].name)
	assert.Equal(t, UniformKey{Group: 1, Binding: 2}, decls[1].key)
	assert.Equal(t, uint64(16), decls[1].size)
}

func TestParseUniformDeclsSortedByKey(t *testing.T) {
	source := `
@group(1) @binding(0) var<uniform> b: f32;
@group(0) @binding(1) var<uniform> a2: f32;
@group(0) @binding(0) var<uniform> a1: f32;
`
	decls := parseUniformDecls(source)
	require.Len(t, decls, 3)
	assert.Equal(t, "a1", decls[0].name)
	assert.Equal(t, "a2", decls[1].name)
	assert.Equal(t, "b", decls[2].name)
}

func TestParseVertexInputLocations(t *testing.T) {
	// The output struct mixes @builtin(position) with @location(0) and must
	// not contribute to the input count.
	assert.Equal(t, 5, parseVertexInputLocations(parserTestShader))
}

func TestParseVertexInputLocationsDirectParams(t *testing.T) {
	source := `
@vertex
fn vs_main(@location(0) position: vec3<f32>, @location(1) color: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 1.0);
}
`
	assert.Equal(t, 2, parseVertexInputLocations(source))
}

func TestParseVertexInputLocationsNoVertexStage(t *testing.T) {
	source := `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`
	assert.Equal(t, 0, parseVertexInputLocations(source))
}

func TestResolveTypeLayoutFixedArray(t *testing.T) {
	layout, ok := resolveTypeLayout("array<vec4<f32>, 6>", nil)
	require.True(t, ok)
	assert.Equal(t, uint64(96), layout.size)
	assert.Equal(t, uint64(16), layout.align)

	_, ok = resolveTypeLayout("array<f32>", nil)
	assert.False(t, ok, "runtime-sized arrays have no fixed layout")
}

func TestStripCommentsNestedBlocks(t *testing.T) {
	source := "a /* outer /* inner */ still outer */ b"
	assert.Equal(t, "a  b", strings.TrimSuffix(stripComments(source), "\n"))
}
