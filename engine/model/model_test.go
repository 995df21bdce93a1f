package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dmajster/college-project-computer-graphics/engine/model"
)

func TestNewMesh(t *testing.T) {
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	indices := []uint16{0, 1, 2}

	mesh := model.NewMesh(
		model.WithMeshName("triangle"),
		model.WithPositions(positions),
		model.WithIndices(indices),
	)

	assert.Equal(t, "triangle", mesh.Name())
	assert.Equal(t, positions, mesh.Positions())
	assert.Equal(t, indices, mesh.Indices())
	assert.Empty(t, mesh.AttributeNames())
}

func TestMeshAttributePassthrough(t *testing.T) {
	normals := []byte{0, 0, 128, 63, 0, 0, 0, 0, 0, 0, 0, 0}

	mesh := model.NewMesh(model.WithAttribute("NORMAL", normals))

	data, ok := mesh.Attribute("NORMAL")
	require.True(t, ok)
	assert.Equal(t, normals, data)

	_, ok = mesh.Attribute("TANGENT")
	assert.False(t, ok)

	mesh.SetAttribute("TEXCOORD_0", []byte{1, 2, 3, 4})
	assert.ElementsMatch(t, []string{"NORMAL", "TEXCOORD_0"}, mesh.AttributeNames())
}

func TestMeshSetters(t *testing.T) {
	mesh := model.NewMesh()

	mesh.SetPositions([][3]float32{{1, 2, 3}})
	mesh.SetIndices([]uint16{0})

	assert.Equal(t, [][3]float32{{1, 2, 3}}, mesh.Positions())
	assert.Equal(t, []uint16{0}, mesh.Indices())
}

func TestModelAddMesh(t *testing.T) {
	m := model.NewModel(model.WithName("scene"))
	assert.Equal(t, "scene", m.Name())
	assert.Empty(t, m.Meshes())

	m.AddMesh(model.Quad())
	m.AddMesh(model.Cube())
	require.Len(t, m.Meshes(), 2)
	assert.Equal(t, "quad", m.Meshes()[0].Name())
}

func TestQuad(t *testing.T) {
	quad := model.Quad()

	assert.Len(t, quad.Positions(), 4)
	require.Len(t, quad.Indices(), 6)
	for _, index := range quad.Indices() {
		assert.Less(t, int(index), len(quad.Positions()))
	}
}

func TestCube(t *testing.T) {
	cube := model.Cube()

	assert.Len(t, cube.Positions(), 8)
	require.Len(t, cube.Indices(), 36)
	for _, index := range cube.Indices() {
		assert.Less(t, int(index), len(cube.Positions()))
	}
}
