package model

// MeshBuilderOption is a functional option for configuring a Mesh during
// creation.
type MeshBuilderOption func(*mesh)

// WithMeshName sets the mesh identifier.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - MeshBuilderOption: the option to pass to NewMesh
func WithMeshName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithPositions sets the vertex positions.
//
// Parameters:
//   - positions: one xyz triple per vertex
//
// Returns:
//   - MeshBuilderOption: the option to pass to NewMesh
func WithPositions(positions [][3]float32) MeshBuilderOption {
	return func(m *mesh) {
		m.positions = positions
	}
}

// WithIndices sets the triangle indices.
//
// Parameters:
//   - indices: three indices per triangle
//
// Returns:
//   - MeshBuilderOption: the option to pass to NewMesh
func WithIndices(indices []uint16) MeshBuilderOption {
	return func(m *mesh) {
		m.indices = indices
	}
}

// WithAttribute stores a named raw vertex attribute.
//
// Parameters:
//   - name: the attribute's semantic name
//   - data: the attribute data
//
// Returns:
//   - MeshBuilderOption: the option to pass to NewMesh
func WithAttribute(name string, data []byte) MeshBuilderOption {
	return func(m *mesh) {
		m.SetAttribute(name, data)
	}
}

// NewMesh creates a new Mesh instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of MeshBuilderOption functions to configure the Mesh
//
// Returns:
//   - Mesh: a new instance of Mesh configured with the provided options
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{}
	for _, opt := range options {
		opt(m)
	}
	return m
}
