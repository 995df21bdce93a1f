// Package model holds CPU-side mesh and model data: typed positions and
// indices plus raw passthrough attributes, independent of any GPU resource.
package model

// model is the implementation of the Model interface.
type model struct {
	name   string
	meshes []Mesh
}

// Model is a named collection of meshes that are rendered together.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Meshes retrieves all meshes in the model.
	//
	// Returns:
	//   - []Mesh: the meshes in render order
	Meshes() []Mesh

	// AddMesh appends a mesh to the model.
	//
	// Parameters:
	//   - m: the mesh to append
	AddMesh(m Mesh)
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []Mesh {
	return m.meshes
}

func (m *model) AddMesh(mesh Mesh) {
	m.meshes = append(m.meshes, mesh)
}
