package model

// ModelBuilderOption is a functional option for configuring a Model during
// creation.
type ModelBuilderOption func(*model)

// WithName sets the model identifier.
//
// Parameters:
//   - name: the model name
//
// Returns:
//   - ModelBuilderOption: the option to pass to NewModel
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMeshes sets the model's mesh list.
//
// Parameters:
//   - meshes: the meshes in render order
//
// Returns:
//   - ModelBuilderOption: the option to pass to NewModel
func WithMeshes(meshes ...Mesh) ModelBuilderOption {
	return func(m *model) {
		m.meshes = meshes
	}
}
