package model

// AttributePosition is the semantic name of the position attribute every
// renderable mesh carries.
const AttributePosition = "POSITION"

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name       string
	positions  [][3]float32
	indices    []uint16
	attributes map[string][]byte
}

// Mesh is a single indexed triangle mesh. Positions and indices have typed
// accessors since every pipeline consumes them; any other vertex attribute
// (normals, texture coordinates, colors) is carried as named raw bytes and
// passed through untouched.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Positions retrieves the vertex positions.
	//
	// Returns:
	//   - [][3]float32: one xyz triple per vertex
	Positions() [][3]float32

	// SetPositions replaces the vertex positions.
	//
	// Parameters:
	//   - positions: one xyz triple per vertex
	SetPositions(positions [][3]float32)

	// Indices retrieves the triangle indices.
	//
	// Returns:
	//   - []uint16: three indices per triangle
	Indices() []uint16

	// SetIndices replaces the triangle indices.
	//
	// Parameters:
	//   - indices: three indices per triangle
	SetIndices(indices []uint16)

	// Attribute retrieves a named vertex attribute as raw bytes.
	//
	// Parameters:
	//   - name: the attribute's semantic name
	//
	// Returns:
	//   - []byte: the attribute data
	//   - bool: false if the mesh has no attribute with that name
	Attribute(name string) ([]byte, bool)

	// SetAttribute stores a named vertex attribute as raw bytes, replacing
	// any previous data under that name.
	//
	// Parameters:
	//   - name: the attribute's semantic name
	//   - data: the attribute data
	SetAttribute(name string, data []byte)

	// AttributeNames returns the names of all stored raw attributes.
	//
	// Returns:
	//   - []string: the attribute names in unspecified order
	AttributeNames() []string
}

var _ Mesh = &mesh{}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Positions() [][3]float32 {
	return m.positions
}

func (m *mesh) SetPositions(positions [][3]float32) {
	m.positions = positions
}

func (m *mesh) Indices() []uint16 {
	return m.indices
}

func (m *mesh) SetIndices(indices []uint16) {
	m.indices = indices
}

func (m *mesh) Attribute(name string) ([]byte, bool) {
	data, ok := m.attributes[name]
	return data, ok
}

func (m *mesh) SetAttribute(name string, data []byte) {
	if m.attributes == nil {
		m.attributes = make(map[string][]byte)
	}
	m.attributes[name] = data
}

func (m *mesh) AttributeNames() []string {
	names := make([]string, 0, len(m.attributes))
	for name := range m.attributes {
		names = append(names, name)
	}
	return names
}
