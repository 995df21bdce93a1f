package model

// Quad returns a unit quad in the XY plane centered at the origin, wound
// counter-clockwise as two triangles.
func Quad() Mesh {
	return NewMesh(
		WithMeshName("quad"),
		WithPositions([][3]float32{
			{-0.5, -0.5, 0},
			{0.5, -0.5, 0},
			{0.5, 0.5, 0},
			{-0.5, 0.5, 0},
		}),
		WithIndices([]uint16{0, 1, 2, 2, 3, 0}),
	)
}

// Cube returns a unit cube centered at the origin with shared corner
// vertices.
func Cube() Mesh {
	return NewMesh(
		WithMeshName("cube"),
		WithPositions([][3]float32{
			{-0.5, -0.5, -0.5},
			{0.5, -0.5, -0.5},
			{0.5, 0.5, -0.5},
			{-0.5, 0.5, -0.5},
			{-0.5, -0.5, 0.5},
			{0.5, -0.5, 0.5},
			{0.5, 0.5, 0.5},
			{-0.5, 0.5, 0.5},
		}),
		WithIndices([]uint16{
			4, 5, 6, 6, 7, 4, // front
			1, 0, 3, 3, 2, 1, // back
			0, 4, 7, 7, 3, 0, // left
			5, 1, 2, 2, 6, 5, // right
			7, 6, 2, 2, 3, 7, // top
			0, 1, 5, 5, 4, 0, // bottom
		}),
	)
}

// QuadModel wraps Quad in a single-mesh model.
func QuadModel() Model {
	return NewModel(WithName("quad"), WithMeshes(Quad()))
}

// CubeModel wraps Cube in a single-mesh model.
func CubeModel() Model {
	return NewModel(WithName("cube"), WithMeshes(Cube()))
}
