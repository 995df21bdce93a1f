package gfx

import (
	"fmt"
)

// VertexBinding associates one vertex buffer with its attribute layout at a
// fixed buffer slot and starting attribute location.
type VertexBinding struct {
	Slot          int
	FirstLocation int
	Buffer        Buffer
	Layout        AttributeLayout
}

// VertexArray captures a set of vertex buffers and their attribute layouts
// as one bindable unit. Buffer slots and attribute locations are assigned in
// the order buffers are added: each buffer takes the next free slot, and its
// layout's attributes take the next free locations. A layout holding a 4x4
// matrix therefore occupies four consecutive locations.
type VertexArray interface {
	// AddBuffer appends a vertex buffer with its layout, assigning the next
	// buffer slot and attribute locations.
	//
	// Parameters:
	//   - buffer: a Buffer created for TargetVertex
	//   - layout: the layout describing the buffer's contents; must hold at
	//     least one attribute
	//
	// Returns:
	//   - error: if the buffer targets the wrong target or the layout is empty
	AddBuffer(buffer Buffer, layout AttributeLayout) error

	// Bind makes this the context's active vertex array.
	Bind()

	// Bindings returns the buffer bindings in slot order.
	Bindings() []VertexBinding

	// LocationCount returns the total number of attribute locations assigned
	// across all added buffers.
	LocationCount() int
}

type vertexArrayImpl struct {
	ctx          Context
	bindings     []VertexBinding
	nextLocation int
}

var _ VertexArray = &vertexArrayImpl{}

// NewVertexArray creates an empty VertexArray on the given context.
//
// Parameters:
//   - ctx: the Context the vertex array belongs to
//
// Returns:
//   - VertexArray: the new vertex array with no buffers attached
func NewVertexArray(ctx Context) VertexArray {
	return &vertexArrayImpl{
		ctx: ctx,
	}
}

func (va *vertexArrayImpl) AddBuffer(buffer Buffer, layout AttributeLayout) error {
	if buffer == nil {
		return fmt.Errorf("vertex array requires a buffer")
	}
	if buffer.Target() != TargetVertex {
		return fmt.Errorf("vertex array buffers must target %s, got %s", TargetVertex, buffer.Target())
	}
	if layout == nil || len(layout.Attributes()) == 0 {
		return fmt.Errorf("vertex array requires a layout with at least one attribute")
	}

	va.bindings = append(va.bindings, VertexBinding{
		Slot:          len(va.bindings),
		FirstLocation: va.nextLocation,
		Buffer:        buffer,
		Layout:        layout,
	})
	va.nextLocation += len(layout.Attributes())

	return nil
}

func (va *vertexArrayImpl) Bind() {
	va.ctx.setActiveVertexArray(va)
}

func (va *vertexArrayImpl) Bindings() []VertexBinding {
	return va.bindings
}

func (va *vertexArrayImpl) LocationCount() int {
	return va.nextLocation
}
