package gfx

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ComponentType identifies the scalar type of a vertex attribute's
// components.
type ComponentType int

const (
	ComponentFloat32 ComponentType = iota
	ComponentInt32
	ComponentUint32
)

// componentByteSize is the size of one component of each ComponentType.
// All supported component types are 4 bytes wide.
const componentByteSize = 4

// vertexFormatByCount maps a ComponentType and component count (1-4) to the
// wgpu vertex format.
var vertexFormatByCount = map[ComponentType][4]wgpu.VertexFormat{
	ComponentFloat32: {
		wgpu.VertexFormatFloat32,
		wgpu.VertexFormatFloat32x2,
		wgpu.VertexFormatFloat32x3,
		wgpu.VertexFormatFloat32x4,
	},
	ComponentInt32: {
		wgpu.VertexFormatSint32,
		wgpu.VertexFormatSint32x2,
		wgpu.VertexFormatSint32x3,
		wgpu.VertexFormatSint32x4,
	},
	ComponentUint32: {
		wgpu.VertexFormatUint32,
		wgpu.VertexFormatUint32x2,
		wgpu.VertexFormatUint32x3,
		wgpu.VertexFormatUint32x4,
	},
}

// Attribute is a single vertex attribute within an AttributeLayout.
type Attribute struct {
	Type  ComponentType
	Count int
}

// AttributeLayout describes how the bytes of one vertex buffer decompose
// into attributes. The stride is always the sum of the byte sizes of the
// attributes added so far; attributes are tightly packed with no padding.
//
// All attributes in one layout share a single divisor: 0 for per-vertex data
// and 1 for per-instance data. Per-vertex and per-instance attributes go in
// separate layouts over separate buffers.
type AttributeLayout interface {
	// Add appends an attribute of count components of the given type.
	//
	// Parameters:
	//   - componentType: the scalar type of the components
	//   - count: the number of components, 1 through 4
	//   - divisor: 0 for per-vertex advancement, 1 for per-instance
	//
	// Returns:
	//   - error: if count is out of range, divisor is not 0 or 1, or divisor
	//     differs from attributes already in the layout
	Add(componentType ComponentType, count, divisor int) error

	// AddMat4 appends a 4x4 float matrix as four consecutive 4-component
	// attributes with divisor 1, occupying four attribute locations. This is
	// the layout for per-instance transform matrices.
	//
	// Returns:
	//   - error: if the layout already holds per-vertex attributes
	AddMat4() error

	// Stride returns the byte distance between consecutive elements, equal
	// to the summed byte size of all added attributes.
	Stride() int

	// Attributes returns the attributes in the order they were added.
	Attributes() []Attribute

	// Divisor returns the layout's shared divisor. Zero for an empty layout.
	Divisor() int
}

type attributeLayoutImpl struct {
	attributes []Attribute
	stride     int
	divisor    int
}

var _ AttributeLayout = &attributeLayoutImpl{}

// NewAttributeLayout creates an empty AttributeLayout.
//
// Returns:
//   - AttributeLayout: the new layout with zero stride and no attributes
func NewAttributeLayout() AttributeLayout {
	return &attributeLayoutImpl{}
}

func (l *attributeLayoutImpl) Add(componentType ComponentType, count, divisor int) error {
	if count < 1 || count > 4 {
		return fmt.Errorf("attribute component count must be 1 through 4, got %d", count)
	}
	if divisor != 0 && divisor != 1 {
		return fmt.Errorf("attribute divisor must be 0 or 1, got %d", divisor)
	}
	if _, ok := vertexFormatByCount[componentType]; !ok {
		return fmt.Errorf("unknown component type %d", componentType)
	}
	if len(l.attributes) > 0 && divisor != l.divisor {
		return fmt.Errorf("layout already uses divisor %d; mixed divisors require separate layouts", l.divisor)
	}

	l.attributes = append(l.attributes, Attribute{Type: componentType, Count: count})
	l.stride += count * componentByteSize
	l.divisor = divisor

	return nil
}

func (l *attributeLayoutImpl) AddMat4() error {
	for i := 0; i < 4; i++ {
		if err := l.Add(ComponentFloat32, 4, 1); err != nil {
			return err
		}
	}
	return nil
}

func (l *attributeLayoutImpl) Stride() int {
	return l.stride
}

func (l *attributeLayoutImpl) Attributes() []Attribute {
	return l.attributes
}

func (l *attributeLayoutImpl) Divisor() int {
	return l.divisor
}

// buildVertexLayouts converts attribute layouts into wgpu vertex buffer
// layouts, one buffer slot per layout, assigning shader locations
// sequentially across all layouts in order.
//
// Returns the layouts and the total number of locations assigned.
func buildVertexLayouts(layouts []AttributeLayout) ([]wgpu.VertexBufferLayout, int) {
	result := make([]wgpu.VertexBufferLayout, 0, len(layouts))
	location := 0

	for _, layout := range layouts {
		stepMode := wgpu.VertexStepModeVertex
		if layout.Divisor() > 0 {
			stepMode = wgpu.VertexStepModeInstance
		}

		attrs := make([]wgpu.VertexAttribute, 0, len(layout.Attributes()))
		offset := uint64(0)
		for _, a := range layout.Attributes() {
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         vertexFormatByCount[a.Type][a.Count-1],
				Offset:         offset,
				ShaderLocation: uint32(location),
			})
			offset += uint64(a.Count * componentByteSize)
			location++
		}

		result = append(result, wgpu.VertexBufferLayout{
			ArrayStride: uint64(layout.Stride()),
			StepMode:    stepMode,
			Attributes:  attrs,
		})
	}

	return result, location
}
