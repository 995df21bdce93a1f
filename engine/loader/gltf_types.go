// gltf_types.go contains the glTF 2.0 JSON structures the loader deserializes.
// Only the subset needed for static mesh import is modelled; encoding/json
// silently ignores the remaining schema fields.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package loader

// gltfDocument is the root of a glTF JSON document.
type gltfDocument struct {
	// Asset contains metadata about the glTF asset.
	Asset gltfAsset `json:"asset"`

	// Meshes is an array of meshes.
	Meshes []gltfMesh `json:"meshes,omitempty"`

	// Accessors define how to interpret buffer data.
	Accessors []gltfAccessor `json:"accessors,omitempty"`

	// BufferViews define portions of buffers.
	BufferViews []gltfBufferView `json:"bufferViews,omitempty"`

	// Buffers are raw binary data containers.
	Buffers []gltfBuffer `json:"buffers,omitempty"`
}

// gltfAsset contains metadata about the glTF asset.
type gltfAsset struct {
	// Version is the glTF version (required, must be "2.0").
	Version string `json:"version"`

	// Generator is the tool that generated this asset.
	Generator string `json:"generator,omitempty"`
}

// gltfMesh is a named set of primitives.
type gltfMesh struct {
	// Name is an optional name for this mesh.
	Name string `json:"name,omitempty"`

	// Primitives defines the geometry to render.
	Primitives []gltfPrimitive `json:"primitives"`
}

// gltfPrimitive defines a single piece of renderable geometry.
type gltfPrimitive struct {
	// Attributes maps attribute semantic (POSITION, NORMAL, TEXCOORD_0, ...)
	// to accessor index.
	Attributes map[string]int `json:"attributes"`

	// Indices is the accessor index for the index buffer.
	Indices *int `json:"indices,omitempty"`

	// Mode is the primitive topology. 4=TRIANGLES (default).
	Mode *int `json:"mode,omitempty"`
}

const gltfPrimitiveModeTriangles = 4

// gltfAccessor defines how to interpret a slice of buffer data.
type gltfAccessor struct {
	// BufferView is the index of the bufferView.
	BufferView *int `json:"bufferView,omitempty"`

	// ByteOffset is the offset within the bufferView.
	ByteOffset int `json:"byteOffset,omitempty"`

	// ComponentType is the data type of components.
	// 5120=BYTE, 5121=UNSIGNED_BYTE, 5122=SHORT, 5123=UNSIGNED_SHORT, 5125=UNSIGNED_INT, 5126=FLOAT
	ComponentType int `json:"componentType"`

	// Count is the number of elements.
	Count int `json:"count"`

	// Type is the element type (SCALAR, VEC2, VEC3, VEC4, MAT2, MAT3, MAT4).
	Type string `json:"type"`

	// Sparse marks sparse storage, which the loader rejects.
	Sparse *gltfAccessorSparse `json:"sparse,omitempty"`
}

// ComponentType constants
const (
	gltfComponentTypeByte          = 5120
	gltfComponentTypeUnsignedByte  = 5121
	gltfComponentTypeShort         = 5122
	gltfComponentTypeUnsignedShort = 5123
	gltfComponentTypeUnsignedInt   = 5125
	gltfComponentTypeFloat         = 5126
)

// AccessorType constants
const (
	gltfAccessorTypeScalar = "SCALAR"
	gltfAccessorTypeVec2   = "VEC2"
	gltfAccessorTypeVec3   = "VEC3"
	gltfAccessorTypeVec4   = "VEC4"
	gltfAccessorTypeMat2   = "MAT2"
	gltfAccessorTypeMat3   = "MAT3"
	gltfAccessorTypeMat4   = "MAT4"
)

// gltfAccessorSparse only carries Count; the loader errors out when it is
// present rather than resolving sparse substitutions.
type gltfAccessorSparse struct {
	Count int `json:"count"`
}

// gltfBufferView represents a subset of a buffer.
type gltfBufferView struct {
	// Buffer is the index of the buffer.
	Buffer int `json:"buffer"`

	// ByteOffset is the offset into the buffer.
	ByteOffset int `json:"byteOffset,omitempty"`

	// ByteLength is the length of the bufferView.
	ByteLength int `json:"byteLength"`

	// ByteStride is the stride for interleaved data (optional).
	ByteStride *int `json:"byteStride,omitempty"`
}

// gltfBuffer represents binary data.
type gltfBuffer struct {
	// URI is the URI of the buffer data (data: URI or external file).
	URI string `json:"uri,omitempty"`

	// ByteLength is the length of the buffer.
	ByteLength int `json:"byteLength"`

	// Data holds the loaded binary data (not part of JSON, populated during load).
	Data []byte `json:"-"`
}

// --- GLB Binary Format ---

// gltfGLBHeader is the 12-byte header of a GLB file.
type gltfGLBHeader struct {
	Magic   uint32 // Must be 0x46546C67 ("glTF" in ASCII)
	Version uint32 // Must be 2
	Length  uint32 // Total file length
}

// gltfGLBChunkHeader is the 8-byte header of a GLB chunk.
type gltfGLBChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32
}

const (
	gltfGLBMagic     = 0x46546C67 // "glTF" in little-endian ASCII
	gltfGLBVersion   = 2
	gltfGLBChunkJSON = 0x4E4F534A // "JSON" in little-endian ASCII
	gltfGLBChunkBIN  = 0x004E4942 // "BIN\0" in little-endian ASCII
)
