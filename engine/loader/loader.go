// Package loader imports glTF 2.0 assets (.gltf and .glb) as model.Model
// values ready for instanced rendering. Each glTF primitive becomes one mesh
// with typed positions and 16-bit indices; every other vertex attribute is
// carried through as raw bytes under its glTF semantic name.
package loader

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/Dmajster/college-project-computer-graphics/engine/model"
)

// loaderImpl is the implementation of the Loader interface.
type loaderImpl struct {
	attributeFilter map[string]struct{}
}

// Loader imports glTF 2.0 files as renderable models.
type Loader interface {
	// LoadModel loads a .gltf or .glb file from disk.
	//
	// Parameters:
	//   - path: path to the glTF or GLB file
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if loading fails
	LoadModel(path string) (model.Model, error)

	// LoadModelFromReader loads a glTF document from a reader. External
	// buffer URIs cannot be resolved in this mode.
	//
	// Parameters:
	//   - r: reader containing glTF JSON or GLB data
	//   - binaryFormat: true if the data is in GLB format
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if loading fails
	LoadModelFromReader(r io.Reader, binaryFormat bool) (model.Model, error)
}

var _ Loader = &loaderImpl{}

func (l *loaderImpl) LoadModel(path string) (model.Model, error) {
	f, err := parseGLTFPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return l.buildModel(f, name)
}

func (l *loaderImpl) LoadModelFromReader(r io.Reader, binaryFormat bool) (model.Model, error) {
	f, err := parseGLTFReader(r, binaryFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to parse glTF data: %w", err)
	}

	return l.buildModel(f, "")
}

// buildModel converts every triangle primitive in the document into a mesh.
func (l *loaderImpl) buildModel(f *gltfFile, name string) (model.Model, error) {
	m := model.NewModel(model.WithName(name))

	for meshIndex := range f.document.Meshes {
		gm := &f.document.Meshes[meshIndex]

		for primIndex := range gm.Primitives {
			mesh, err := l.buildMesh(f, gm, meshIndex, primIndex)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIndex, err)
			}
			m.AddMesh(mesh)
		}
	}

	if len(m.Meshes()) == 0 {
		return nil, fmt.Errorf("document contains no triangle primitives")
	}

	return m, nil
}

func (l *loaderImpl) buildMesh(f *gltfFile, gm *gltfMesh, meshIndex, primIndex int) (model.Mesh, error) {
	prim := &gm.Primitives[primIndex]

	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return nil, fmt.Errorf("unsupported primitive mode %d", *prim.Mode)
	}

	positionAccessor, ok := prim.Attributes[model.AttributePosition]
	if !ok {
		return nil, fmt.Errorf("primitive has no %s attribute", model.AttributePosition)
	}

	positions, err := f.readVec3Accessor(positionAccessor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", model.AttributePosition, err)
	}

	indices, err := l.readPrimitiveIndices(f, prim, len(positions))
	if err != nil {
		return nil, err
	}

	name := gm.Name
	if name == "" {
		name = fmt.Sprintf("mesh_%d", meshIndex)
	}
	if len(gm.Primitives) > 1 {
		name = fmt.Sprintf("%s_%d", name, primIndex)
	}

	mesh := model.NewMesh(
		model.WithMeshName(name),
		model.WithPositions(positions),
		model.WithIndices(indices),
	)

	for semantic, accessorIndex := range prim.Attributes {
		if semantic == model.AttributePosition {
			continue
		}
		if l.attributeFilter != nil {
			if _, wanted := l.attributeFilter[semantic]; !wanted {
				continue
			}
		}

		data, err := f.readAccessorBytes(accessorIndex)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", semantic, err)
		}
		mesh.SetAttribute(semantic, data)
	}

	return mesh, nil
}

// readPrimitiveIndices returns the primitive's index buffer, synthesizing a
// sequential one for non-indexed geometry.
func (l *loaderImpl) readPrimitiveIndices(f *gltfFile, prim *gltfPrimitive, vertexCount int) ([]uint16, error) {
	if prim.Indices == nil {
		if vertexCount > math.MaxUint16+1 {
			return nil, fmt.Errorf("non-indexed primitive has %d vertices, exceeding 16-bit index range", vertexCount)
		}
		indices := make([]uint16, vertexCount)
		for i := range indices {
			indices[i] = uint16(i)
		}
		return indices, nil
	}

	indices, err := f.readIndicesU16(*prim.Indices)
	if err != nil {
		return nil, fmt.Errorf("indices: %w", err)
	}
	return indices, nil
}
