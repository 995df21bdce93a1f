package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Common errors returned while decoding glTF/GLB files.
var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
)

// gltfFile holds a parsed glTF document together with its resolved binary
// buffers. It is internal to the loader package; the public surface hands out
// model.Model values only.
type gltfFile struct {
	baseDir     string
	document    *gltfDocument
	binaryChunk []byte
}

// parseGLTFPath loads a .gltf or .glb file from disk. The format is detected
// from the extension and, failing that, from the GLB magic number.
func parseGLTFPath(path string) (*gltfFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	f := &gltfFile{baseDir: filepath.Dir(path)}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".glb" || (len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic) {
		if err := f.parseGLB(data); err != nil {
			return nil, err
		}
		return f, nil
	}

	if err := f.parseJSON(data); err != nil {
		return nil, err
	}
	return f, nil
}

// parseGLTFReader decodes glTF data from a reader. External buffer URIs cannot
// be resolved in this mode; embedded data URIs and GLB binary chunks work.
func parseGLTFReader(r io.Reader, binaryFormat bool) (*gltfFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	f := &gltfFile{}
	if binaryFormat {
		err = f.parseGLB(data)
	} else {
		err = f.parseJSON(data)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (f *gltfFile) parseJSON(data []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}

	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}

	if err := f.resolveBuffers(&doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}

	f.document = &doc
	return nil
}

// parseGLB splits a GLB container into its JSON and BIN chunks.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func (f *gltfFile) parseGLB(data []byte) error {
	if len(data) < 12 {
		return errors.New("GLB file too small")
	}

	r := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to read GLB header: %w", err)
	}

	if header.Magic != gltfGLBMagic {
		return errInvalidGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return errInvalidGLBVersion
	}

	var jsonChunk []byte
	for {
		var chunkHeader gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunkHeader); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read chunk header: %w", err)
		}

		chunkData := make([]byte, chunkHeader.ChunkLength)
		if _, err := io.ReadFull(r, chunkData); err != nil {
			return fmt.Errorf("failed to read chunk data: %w", err)
		}

		switch chunkHeader.ChunkType {
		case gltfGLBChunkJSON:
			jsonChunk = chunkData
		case gltfGLBChunkBIN:
			f.binaryChunk = chunkData
		}
	}

	if jsonChunk == nil {
		return errMissingJSONChunk
	}

	return f.parseJSON(jsonChunk)
}

// resolveBuffers fills in Data for every buffer, from data: URIs, external
// files relative to the source path, or the GLB binary chunk.
func (f *gltfFile) resolveBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		if buf.URI == "" {
			if i == 0 && f.binaryChunk != nil {
				buf.Data = f.binaryChunk
				if len(buf.Data) < buf.ByteLength {
					return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
				}
				continue
			}
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		}

		data, err := f.resolveBufferURI(buf.URI)
		if err != nil {
			return fmt.Errorf("buffer %d: %w", i, err)
		}
		buf.Data = data

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}

	return nil
}

func (f *gltfFile) resolveBufferURI(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		return decodeDataURI(uri)
	}

	if f.baseDir == "" {
		return nil, fmt.Errorf("cannot resolve external buffer %q without a base directory", uri)
	}

	data, err := os.ReadFile(filepath.Join(f.baseDir, uri))
	if err != nil {
		return nil, fmt.Errorf("failed to load buffer file %q: %w", uri, err)
	}

	return data, nil
}

// decodeDataURI decodes a base64 data URI of the form
// data:[<mediatype>][;base64],<data>.
func decodeDataURI(uri string) ([]byte, error) {
	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, errInvalidBufferURI
	}

	header := uri[5:commaIdx]
	if !strings.Contains(header, "base64") {
		return nil, fmt.Errorf("unsupported data URI encoding: %s", header)
	}

	data, err := base64.StdEncoding.DecodeString(uri[commaIdx+1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	return data, nil
}

// --- Accessor Reads ---

// readAccessorBytes copies an accessor's elements into a tightly packed byte
// slice, collapsing any interleaved byteStride.
func (f *gltfFile) readAccessorBytes(accessorIndex int) ([]byte, error) {
	if accessorIndex < 0 || accessorIndex >= len(f.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIndex)
	}

	acc := &f.document.Accessors[accessorIndex]

	if acc.Sparse != nil {
		return nil, errors.New("sparse accessors not supported")
	}
	if acc.BufferView == nil {
		return nil, errors.New("accessor has no bufferView")
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(f.document.BufferViews) {
		return nil, fmt.Errorf("accessor %d references bufferView %d out of range", accessorIndex, *acc.BufferView)
	}

	bv := &f.document.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(f.document.Buffers) {
		return nil, fmt.Errorf("bufferView %d references buffer %d out of range", *acc.BufferView, bv.Buffer)
	}
	buf := &f.document.Buffers[bv.Buffer]

	elementSize := gltfComponentTypeSize(acc.ComponentType) * gltfAccessorTypeComponentCount(acc.Type)
	if elementSize == 0 {
		return nil, fmt.Errorf("accessor %d has unknown type %s/%d", accessorIndex, acc.Type, acc.ComponentType)
	}

	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	bufferOffset := bv.ByteOffset + acc.ByteOffset
	if need := bufferOffset + (acc.Count-1)*stride + elementSize; acc.Count > 0 && need > len(buf.Data) {
		return nil, fmt.Errorf("accessor %d overruns buffer %d (%d > %d bytes)", accessorIndex, bv.Buffer, need, len(buf.Data))
	}

	result := make([]byte, acc.Count*elementSize)
	for i := 0; i < acc.Count; i++ {
		src := bufferOffset + i*stride
		dst := i * elementSize
		copy(result[dst:dst+elementSize], buf.Data[src:src+elementSize])
	}

	return result, nil
}

// readVec3Accessor reads a VEC3 FLOAT accessor, used for POSITION data.
func (f *gltfFile) readVec3Accessor(accessorIndex int) ([][3]float32, error) {
	if accessorIndex < 0 || accessorIndex >= len(f.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIndex)
	}

	acc := &f.document.Accessors[accessorIndex]
	if acc.Type != gltfAccessorTypeVec3 || acc.ComponentType != gltfComponentTypeFloat {
		return nil, fmt.Errorf("accessor is not VEC3 FLOAT: type=%s, componentType=%d", acc.Type, acc.ComponentType)
	}

	data, err := f.readAccessorBytes(accessorIndex)
	if err != nil {
		return nil, err
	}

	result := make([][3]float32, acc.Count)
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// readIndicesU16 reads a SCALAR index accessor as 16-bit indices. Accessors
// stored as UNSIGNED_INT are narrowed; any index above 65535 is an error
// since the renderer draws with 16-bit index buffers only.
func (f *gltfFile) readIndicesU16(accessorIndex int) ([]uint16, error) {
	if accessorIndex < 0 || accessorIndex >= len(f.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIndex)
	}

	acc := &f.document.Accessors[accessorIndex]
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("index accessor is not SCALAR: type=%s", acc.Type)
	}

	data, err := f.readAccessorBytes(accessorIndex)
	if err != nil {
		return nil, err
	}

	result := make([]uint16, acc.Count)
	r := bytes.NewReader(data)

	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		for i := 0; i < acc.Count; i++ {
			var v uint8
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			result[i] = uint16(v)
		}
	case gltfComponentTypeUnsignedShort:
		if err := binary.Read(r, binary.LittleEndian, &result); err != nil {
			return nil, err
		}
	case gltfComponentTypeUnsignedInt:
		for i := 0; i < acc.Count; i++ {
			var v uint32
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			if v > math.MaxUint16 {
				return nil, fmt.Errorf("index %d exceeds 16-bit range", v)
			}
			result[i] = uint16(v)
		}
	default:
		return nil, fmt.Errorf("unsupported index component type: %d", acc.ComponentType)
	}

	return result, nil
}

// gltfComponentTypeSize returns the byte size of a component type.
func gltfComponentTypeSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

// gltfAccessorTypeComponentCount returns the number of components for an
// accessor type.
func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	case gltfAccessorTypeMat2:
		return 4
	case gltfAccessorTypeMat3:
		return 9
	case gltfAccessorTypeMat4:
		return 16
	default:
		return 0
	}
}
