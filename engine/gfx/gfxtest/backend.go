// Package gfxtest provides an in-memory Backend implementation that records
// every command it receives, so binding and draw behavior can be asserted
// without a GPU or a window surface.
package gfxtest

import (
	"fmt"

	"github.com/Dmajster/college-project-computer-graphics/engine/gfx"
)

// ModuleRecord is one compiled shader module.
type ModuleRecord struct {
	Label  string
	Kind   gfx.StageKind
	Source string
}

// BufferRecord is one allocated buffer. The record itself serves as the
// backend handle, so writes can be traced back to their allocation.
type BufferRecord struct {
	Label     string
	Target    gfx.BufferTarget
	Capacity  int
	Data      []byte
	Destroyed bool
}

// WriteRecord is one WriteBuffer call.
type WriteRecord struct {
	Buffer *BufferRecord
	Offset int
	Data   []byte
}

// DrawRecord is one DrawIndexed call together with the state bound when it
// was issued.
type DrawRecord struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	Pipeline      *gfx.LinkedProgram
	VertexBuffers map[int]*BufferRecord
	IndexBuffer   *BufferRecord
	IndexFormat   gfx.IndexFormat
}

// RecordingBackend implements gfx.Backend by recording every call. Zero
// value is ready to use. Set the *Err fields to make the corresponding
// operations fail.
type RecordingBackend struct {
	CompileErr error
	LinkErr    error
	AllocErr   error

	Modules  []ModuleRecord
	Programs []gfx.ProgramDescriptor
	Buffers  []*BufferRecord
	Writes   []WriteRecord
	Draws    []DrawRecord

	FramesBegun int
	FramesEnded int
	Presents    int

	boundPipeline      *gfx.LinkedProgram
	boundVertexBuffers map[int]*BufferRecord
	boundIndexBuffer   *BufferRecord
	boundIndexFormat   gfx.IndexFormat
}

var _ gfx.Backend = &RecordingBackend{}

func (b *RecordingBackend) CompileShader(label string, kind gfx.StageKind, source string) (any, error) {
	if b.CompileErr != nil {
		return nil, b.CompileErr
	}
	record := &ModuleRecord{Label: label, Kind: kind, Source: source}
	b.Modules = append(b.Modules, *record)
	return record, nil
}

func (b *RecordingBackend) LinkProgram(desc gfx.ProgramDescriptor) (*gfx.LinkedProgram, error) {
	if b.LinkErr != nil {
		return nil, b.LinkErr
	}
	b.Programs = append(b.Programs, desc)

	uniformBuffers := make(map[gfx.UniformKey]any, len(desc.Uniforms))
	bindGroups := make(map[int]any)
	for _, u := range desc.Uniforms {
		record := &BufferRecord{
			Label:    fmt.Sprintf("%s uniform %d.%d", desc.Label, u.Key.Group, u.Key.Binding),
			Target:   gfx.TargetUniform,
			Capacity: int(u.Size),
			Data:     make([]byte, u.Size),
		}
		b.Buffers = append(b.Buffers, record)
		uniformBuffers[u.Key] = record
		bindGroups[u.Key.Group] = struct{}{}
	}

	return &gfx.LinkedProgram{
		Pipeline:       &desc,
		UniformBuffers: uniformBuffers,
		BindGroups:     bindGroups,
	}, nil
}

func (b *RecordingBackend) CreateBuffer(label string, target gfx.BufferTarget, size int) (any, error) {
	if b.AllocErr != nil {
		return nil, b.AllocErr
	}
	record := &BufferRecord{
		Label:    label,
		Target:   target,
		Capacity: size,
		Data:     make([]byte, size),
	}
	b.Buffers = append(b.Buffers, record)
	return record, nil
}

func (b *RecordingBackend) WriteBuffer(handle any, offset int, data []byte) {
	record := handle.(*BufferRecord)
	if needed := offset + len(data); needed > len(record.Data) {
		grown := make([]byte, needed)
		copy(grown, record.Data)
		record.Data = grown
	}
	copy(record.Data[offset:], data)
	b.Writes = append(b.Writes, WriteRecord{
		Buffer: record,
		Offset: offset,
		Data:   append([]byte(nil), data...),
	})
}

func (b *RecordingBackend) DestroyBuffer(handle any) {
	handle.(*BufferRecord).Destroyed = true
}

func (b *RecordingBackend) ConfigureSurface(width, height int) {}

func (b *RecordingBackend) BeginFrame() error {
	b.FramesBegun++
	return nil
}

func (b *RecordingBackend) EndFrame() {
	b.FramesEnded++
}

func (b *RecordingBackend) Present() {
	b.Presents++
}

func (b *RecordingBackend) BindPipeline(lp *gfx.LinkedProgram) {
	b.boundPipeline = lp
}

func (b *RecordingBackend) BindVertexBuffer(slot int, handle any) {
	if b.boundVertexBuffers == nil {
		b.boundVertexBuffers = make(map[int]*BufferRecord)
	}
	b.boundVertexBuffers[slot] = handle.(*BufferRecord)
}

func (b *RecordingBackend) BindIndexBuffer(handle any, format gfx.IndexFormat) {
	b.boundIndexBuffer = handle.(*BufferRecord)
	b.boundIndexFormat = format
}

func (b *RecordingBackend) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	vertexBuffers := make(map[int]*BufferRecord, len(b.boundVertexBuffers))
	for slot, record := range b.boundVertexBuffers {
		vertexBuffers[slot] = record
	}
	b.Draws = append(b.Draws, DrawRecord{
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    firstIndex,
		Pipeline:      b.boundPipeline,
		VertexBuffers: vertexBuffers,
		IndexBuffer:   b.boundIndexBuffer,
		IndexFormat:   b.boundIndexFormat,
	})
}

// BufferNamed returns the first recorded buffer whose label matches, or nil.
func (b *RecordingBackend) BufferNamed(label string) *BufferRecord {
	for _, record := range b.Buffers {
		if record.Label == label {
			return record
		}
	}
	return nil
}
