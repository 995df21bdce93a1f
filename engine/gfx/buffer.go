package gfx

import (
	"fmt"
)

// Buffer is a GPU-side byte buffer bound to a single target for its whole
// lifetime. Uploads replace the buffer's contents wholesale; there is no
// partial update surface.
type Buffer interface {
	// Target returns the target this buffer was created for.
	Target() BufferTarget

	// Bind makes this the context's active buffer for its target, replacing
	// whatever was bound there.
	Bind()

	// SetData replaces the buffer's entire contents with data. The buffer
	// must be the active buffer for its target. The underlying allocation
	// grows as needed; shrinking uploads keep the existing allocation.
	//
	// Parameters:
	//   - data: the bytes to upload
	//
	// Returns:
	//   - error: if the buffer is not bound, or a ResourceAllocationError if
	//     a required reallocation fails
	SetData(data []byte) error

	// Size returns the byte length of the most recent upload.
	Size() int

	// Handle returns the backend buffer handle, or nil before the first
	// allocation.
	Handle() any

	// Destroy releases the backend allocation. The buffer must not be used
	// afterwards.
	Destroy()
}

type bufferImpl struct {
	ctx    Context
	label  string
	target BufferTarget

	handle   any
	capacity int
	size     int
}

var _ Buffer = &bufferImpl{}

func (b *bufferImpl) Target() BufferTarget {
	return b.target
}

func (b *bufferImpl) Bind() {
	b.ctx.setActiveBuffer(b.target, b)
}

func (b *bufferImpl) SetData(data []byte) error {
	if b.ctx.ActiveBuffer(b.target) != Buffer(b) {
		return fmt.Errorf("buffer %q is not bound to target %s", b.label, b.target)
	}

	if b.handle == nil || len(data) > b.capacity {
		if err := b.realloc(len(data)); err != nil {
			return err
		}
	}

	b.ctx.Backend().WriteBuffer(b.handle, 0, data)
	b.size = len(data)

	return nil
}

func (b *bufferImpl) realloc(size int) error {
	if b.handle != nil {
		b.ctx.Backend().DestroyBuffer(b.handle)
		b.handle = nil
		b.capacity = 0
	}

	handle, err := b.ctx.Backend().CreateBuffer(b.label, b.target, size)
	if err != nil {
		return &ResourceAllocationError{
			Resource: fmt.Sprintf("%s buffer %q (%d bytes)", b.target, b.label, size),
			Err:      err,
		}
	}

	b.handle = handle
	b.capacity = size

	return nil
}

func (b *bufferImpl) Size() int {
	return b.size
}

func (b *bufferImpl) Handle() any {
	return b.handle
}

func (b *bufferImpl) Destroy() {
	if b.handle != nil {
		b.ctx.Backend().DestroyBuffer(b.handle)
		b.handle = nil
		b.capacity = 0
		b.size = 0
	}
}
