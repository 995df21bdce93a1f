package gfx

import (
	"fmt"
)

// Context tracks the currently bound rendering state: the active program, the
// active vertex array, and the active buffer per target. All binding flows
// through a Context instance rather than process-wide state, so independent
// contexts never interfere with each other.
type Context interface {
	// Backend returns the Backend this context issues commands to.
	Backend() Backend

	// ActiveProgram returns the currently bound Program, or nil if none is
	// bound.
	ActiveProgram() Program

	// ActiveVertexArray returns the currently bound VertexArray, or nil if
	// none is bound.
	ActiveVertexArray() VertexArray

	// ActiveBuffer returns the Buffer currently bound to the given target, or
	// nil if none is bound.
	ActiveBuffer(target BufferTarget) Buffer

	// BeginFrame starts a new frame on the backend.
	BeginFrame() error

	// EndFrame finishes the current frame and submits its commands.
	EndFrame()

	// Present presents the finished frame to the surface.
	Present()

	// DrawIndexedInstanced issues a single indexed, instanced draw using the
	// bound program, vertex array, and index buffer. Uses 16-bit indices.
	// An instanceCount of zero is valid and issues a draw that renders
	// nothing. The draw must happen between BeginFrame and EndFrame.
	//
	// Parameters:
	//   - indexCount: number of indices to draw per instance
	//   - instanceCount: number of instances to draw
	//
	// Returns:
	//   - error: if the bound state is incomplete or inconsistent
	DrawIndexedInstanced(indexCount, instanceCount int) error

	setActiveProgram(p Program)
	setActiveVertexArray(va VertexArray)
	setActiveBuffer(target BufferTarget, b Buffer)
}

type contextImpl struct {
	backend Backend

	activeProgram     Program
	activeVertexArray VertexArray
	activeBuffers     map[BufferTarget]Buffer

	frameOpen bool
}

var _ Context = &contextImpl{}

// NewContext creates a Context issuing commands to the given backend.
//
// Parameters:
//   - backend: the Backend to render through
//
// Returns:
//   - Context: the new context with no state bound
func NewContext(backend Backend) Context {
	return &contextImpl{
		backend:       backend,
		activeBuffers: make(map[BufferTarget]Buffer),
	}
}

func (c *contextImpl) Backend() Backend {
	return c.backend
}

func (c *contextImpl) ActiveProgram() Program {
	return c.activeProgram
}

func (c *contextImpl) ActiveVertexArray() VertexArray {
	return c.activeVertexArray
}

func (c *contextImpl) ActiveBuffer(target BufferTarget) Buffer {
	return c.activeBuffers[target]
}

func (c *contextImpl) BeginFrame() error {
	if err := c.backend.BeginFrame(); err != nil {
		return err
	}
	c.frameOpen = true
	return nil
}

func (c *contextImpl) EndFrame() {
	c.backend.EndFrame()
	c.frameOpen = false
}

func (c *contextImpl) Present() {
	c.backend.Present()
}

func (c *contextImpl) DrawIndexedInstanced(indexCount, instanceCount int) error {
	if c.activeProgram == nil {
		return fmt.Errorf("no program bound")
	}
	linked := c.activeProgram.Linked()
	if linked == nil {
		return fmt.Errorf("bound program is not linked")
	}
	if c.activeVertexArray == nil {
		return fmt.Errorf("no vertex array bound")
	}
	if want, got := c.activeProgram.VertexLocationCount(), c.activeVertexArray.LocationCount(); want != got {
		return fmt.Errorf("vertex array provides %d attribute locations, program consumes %d", got, want)
	}
	indexBuffer := c.activeBuffers[TargetIndex]
	if indexBuffer == nil {
		return fmt.Errorf("no index buffer bound")
	}
	// The backend's render pass only exists between BeginFrame and EndFrame.
	if !c.frameOpen {
		return fmt.Errorf("no open frame")
	}

	c.backend.BindPipeline(linked)
	for _, binding := range c.activeVertexArray.Bindings() {
		c.backend.BindVertexBuffer(binding.Slot, binding.Buffer.Handle())
	}
	c.backend.BindIndexBuffer(indexBuffer.Handle(), IndexFormatUint16)
	c.backend.DrawIndexed(uint32(indexCount), uint32(instanceCount), 0, 0, 0)

	return nil
}

func (c *contextImpl) setActiveProgram(p Program) {
	c.activeProgram = p
}

func (c *contextImpl) setActiveVertexArray(va VertexArray) {
	c.activeVertexArray = va
}

func (c *contextImpl) setActiveBuffer(target BufferTarget, b Buffer) {
	c.activeBuffers[target] = b
}
