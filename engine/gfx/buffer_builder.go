package gfx

type bufferConfig struct {
	label    string
	capacity int
}

// BufferBuilderOption is a functional option for configuring a Buffer during
// creation.
type BufferBuilderOption func(*bufferConfig)

// WithBufferLabel sets a debug label for the buffer's backend allocation.
//
// Parameters:
//   - label: the label string
//
// Returns:
//   - BufferBuilderOption: the option to pass to NewBuffer
func WithBufferLabel(label string) BufferBuilderOption {
	return func(cfg *bufferConfig) {
		cfg.label = label
	}
}

// WithInitialCapacity pre-allocates the buffer at the given byte size so the
// first upload of up to that many bytes avoids a reallocation.
//
// Parameters:
//   - capacity: the byte size to allocate up front
//
// Returns:
//   - BufferBuilderOption: the option to pass to NewBuffer
func WithInitialCapacity(capacity int) BufferBuilderOption {
	return func(cfg *bufferConfig) {
		cfg.capacity = capacity
	}
}

// NewBuffer creates a Buffer for the given target. Without
// WithInitialCapacity the backend allocation is deferred until the first
// SetData.
//
// Parameters:
//   - ctx: the Context the buffer belongs to
//   - target: the BufferTarget the buffer binds to
//   - opts: optional BufferBuilderOption values
//
// Returns:
//   - Buffer: the new buffer
//   - error: a ResourceAllocationError if a requested pre-allocation fails
func NewBuffer(ctx Context, target BufferTarget, opts ...BufferBuilderOption) (Buffer, error) {
	cfg := bufferConfig{
		label: "Buffer",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := &bufferImpl{
		ctx:    ctx,
		label:  cfg.label,
		target: target,
	}

	if cfg.capacity > 0 {
		if err := b.realloc(cfg.capacity); err != nil {
			return nil, err
		}
	}

	return b, nil
}
