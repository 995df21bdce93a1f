package gfx

type programConfig struct {
	label string
}

// ProgramBuilderOption is a functional option for configuring a Program
// during creation.
type ProgramBuilderOption func(*programConfig)

// WithProgramLabel sets a debug label used for the program's backend
// resources.
//
// Parameters:
//   - label: the label string
//
// Returns:
//   - ProgramBuilderOption: the option to pass to NewProgram
func WithProgramLabel(label string) ProgramBuilderOption {
	return func(cfg *programConfig) {
		cfg.label = label
	}
}

// NewProgram creates an empty, unlinked Program on the given context. Attach
// stages and call Link before binding it.
//
// Parameters:
//   - ctx: the Context the program belongs to
//   - opts: optional ProgramBuilderOption values
//
// Returns:
//   - Program: the new program
func NewProgram(ctx Context, opts ...ProgramBuilderOption) Program {
	cfg := programConfig{
		label: "Program",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &programImpl{
		ctx:    ctx,
		label:  cfg.label,
		stages: make(map[StageKind]ShaderStage),
	}
}
