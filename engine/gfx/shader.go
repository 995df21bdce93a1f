package gfx

// ShaderStage is a single compiled stage of a shader program, created from
// WGSL source for either the vertex or fragment stage.
type ShaderStage interface {
	// Kind returns the stage kind this shader was compiled for.
	Kind() StageKind

	// EntryPoint returns the name of the stage's entry point function.
	EntryPoint() string

	// Handle returns the backend shader module handle.
	Handle() any

	// uniforms returns the var<uniform> declarations found in the source.
	uniforms() []uniformDecl

	// vertexLocations returns the number of attribute locations the stage
	// consumes. Zero for non-vertex stages.
	vertexLocations() int
}

type shaderStageImpl struct {
	kind           StageKind
	entryPoint     string
	handle         any
	uniformDecls   []uniformDecl
	inputLocations int
}

var _ ShaderStage = &shaderStageImpl{}

// CompileStage compiles WGSL source as a shader stage of the given kind.
// Compilation inputs are validated before the backend is invoked: source
// missing an entry point for the requested stage fails without allocating a
// module.
//
// Parameters:
//   - ctx: the Context whose backend compiles the stage
//   - kind: the stage kind to compile (StageVertex or StageFragment)
//   - source: the WGSL source code
//
// Returns:
//   - ShaderStage: the compiled stage
//   - error: a ShaderCompileError carrying the stage kind and log on failure
func CompileStage(ctx Context, kind StageKind, source string) (ShaderStage, error) {
	entryPoint := parseEntryPoint(source, kind)
	if entryPoint == "" {
		return nil, &ShaderCompileError{
			Stage: kind,
			Log:   "source declares no @" + kind.String() + " entry point",
		}
	}

	handle, err := ctx.Backend().CompileShader(kind.String()+" stage", kind, source)
	if err != nil {
		return nil, &ShaderCompileError{
			Stage: kind,
			Log:   err.Error(),
		}
	}

	stage := &shaderStageImpl{
		kind:         kind,
		entryPoint:   entryPoint,
		handle:       handle,
		uniformDecls: parseUniformDecls(source),
	}
	if kind == StageVertex {
		stage.inputLocations = parseVertexInputLocations(source)
	}

	return stage, nil
}

func (s *shaderStageImpl) Kind() StageKind {
	return s.kind
}

func (s *shaderStageImpl) EntryPoint() string {
	return s.entryPoint
}

func (s *shaderStageImpl) Handle() any {
	return s.handle
}

func (s *shaderStageImpl) uniforms() []uniformDecl {
	return s.uniformDecls
}

func (s *shaderStageImpl) vertexLocations() int {
	return s.inputLocations
}
