package material

import (
	"github.com/Dmajster/college-project-computer-graphics/engine/gfx"
)

// DefaultViewProjectionUniform is the uniform name Render writes the
// combined view-projection matrix to unless overridden.
const DefaultViewProjectionUniform = "uViewProjection"

type materialConfig struct {
	label                 string
	viewProjectionUniform string
	staticGeometry        bool
}

// InstancedMaterialBuilderOption is a functional option for configuring an
// InstancedMaterial during creation.
type InstancedMaterialBuilderOption func(*materialConfig)

// WithLabel sets a debug label used for the material's GPU resources.
//
// Parameters:
//   - label: the label string
//
// Returns:
//   - InstancedMaterialBuilderOption: the option to pass to NewInstancedMaterial
func WithLabel(label string) InstancedMaterialBuilderOption {
	return func(cfg *materialConfig) {
		cfg.label = label
	}
}

// WithViewProjectionUniform overrides the name of the uniform Render writes
// the view-projection matrix to.
//
// Parameters:
//   - name: the uniform variable name as declared in the shader
//
// Returns:
//   - InstancedMaterialBuilderOption: the option to pass to NewInstancedMaterial
func WithViewProjectionUniform(name string) InstancedMaterialBuilderOption {
	return func(cfg *materialConfig) {
		cfg.viewProjectionUniform = name
	}
}

// WithStaticGeometry marks the material's geometry as unchanging between
// draws: Render uploads a mesh's positions and indices only the first time
// it sees that mesh, and skips the upload on subsequent draws of the same
// mesh. Per-instance transforms are still uploaded every call.
//
// Returns:
//   - InstancedMaterialBuilderOption: the option to pass to NewInstancedMaterial
func WithStaticGeometry() InstancedMaterialBuilderOption {
	return func(cfg *materialConfig) {
		cfg.staticGeometry = true
	}
}

// NewInstancedMaterial compiles and links the shader sources and allocates
// the material's vertex, instance, and index buffers. Construction fails
// cleanly: no usable material is returned on a compile or link error.
//
// Parameters:
//   - ctx: the Context the material renders through
//   - vertexSource: WGSL source containing the @vertex entry point
//   - fragmentSource: WGSL source containing the @fragment entry point
//   - options: optional InstancedMaterialBuilderOption values
//
// Returns:
//   - InstancedMaterial: the ready-to-draw material
//   - error: a gfx.ShaderCompileError, gfx.ShaderLinkError, or
//     gfx.ResourceAllocationError describing what failed
func NewInstancedMaterial(ctx gfx.Context, vertexSource, fragmentSource string, options ...InstancedMaterialBuilderOption) (InstancedMaterial, error) {
	cfg := materialConfig{
		label:                 "Instanced Material",
		viewProjectionUniform: DefaultViewProjectionUniform,
	}
	for _, opt := range options {
		opt(&cfg)
	}

	vertexStage, err := gfx.CompileStage(ctx, gfx.StageVertex, vertexSource)
	if err != nil {
		return nil, err
	}
	fragmentStage, err := gfx.CompileStage(ctx, gfx.StageFragment, fragmentSource)
	if err != nil {
		return nil, err
	}

	program := gfx.NewProgram(ctx, gfx.WithProgramLabel(cfg.label))
	program.Attach(vertexStage)
	program.Attach(fragmentStage)

	positionLayout := gfx.NewAttributeLayout()
	if err := positionLayout.Add(gfx.ComponentFloat32, 3, 0); err != nil {
		return nil, err
	}
	instanceLayout := gfx.NewAttributeLayout()
	if err := instanceLayout.AddMat4(); err != nil {
		return nil, err
	}

	if err := program.Link(positionLayout, instanceLayout); err != nil {
		return nil, err
	}

	positionBuffer, err := gfx.NewBuffer(ctx, gfx.TargetVertex, gfx.WithBufferLabel(cfg.label+" Positions"))
	if err != nil {
		return nil, err
	}
	instanceBuffer, err := gfx.NewBuffer(ctx, gfx.TargetVertex, gfx.WithBufferLabel(cfg.label+" Instances"))
	if err != nil {
		return nil, err
	}
	indexBuffer, err := gfx.NewBuffer(ctx, gfx.TargetIndex, gfx.WithBufferLabel(cfg.label+" Indices"))
	if err != nil {
		return nil, err
	}

	vertexArray := gfx.NewVertexArray(ctx)
	if err := vertexArray.AddBuffer(positionBuffer, positionLayout); err != nil {
		return nil, err
	}
	if err := vertexArray.AddBuffer(instanceBuffer, instanceLayout); err != nil {
		return nil, err
	}

	return &instancedMaterial{
		ctx:                   ctx,
		program:               program,
		positionBuffer:        positionBuffer,
		instanceBuffer:        instanceBuffer,
		indexBuffer:           indexBuffer,
		vertexArray:           vertexArray,
		viewProjectionUniform: cfg.viewProjectionUniform,
		staticGeometry:        cfg.staticGeometry,
	}, nil
}
