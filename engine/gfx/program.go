package gfx

import (
	"fmt"

	"github.com/Dmajster/college-project-computer-graphics/common"
)

// Program is a linked shader program built from a vertex and a fragment
// stage. Uniform values are set through the program by name; names are
// resolved against the shader source's declarations and cached, so repeated
// sets of the same uniform skip the lookup.
type Program interface {
	// Attach adds a compiled stage to the program. Attaching a stage of a
	// kind that is already attached replaces the previous one. Attach after
	// Link has no effect on the linked state until Link is called again.
	Attach(stage ShaderStage)

	// Link combines the attached stages into an executable pipeline. The
	// attribute layouts describe the vertex buffers the program will be drawn
	// with, in the order they will be added to a VertexArray; attribute
	// locations are assigned sequentially across them.
	//
	// Parameters:
	//   - layouts: the attribute layouts the program consumes
	//
	// Returns:
	//   - error: a ShaderLinkError if stages are missing, the layouts do not
	//     cover the vertex stage's inputs, or the backend rejects the pipeline
	Link(layouts ...AttributeLayout) error

	// Linked returns the backend pipeline state, or nil before a successful
	// Link.
	Linked() *LinkedProgram

	// Bind makes this the context's active program.
	//
	// Returns:
	//   - error: if the program has not been linked
	Bind() error

	// UniformLocation resolves a uniform name to its binding key. The first
	// lookup of a name consults the shader declarations; subsequent lookups
	// hit the cache. Linking again clears the cache.
	//
	// Parameters:
	//   - name: the uniform variable name as declared in the shader source
	//
	// Returns:
	//   - UniformKey: the group and binding of the uniform
	//   - bool: false if no uniform with that name exists in the program
	UniformLocation(name string) (UniformKey, bool)

	// SetUniformMat4 uploads a column-major 4x4 matrix to the named uniform.
	//
	// Parameters:
	//   - name: the uniform variable name
	//   - matrix: the matrix in column-major order
	//
	// Returns:
	//   - bool: false if the program has no uniform with that name; the call
	//     is otherwise a no-op and never an error
	SetUniformMat4(name string, matrix [16]float32) bool

	// VertexLocationCount returns the number of attribute locations the
	// vertex stage consumes. Zero before Link.
	VertexLocationCount() int
}

type programImpl struct {
	ctx    Context
	label  string
	stages map[StageKind]ShaderStage

	linked         *LinkedProgram
	inputLocations int

	declared map[string]uniformDecl
	cache    map[string]UniformKey
}

var _ Program = &programImpl{}

func (p *programImpl) Attach(stage ShaderStage) {
	p.stages[stage.Kind()] = stage
}

func (p *programImpl) Link(layouts ...AttributeLayout) error {
	vertex, hasVertex := p.stages[StageVertex]
	fragment, hasFragment := p.stages[StageFragment]
	if !hasVertex || !hasFragment {
		return &ShaderLinkError{Log: "program requires both a vertex and a fragment stage"}
	}

	vertexLayouts, locationCount := buildVertexLayouts(layouts)
	if locationCount != vertex.vertexLocations() {
		return &ShaderLinkError{
			Log: fmt.Sprintf("attribute layouts provide %d locations, vertex stage consumes %d",
				locationCount, vertex.vertexLocations()),
		}
	}

	// Merge uniform declarations from both stages. The same variable declared
	// in both sources must agree on its binding key.
	declared := make(map[string]uniformDecl)
	uniforms := make([]UniformSpec, 0)
	for _, stage := range []ShaderStage{vertex, fragment} {
		for _, decl := range stage.uniforms() {
			if prev, ok := declared[decl.name]; ok {
				if prev.key != decl.key {
					return &ShaderLinkError{
						Log: fmt.Sprintf("uniform %q declared at conflicting bindings across stages", decl.name),
					}
				}
				continue
			}
			declared[decl.name] = decl
			uniforms = append(uniforms, UniformSpec{Key: decl.key, Size: decl.size})
		}
	}

	linked, err := p.ctx.Backend().LinkProgram(ProgramDescriptor{
		Label: p.label,
		Stages: []StageModule{
			{Kind: StageVertex, Module: vertex.Handle(), EntryPoint: vertex.EntryPoint()},
			{Kind: StageFragment, Module: fragment.Handle(), EntryPoint: fragment.EntryPoint()},
		},
		VertexLayouts: vertexLayouts,
		Uniforms:      uniforms,
	})
	if err != nil {
		return &ShaderLinkError{Log: err.Error()}
	}

	p.linked = linked
	p.inputLocations = vertex.vertexLocations()
	p.declared = declared
	p.cache = make(map[string]UniformKey)

	return nil
}

func (p *programImpl) Linked() *LinkedProgram {
	return p.linked
}

func (p *programImpl) Bind() error {
	if p.linked == nil {
		return fmt.Errorf("program %q is not linked", p.label)
	}
	p.ctx.setActiveProgram(p)
	return nil
}

func (p *programImpl) UniformLocation(name string) (UniformKey, bool) {
	if key, ok := p.cache[name]; ok {
		return key, true
	}
	decl, ok := p.declared[name]
	if !ok {
		return UniformKey{}, false
	}
	p.cache[name] = decl.key
	return decl.key, true
}

func (p *programImpl) SetUniformMat4(name string, matrix [16]float32) bool {
	if p.linked == nil {
		return false
	}
	key, ok := p.UniformLocation(name)
	if !ok {
		return false
	}
	buf, ok := p.linked.UniformBuffers[key]
	if !ok {
		return false
	}

	p.ctx.Backend().WriteBuffer(buf, 0, common.SliceToBytes(matrix[:]))
	return true
}

func (p *programImpl) VertexLocationCount() int {
	return p.inputLocations
}
