// Package material implements instanced rendering of meshes: one shader
// program drawing many copies of a mesh in a single indexed draw call, with
// per-instance model matrices streamed through an instance-stepped vertex
// buffer.
package material

import (
	"fmt"

	"github.com/Dmajster/college-project-computer-graphics/common"
	"github.com/Dmajster/college-project-computer-graphics/engine/gfx"
	"github.com/Dmajster/college-project-computer-graphics/engine/model"
)

// instancedMaterial is the implementation of the InstancedMaterial interface.
type instancedMaterial struct {
	ctx     gfx.Context
	program gfx.Program

	positionBuffer gfx.Buffer
	instanceBuffer gfx.Buffer
	indexBuffer    gfx.Buffer
	vertexArray    gfx.VertexArray

	viewProjectionUniform string
	staticGeometry        bool

	// Identity of the mesh whose geometry is currently resident, used to
	// skip re-uploads when staticGeometry is set.
	uploadedMesh model.Mesh
}

// InstancedMaterial draws many instances of a mesh with a single shader
// program. Each Render call uploads the mesh geometry and the per-instance
// transforms, sets the view-projection uniform, and issues exactly one
// indexed instanced draw.
//
// The shader contract: the vertex stage consumes the position at location 0
// as a 3-component float vector and the instance model matrix as four
// 4-component float rows at locations 1 through 4.
type InstancedMaterial interface {
	// Render draws instanceCount copies of the mesh, where instanceCount is
	// the length of transforms. A zero-length transforms slice is valid and
	// issues a draw that renders nothing.
	//
	// A missing view-projection uniform in the shader is not an error; the
	// draw proceeds with whatever value the uniform buffer holds.
	//
	// Parameters:
	//   - mesh: the mesh to draw
	//   - transforms: one column-major model matrix per instance
	//   - viewProjection: the combined view-projection matrix, column-major
	//
	// Returns:
	//   - error: if an upload fails or the bound state is inconsistent
	Render(mesh model.Mesh, transforms [][16]float32, viewProjection [16]float32) error

	// RenderModel draws every mesh of the model with the same transforms and
	// view-projection matrix, issuing one draw per mesh.
	//
	// Parameters:
	//   - m: the model whose meshes to draw
	//   - transforms: one column-major model matrix per instance
	//   - viewProjection: the combined view-projection matrix, column-major
	//
	// Returns:
	//   - error: the first error from an individual mesh draw
	RenderModel(m model.Model, transforms [][16]float32, viewProjection [16]float32) error

	// Program retrieves the material's shader program, for setting
	// additional uniforms between draws.
	//
	// Returns:
	//   - gfx.Program: the linked program
	Program() gfx.Program

	// Destroy releases the material's GPU buffers. The material must not be
	// used afterwards.
	Destroy()
}

var _ InstancedMaterial = &instancedMaterial{}

func (im *instancedMaterial) Render(mesh model.Mesh, transforms [][16]float32, viewProjection [16]float32) error {
	if mesh == nil {
		return fmt.Errorf("render requires a mesh")
	}

	if err := im.program.Bind(); err != nil {
		return err
	}
	im.vertexArray.Bind()

	// Geometry buffers stay bound even when the upload is skipped so the
	// draw resolves against them.
	im.positionBuffer.Bind()
	im.indexBuffer.Bind()
	if !im.staticGeometry || im.uploadedMesh != mesh {
		if err := im.positionBuffer.SetData(common.SliceToBytes(mesh.Positions())); err != nil {
			return err
		}
		if err := im.indexBuffer.SetData(common.SliceToBytes(mesh.Indices())); err != nil {
			return err
		}
		im.uploadedMesh = mesh
	}

	im.instanceBuffer.Bind()
	if err := im.instanceBuffer.SetData(common.SliceToBytes(transforms)); err != nil {
		return err
	}

	// Shaders without the uniform render with stale or zero values, which is
	// intentional: a missing uniform never aborts the draw.
	im.program.SetUniformMat4(im.viewProjectionUniform, viewProjection)

	return im.ctx.DrawIndexedInstanced(len(mesh.Indices()), len(transforms))
}

func (im *instancedMaterial) RenderModel(m model.Model, transforms [][16]float32, viewProjection [16]float32) error {
	if m == nil {
		return fmt.Errorf("render requires a model")
	}
	for _, mesh := range m.Meshes() {
		if err := im.Render(mesh, transforms, viewProjection); err != nil {
			return fmt.Errorf("mesh %q: %w", mesh.Name(), err)
		}
	}
	return nil
}

func (im *instancedMaterial) Program() gfx.Program {
	return im.program
}

func (im *instancedMaterial) Destroy() {
	im.positionBuffer.Destroy()
	im.instanceBuffer.Destroy()
	im.indexBuffer.Destroy()
	im.uploadedMesh = nil
}
