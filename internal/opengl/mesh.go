package opengl

import (
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"ibl-renderer/core"
	"ibl-renderer/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
	vertCount  int32
}

// UploadMesh uploads mesh and stores the result in mesh.GPUData. Calling it
// again returns the existing upload.
func UploadMesh(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := mesh.GPUData.(*GPUMesh); ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
		vertCount:  int32(len(mesh.Vertices)),
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(mesh.Vertices)*int(stride),
		gl.Ptr(mesh.Vertices),
		gl.STATIC_DRAW)

	var v core.Vertex
	attribs := []struct {
		loc  uint32
		size int32
		off  uintptr
	}{
		{core.AttribPosition, 3, unsafe.Offsetof(v.Position)},
		{core.AttribNormal, 3, unsafe.Offsetof(v.Normal)},
		{core.AttribUV, 2, unsafe.Offsetof(v.UV)},
		{core.AttribTangent, 3, unsafe.Offsetof(v.Tangent)},
		{core.AttribBitangent, 3, unsafe.Offsetof(v.Bitangent)},
	}
	for _, a := range attribs {
		gl.EnableVertexAttribArray(a.loc)
		gl.VertexAttribPointer(a.loc, a.size, gl.FLOAT, false, stride, gl.PtrOffset(int(a.off)))
	}

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
			len(mesh.Indices)*4,
			gl.Ptr(mesh.Indices),
			gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	mesh.GPUData = gpu
	return gpu
}

// Draw issues the mesh's triangles with the current program.
func (g *GPUMesh) Draw() {
	gl.BindVertexArray(g.VAO)
	if g.HasIndices {
		gl.DrawElements(gl.TRIANGLES, g.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, g.vertCount)
	}
	gl.BindVertexArray(0)
}

// Delete frees the GPU buffers.
func (g *GPUMesh) Delete() {
	gl.DeleteVertexArrays(1, &g.VAO)
	gl.DeleteBuffers(1, &g.VBO)
	if g.HasIndices {
		gl.DeleteBuffers(1, &g.EBO)
	}
}
