package core

import "github.com/go-gl/mathgl/mgl32"

// Vertex is the interleaved layout uploaded for display meshes.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	UV        mgl32.Vec2
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

// Vertex attribute locations shared by the mesh upload and the shaders.
const (
	AttribPosition uint32 = iota
	AttribNormal
	AttribUV
	AttribTangent
	AttribBitangent
)
