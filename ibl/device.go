package ibl

import "github.com/go-gl/mathgl/mgl32"

// Program is a compiled shader program with named uniform setters.
// Use must be called before a draw; uniform setters apply to the program
// they are called on.
type Program interface {
	Use()
	SetInt(name string, v int32)
	SetFloat(name string, v float32)
	SetVec3(name string, v mgl32.Vec3)
	SetMat4(name string, m mgl32.Mat4)
}

// Format is the texel format of a precomputed texture.
type Format int

const (
	FormatRGB16F Format = iota
	FormatRG16F
)

// Filter is the minification filter of a texture.
type Filter int

const (
	FilterLinear Filter = iota
	FilterLinearMipmapLinear
)

// TextureDesc describes a square 2D texture or cube map.
type TextureDesc struct {
	Label  string
	Size   int
	Levels int
	Format Format
	Min    Filter
}

// Texture is a device-owned image.
type Texture interface {
	Size() int   // edge length of mip 0
	Levels() int // allocated mip levels
	Cube() bool
}

// TargetDevice is the narrow set of operations the render target drives.
type TargetDevice interface {
	BindTarget()
	UnbindTarget()
	ResizeDepth(width, height int)
	Viewport(width, height int)
	AttachColor(tex Texture, face Face, mip int) error
	Clear()
}

// Device is everything the precompute pipeline needs from a backend.
type Device interface {
	TargetDevice

	NewCubeMap(desc TextureDesc) (Texture, error)
	NewTexture2D(desc TextureDesc) (Texture, error)
	GenerateMipmaps(tex Texture)
	BindTexture(unit int, tex Texture)

	// DrawCube draws the 36-vertex capture cube with the current program.
	DrawCube()
	// DrawQuad draws a full-screen quad with the current program.
	DrawQuad()
}
