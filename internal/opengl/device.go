// Package opengl is the OpenGL 4.1 backend: the precompute device, shader
// programs, texture uploads, and the per-frame shading stage.
package opengl

import (
	"fmt"
	"io/fs"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"ibl-renderer/ibl"
)

// Device runs the precompute passes on the current GL context. It owns one
// framebuffer with a depth renderbuffer, and the capture cube and screen
// quad geometry.
type Device struct {
	fbo uint32
	rbo uint32

	cubeVAO, cubeVBO uint32
	quadVAO, quadVBO uint32
}

// 36 positions (xyz) for a unit cube, CCW from the outside. Capture draws
// see the inside faces, so culling must be off.
var cubeVerts = []float32{
	// -Z face
	-1, -1, -1, 1, 1, -1, 1, -1, -1,
	1, 1, -1, -1, -1, -1, -1, 1, -1,
	// +Z face
	-1, -1, 1, 1, -1, 1, 1, 1, 1,
	1, 1, 1, -1, 1, 1, -1, -1, 1,
	// -X face
	-1, 1, 1, -1, 1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, 1, -1, 1, 1,
	// +X face
	1, 1, 1, 1, -1, -1, 1, 1, -1,
	1, -1, -1, 1, 1, 1, 1, -1, 1,
	// -Y face
	-1, -1, -1, 1, -1, -1, 1, -1, 1,
	1, -1, 1, -1, -1, 1, -1, -1, -1,
	// +Y face
	-1, 1, -1, 1, 1, 1, 1, 1, -1,
	1, 1, 1, -1, 1, -1, -1, 1, 1,
}

// Screen quad as a triangle strip: position xyz, uv.
var quadVerts = []float32{
	-1, 1, 0, 0, 1,
	-1, -1, 0, 0, 0,
	1, 1, 0, 1, 1,
	1, -1, 0, 1, 0,
}

// NewDevice creates the capture framebuffer and geometry. A GL context must
// be current.
func NewDevice() *Device {
	d := &Device{}

	gl.GenFramebuffers(1, &d.fbo)
	gl.GenRenderbuffers(1, &d.rbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, d.fbo)
	gl.BindRenderbuffer(gl.RENDERBUFFER, d.rbo)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, 1, 1)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, d.rbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	d.cubeVAO, d.cubeVBO = newVertexArray(cubeVerts, 3)
	d.quadVAO, d.quadVBO = newVertexArray(quadVerts, 3, 2)
	return d
}

// newVertexArray uploads interleaved float attributes with the given
// component counts at locations 0, 1, ...
func newVertexArray(data []float32, sizes ...int32) (vao, vbo uint32) {
	var stride int32
	for _, s := range sizes {
		stride += s * 4
	}

	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	offset := 0
	for i, s := range sizes {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), s, gl.FLOAT, false, stride, gl.PtrOffset(offset))
		offset += int(s) * 4
	}
	gl.BindVertexArray(0)
	return vao, vbo
}

// Programs compiles the four precompute programs from fsys.
func (d *Device) Programs(fsys fs.FS) (ibl.Programs, error) {
	var progs ibl.Programs
	for _, p := range []struct {
		dst              *ibl.Program
		name, vert, frag string
	}{
		{&progs.Equirect, "equirect", "cube.vert.glsl", "equirect.frag.glsl"},
		{&progs.Irradiance, "irradiance", "cube.vert.glsl", "irradiance.frag.glsl"},
		{&progs.Prefilter, "prefilter", "cube.vert.glsl", "prefilter.frag.glsl"},
		{&progs.BRDF, "brdf", "quad.vert.glsl", "brdf.frag.glsl"},
	} {
		prog, err := LoadProgram(fsys, p.name, p.vert, p.frag)
		if err != nil {
			DeletePrograms(progs)
			return ibl.Programs{}, err
		}
		*p.dst = prog
	}
	return progs, nil
}

// DeletePrograms releases every GL program in progs.
func DeletePrograms(progs ibl.Programs) {
	for _, p := range []ibl.Program{progs.Equirect, progs.Irradiance, progs.Prefilter, progs.BRDF} {
		if prog, ok := p.(*Program); ok && prog != nil {
			prog.Delete()
		}
	}
}

func (d *Device) BindTarget()   { gl.BindFramebuffer(gl.FRAMEBUFFER, d.fbo) }
func (d *Device) UnbindTarget() { gl.BindFramebuffer(gl.FRAMEBUFFER, 0) }

func (d *Device) ResizeDepth(width, height int) {
	gl.BindRenderbuffer(gl.RENDERBUFFER, d.rbo)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
}

func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// AttachColor attaches one face and level of tex as colour attachment 0 and
// checks framebuffer completeness.
func (d *Device) AttachColor(tex ibl.Texture, face ibl.Face, mip int) error {
	t, ok := tex.(*Texture)
	if !ok {
		return fmt.Errorf("attach: %T is not a GL texture", tex)
	}
	target := uint32(gl.TEXTURE_2D)
	if face != ibl.Face2D {
		target = gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(face)
	}
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, target, t.ID, int32(mip))

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("capture FBO incomplete (%s %s mip %d): status=0x%X", t.Label, face, mip, status)
	}
	return nil
}

func (d *Device) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) NewCubeMap(desc ibl.TextureDesc) (ibl.Texture, error) {
	return newTexture(desc, true)
}

func (d *Device) NewTexture2D(desc ibl.TextureDesc) (ibl.Texture, error) {
	return newTexture(desc, false)
}

func (d *Device) GenerateMipmaps(tex ibl.Texture) {
	t := tex.(*Texture)
	gl.BindTexture(t.target, t.ID)
	gl.GenerateMipmap(t.target)
	gl.BindTexture(t.target, 0)
}

func (d *Device) BindTexture(unit int, tex ibl.Texture) {
	tex.(*Texture).Bind(unit)
}

func (d *Device) DrawCube() {
	gl.BindVertexArray(d.cubeVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.BindVertexArray(0)
}

func (d *Device) DrawQuad() {
	gl.BindVertexArray(d.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
}

// Destroy frees the framebuffer and geometry.
func (d *Device) Destroy() {
	gl.DeleteFramebuffers(1, &d.fbo)
	gl.DeleteRenderbuffers(1, &d.rbo)
	gl.DeleteVertexArrays(1, &d.cubeVAO)
	gl.DeleteBuffers(1, &d.cubeVBO)
	gl.DeleteVertexArrays(1, &d.quadVAO)
	gl.DeleteBuffers(1, &d.quadVBO)
}
