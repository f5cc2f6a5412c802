package software

import (
	"github.com/go-gl/mathgl/mgl32"

	"ibl-renderer/ibl"
)

// Fragment carries the interpolated inputs of one pixel.
type Fragment struct {
	Dir mgl32.Vec3 // world direction for cube draws
	UV  mgl32.Vec2 // [0,1]² screen coordinate
}

type shadeFunc func(p *Program, f Fragment) mgl32.Vec4

// Program is a fragment program written in Go. Uniforms are stored by name
// and read by the shade function during a draw.
type Program struct {
	name   string
	dev    *Device
	ints   map[string]int32
	floats map[string]float32
	vecs   map[string]mgl32.Vec3
	mats   map[string]mgl32.Mat4
	shade  shadeFunc
}

func (d *Device) newProgram(name string, shade shadeFunc) *Program {
	return &Program{
		name:   name,
		dev:    d,
		ints:   make(map[string]int32),
		floats: make(map[string]float32),
		vecs:   make(map[string]mgl32.Vec3),
		mats:   make(map[string]mgl32.Mat4),
		shade:  shade,
	}
}

func (p *Program) Use()                              { p.dev.current = p }
func (p *Program) SetInt(name string, v int32)       { p.ints[name] = v }
func (p *Program) SetFloat(name string, v float32)   { p.floats[name] = v }
func (p *Program) SetVec3(name string, v mgl32.Vec3) { p.vecs[name] = v }
func (p *Program) SetMat4(name string, m mgl32.Mat4) { p.mats[name] = m }

// Name returns the program label.
func (p *Program) Name() string { return p.name }

func (p *Program) cube(sampler string) *Texture {
	t, _ := p.dev.units[p.ints[sampler]].(*Texture)
	return t
}

func (p *Program) panorama(sampler string) *Panorama {
	t, _ := p.dev.units[p.ints[sampler]].(*Panorama)
	return t
}

// Programs returns the four precompute programs bound to d.
func (d *Device) Programs() ibl.Programs {
	return ibl.Programs{
		Equirect:   d.newProgram("equirect", shadeEquirect),
		Irradiance: d.newProgram("irradiance", shadeIrradiance),
		Prefilter:  d.newProgram("prefilter", shadePrefilter),
		BRDF:       d.newProgram("brdf", shadeBRDF),
	}
}

// ConstantProgram returns a program that writes c to every pixel.
func (d *Device) ConstantProgram(c mgl32.Vec3) ibl.Program {
	return d.newProgram("constant", func(*Program, Fragment) mgl32.Vec4 {
		return c.Vec4(1)
	})
}
