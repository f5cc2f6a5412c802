package ibl

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// recorder is a Device that logs every call instead of rendering.

type fakeTexture struct {
	desc TextureDesc
	cube bool
}

func (t *fakeTexture) Size() int   { return t.desc.Size }
func (t *fakeTexture) Levels() int { return t.desc.Levels }
func (t *fakeTexture) Cube() bool  { return t.cube }

type attachCall struct {
	tex    *fakeTexture
	face   Face
	mip    int
	depthW int
	depthH int
	viewW  int
	viewH  int
}

type drawCall struct {
	kind   string
	prog   *fakeProgram
	att    attachCall
	view   mgl32.Mat4
	rough  float32
	bound  Texture
	clears int
}

type recorder struct {
	textures []*fakeTexture
	attaches []attachCall
	draws    []drawCall
	mipmaps  []*fakeTexture
	events   []string

	depthW, depthH int
	viewW, viewH   int
	bound          map[int]Texture
	current        *fakeProgram
	clears         int
	failAttach     bool
}

func newRecorder() *recorder {
	return &recorder{bound: make(map[int]Texture)}
}

func (r *recorder) BindTarget()   {}
func (r *recorder) UnbindTarget() { r.events = append(r.events, "unbind") }

func (r *recorder) ResizeDepth(w, h int) { r.depthW, r.depthH = w, h }
func (r *recorder) Viewport(w, h int)    { r.viewW, r.viewH = w, h }

func (r *recorder) AttachColor(tex Texture, face Face, mip int) error {
	if r.failAttach {
		return fmt.Errorf("framebuffer incomplete: status=0x%X", 0x8CD6)
	}
	r.attaches = append(r.attaches, attachCall{
		tex: tex.(*fakeTexture), face: face, mip: mip,
		depthW: r.depthW, depthH: r.depthH, viewW: r.viewW, viewH: r.viewH,
	})
	return nil
}

func (r *recorder) Clear() { r.clears++ }

func (r *recorder) NewCubeMap(desc TextureDesc) (Texture, error) {
	t := &fakeTexture{desc: desc, cube: true}
	r.textures = append(r.textures, t)
	r.events = append(r.events, "new:"+desc.Label)
	return t, nil
}

func (r *recorder) NewTexture2D(desc TextureDesc) (Texture, error) {
	t := &fakeTexture{desc: desc}
	r.textures = append(r.textures, t)
	r.events = append(r.events, "new:"+desc.Label)
	return t, nil
}

func (r *recorder) GenerateMipmaps(tex Texture) {
	r.mipmaps = append(r.mipmaps, tex.(*fakeTexture))
	r.events = append(r.events, "mipmaps:"+tex.(*fakeTexture).desc.Label)
}

func (r *recorder) BindTexture(unit int, tex Texture) { r.bound[unit] = tex }

func (r *recorder) draw(kind string) {
	d := drawCall{kind: kind, prog: r.current, bound: r.bound[UnitSource], clears: r.clears}
	if len(r.attaches) > 0 {
		d.att = r.attaches[len(r.attaches)-1]
	}
	if r.current != nil {
		d.view = r.current.mats["view"]
		d.rough = r.current.floats["roughness"]
	}
	r.draws = append(r.draws, d)
	r.events = append(r.events, "draw:"+kind)
}

func (r *recorder) DrawCube() { r.draw("cube") }
func (r *recorder) DrawQuad() { r.draw("quad") }

type fakeProgram struct {
	name   string
	dev    *recorder
	ints   map[string]int32
	floats map[string]float32
	vecs   map[string]mgl32.Vec3
	mats   map[string]mgl32.Mat4
}

func newFakeProgram(dev *recorder, name string) *fakeProgram {
	return &fakeProgram{
		name:   name,
		dev:    dev,
		ints:   make(map[string]int32),
		floats: make(map[string]float32),
		vecs:   make(map[string]mgl32.Vec3),
		mats:   make(map[string]mgl32.Mat4),
	}
}

func (p *fakeProgram) Use()                              { p.dev.current = p }
func (p *fakeProgram) SetInt(name string, v int32)       { p.ints[name] = v }
func (p *fakeProgram) SetFloat(name string, v float32)   { p.floats[name] = v }
func (p *fakeProgram) SetVec3(name string, v mgl32.Vec3) { p.vecs[name] = v }
func (p *fakeProgram) SetMat4(name string, m mgl32.Mat4) { p.mats[name] = m }

func fakePrograms(dev *recorder) Programs {
	return Programs{
		Equirect:   newFakeProgram(dev, "equirect"),
		Irradiance: newFakeProgram(dev, "irradiance"),
		Prefilter:  newFakeProgram(dev, "prefilter"),
		BRDF:       newFakeProgram(dev, "brdf"),
	}
}
