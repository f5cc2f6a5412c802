package opengl

import (
	"fmt"
	"io/fs"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"ibl-renderer/ibl"
	"ibl-renderer/ibl/software"
	"ibl-renderer/scene"
	"ibl-renderer/viewer"
)

// Maps are the precomputed lighting textures as GL objects.
type Maps struct {
	Environment *Texture
	Irradiance  *Texture
	Prefiltered *Texture
	BRDFLUT     *Texture
}

// MapsFromResources unwraps pipeline output produced on a GL device.
func MapsFromResources(res *ibl.Resources) (Maps, error) {
	var m Maps
	for _, p := range []struct {
		dst  **Texture
		src  ibl.Texture
		name string
	}{
		{&m.Environment, res.Environment, "environment"},
		{&m.Irradiance, res.Irradiance, "irradiance"},
		{&m.Prefiltered, res.Prefiltered, "prefiltered"},
		{&m.BRDFLUT, res.BRDFLUT, "brdf lut"},
	} {
		t, ok := p.src.(*Texture)
		if !ok {
			return Maps{}, fmt.Errorf("%s: %T is not a GL texture", p.name, p.src)
		}
		*p.dst = t
	}
	return m, nil
}

// UploadResources copies pipeline output produced on the CPU device.
func UploadResources(res *ibl.Resources) (Maps, error) {
	var m Maps
	for _, p := range []struct {
		dst  **Texture
		src  ibl.Texture
		name string
	}{
		{&m.Environment, res.Environment, "environment"},
		{&m.Irradiance, res.Irradiance, "irradiance"},
		{&m.Prefiltered, res.Prefiltered, "prefiltered"},
		{&m.BRDFLUT, res.BRDFLUT, "brdf lut"},
	} {
		st, ok := p.src.(*software.Texture)
		if !ok {
			m.Delete()
			return Maps{}, fmt.Errorf("%s: %T is not a CPU texture", p.name, p.src)
		}
		t, err := UploadSoftware(st)
		if err != nil {
			m.Delete()
			return Maps{}, fmt.Errorf("%s: %w", p.name, err)
		}
		*p.dst = t
	}
	return m, nil
}

func (m *Maps) Delete() {
	m.Environment.Delete()
	m.Irradiance.Delete()
	m.Prefiltered.Delete()
	m.BRDFLUT.Delete()
}

// ShadingStage draws the display mesh with Cook-Torrance PBR lit by four
// point lights and the precomputed maps, then the skybox.
type ShadingStage struct {
	plain    *Program
	textured *Program
	skybox   *Skybox

	maps     Maps
	material [5]*Texture // units 0-4
	mesh     *GPUMesh
	maxLod   float32
}

// NewShadingStage compiles the shading programs, uploads the material maps
// and the display mesh, and takes ownership of maps.
func NewShadingStage(fsys fs.FS, dev *Device, maps Maps, material *scene.MaterialTextures, mesh *scene.Mesh) (*ShadingStage, error) {
	s := &ShadingStage{maps: maps, maxLod: float32(maps.Prefiltered.Levels() - 1)}

	var err error
	if s.plain, err = LoadProgram(fsys, "pbr", "pbr.vert.glsl", "pbr.frag.glsl"); err != nil {
		return nil, err
	}
	if s.textured, err = LoadProgram(fsys, "pbr_textured", "pbr.vert.glsl", "pbr_textured.frag.glsl"); err != nil {
		s.plain.Delete()
		return nil, err
	}
	if s.skybox, err = NewSkybox(fsys, dev); err != nil {
		s.plain.Delete()
		s.textured.Delete()
		return nil, err
	}

	for i, tex := range material.All() {
		t, err := UploadTexture(tex)
		if err != nil {
			s.Destroy()
			return nil, fmt.Errorf("material map %s: %w", scene.MaterialTextureNames[i], err)
		}
		s.material[i] = t
	}

	if s.mesh = UploadMesh(mesh); s.mesh == nil {
		s.Destroy()
		return nil, fmt.Errorf("display mesh %q has no vertices", mesh.Name)
	}

	for _, p := range []*Program{s.plain, s.textured} {
		p.Use()
		p.SetInt("irradianceMap", ibl.UnitIrradiance)
		p.SetInt("prefilterMap", ibl.UnitPrefilter)
		p.SetInt("brdfLUT", ibl.UnitBRDF)
		p.SetFloat("maxReflectionLod", s.maxLod)
	}
	s.textured.Use()
	for i, name := range []string{"Albedo", "normalMap", "Metallic", "Roughness", "AO"} {
		s.textured.SetInt(name, int32(i))
	}
	return s, nil
}

// Draw renders one frame of st into the current framebuffer.
func (s *ShadingStage) Draw(st *viewer.State) {
	gl.Viewport(0, 0, int32(st.FramebufferWidth), int32(st.FramebufferHeight))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	view, proj := st.View(), st.Projection()
	mat := st.Material

	p := s.plain
	if mat.Textured {
		p = s.textured
		for i, t := range s.material {
			t.Bind(i)
		}
	}
	p.Use()
	p.SetMat4("model", st.Model)
	p.SetMat4("view", view)
	p.SetMat4("projection", proj)
	p.SetVec3("camPos", st.Camera.Position)
	p.SetFloat("Divisions", mat.Divisions)
	if !mat.Textured {
		p.SetVec3("Albedo", mat.Albedo)
		p.SetFloat("Metallic", mat.Metallic)
		p.SetFloat("Roughness", mat.Roughness)
		p.SetFloat("AO", mat.AO)
	}
	for i, l := range st.Lights {
		p.SetVec3(fmt.Sprintf("lightPositions[%d]", i), l.Position)
		p.SetVec3(fmt.Sprintf("lightColors[%d]", i), l.Color)
	}

	s.maps.Irradiance.Bind(ibl.UnitIrradiance)
	s.maps.Prefiltered.Bind(ibl.UnitPrefilter)
	s.maps.BRDFLUT.Bind(ibl.UnitBRDF)
	s.mesh.Draw()

	s.skybox.Draw(s.maps.Environment, view, proj)
}

// Destroy frees programs, textures and the mesh upload.
func (s *ShadingStage) Destroy() {
	for _, p := range []*Program{s.plain, s.textured} {
		if p != nil {
			p.Delete()
		}
	}
	if s.skybox != nil {
		s.skybox.Destroy()
	}
	for _, t := range s.material {
		t.Delete()
	}
	if s.mesh != nil {
		s.mesh.Delete()
	}
	s.maps.Delete()
}
