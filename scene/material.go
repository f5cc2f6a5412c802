package scene

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
)

// NumLights is the number of point lights the shading stage evaluates.
const NumLights = 4

// Slider ranges exposed in the options UI.
const (
	MinRoughness = 0.05
	MaxAO        = 100
	MaxLightFlux = 1000
	LightRange   = 10
)

// MaterialParams describes the untextured sphere surface.
type MaterialParams struct {
	Albedo    mgl32.Vec3
	Metallic  float32 // 0 = dielectric, 1 = fully metallic
	Roughness float32 // [MinRoughness, 1]
	AO        float32
	Textured  bool // sample the material texture set instead
	Divisions float32
}

// DefaultMaterial returns a smooth white dielectric.
func DefaultMaterial() MaterialParams {
	return MaterialParams{
		Albedo:    mgl32.Vec3{1, 1, 1},
		Roughness: MinRoughness,
		Divisions: 1,
	}
}

// Clamp forces every field into its UI range.
func (m *MaterialParams) Clamp() {
	for i := range m.Albedo {
		m.Albedo[i] = mgl32.Clamp(m.Albedo[i], 0, 1)
	}
	m.Metallic = mgl32.Clamp(m.Metallic, 0, 1)
	m.Roughness = mgl32.Clamp(m.Roughness, MinRoughness, 1)
	m.AO = mgl32.Clamp(m.AO, 0, MaxAO)
	if m.Divisions <= 0 {
		m.Divisions = 1
	}
}

// PointLight is a point emitter with inverse-square falloff. Color is
// radiant flux per channel.
type PointLight struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Clamp forces the light into its UI range.
func (l *PointLight) Clamp() {
	for i := 0; i < 3; i++ {
		l.Position[i] = mgl32.Clamp(l.Position[i], -LightRange, LightRange)
		l.Color[i] = mgl32.Clamp(l.Color[i], 0, MaxLightFlux)
	}
}

// MaterialTextures is the textured-mode set, bound to units 0-4 in this
// order.
type MaterialTextures struct {
	Albedo    *Texture
	Normal    *Texture
	Metallic  *Texture
	Roughness *Texture
	AO        *Texture
}

// MaterialTextureNames lists the files LoadMaterialTextures expects, in
// binding order.
var MaterialTextureNames = [5]string{"albedo.png", "normal.png", "metallic.png", "roughness.png", "ao.png"}

// All returns the textures in binding order.
func (t *MaterialTextures) All() [5]*Texture {
	return [5]*Texture{t.Albedo, t.Normal, t.Metallic, t.Roughness, t.AO}
}

// LoadMaterialTextures reads the five material maps from dir. Material
// textures are not flipped.
func LoadMaterialTextures(dir string) (*MaterialTextures, error) {
	var loaded [5]*Texture
	for i, name := range MaterialTextureNames {
		tex, err := LoadTexture(filepath.Join(dir, name), false)
		if err != nil {
			return nil, fmt.Errorf("material map %s: %w", name, err)
		}
		loaded[i] = tex
	}
	return &MaterialTextures{
		Albedo:    loaded[0],
		Normal:    loaded[1],
		Metallic:  loaded[2],
		Roughness: loaded[3],
		AO:        loaded[4],
	}, nil
}

// FlatMaterialTextures returns 1x1 maps for a white rough dielectric with a
// flat normal.
func FlatMaterialTextures() *MaterialTextures {
	return &MaterialTextures{
		Albedo:    NewSolidTexture("albedo", 255, 255, 255, 255),
		Normal:    NewSolidTexture("normal", 128, 128, 255, 255),
		Metallic:  NewSolidTexture("metallic", 0, 0, 0, 255),
		Roughness: NewSolidTexture("roughness", 255, 255, 255, 255),
		AO:        NewSolidTexture("ao", 255, 255, 255, 255),
	}
}
