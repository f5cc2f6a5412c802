package viewer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"ibl-renderer/scene"
)

// PresetVersion is written into every saved preset.
const PresetVersion = 1

type cameraJSON struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
	FOV      float32
}

type materialJSON struct {
	Albedo    mgl32.Vec3
	Metallic  float32
	Roughness float32
	AO        float32
	Textured  bool
}

type lightJSON struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Preset is the user-editable part of a State as stored on disk.
type Preset struct {
	Version  int
	Camera   cameraJSON
	Material materialJSON
	Lights   []lightJSON
}

// Snapshot captures the camera, material and lights of s.
func (s *State) Snapshot() Preset {
	p := Preset{
		Version: PresetVersion,
		Camera: cameraJSON{
			Position: s.Camera.Position,
			Yaw:      s.Camera.Yaw,
			Pitch:    s.Camera.Pitch,
			FOV:      s.Camera.FOV,
		},
		Material: materialJSON{
			Albedo:    s.Material.Albedo,
			Metallic:  s.Material.Metallic,
			Roughness: s.Material.Roughness,
			AO:        s.Material.AO,
			Textured:  s.Material.Textured,
		},
	}
	for _, l := range s.Lights {
		p.Lights = append(p.Lights, lightJSON{Position: l.Position, Color: l.Color})
	}
	return p
}

// Apply copies p into s. Values are clamped to their UI ranges; lights
// beyond the fourth are ignored and missing ones are left unchanged.
func (s *State) Apply(p Preset) {
	s.Camera.Position = p.Camera.Position
	s.Camera.Orient(p.Camera.Yaw, p.Camera.Pitch)
	s.Camera.FOV = mgl32.Clamp(p.Camera.FOV, scene.MinFOV, scene.MaxFOV)

	s.Material.Albedo = p.Material.Albedo
	s.Material.Metallic = p.Material.Metallic
	s.Material.Roughness = p.Material.Roughness
	s.Material.AO = p.Material.AO
	s.Material.Textured = p.Material.Textured

	for i, l := range p.Lights {
		if i >= len(s.Lights) {
			break
		}
		s.Lights[i] = scene.PointLight{Position: l.Position, Color: l.Color}
	}
	s.Sanitize()
}

// SavePreset writes the camera, material and lights of s to path as JSON.
func SavePreset(s *State, path string) error {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write preset %q: %w", path, err)
	}
	return nil
}

// LoadPreset reads a preset written by SavePreset and applies it to s.
func LoadPreset(s *State, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read preset %q: %w", path, err)
	}
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("unmarshal preset: %w", err)
	}
	if p.Version != PresetVersion {
		return fmt.Errorf("preset %q: version %d, want %d", path, p.Version, PresetVersion)
	}
	s.Apply(p)
	return nil
}
