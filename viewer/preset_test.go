package viewer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"ibl-renderer/scene"
)

func TestPresetSaveLoad(t *testing.T) {
	src := NewState(1200, 900)
	src.Camera.Position = mgl32.Vec3{1, 2, 3}
	src.Camera.Orient(-45, 20)
	src.Camera.FOV = 30
	src.Material.Albedo = mgl32.Vec3{0.5, 0.1, 0.2}
	src.Material.Metallic = 0.75
	src.Material.Roughness = 0.3
	src.Material.Textured = true
	src.Lights[2] = scene.PointLight{Position: mgl32.Vec3{-3, 4, 5}, Color: mgl32.Vec3{300, 300, 300}}

	path := filepath.Join(t.TempDir(), "preset.json")
	if err := SavePreset(src, path); err != nil {
		t.Fatalf("SavePreset: %v", err)
	}

	dst := NewState(800, 600)
	if err := LoadPreset(dst, path); err != nil {
		t.Fatalf("LoadPreset: %v", err)
	}
	if dst.Camera.Position != src.Camera.Position {
		t.Errorf("position: expected %v, got %v", src.Camera.Position, dst.Camera.Position)
	}
	if dst.Camera.Yaw != -45 || dst.Camera.Pitch != 20 || dst.Camera.FOV != 30 {
		t.Errorf("camera: expected yaw -45 pitch 20 fov 30, got %v %v %v", dst.Camera.Yaw, dst.Camera.Pitch, dst.Camera.FOV)
	}
	if !vecApprox(dst.Camera.Front(), src.Camera.Front(), 1e-5) {
		t.Errorf("front: expected %v, got %v", src.Camera.Front(), dst.Camera.Front())
	}
	if dst.Material != src.Material {
		t.Errorf("material: expected %+v, got %+v", src.Material, dst.Material)
	}
	if dst.Lights != src.Lights {
		t.Errorf("lights: expected %v, got %v", src.Lights, dst.Lights)
	}
	if dst.FramebufferWidth != 800 {
		t.Errorf("framebuffer: preset must not change it, got %d", dst.FramebufferWidth)
	}
}

func TestPresetApplyClamps(t *testing.T) {
	s := NewState(1200, 900)
	s.Apply(Preset{
		Version: PresetVersion,
		Camera:  cameraJSON{Pitch: 120, FOV: 90},
		Material: materialJSON{
			Albedo:    mgl32.Vec3{2, -1, 0.5},
			Roughness: 0,
			AO:        500,
		},
		Lights: []lightJSON{
			{Position: mgl32.Vec3{50, 0, 0}, Color: mgl32.Vec3{5000, 1, 1}},
			{}, {}, {}, {Color: mgl32.Vec3{1, 1, 1}},
		},
	})
	if s.Camera.Pitch != 89 {
		t.Errorf("pitch: expected 89, got %v", s.Camera.Pitch)
	}
	if s.Camera.FOV != scene.MaxFOV {
		t.Errorf("fov: expected %v, got %v", scene.MaxFOV, s.Camera.FOV)
	}
	if s.Material.Albedo != (mgl32.Vec3{1, 0, 0.5}) {
		t.Errorf("albedo: expected (1,0,0.5), got %v", s.Material.Albedo)
	}
	if s.Material.Roughness != scene.MinRoughness || s.Material.AO != scene.MaxAO {
		t.Errorf("material: expected roughness %v ao %v, got %v %v", scene.MinRoughness, scene.MaxAO, s.Material.Roughness, s.Material.AO)
	}
	if s.Lights[0].Position[0] != scene.LightRange || s.Lights[0].Color[0] != scene.MaxLightFlux {
		t.Errorf("light 0: expected clamp, got %+v", s.Lights[0])
	}
}

func TestLoadPresetErrors(t *testing.T) {
	s := NewState(1200, 900)
	dir := t.TempDir()
	if err := LoadPreset(s, filepath.Join(dir, "missing.json")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file: expected not-exist error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"Version": 7}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadPreset(s, bad); err == nil {
		t.Error("version 7: expected error")
	}

	garbage := filepath.Join(dir, "garbage.json")
	if err := os.WriteFile(garbage, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadPreset(s, garbage); err == nil {
		t.Error("garbage: expected error")
	}
}
