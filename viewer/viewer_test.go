package viewer

import (
	"errors"
	"flag"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"ibl-renderer/ibl"
	"ibl-renderer/scene"
)

type fakeInput struct {
	active map[Action]bool
	closed bool
}

func (f *fakeInput) Active(a Action) bool { return f.active[a] }
func (f *fakeInput) Close()               { f.closed = true }

func newTestController() (*State, *fakeInput, *Controller) {
	s := NewState(1200, 900)
	in := &fakeInput{active: map[Action]bool{}}
	return s, in, NewController(s, in)
}

func TestFirstCursorEventDoesNotJump(t *testing.T) {
	s, in, c := newTestController()
	in.active[Look] = true

	c.OnCursor(500, 300)
	if s.Camera.Yaw != -90 || s.Camera.Pitch != 0 {
		t.Errorf("first event: expected no rotation, got yaw %v pitch %v", s.Camera.Yaw, s.Camera.Pitch)
	}

	c.OnCursor(510, 290)
	if !approxEq(s.Camera.Yaw, -89) || !approxEq(s.Camera.Pitch, 1) {
		t.Errorf("second event: expected yaw -89 pitch 1, got yaw %v pitch %v", s.Camera.Yaw, s.Camera.Pitch)
	}
}

func TestCursorRequiresLook(t *testing.T) {
	s, in, c := newTestController()
	c.OnCursor(0, 0)
	c.OnCursor(100, 100)
	if s.Camera.Yaw != -90 {
		t.Errorf("without Look: expected yaw -90, got %v", s.Camera.Yaw)
	}

	// the position is still tracked, so pressing Look later does not jump
	in.active[Look] = true
	c.OnCursor(110, 100)
	if !approxEq(s.Camera.Yaw, -89) {
		t.Errorf("after Look: expected yaw -89, got %v", s.Camera.Yaw)
	}
}

func TestScrollClampsFOV(t *testing.T) {
	s, _, c := newTestController()
	c.OnScroll(0, 10)
	if s.Camera.FOV != 35 {
		t.Errorf("scroll 10: expected 35, got %v", s.Camera.FOV)
	}
	for i := 0; i < 10; i++ {
		c.OnScroll(0, 10)
	}
	if s.Camera.FOV != scene.MinFOV {
		t.Errorf("scroll in: expected %v, got %v", scene.MinFOV, s.Camera.FOV)
	}
	c.OnScroll(0, -1000)
	if s.Camera.FOV != scene.MaxFOV {
		t.Errorf("scroll out: expected %v, got %v", scene.MaxFOV, s.Camera.FOV)
	}
}

func TestUpdateMovesWithDeltaTime(t *testing.T) {
	s, in, c := newTestController()
	c.Update(10)
	if s.DeltaTime != 0 {
		t.Errorf("first frame: expected zero delta, got %v", s.DeltaTime)
	}

	in.active[MoveForward] = true
	c.Update(10.5)
	if !approxEq(s.DeltaTime, 0.5) {
		t.Errorf("delta: expected 0.5, got %v", s.DeltaTime)
	}
	if !vecApprox(s.Camera.Position, mgl32.Vec3{0, 0, -1.25}, 1e-5) {
		t.Errorf("forward: expected (0,0,-1.25), got %v", s.Camera.Position)
	}

	in.active[MoveForward] = false
	in.active[MoveBackward] = true
	in.active[MoveLeft] = true
	c.Update(11.5)
	if !vecApprox(s.Camera.Position, mgl32.Vec3{-2.5, 0, 1.25}, 1e-5) {
		t.Errorf("back+left: expected (-2.5,0,1.25), got %v", s.Camera.Position)
	}
	if s.Frames() != 3 {
		t.Errorf("frames: expected 3, got %d", s.Frames())
	}
}

func TestQuitClosesWindow(t *testing.T) {
	_, in, c := newTestController()
	c.Update(0)
	if in.closed {
		t.Fatal("closed without Quit")
	}
	in.active[Quit] = true
	c.Update(0.1)
	if !in.closed {
		t.Error("Quit: expected Close to be called")
	}
}

func TestResizeChangesAspect(t *testing.T) {
	s, _, c := newTestController()
	if !approxEq(s.Aspect(), 1200.0/900.0) {
		t.Errorf("initial aspect: expected 4/3, got %v", s.Aspect())
	}
	c.OnResize(800, 800)
	if s.Aspect() != 1 {
		t.Errorf("square: expected 1, got %v", s.Aspect())
	}
	c.OnResize(0, 0)
	if s.Aspect() != 1 {
		t.Errorf("minimised: expected 1, got %v", s.Aspect())
	}
	p := s.Projection()
	if !approxEq(p[5]/p[0], 1) {
		t.Errorf("projection aspect: expected 1, got %v", p[5]/p[0])
	}
}

func TestDisplayTransform(t *testing.T) {
	m := DisplayTransform()
	// the sphere's +Z pole ends up pointing down -Y
	north := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 1}, m)
	if !vecApprox(north, mgl32.Vec3{0, -1, -2}, 1e-5) {
		t.Errorf("north pole: expected (0,-1,-2), got %v", north)
	}
}

func TestInitialState(t *testing.T) {
	s := NewState(1200, 900)
	for i, l := range s.Lights {
		if l.Color != (mgl32.Vec3{}) || l.Position != (mgl32.Vec3{}) {
			t.Errorf("light %d: expected black at origin, got %+v", i, l)
		}
	}
	if s.Material.Textured {
		t.Error("expected untextured material")
	}
	s.Material.Roughness = 0
	s.Lights[2].Color = mgl32.Vec3{5000, 0, 0}
	s.Sanitize()
	if s.Material.Roughness != scene.MinRoughness || s.Lights[2].Color[0] != scene.MaxLightFlux {
		t.Errorf("Sanitize: got roughness %v light %v", s.Material.Roughness, s.Lights[2].Color)
	}
}

func TestConfigFlags(t *testing.T) {
	cfg := DefaultConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	err := fs.Parse([]string{"-hdr", "sky.hdr", "-prefilter-levels", "6", "-irradiance-delta", "0.05", "-software"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HDRPath != "sky.hdr" || cfg.IBL.PrefilterLevels != 6 || !cfg.Software {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.IBL.IrradianceDelta != 0.05 {
		t.Errorf("irradiance-delta: expected 0.05, got %v", cfg.IBL.IrradianceDelta)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	usage := fs.Lookup("model").Usage
	for _, ext := range []string{".gltf", ".glb", ".obj"} {
		if !strings.Contains(usage, ext) {
			t.Errorf("model usage: expected %s in %q", ext, usage)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}

	cfg := DefaultConfig()
	cfg.IBL.PrefilterSize = 100
	if err := cfg.Validate(); !errors.Is(err, ibl.ErrInvalidSettings) {
		t.Errorf("non power of two: expected ErrInvalidSettings, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Width = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero width: expected error")
	}

	cfg = DefaultConfig()
	cfg.HDRPath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("no hdr: expected error")
	}
}

func approxEq(a, b float32) bool {
	d := a - b
	return d < 1e-4 && d > -1e-4
}

func vecApprox(a, b mgl32.Vec3, eps float32) bool {
	for i := range a {
		if d := a[i] - b[i]; d > eps || d < -eps {
			return false
		}
	}
	return true
}
