// Package viewer holds the interactive state of the IBL viewer and the input
// handling that mutates it. Neither it nor the scene and core packages it
// builds on import GL or the window system.
package viewer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"ibl-renderer/scene"
)

// SphereRadius, SphereSectors and SphereStacks describe the display sphere.
const (
	SphereRadius  = 1.0
	SphereSectors = 72
	SphereStacks  = 36
)

// State is everything a frame reads: camera, surface, lights, and the
// framebuffer the frame is drawn into.
type State struct {
	Camera   *scene.Camera
	Material scene.MaterialParams
	Lights   [scene.NumLights]scene.PointLight
	Model    mgl32.Mat4

	FramebufferWidth  int
	FramebufferHeight int

	DeltaTime float32
	lastFrame float64
	frames    uint64
}

// NewState returns the initial state for a width×height framebuffer. The
// lights start black at the origin.
func NewState(width, height int) *State {
	return &State{
		Camera:            scene.NewCamera(mgl32.Vec3{}),
		Material:          scene.DefaultMaterial(),
		Model:             DisplayTransform(),
		FramebufferWidth:  width,
		FramebufferHeight: height,
	}
}

// DisplayTransform places the display mesh two units in front of the
// default camera with its poles on the Y axis.
func DisplayTransform() mgl32.Mat4 {
	return mgl32.Translate3D(0, 0, -2).Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(90)))
}

// LightLabel is the panel heading of light i, numbered from 1.
func LightLabel(i int) string { return fmt.Sprintf("Light %d", i+1) }

// Aspect returns the framebuffer aspect ratio, or 1 while minimised.
func (s *State) Aspect() float32 {
	if s.FramebufferWidth <= 0 || s.FramebufferHeight <= 0 {
		return 1
	}
	return float32(s.FramebufferWidth) / float32(s.FramebufferHeight)
}

func (s *State) View() mgl32.Mat4       { return s.Camera.GetViewMatrix() }
func (s *State) Projection() mgl32.Mat4 { return s.Camera.GetProjectionMatrix(s.Aspect()) }

// Frames returns the number of frames ticked so far.
func (s *State) Frames() uint64 { return s.frames }

// Tick advances the frame clock to now, in seconds.
func (s *State) Tick(now float64) {
	if s.frames == 0 {
		s.lastFrame = now
	}
	s.DeltaTime = float32(now - s.lastFrame)
	s.lastFrame = now
	s.frames++
}

// Sanitize clamps the material and lights into their UI ranges.
func (s *State) Sanitize() {
	s.Material.Clamp()
	for i := range s.Lights {
		s.Lights[i].Clamp()
	}
}
