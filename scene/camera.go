package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Field-of-view limits in degrees.
const (
	MinFOV     = 1.0
	MaxFOV     = 45.0
	DefaultFOV = MaxFOV

	pitchLimit = 89.0
)

// Movement is a keyboard-driven camera direction.
type Movement int

const (
	Forward Movement = iota
	Backward
	Left
	Right
)

// Camera is a free-look camera driven by yaw and pitch in degrees.
type Camera struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
	Speed       float32 // units per second
	Sensitivity float32 // degrees per cursor pixel

	front mgl32.Vec3
	right mgl32.Vec3
	up    mgl32.Vec3

	// Cached matrices
	viewMatrix mgl32.Mat4
	dirty      bool
}

// NewCamera returns a camera at pos looking down -Z.
func NewCamera(pos mgl32.Vec3) *Camera {
	c := &Camera{
		Position:    pos,
		Yaw:         -90,
		FOV:         DefaultFOV,
		NearPlane:   0.1,
		FarPlane:    100,
		Speed:       2.5,
		Sensitivity: 0.1,
	}
	c.updateVectors()
	return c
}

// Move translates the camera along its local axes.
func (c *Camera) Move(dir Movement, dt float32) {
	step := c.Speed * dt
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.front.Mul(step))
	case Backward:
		c.Position = c.Position.Sub(c.front.Mul(step))
	case Left:
		c.Position = c.Position.Sub(c.right.Mul(step))
	case Right:
		c.Position = c.Position.Add(c.right.Mul(step))
	}
	c.dirty = true
}

// Look turns the camera by a cursor delta. Pitch is kept short of the poles.
func (c *Camera) Look(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch += dy * c.Sensitivity
	c.Pitch = mgl32.Clamp(c.Pitch, -pitchLimit, pitchLimit)
	c.updateVectors()
}

// Orient sets yaw and pitch in degrees, clamping pitch like Look.
func (c *Camera) Orient(yaw, pitch float32) {
	c.Yaw = yaw
	c.Pitch = mgl32.Clamp(pitch, -pitchLimit, pitchLimit)
	c.updateVectors()
}

// Zoom narrows the field of view by a scroll delta, clamped to
// [MinFOV, MaxFOV].
func (c *Camera) Zoom(yoff float32) {
	c.FOV = mgl32.Clamp(c.FOV-yoff, MinFOV, MaxFOV)
}

func (c *Camera) Front() mgl32.Vec3 { return c.front }
func (c *Camera) Right() mgl32.Vec3 { return c.right }
func (c *Camera) Up() mgl32.Vec3    { return c.up }

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	if c.dirty {
		c.viewMatrix = mgl32.LookAtV(c.Position, c.Position.Add(c.front), c.up)
		c.dirty = false
	}
	return c.viewMatrix
}

// GetProjectionMatrix returns the perspective projection for the given
// framebuffer aspect ratio.
func (c *Camera) GetProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.NearPlane, c.FarPlane)
}

func (c *Camera) updateVectors() {
	yaw, pitch := mgl32.DegToRad(c.Yaw), mgl32.DegToRad(c.Pitch)
	c.front = mgl32.Vec3{
		math32.Cos(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw) * math32.Cos(pitch),
	}.Normalize()
	c.right = c.front.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
	c.dirty = true
}
