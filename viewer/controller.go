package viewer

import "ibl-renderer/scene"

// Action is a logical input the controller polls each frame.
type Action int

const (
	MoveForward Action = iota
	MoveBackward
	MoveLeft
	MoveRight
	Look // held to turn the camera with the cursor
	Quit
)

// Input reports which actions are active and can close the window.
type Input interface {
	Active(a Action) bool
	Close()
}

var moves = [...]struct {
	action Action
	dir    scene.Movement
}{
	{MoveForward, scene.Forward},
	{MoveBackward, scene.Backward},
	{MoveLeft, scene.Left},
	{MoveRight, scene.Right},
}

// Controller routes window events into a State.
type Controller struct {
	state *State
	input Input

	lastX, lastY float64
	firstMouse   bool
}

func NewController(state *State, input Input) *Controller {
	return &Controller{state: state, input: input, firstMouse: true}
}

// OnCursor handles a cursor position event. The first event only seeds the
// previous position; later ones turn the camera while Look is held.
func (c *Controller) OnCursor(x, y float64) {
	if c.firstMouse {
		c.lastX, c.lastY = x, y
		c.firstMouse = false
	}
	dx := x - c.lastX
	dy := c.lastY - y // window y grows downwards
	c.lastX, c.lastY = x, y

	if c.input.Active(Look) {
		c.state.Camera.Look(float32(dx), float32(dy))
	}
}

// OnScroll zooms the camera.
func (c *Controller) OnScroll(_, yoff float64) {
	c.state.Camera.Zoom(float32(yoff))
}

// OnResize records the new framebuffer size.
func (c *Controller) OnResize(width, height int) {
	c.state.FramebufferWidth = width
	c.state.FramebufferHeight = height
}

// Update ticks the frame clock and applies held keys.
func (c *Controller) Update(now float64) {
	if c.input.Active(Quit) {
		c.input.Close()
	}
	c.state.Tick(now)
	for _, m := range moves {
		if c.input.Active(m.action) {
			c.state.Camera.Move(m.dir, c.state.DeltaTime)
		}
	}
}
