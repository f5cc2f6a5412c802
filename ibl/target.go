package ibl

import "fmt"

// TargetState is the configuration state of a RenderTarget.
type TargetState int

const (
	Unconfigured TargetState = iota
	Configured
	Attached
)

func (s TargetState) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configured:
		return "configured"
	case Attached:
		return "attached"
	}
	return fmt.Sprintf("TargetState(%d)", int(s))
}

// Attachment identifies the image a render target currently writes to.
type Attachment struct {
	Texture Texture
	Face    Face
	Mip     int
}

// RenderTarget owns the single offscreen color+depth target reused by every
// precompute pass.
//
// Transitions:
//
//	Unconfigured --Configure--> Configured(dims)
//	Configured   --Attach-----> Attached(dims, target)
//	Attached     --Attach-----> Attached(dims, target')
//	any          --Configure--> Configured(dims')
//
// Draw is valid only in the Attached state.
type RenderTarget struct {
	dev    TargetDevice
	state  TargetState
	width  int
	height int
	att    Attachment

	attachments int
}

// NewRenderTarget returns an unconfigured target on dev.
func NewRenderTarget(dev TargetDevice) *RenderTarget {
	return &RenderTarget{dev: dev}
}

// State returns the current state.
func (rt *RenderTarget) State() TargetState { return rt.state }

// Size returns the configured dimensions.
func (rt *RenderTarget) Size() (int, int) { return rt.width, rt.height }

// Attachment returns the current attachment; ok is false unless Attached.
func (rt *RenderTarget) Attachment() (Attachment, bool) {
	return rt.att, rt.state == Attached
}

// Attachments returns how many times an image has been attached.
func (rt *RenderTarget) Attachments() int { return rt.attachments }

// Configure resizes the depth buffer and viewport to width×height and drops
// any previous attachment.
func (rt *RenderTarget) Configure(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("configure render target %dx%d: %w", width, height, ErrSizeMismatch)
	}
	rt.dev.BindTarget()
	rt.dev.ResizeDepth(width, height)
	rt.dev.Viewport(width, height)
	rt.width, rt.height = width, height
	rt.att = Attachment{}
	rt.state = Configured
	return nil
}

// Attach binds one face and mip of tex as the sole color output. The mip's
// dimensions must equal the configured dimensions.
func (rt *RenderTarget) Attach(tex Texture, face Face, mip int) error {
	if rt.state == Unconfigured {
		return ErrNotConfigured
	}
	if tex.Cube() != (face != Face2D) {
		return fmt.Errorf("attach face %v to cube=%v texture: %w", face, tex.Cube(), ErrSizeMismatch)
	}
	if mip < 0 || mip >= tex.Levels() {
		return fmt.Errorf("attach mip %d of %d-level texture: %w", mip, tex.Levels(), ErrSizeMismatch)
	}
	if s := MipSize(tex.Size(), mip); s != rt.width || s != rt.height {
		return fmt.Errorf("attach %dx%d mip %d to %dx%d target: %w", s, s, mip, rt.width, rt.height, ErrSizeMismatch)
	}
	if err := rt.dev.AttachColor(tex, face, mip); err != nil {
		rt.state = Configured
		return fmt.Errorf("attach face %v mip %d: %w", face, mip, err)
	}
	rt.att = Attachment{Texture: tex, Face: face, Mip: mip}
	rt.state = Attached
	rt.attachments++
	return nil
}

// Draw clears the attached image and runs fn to issue draw calls into it.
func (rt *RenderTarget) Draw(fn func()) error {
	if rt.state != Attached {
		return fmt.Errorf("draw in %v state: %w", rt.state, ErrNotAttached)
	}
	rt.dev.Clear()
	fn()
	return nil
}

// Release unbinds the target so later draws go to the default framebuffer.
// The target must be configured again before the next attachment.
func (rt *RenderTarget) Release() {
	rt.dev.UnbindTarget()
	rt.att = Attachment{}
	rt.state = Unconfigured
}
