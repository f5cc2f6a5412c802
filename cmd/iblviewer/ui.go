package main

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/inkyblackness/imgui-go/v4"

	"ibl-renderer/internal/glwindow"
	"ibl-renderer/scene"
	"ibl-renderer/viewer"
)

// widgets is the subset of imgui the option panels draw with.
type widgets interface {
	Begin(name string) bool
	End()
	Text(text string)
	Checkbox(label string, v *bool) bool
	ColorEdit3(label string, c *[3]float32) bool
	SliderFloat(label string, v *float32, min, max float32, format string) bool
	SliderFloat3(label string, v *[3]float32, min, max float32) bool
	Button(label string) bool
}

type imguiWidgets struct{}

func (imguiWidgets) Begin(name string) bool { return imgui.Begin(name) }
func (imguiWidgets) End()                   { imgui.End() }
func (imguiWidgets) Text(text string)       { imgui.Text(text) }
func (imguiWidgets) Checkbox(label string, v *bool) bool {
	return imgui.Checkbox(label, v)
}
func (imguiWidgets) ColorEdit3(label string, c *[3]float32) bool {
	return imgui.ColorEdit3(label, c)
}
func (imguiWidgets) SliderFloat(label string, v *float32, min, max float32, format string) bool {
	return imgui.SliderFloatV(label, v, min, max, format, imgui.SliderFlagsNone)
}
func (imguiWidgets) SliderFloat3(label string, v *[3]float32, min, max float32) bool {
	return imgui.SliderFloat3(label, v, min, max)
}
func (imguiWidgets) Button(label string) bool { return imgui.Button(label) }

// drawPanels builds the material and light windows. Widgets write straight
// into st; State.Sanitize clamps typed-in values afterwards. The scalar
// material widgets are hidden in textured mode, where the maps replace them.
// The Save Preset button is shown only when onSave is set.
func drawPanels(ui widgets, st *viewer.State, onSave func()) {
	mat := &st.Material
	ui.Begin("Model Options")
	ui.Checkbox("Texture", &mat.Textured)
	if !mat.Textured {
		ui.ColorEdit3("Color", (*[3]float32)(&mat.Albedo))
		ui.SliderFloat("Metallic", &mat.Metallic, 0, 1, "%.5f")
		ui.SliderFloat("Roughness", &mat.Roughness, scene.MinRoughness, 1, "%.5f")
		ui.SliderFloat("Ambient Occlusion", &mat.AO, 0, scene.MaxAO, "%.3f")
	}
	if onSave != nil && ui.Button("Save Preset") {
		onSave()
	}
	ui.End()

	ui.Begin("Light Options")
	for i := range st.Lights {
		l := &st.Lights[i]
		ui.Text(viewer.LightLabel(i))
		ui.SliderFloat3(fmt.Sprintf("Color## %d", i), (*[3]float32)(&l.Color), 0, scene.MaxLightFlux)
		ui.SliderFloat3(fmt.Sprintf("Position## %d", i), (*[3]float32)(&l.Position), -scene.LightRange, scene.LightRange)
	}
	ui.End()
}

// platform feeds GLFW window events into imgui and forwards the pointer
// events imgui does not want to the camera.
type platform struct {
	window *glwindow.Window
	io     imgui.IO

	lastTime         float64
	mouseJustPressed [3]bool

	onCursor func(x, y float64)
	onScroll func(xoff, yoff float64)
}

func newPlatform(window *glwindow.Window, io imgui.IO) *platform {
	p := &platform{window: window, io: io}
	p.mapKeys()
	p.installCallbacks()
	return p
}

func (p *platform) mapKeys() {
	keys := map[int]glfw.Key{
		imgui.KeyTab:        glfw.KeyTab,
		imgui.KeyLeftArrow:  glfw.KeyLeft,
		imgui.KeyRightArrow: glfw.KeyRight,
		imgui.KeyUpArrow:    glfw.KeyUp,
		imgui.KeyDownArrow:  glfw.KeyDown,
		imgui.KeyHome:       glfw.KeyHome,
		imgui.KeyEnd:        glfw.KeyEnd,
		imgui.KeyDelete:     glfw.KeyDelete,
		imgui.KeyBackspace:  glfw.KeyBackspace,
		imgui.KeyEnter:      glfw.KeyEnter,
		imgui.KeyEscape:     glfw.KeyEscape,
		imgui.KeyA:          glfw.KeyA,
		imgui.KeyC:          glfw.KeyC,
		imgui.KeyV:          glfw.KeyV,
		imgui.KeyX:          glfw.KeyX,
		imgui.KeyY:          glfw.KeyY,
		imgui.KeyZ:          glfw.KeyZ,
	}
	for imguiKey, nativeKey := range keys {
		p.io.KeyMap(imguiKey, int(nativeKey))
	}
}

func (p *platform) installCallbacks() {
	h := p.window.Handle
	h.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Press && int(button) < len(p.mouseJustPressed) {
			p.mouseJustPressed[button] = true
		}
	})
	h.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			p.io.KeyPress(int(key))
		case glfw.Release:
			p.io.KeyRelease(int(key))
		}
		p.io.KeyCtrl(int(glfw.KeyLeftControl), int(glfw.KeyRightControl))
		p.io.KeyShift(int(glfw.KeyLeftShift), int(glfw.KeyRightShift))
		p.io.KeyAlt(int(glfw.KeyLeftAlt), int(glfw.KeyRightAlt))
		p.io.KeySuper(int(glfw.KeyLeftSuper), int(glfw.KeyRightSuper))
	})
	h.SetCharCallback(func(_ *glfw.Window, char rune) {
		p.io.AddInputCharacters(string(char))
	})

	p.window.OnScroll(func(xoff, yoff float64) {
		p.io.AddMouseWheelDelta(float32(xoff), float32(yoff))
		if p.onScroll != nil && !p.io.WantCaptureMouse() {
			p.onScroll(xoff, yoff)
		}
	})
	p.window.OnCursor(func(x, y float64) {
		if p.onCursor != nil {
			p.onCursor(x, y)
		}
	})
}

// NewFrame updates display size, frame time and mouse state ahead of
// imgui.NewFrame.
func (p *platform) NewFrame() {
	size := p.DisplaySize()
	p.io.SetDisplaySize(imgui.Vec2{X: size[0], Y: size[1]})

	now := p.window.Time()
	dt := float32(1.0 / 60.0)
	if p.lastTime > 0 && now > p.lastTime {
		dt = float32(now - p.lastTime)
	}
	p.io.SetDeltaTime(dt)
	p.lastTime = now

	if p.window.Focused() {
		x, y := p.window.CursorPos()
		p.io.SetMousePosition(imgui.Vec2{X: float32(x), Y: float32(y)})
	} else {
		p.io.SetMousePosition(imgui.Vec2{X: -math32.MaxFloat32, Y: -math32.MaxFloat32})
	}

	// a press and release inside one frame still registers as a click
	for i := range p.mouseJustPressed {
		down := p.mouseJustPressed[i] || p.window.IsMouseButtonPressed(i)
		p.io.SetMouseButtonDown(i, down)
		p.mouseJustPressed[i] = false
	}
}

// DisplaySize is the window size in screen coordinates.
func (p *platform) DisplaySize() [2]float32 {
	w, h := p.window.Size()
	return [2]float32{float32(w), float32(h)}
}

// FramebufferSize is the window size in pixels.
func (p *platform) FramebufferSize() [2]float32 {
	w, h := p.window.FramebufferSize()
	return [2]float32{float32(w), float32(h)}
}

// windowInput maps controller actions onto keys and buttons. Look and the
// movement keys are suppressed while imgui owns the mouse or keyboard.
type windowInput struct {
	window *glwindow.Window
	io     imgui.IO
}

func (in windowInput) Active(a viewer.Action) bool {
	switch a {
	case viewer.Quit:
		return in.window.IsKeyPressed(glwindow.KeyEscape)
	case viewer.Look:
		return !in.io.WantCaptureMouse() && in.window.IsMouseButtonPressed(glwindow.MouseButtonRight)
	}
	if in.io.WantCaptureKeyboard() {
		return false
	}
	switch a {
	case viewer.MoveForward:
		return in.window.IsKeyPressed(glwindow.KeyW)
	case viewer.MoveBackward:
		return in.window.IsKeyPressed(glwindow.KeyS)
	case viewer.MoveLeft:
		return in.window.IsKeyPressed(glwindow.KeyA)
	case viewer.MoveRight:
		return in.window.IsKeyPressed(glwindow.KeyD)
	}
	return false
}

func (in windowInput) Close() { in.window.Close() }
