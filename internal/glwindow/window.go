// Package glwindow opens the GLFW window and GL context the viewer draws
// into and fans its events out to registered handlers.
package glwindow

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

// Window owns the GLFW window and its GL 4.1 core context. Event handlers
// registered with the On* methods are called in registration order.
type Window struct {
	Handle *glfw.Window

	onResize []func(width, height int)
	onScroll []func(xoff, yoff float64)
	onCursor []func(x, y float64)
}

type Config struct {
	Width     int
	Height    int
	Title     string
	Samples   int // MSAA samples, 0 disables
	Resizable bool
	VSync     bool
}

// New opens a window with a current OpenGL 4.1 core context.
func New(config Config) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, config.Samples)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	glfw.SwapInterval(boolToInt(config.VSync))

	w := &Window{Handle: handle}
	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		for _, cb := range w.onResize {
			cb(width, height)
		}
	})
	handle.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		for _, cb := range w.onScroll {
			cb(xoff, yoff)
		}
	})
	handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		for _, cb := range w.onCursor {
			cb(x, y)
		}
	})
	return w, nil
}

// OnFramebufferResize registers cb for framebuffer size changes, in pixels.
func (w *Window) OnFramebufferResize(cb func(width, height int)) {
	w.onResize = append(w.onResize, cb)
}

// OnScroll registers cb for scroll wheel and trackpad events.
func (w *Window) OnScroll(cb func(xoff, yoff float64)) {
	w.onScroll = append(w.onScroll, cb)
}

// OnCursor registers cb for cursor movement, in screen coordinates.
func (w *Window) OnCursor(cb func(x, y float64)) {
	w.onCursor = append(w.onCursor, cb)
}

func (w *Window) ShouldClose() bool { return w.Handle.ShouldClose() }
func (w *Window) Close()            { w.Handle.SetShouldClose(true) }
func (w *Window) PollEvents()       { glfw.PollEvents() }
func (w *Window) SwapBuffers()      { w.Handle.SwapBuffers() }

// Size is the window size in screen coordinates.
func (w *Window) Size() (int, int) { return w.Handle.GetSize() }

// FramebufferSize is the window size in pixels.
func (w *Window) FramebufferSize() (int, int) { return w.Handle.GetFramebufferSize() }

func (w *Window) Focused() bool { return w.Handle.GetAttrib(glfw.Focused) == glfw.True }

func (w *Window) CursorPos() (float64, float64) { return w.Handle.GetCursorPos() }

// Time returns seconds since the window system was initialised.
func (w *Window) Time() float64 { return glfw.GetTime() }

func (w *Window) IsKeyPressed(key int) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

func (w *Window) IsMouseButtonPressed(button int) bool {
	return w.Handle.GetMouseButton(glfw.MouseButton(button)) == glfw.Press
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const (
	KeyA      = int(glfw.KeyA)
	KeyD      = int(glfw.KeyD)
	KeyS      = int(glfw.KeyS)
	KeyW      = int(glfw.KeyW)
	KeyEscape = int(glfw.KeyEscape)

	MouseButtonLeft   = int(glfw.MouseButtonLeft)
	MouseButtonRight  = int(glfw.MouseButtonRight)
	MouseButtonMiddle = int(glfw.MouseButtonMiddle)
)
