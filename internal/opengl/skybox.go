package opengl

import (
	"fmt"
	"io/fs"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Skybox draws the environment cube map behind the scene with Reinhard tone
// mapping and gamma 2.2. The vertex shader uses the xyww trick so every
// fragment lands on the far plane.
type Skybox struct {
	prog *Program
	dev  *Device
}

// NewSkybox compiles the skybox program. It draws with dev's cube geometry.
func NewSkybox(fsys fs.FS, dev *Device) (*Skybox, error) {
	prog, err := LoadProgram(fsys, "skybox", "skybox.vert.glsl", "skybox.frag.glsl")
	if err != nil {
		return nil, fmt.Errorf("skybox: %w", err)
	}
	prog.Use()
	prog.SetInt("cubeMap", 0)
	return &Skybox{prog: prog, dev: dev}, nil
}

// Draw renders env as seen through view and proj.
func (sb *Skybox) Draw(env *Texture, view, proj mgl32.Mat4) {
	// far-plane fragments must pass against a cleared depth of 1.0
	gl.DepthFunc(gl.LEQUAL)

	sb.prog.Use()
	sb.prog.SetMat4("view", view)
	sb.prog.SetMat4("projection", proj)
	env.Bind(0)
	sb.dev.DrawCube()
}

// Destroy frees the program. The cube geometry belongs to the device.
func (sb *Skybox) Destroy() {
	sb.prog.Delete()
}
