package opengl

import (
	"bufio"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

//go:embed shaders/*.glsl
var embeddedShaders embed.FS

// ShaderFS returns the GLSL source tree: dir when set, the embedded set
// otherwise.
func ShaderFS(dir string) (fs.FS, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("shader dir: %w", err)
		}
		return os.DirFS(dir), nil
	}
	return fs.Sub(embeddedShaders, "shaders")
}

// maxIncludeDepth bounds nested #include expansion.
const maxIncludeDepth = 8

// LoadSource reads name from fsys and expands `#include "file"` lines,
// resolved relative to the including file.
func LoadSource(fsys fs.FS, name string) (string, error) {
	var sb strings.Builder
	if err := expand(fsys, name, &sb, 0); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func expand(fsys fs.FS, name string, sb *strings.Builder, depth int) error {
	if depth > maxIncludeDepth {
		return fmt.Errorf("%s: includes nested deeper than %d", name, maxIncludeDepth)
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		rest, ok := strings.CutPrefix(strings.TrimSpace(text), "#include")
		if !ok {
			sb.WriteString(text)
			sb.WriteByte('\n')
			continue
		}
		inc := strings.Trim(strings.TrimSpace(rest), `"`)
		if inc == "" {
			return fmt.Errorf("%s:%d: empty #include", name, line)
		}
		if err := expand(fsys, path.Join(path.Dir(name), inc), sb, depth+1); err != nil {
			return fmt.Errorf("%s:%d: %w", name, line, err)
		}
	}
	return sc.Err()
}

// Program is a linked GL program with cached uniform locations.
type Program struct {
	ID   uint32
	name string
	locs map[string]int32
}

// LoadProgram compiles and links vert and frag from fsys.
func LoadProgram(fsys fs.FS, name, vert, frag string) (*Program, error) {
	vs, err := LoadSource(fsys, vert)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	fsrc, err := LoadSource(fsys, frag)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	id, err := newProgram(vs, fsrc)
	if err != nil {
		return nil, fmt.Errorf("%s shader: %w", name, err)
	}
	return &Program{ID: id, name: name, locs: make(map[string]int32)}, nil
}

func (p *Program) Use() { gl.UseProgram(p.ID) }

func (p *Program) SetInt(name string, v int32)       { gl.Uniform1i(p.loc(name), v) }
func (p *Program) SetFloat(name string, v float32)   { gl.Uniform1f(p.loc(name), v) }
func (p *Program) SetVec3(name string, v mgl32.Vec3) { gl.Uniform3fv(p.loc(name), 1, &v[0]) }
func (p *Program) SetMat4(name string, m mgl32.Mat4) { gl.UniformMatrix4fv(p.loc(name), 1, false, &m[0]) }

func (p *Program) Delete() {
	gl.DeleteProgram(p.ID)
	p.ID = 0
}

// loc returns the uniform location, -1 for uniforms the linker dropped.
func (p *Program) loc(name string) int32 {
	if l, ok := p.locs[name]; ok {
		return l
	}
	l := gl.GetUniformLocation(p.ID, gl.Str(name+"\x00"))
	p.locs[name] = l
	return l
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", strings.TrimRight(log, "\x00"))
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}
