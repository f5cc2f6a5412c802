// Package software is a CPU reference implementation of ibl.Device. It runs
// the precompute pipeline without a GPU: each draw rasterises the attached
// image pixel by pixel and evaluates a Go fragment program, so pass results
// can be inspected and tested headless.
package software

import (
	"fmt"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"ibl-renderer/ibl"
)

// Device is a CPU rasteriser with one offscreen framebuffer.
type Device struct {
	bound       bool
	depthW      int
	depthH      int
	viewW       int
	viewH       int
	att         *Texture
	attFace     ibl.Face
	attMip      int
	units       [8]ibl.Texture
	current     *Program
	workers     int
	drawnPixels int
	cubeDraws   int
	quadDraws   int
}

// NewDevice returns a device that shades rows on all available CPUs.
func NewDevice() *Device {
	return &Device{workers: runtime.GOMAXPROCS(0)}
}

// Stats returns counters useful for tests and logging.
func (d *Device) Stats() (cubeDraws, quadDraws, pixels int) {
	return d.cubeDraws, d.quadDraws, d.drawnPixels
}

func (d *Device) BindTarget() { d.bound = true }
func (d *Device) UnbindTarget() {
	d.bound = false
	d.att = nil
}

func (d *Device) ResizeDepth(width, height int) { d.depthW, d.depthH = width, height }
func (d *Device) Viewport(width, height int)    { d.viewW, d.viewH = width, height }

func (d *Device) AttachColor(tex ibl.Texture, face ibl.Face, mip int) error {
	t, ok := tex.(*Texture)
	if !ok {
		return fmt.Errorf("software device cannot render to %T", tex)
	}
	if !d.bound {
		return fmt.Errorf("framebuffer not bound")
	}
	d.att, d.attFace, d.attMip = t, face, mip
	return nil
}

// Clear zeroes the whole attached image.
func (d *Device) Clear() {
	if d.att == nil {
		return
	}
	pix := d.att.Pixels(d.attFace, d.attMip)
	for i := range pix {
		pix[i] = 0
	}
}

func (d *Device) NewCubeMap(desc ibl.TextureDesc) (ibl.Texture, error) {
	if desc.Size <= 0 {
		return nil, fmt.Errorf("cube map %q: invalid size %d", desc.Label, desc.Size)
	}
	return newTexture(desc, true), nil
}

func (d *Device) NewTexture2D(desc ibl.TextureDesc) (ibl.Texture, error) {
	if desc.Size <= 0 {
		return nil, fmt.Errorf("texture %q: invalid size %d", desc.Label, desc.Size)
	}
	return newTexture(desc, false), nil
}

func (d *Device) GenerateMipmaps(tex ibl.Texture) {
	if t, ok := tex.(*Texture); ok {
		t.generateMipmaps()
	}
}

func (d *Device) BindTexture(unit int, tex ibl.Texture) { d.units[unit] = tex }

// DrawCube shades every covered pixel with the world direction through it,
// which is what rasterising the capture cube from its centre produces.
func (d *Device) DrawCube() {
	if d.current == nil {
		return
	}
	proj := d.current.mats["projection"]
	view := d.current.mats["view"]
	d.cubeDraws++
	d.raster(func(ndcX, ndcY, u, v float32) Fragment {
		return Fragment{Dir: ibl.Unproject(proj, view, ndcX, ndcY), UV: mgl32.Vec2{u, v}}
	})
}

// DrawQuad shades every covered pixel with its texture coordinate.
func (d *Device) DrawQuad() {
	if d.current == nil {
		return
	}
	d.quadDraws++
	d.raster(func(ndcX, ndcY, u, v float32) Fragment {
		return Fragment{UV: mgl32.Vec2{u, v}}
	})
}

// raster runs the current program over the intersection of the viewport,
// depth buffer and attached image, one row per task.
func (d *Device) raster(frag func(ndcX, ndcY, u, v float32) Fragment) {
	if d.att == nil {
		return
	}
	size := ibl.MipSize(d.att.size, d.attMip)
	w := min(d.viewW, d.depthW, size)
	h := min(d.viewH, d.depthH, size)
	if w <= 0 || h <= 0 {
		return
	}

	prog := d.current
	tex, face, mip := d.att, d.attFace, d.attMip

	var g errgroup.Group
	g.SetLimit(d.workers)
	for y := 0; y < h; y++ {
		g.Go(func() error {
			v := (float32(y) + 0.5) / float32(d.viewH)
			for x := 0; x < w; x++ {
				u := (float32(x) + 0.5) / float32(d.viewW)
				c := prog.shade(prog, frag(2*u-1, 2*v-1, u, v))
				tex.store(face, mip, x, y, c)
			}
			return nil
		})
	}
	_ = g.Wait()
	d.drawnPixels += w * h
}
