package software

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/x448/float16"

	"ibl-renderer/ibl"
)

// Texture is a CPU-resident square 2D texture or cube map. Texels of half
// float formats are rounded through float16 on write so results match what a
// GPU stores.
type Texture struct {
	label    string
	size     int
	levels   int
	channels int
	cube     bool
	format   ibl.Format

	// pix[level][face] holds rows bottom to top, channels interleaved.
	pix [][][]float32
}

func newTexture(desc ibl.TextureDesc, cube bool) *Texture {
	channels := 3
	if desc.Format == ibl.FormatRG16F {
		channels = 2
	}
	faces := 1
	if cube {
		faces = 6
	}
	levels := desc.Levels
	if levels < 1 {
		levels = 1
	}
	t := &Texture{
		label:    desc.Label,
		size:     desc.Size,
		levels:   levels,
		channels: channels,
		cube:     cube,
		format:   desc.Format,
		pix:      make([][][]float32, levels),
	}
	for l := range t.pix {
		s := ibl.MipSize(desc.Size, l)
		t.pix[l] = make([][]float32, faces)
		for f := range t.pix[l] {
			t.pix[l][f] = make([]float32, s*s*channels)
		}
	}
	return t
}

func (t *Texture) Size() int     { return t.size }
func (t *Texture) Levels() int   { return t.levels }
func (t *Texture) Cube() bool    { return t.cube }
func (t *Texture) Channels() int { return t.channels }
func (t *Texture) Label() string { return t.label }

// Pixels returns the texel storage of one face and mip level. For a 2D
// texture face must be ibl.Face2D.
func (t *Texture) Pixels(face ibl.Face, mip int) []float32 {
	return t.pix[mip][faceIndex(face)]
}

// Texel returns the texel at (x, y) of a face and mip as RGB; the third
// component is zero for two-channel textures.
func (t *Texture) Texel(face ibl.Face, mip, x, y int) mgl32.Vec3 {
	s := ibl.MipSize(t.size, mip)
	p := t.pix[mip][faceIndex(face)][(y*s+x)*t.channels:]
	var v mgl32.Vec3
	copy(v[:t.channels], p[:t.channels])
	return v
}

func (t *Texture) store(face ibl.Face, mip, x, y int, c mgl32.Vec4) {
	s := ibl.MipSize(t.size, mip)
	p := t.pix[mip][faceIndex(face)][(y*s+x)*t.channels:]
	for i := 0; i < t.channels; i++ {
		p[i] = float16.Fromfloat32(c[i]).Float32()
	}
}

func faceIndex(face ibl.Face) int {
	if face == ibl.Face2D {
		return 0
	}
	return int(face)
}

// generateMipmaps rebuilds every level below 0 with a 2×2 box filter.
func (t *Texture) generateMipmaps() {
	for l := 1; l < t.levels; l++ {
		src := ibl.MipSize(t.size, l-1)
		dst := ibl.MipSize(t.size, l)
		for f := range t.pix[l] {
			in, out := t.pix[l-1][f], t.pix[l][f]
			for y := 0; y < dst; y++ {
				for x := 0; x < dst; x++ {
					x0, y0 := min(2*x, src-1), min(2*y, src-1)
					x1, y1 := min(2*x+1, src-1), min(2*y+1, src-1)
					for c := 0; c < t.channels; c++ {
						sum := in[(y0*src+x0)*t.channels+c] +
							in[(y0*src+x1)*t.channels+c] +
							in[(y1*src+x0)*t.channels+c] +
							in[(y1*src+x1)*t.channels+c]
						out[(y*dst+x)*t.channels+c] = float16.Fromfloat32(sum / 4).Float32()
					}
				}
			}
		}
	}
}

// SampleCube returns the trilinearly filtered value of the cube map in
// direction dir at level of detail lod.
func (t *Texture) SampleCube(dir mgl32.Vec3, lod float32) mgl32.Vec3 {
	face, s, tt := ibl.FaceCoords(dir)
	maxLod := float32(t.levels - 1)
	if lod <= 0 || t.levels == 1 {
		return t.sampleLevel(face, 0, s, tt)
	}
	if lod >= maxLod {
		return t.sampleLevel(face, t.levels-1, s, tt)
	}
	l0 := math32.Floor(lod)
	frac := lod - l0
	a := t.sampleLevel(face, int(l0), s, tt)
	b := t.sampleLevel(face, int(l0)+1, s, tt)
	return a.Mul(1 - frac).Add(b.Mul(frac))
}

// Sample2D returns the bilinearly filtered value of mip 0 at (u, v).
func (t *Texture) Sample2D(u, v float32) mgl32.Vec3 {
	return t.sampleLevel(ibl.Face2D, 0, u, v)
}

func (t *Texture) sampleLevel(face ibl.Face, mip int, s, tt float32) mgl32.Vec3 {
	n := ibl.MipSize(t.size, mip)
	return sampleBilinear(n, n, t.channels, t.pix[mip][faceIndex(face)], s, tt)
}

// Panorama is an equirectangular RGB image bound as the capture input.
type Panorama struct {
	Width  int
	Height int
	Pix    []float32 // RGB, rows bottom to top
}

// NewPanorama wraps decoded RGB float pixels.
func NewPanorama(width, height int, pix []float32) *Panorama {
	return &Panorama{Width: width, Height: height, Pix: pix}
}

func (p *Panorama) Size() int   { return p.Width }
func (p *Panorama) Levels() int { return 1 }
func (p *Panorama) Cube() bool  { return false }

// Sample returns the bilinearly filtered panorama at (u, v), clamped to the
// edges.
func (p *Panorama) Sample(u, v float32) mgl32.Vec3 {
	return sampleBilinear(p.Width, p.Height, 3, p.Pix, u, v)
}

func sampleBilinear(w, h, channels int, pix []float32, u, v float32) mgl32.Vec3 {
	// texel centres sit at half-integer coordinates
	u = u*float32(w) - 0.5
	v = v*float32(h) - 0.5
	uf, vf := math32.Floor(u), math32.Floor(v)
	ufrac, vfrac := u-uf, v-vf
	x0, y0 := int(uf), int(vf)
	x1, y1 := x0+1, y0+1

	x0, x1 = clampIndex(x0, w), clampIndex(x1, w)
	y0, y1 = clampIndex(y0, h), clampIndex(y1, h)

	var out mgl32.Vec3
	for c := 0; c < channels && c < 3; c++ {
		c00 := pix[(y0*w+x0)*channels+c]
		c10 := pix[(y0*w+x1)*channels+c]
		c01 := pix[(y1*w+x0)*channels+c]
		c11 := pix[(y1*w+x1)*channels+c]
		top := c00*(1-ufrac) + c10*ufrac
		bottom := c01*(1-ufrac) + c11*ufrac
		out[c] = top*(1-vfrac) + bottom*vfrac
	}
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
