package opengl

import (
	"errors"
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"ibl-renderer/ibl"
	"ibl-renderer/ibl/software"
	"ibl-renderer/scene"
)

// Texture is a GL texture object. It implements ibl.Texture.
type Texture struct {
	ID     uint32
	Label  string
	target uint32 // TEXTURE_2D or TEXTURE_CUBE_MAP
	size   int
	levels int
	format ibl.Format
}

func (t *Texture) Size() int   { return t.size }
func (t *Texture) Levels() int { return t.levels }
func (t *Texture) Cube() bool  { return t.target == gl.TEXTURE_CUBE_MAP }

// Bind binds t to the given texture unit.
func (t *Texture) Bind(unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(t.target, t.ID)
}

func (t *Texture) Delete() {
	if t == nil || t.ID == 0 {
		return
	}
	gl.DeleteTextures(1, &t.ID)
	t.ID = 0
}

// glFormat returns the internal format, pixel format and channel count.
func glFormat(f ibl.Format) (internal int32, format uint32, channels int) {
	if f == ibl.FormatRG16F {
		return gl.RG16F, gl.RG, 2
	}
	return gl.RGB16F, gl.RGB, 3
}

func glMinFilter(f ibl.Filter) int32 {
	if f == ibl.FilterLinearMipmapLinear {
		return gl.LINEAR_MIPMAP_LINEAR
	}
	return gl.LINEAR
}

// newTexture allocates every level of a square float texture. For cube maps
// each face is allocated separately.
func newTexture(desc ibl.TextureDesc, cube bool) (*Texture, error) {
	if desc.Size <= 0 || desc.Levels <= 0 {
		return nil, fmt.Errorf("texture %q: invalid size %d or levels %d", desc.Label, desc.Size, desc.Levels)
	}
	t := &Texture{Label: desc.Label, target: gl.TEXTURE_2D, size: desc.Size, levels: desc.Levels, format: desc.Format}
	if cube {
		t.target = gl.TEXTURE_CUBE_MAP
	}
	internal, format, _ := glFormat(desc.Format)

	gl.GenTextures(1, &t.ID)
	gl.BindTexture(t.target, t.ID)
	for m := 0; m < desc.Levels; m++ {
		s := int32(ibl.MipSize(desc.Size, m))
		if cube {
			for _, f := range ibl.CubeFaces {
				gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(f), int32(m), internal, s, s, 0, format, gl.FLOAT, nil)
			}
		} else {
			gl.TexImage2D(gl.TEXTURE_2D, int32(m), internal, s, s, 0, format, gl.FLOAT, nil)
		}
	}
	setSampling(t.target, glMinFilter(desc.Min), desc.Levels)
	gl.BindTexture(t.target, 0)
	return t, nil
}

func setSampling(target uint32, minFilter int32, levels int) {
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	if target == gl.TEXTURE_CUBE_MAP {
		gl.TexParameteri(target, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	}
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(target, gl.TEXTURE_BASE_LEVEL, 0)
	gl.TexParameteri(target, gl.TEXTURE_MAX_LEVEL, int32(levels-1))
}

// UploadPanorama uploads a decoded HDR panorama as an RGB16F 2D texture.
func UploadPanorama(p *scene.Panorama) (*Texture, error) {
	if p == nil || len(p.Pix) == 0 {
		return nil, errors.New("empty panorama")
	}
	if len(p.Pix) != p.Width*p.Height*3 {
		return nil, fmt.Errorf("panorama %dx%d: have %d floats", p.Width, p.Height, len(p.Pix))
	}
	t := &Texture{Label: "panorama", target: gl.TEXTURE_2D, size: p.Width, levels: 1}

	gl.GenTextures(1, &t.ID)
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB16F, int32(p.Width), int32(p.Height), 0, gl.RGB, gl.FLOAT, unsafe.Pointer(&p.Pix[0]))
	setSampling(gl.TEXTURE_2D, gl.LINEAR, 1)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t, nil
}

// UploadTexture uploads an RGBA8 material map with a full mip chain and
// repeat wrapping.
func UploadTexture(tex *scene.Texture) (*Texture, error) {
	if tex == nil {
		return nil, fmt.Errorf("nil texture")
	}
	if len(tex.Pixels) == 0 {
		return nil, fmt.Errorf("texture %q has no pixel data", tex.Name)
	}
	t := &Texture{Label: tex.Name, target: gl.TEXTURE_2D, size: tex.Width, levels: ibl.MipLevels(max(tex.Width, tex.Height))}

	gl.GenTextures(1, &t.ID)
	gl.BindTexture(gl.TEXTURE_2D, t.ID)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(tex.Width),
		int32(tex.Height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		unsafe.Pointer(&tex.Pixels[0]),
	)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t, nil
}

// UploadSoftware copies a texture computed on the CPU device into a new GL
// texture of the same shape and format.
func UploadSoftware(src *software.Texture) (*Texture, error) {
	desc := ibl.TextureDesc{
		Label:  src.Label(),
		Size:   src.Size(),
		Levels: src.Levels(),
		Format: ibl.FormatRGB16F,
		Min:    ibl.FilterLinear,
	}
	if src.Channels() == 2 {
		desc.Format = ibl.FormatRG16F
	}
	if desc.Levels > 1 {
		desc.Min = ibl.FilterLinearMipmapLinear
	}
	t, err := newTexture(desc, src.Cube())
	if err != nil {
		return nil, err
	}
	internal, format, _ := glFormat(desc.Format)

	faces := []ibl.Face{ibl.Face2D}
	if src.Cube() {
		faces = ibl.CubeFaces[:]
	}
	gl.BindTexture(t.target, t.ID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	for m := 0; m < desc.Levels; m++ {
		s := int32(ibl.MipSize(desc.Size, m))
		for _, f := range faces {
			pix := src.Pixels(f, m)
			target := uint32(gl.TEXTURE_2D)
			if src.Cube() {
				target = gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(f)
			}
			gl.TexImage2D(target, int32(m), internal, s, s, 0, format, gl.FLOAT, unsafe.Pointer(&pix[0]))
		}
	}
	gl.BindTexture(t.target, 0)
	return t, nil
}
