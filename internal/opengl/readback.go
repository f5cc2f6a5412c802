package opengl

import (
	"fmt"
	"unsafe"

	"github.com/chewxy/math32"
	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/x448/float16"

	"ibl-renderer/ibl"
	"ibl-renderer/ibl/software"
)

// ReadPixels returns one face and level of t as float32 channels, read back
// as half floats to match the storage format.
func ReadPixels(t *Texture, face ibl.Face, mip int) []float32 {
	_, format, channels := glFormat(t.format)
	size := ibl.MipSize(t.size, mip)
	raw := make([]uint16, size*size*channels)

	target := uint32(gl.TEXTURE_2D)
	if face != ibl.Face2D {
		target = gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(face)
	}
	gl.BindTexture(t.target, t.ID)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.GetTexImage(target, int32(mip), format, gl.HALF_FLOAT, unsafe.Pointer(&raw[0]))
	gl.BindTexture(t.target, 0)

	out := make([]float32, len(raw))
	for i, h := range raw {
		out[i] = float16.Frombits(h).Float32()
	}
	return out
}

// Diff is the largest per-channel difference between two textures, relative
// to the reference value where that exceeds one.
type Diff struct {
	Max         float32
	Face        ibl.Face
	Mip         int
	Index       int
	Got, Wanted float32
}

// Compare reads t back and measures it against ref texel by texel.
func Compare(t *Texture, ref *software.Texture) (Diff, error) {
	if t.Size() != ref.Size() || t.Levels() != ref.Levels() || t.Cube() != ref.Cube() {
		return Diff{}, fmt.Errorf("%s: shape %dx%d/%d cube=%t, reference %dx%d/%d cube=%t",
			t.Label, t.Size(), t.Size(), t.Levels(), t.Cube(),
			ref.Size(), ref.Size(), ref.Levels(), ref.Cube())
	}
	faces := []ibl.Face{ibl.Face2D}
	if t.Cube() {
		faces = ibl.CubeFaces[:]
	}

	var d Diff
	for mip := 0; mip < t.Levels(); mip++ {
		for _, f := range faces {
			got := ReadPixels(t, f, mip)
			want := ref.Pixels(f, mip)
			if len(got) != len(want) {
				return Diff{}, fmt.Errorf("%s %s mip %d: %d channels, reference %d", t.Label, f, mip, len(got), len(want))
			}
			for i := range got {
				delta := math32.Abs(got[i]-want[i]) / math32.Max(1, math32.Abs(want[i]))
				if delta > d.Max {
					d = Diff{Max: delta, Face: f, Mip: mip, Index: i, Got: got[i], Wanted: want[i]}
				}
			}
		}
	}
	return d, nil
}
