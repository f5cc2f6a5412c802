// Package ibl precomputes the image-based lighting resources used by the
// shading stage: an environment cube map captured from an equirectangular
// panorama, a diffuse irradiance cube map, a roughness-indexed specular
// prefilter chain and a split-sum BRDF lookup table.
//
// The package never talks to a graphics API directly. Every pass is expressed
// against the Device and Program interfaces, which are implemented by the
// OpenGL backend (internal/opengl) and by the CPU reference device
// (ibl/software).
package ibl

import (
	"errors"
	"fmt"
)

// Face selects one face of a cube map. Face2D selects a plain 2D texture.
type Face int

const (
	FacePosX Face = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ

	Face2D Face = -1
)

// CubeFaces lists the six faces in capture order.
var CubeFaces = [6]Face{FacePosX, FaceNegX, FacePosY, FaceNegY, FacePosZ, FaceNegZ}

func (f Face) String() string {
	switch f {
	case FacePosX:
		return "+X"
	case FaceNegX:
		return "-X"
	case FacePosY:
		return "+Y"
	case FaceNegY:
		return "-Y"
	case FacePosZ:
		return "+Z"
	case FaceNegZ:
		return "-Z"
	case Face2D:
		return "2D"
	}
	return fmt.Sprintf("Face(%d)", int(f))
}

// Texture units used by the precompute programs and the shading stage.
const (
	UnitSource     = 0 // panorama or environment map during capture passes
	UnitIrradiance = 5
	UnitPrefilter  = 6
	UnitBRDF       = 7
)

var (
	ErrNotConfigured   = errors.New("render target not configured")
	ErrNotAttached     = errors.New("render target has no attachment")
	ErrSizeMismatch    = errors.New("attachment size does not match render target")
	ErrInvalidSettings = errors.New("invalid ibl settings")
)

// Settings controls resolutions and sample counts of the precompute passes.
type Settings struct {
	EnvironmentSize int     // per-face resolution of the captured environment
	IrradianceSize  int     // per-face resolution of the irradiance map
	PrefilterSize   int     // base per-face resolution of the prefiltered map
	PrefilterLevels int     // number of prefiltered mips, roughness = m/(levels-1)
	BRDFSize        int     // width and height of the BRDF LUT
	IrradianceDelta float32 // angular step of the irradiance Riemann sum, radians
	SampleCount     int     // GGX importance samples per prefilter and BRDF texel
}

// DefaultSettings returns the resolutions the viewer ships with.
func DefaultSettings() Settings {
	return Settings{
		EnvironmentSize: 512,
		IrradianceSize:  32,
		PrefilterSize:   128,
		PrefilterLevels: 5,
		BRDFSize:        512,
		IrradianceDelta: 0.025,
		SampleCount:     1024,
	}
}

// Validate reports whether the settings describe a consistent pipeline.
func (s Settings) Validate() error {
	for _, c := range []struct {
		name string
		v    int
	}{
		{"environment size", s.EnvironmentSize},
		{"irradiance size", s.IrradianceSize},
		{"prefilter size", s.PrefilterSize},
		{"brdf size", s.BRDFSize},
	} {
		if c.v <= 0 || c.v&(c.v-1) != 0 {
			return fmt.Errorf("%w: %s %d is not a power of two", ErrInvalidSettings, c.name, c.v)
		}
	}
	if s.PrefilterLevels < 2 {
		return fmt.Errorf("%w: need at least 2 prefilter levels, got %d", ErrInvalidSettings, s.PrefilterLevels)
	}
	if s.PrefilterSize>>(s.PrefilterLevels-1) < 1 {
		return fmt.Errorf("%w: %d prefilter levels do not fit a %d base", ErrInvalidSettings, s.PrefilterLevels, s.PrefilterSize)
	}
	if s.IrradianceDelta <= 0 {
		return fmt.Errorf("%w: irradiance delta must be positive", ErrInvalidSettings)
	}
	if s.SampleCount <= 0 {
		return fmt.Errorf("%w: sample count must be positive", ErrInvalidSettings)
	}
	return nil
}

// MipSize returns the edge length of mip level m of a base-sized image.
func MipSize(base, m int) int {
	s := base >> m
	if s < 1 {
		return 1
	}
	return s
}

// MipLevels returns the length of a full mip chain for a square image.
func MipLevels(size int) int {
	n := 1
	for size > 1 {
		size >>= 1
		n++
	}
	return n
}

// MipRoughness returns the roughness convolved into prefilter mip m.
func MipRoughness(m, levels int) float32 {
	return float32(m) / float32(levels-1)
}
