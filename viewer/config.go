package viewer

import (
	"errors"
	"flag"
	"fmt"
	"strconv"

	"ibl-renderer/ibl"
)

// Config is the viewer's startup configuration.
type Config struct {
	Width   int
	Height  int
	Title   string
	Samples int
	VSync   bool

	HDRPath     string // equirectangular Radiance panorama
	MaterialDir string // albedo/normal/metallic/roughness/ao maps
	ModelPath   string // optional glTF display model
	ShaderDir   string // overrides the embedded GLSL when set
	PresetPath  string // camera, material and lights saved from the UI

	IBL ibl.Settings

	Software bool // run the precompute on the CPU device
	Verify   bool // read back GPU results and compare with the CPU device
	Debug    bool
}

// DefaultConfig returns the stock viewer configuration.
func DefaultConfig() Config {
	return Config{
		Width:       1200,
		Height:      900,
		Title:       "IBL Renderer",
		Samples:     4,
		VSync:       true,
		HDRPath:     "textures/hdr/newport_loft.hdr",
		MaterialDir: "textures/pbr",
		IBL:         ibl.DefaultSettings(),
	}
}

// RegisterFlags binds every field to fs, using the current values as
// defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "width", c.Width, "window width")
	fs.IntVar(&c.Height, "height", c.Height, "window height")
	fs.IntVar(&c.Samples, "samples", c.Samples, "MSAA samples")
	fs.BoolVar(&c.VSync, "vsync", c.VSync, "wait for vertical sync")
	fs.StringVar(&c.HDRPath, "hdr", c.HDRPath, "equirectangular .hdr environment")
	fs.StringVar(&c.MaterialDir, "materials", c.MaterialDir, "directory holding the textured-mode PNG maps")
	fs.StringVar(&c.ModelPath, "model", c.ModelPath, "optional .gltf, .glb or .obj model drawn instead of the sphere")
	fs.StringVar(&c.ShaderDir, "shaders", c.ShaderDir, "load GLSL from this directory instead of the embedded set")
	fs.StringVar(&c.PresetPath, "preset", c.PresetPath, "JSON preset loaded at startup and written by Save Preset")

	fs.IntVar(&c.IBL.EnvironmentSize, "env-size", c.IBL.EnvironmentSize, "environment cube face size")
	fs.IntVar(&c.IBL.IrradianceSize, "irradiance-size", c.IBL.IrradianceSize, "irradiance cube face size")
	fs.IntVar(&c.IBL.PrefilterSize, "prefilter-size", c.IBL.PrefilterSize, "prefiltered cube base face size")
	fs.IntVar(&c.IBL.PrefilterLevels, "prefilter-levels", c.IBL.PrefilterLevels, "prefiltered cube mip levels")
	fs.IntVar(&c.IBL.BRDFSize, "brdf-size", c.IBL.BRDFSize, "BRDF LUT size")
	fs.IntVar(&c.IBL.SampleCount, "samples-ggx", c.IBL.SampleCount, "importance samples per prefilter/BRDF texel")
	fs.Func("irradiance-delta", "irradiance hemisphere step in radians", func(s string) error {
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return err
		}
		c.IBL.IrradianceDelta = float32(v)
		return nil
	})

	fs.BoolVar(&c.Software, "software", c.Software, "precompute on the CPU and upload the results")
	fs.BoolVar(&c.Verify, "verify", c.Verify, "read back precomputed maps and check them against the CPU device")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "development logging")
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window size %dx%d: must be positive", c.Width, c.Height)
	}
	if c.Samples < 0 {
		return fmt.Errorf("samples %d: must not be negative", c.Samples)
	}
	if c.HDRPath == "" {
		return errors.New("no environment map given")
	}
	if err := c.IBL.Validate(); err != nil {
		return err
	}
	return nil
}
