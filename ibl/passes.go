package ibl

import (
	"time"

	"go.uber.org/zap"
)

// ── Pass 1: environment capture ──────────────────────────────────────────────

// CaptureEnvironment projects the equirectangular panorama into mip 0 of a new
// environment cube map and then builds its mip chain.
func (p *Pipeline) CaptureEnvironment(panorama Texture) (Texture, error) {
	defer p.timed("capture", time.Now())

	size := p.settings.EnvironmentSize
	env, err := p.dev.NewCubeMap(TextureDesc{
		Label:  "environment",
		Size:   size,
		Levels: MipLevels(size),
		Format: FormatRGB16F,
		Min:    FilterLinearMipmapLinear,
	})
	if err != nil {
		return nil, err
	}

	prog := p.progs.Equirect
	prog.Use()
	prog.SetInt("equirectangularMap", UnitSource)
	bind := func() { p.dev.BindTexture(UnitSource, panorama) }

	if err := ProjectToCubeFaces(p.rt, p.dev, bind, env, 0, size, prog); err != nil {
		return nil, err
	}

	// The prefilter pass reads coarser mips at high roughness.
	p.dev.GenerateMipmaps(env)
	return env, nil
}

// ── Pass 2: irradiance convolution ───────────────────────────────────────────

// ConvolveIrradiance integrates cosine-weighted radiance over the hemisphere
// around every direction of env.
func (p *Pipeline) ConvolveIrradiance(env Texture) (Texture, error) {
	defer p.timed("irradiance", time.Now())

	size := p.settings.IrradianceSize
	irr, err := p.dev.NewCubeMap(TextureDesc{
		Label:  "irradiance",
		Size:   size,
		Levels: 1,
		Format: FormatRGB16F,
		Min:    FilterLinear,
	})
	if err != nil {
		return nil, err
	}

	prog := p.progs.Irradiance
	prog.Use()
	prog.SetInt("environmentMap", UnitSource)
	prog.SetFloat("sampleDelta", p.settings.IrradianceDelta)
	bind := func() { p.dev.BindTexture(UnitSource, env) }

	if err := ProjectToCubeFaces(p.rt, p.dev, bind, irr, 0, size, prog); err != nil {
		return nil, err
	}
	return irr, nil
}

// ── Pass 3: specular prefilter ───────────────────────────────────────────────

// PrefilterSpecular convolves env with the GGX lobe into a mip chain where
// mip m holds roughness m/(levels-1) at base>>m texels per edge.
func (p *Pipeline) PrefilterSpecular(env Texture) (Texture, error) {
	defer p.timed("prefilter", time.Now())

	base, levels := p.settings.PrefilterSize, p.settings.PrefilterLevels
	pre, err := p.dev.NewCubeMap(TextureDesc{
		Label:  "prefiltered",
		Size:   base,
		Levels: levels,
		Format: FormatRGB16F,
		Min:    FilterLinearMipmapLinear,
	})
	if err != nil {
		return nil, err
	}

	prog := p.progs.Prefilter
	prog.Use()
	prog.SetInt("environmentMap", UnitSource)
	prog.SetFloat("resolution", float32(env.Size()))
	prog.SetInt("sampleCount", int32(p.settings.SampleCount))
	bind := func() { p.dev.BindTexture(UnitSource, env) }

	for m := 0; m < levels; m++ {
		res := MipSize(base, m)
		roughness := MipRoughness(m, levels)

		if err := p.rt.Configure(res, res); err != nil {
			return nil, err
		}
		prog.Use()
		prog.SetFloat("roughness", roughness)

		if err := ProjectToCubeFaces(p.rt, p.dev, bind, pre, m, res, prog); err != nil {
			return nil, err
		}
		p.log.Debug("prefiltered mip", zap.Int("mip", m), zap.Int("size", res), zap.Float32("roughness", roughness))
	}
	return pre, nil
}

// ── Pass 4: BRDF integration ─────────────────────────────────────────────────

// IntegrateBRDF bakes the split-sum scale and bias into a two-channel LUT
// indexed by (N·V, roughness).
func (p *Pipeline) IntegrateBRDF() (Texture, error) {
	defer p.timed("brdf", time.Now())

	size := p.settings.BRDFSize
	lut, err := p.dev.NewTexture2D(TextureDesc{
		Label:  "brdf lut",
		Size:   size,
		Levels: 1,
		Format: FormatRG16F,
		Min:    FilterLinear,
	})
	if err != nil {
		return nil, err
	}

	prog := p.progs.BRDF
	prog.Use()
	prog.SetInt("sampleCount", int32(p.settings.SampleCount))

	if err := p.rt.Configure(size, size); err != nil {
		return nil, err
	}
	if err := p.rt.Attach(lut, Face2D, 0); err != nil {
		return nil, err
	}
	if err := p.rt.Draw(p.dev.DrawQuad); err != nil {
		return nil, err
	}
	return lut, nil
}
