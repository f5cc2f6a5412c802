package ibl

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Programs holds the shader program of each precompute pass.
type Programs struct {
	Equirect   Program // samples equirectangularMap
	Irradiance Program // samples environmentMap
	Prefilter  Program // samples environmentMap at roughness
	BRDF       Program // analytic
}

// Resources are the precomputed textures consumed by the shading stage.
type Resources struct {
	Environment Texture
	Irradiance  Texture
	Prefiltered Texture
	BRDFLUT     Texture
}

// Pipeline runs the four precompute passes on a device.
type Pipeline struct {
	dev      Device
	rt       *RenderTarget
	progs    Programs
	settings Settings
	log      *zap.Logger
}

// NewPipeline validates settings and prepares a pipeline. A nil logger
// disables logging.
func NewPipeline(dev Device, progs Programs, settings Settings, log *zap.Logger) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if progs.Equirect == nil || progs.Irradiance == nil || progs.Prefilter == nil || progs.BRDF == nil {
		return nil, fmt.Errorf("%w: missing pass program", ErrInvalidSettings)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		dev:      dev,
		rt:       NewRenderTarget(dev),
		progs:    progs,
		settings: settings,
		log:      log,
	}, nil
}

// Settings returns the settings the pipeline was built with.
func (p *Pipeline) Settings() Settings { return p.settings }

// RenderTarget returns the shared offscreen target.
func (p *Pipeline) RenderTarget() *RenderTarget { return p.rt }

// Run executes capture, irradiance, prefilter and BRDF integration in order.
// The panorama is only read during capture.
func (p *Pipeline) Run(panorama Texture) (*Resources, error) {
	defer p.rt.Release()
	start := time.Now()

	env, err := p.CaptureEnvironment(panorama)
	if err != nil {
		return nil, fmt.Errorf("environment capture: %w", err)
	}
	irr, err := p.ConvolveIrradiance(env)
	if err != nil {
		return nil, fmt.Errorf("irradiance convolution: %w", err)
	}
	pre, err := p.PrefilterSpecular(env)
	if err != nil {
		return nil, fmt.Errorf("specular prefilter: %w", err)
	}
	lut, err := p.IntegrateBRDF()
	if err != nil {
		return nil, fmt.Errorf("brdf integration: %w", err)
	}

	p.log.Info("ibl precompute finished",
		zap.Int("attachments", p.rt.Attachments()),
		zap.Duration("elapsed", time.Since(start)))

	return &Resources{
		Environment: env,
		Irradiance:  irr,
		Prefiltered: pre,
		BRDFLUT:     lut,
	}, nil
}

func (p *Pipeline) timed(pass string, start time.Time) {
	p.log.Debug("ibl pass done", zap.String("pass", pass), zap.Duration("elapsed", time.Since(start)))
}
