// Command iblviewer precomputes image-based lighting for an equirectangular
// HDR environment and shows a PBR sphere lit by it, with an imgui panel for
// the material and four point lights.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go/v4"
	"go.uber.org/zap"

	"ibl-renderer/ibl"
	"ibl-renderer/ibl/software"
	"ibl-renderer/internal/glwindow"
	"ibl-renderer/internal/logger"
	"ibl-renderer/internal/opengl"
	"ibl-renderer/scene"
	"ibl-renderer/viewer"
)

// verifyTolerance is the largest relative per-channel difference between the
// GPU maps and the CPU reference that -verify accepts without a warning.
const verifyTolerance = 0.05

func main() {
	cfg := viewer.DefaultConfig()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if err := logger.Init(cfg.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		logger.Log.Error("viewer failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(cfg viewer.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logger.Log

	window, err := glwindow.New(glwindow.Config{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Title:     cfg.Title,
		Samples:   cfg.Samples,
		Resizable: true,
		VSync:     cfg.VSync,
	})
	if err != nil {
		return err
	}
	defer window.Destroy()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("opengl ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)
	if cfg.Samples > 0 {
		gl.Enable(gl.MULTISAMPLE)
	}

	shaders, err := opengl.ShaderFS(cfg.ShaderDir)
	if err != nil {
		return err
	}

	pano, err := scene.LoadHDR(cfg.HDRPath, true)
	if err != nil {
		return err
	}
	log.Info("environment loaded",
		zap.String("path", cfg.HDRPath),
		zap.Int("width", pano.Width),
		zap.Int("height", pano.Height))

	dev := opengl.NewDevice()
	defer dev.Destroy()

	maps, err := precompute(cfg, dev, shaders, pano, log)
	if err != nil {
		return err
	}

	materials, err := scene.LoadMaterialTextures(cfg.MaterialDir)
	if err != nil {
		log.Warn("material maps unavailable, textured mode uses flat maps", zap.Error(err))
		materials = scene.FlatMaterialTextures()
	}

	fbWidth, fbHeight := window.FramebufferSize()
	state := viewer.NewState(fbWidth, fbHeight)

	mesh := scene.CreateSphere(viewer.SphereRadius, viewer.SphereSectors, viewer.SphereStacks, true)
	if cfg.ModelPath != "" {
		model, err := scene.LoadModel(cfg.ModelPath)
		if err != nil {
			maps.Delete()
			return err
		}
		mesh = model.Mesh
		state.Model = mgl32.Translate3D(0, 0, -2).Mul4(model.FitTransform(viewer.SphereRadius))
		if model.Material != nil {
			state.Material = *model.Material
		}
		log.Info("model loaded",
			zap.String("path", cfg.ModelPath),
			zap.Int("vertices", len(mesh.Vertices)),
			zap.Int("indices", len(mesh.Indices)))
	}

	var savePreset func()
	if cfg.PresetPath != "" {
		if err := viewer.LoadPreset(state, cfg.PresetPath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debug("no preset yet", zap.String("path", cfg.PresetPath))
			} else {
				log.Warn("preset not loaded", zap.Error(err))
			}
		}
		savePreset = func() {
			if err := viewer.SavePreset(state, cfg.PresetPath); err != nil {
				log.Error("preset not saved", zap.Error(err))
				return
			}
			log.Info("preset saved", zap.String("path", cfg.PresetPath))
		}
	}

	stage, err := opengl.NewShadingStage(shaders, dev, maps, materials, mesh)
	if err != nil {
		maps.Delete()
		return err
	}
	defer stage.Destroy()

	ctx := imgui.CreateContext(nil)
	defer ctx.Destroy()
	io := imgui.CurrentIO()
	io.SetIniFilename("")

	gui, err := opengl.NewImGuiRenderer(shaders, io)
	if err != nil {
		return err
	}
	defer gui.Destroy()

	platform := newPlatform(window, io)
	ctrl := viewer.NewController(state, windowInput{window: window, io: io})
	platform.onCursor = ctrl.OnCursor
	platform.onScroll = ctrl.OnScroll
	window.OnFramebufferResize(ctrl.OnResize)

	for !window.ShouldClose() {
		window.PollEvents()
		platform.NewFrame()
		imgui.NewFrame()

		ctrl.Update(window.Time())

		drawPanels(imguiWidgets{}, state, savePreset)
		state.Sanitize()
		stage.Draw(state)

		imgui.Render()
		gui.Render(platform.DisplaySize(), platform.FramebufferSize(), imgui.RenderedDrawData())
		window.SwapBuffers()
	}

	log.Info("viewer closed", zap.Uint64("frames", state.Frames()))
	return nil
}

// precompute builds the four lighting maps on the GPU, or on the CPU device
// when cfg.Software is set.
func precompute(cfg viewer.Config, dev *opengl.Device, shaders fs.FS, pano *scene.Panorama, log *zap.Logger) (opengl.Maps, error) {
	if cfg.Software {
		res, err := runSoftware(cfg.IBL, pano, log)
		if err != nil {
			return opengl.Maps{}, err
		}
		return opengl.UploadResources(res)
	}

	progs, err := dev.Programs(shaders)
	if err != nil {
		return opengl.Maps{}, err
	}
	defer opengl.DeletePrograms(progs)

	src, err := opengl.UploadPanorama(pano)
	if err != nil {
		return opengl.Maps{}, err
	}
	defer src.Delete()

	pipeline, err := ibl.NewPipeline(dev, progs, cfg.IBL, log)
	if err != nil {
		return opengl.Maps{}, err
	}
	res, err := pipeline.Run(src)
	if err != nil {
		return opengl.Maps{}, err
	}
	maps, err := opengl.MapsFromResources(res)
	if err != nil {
		return opengl.Maps{}, err
	}

	if cfg.Verify {
		if err := verify(cfg.IBL, pano, maps, log); err != nil {
			maps.Delete()
			return opengl.Maps{}, err
		}
	}
	return maps, nil
}

func runSoftware(settings ibl.Settings, pano *scene.Panorama, log *zap.Logger) (*ibl.Resources, error) {
	dev := software.NewDevice()
	pipeline, err := ibl.NewPipeline(dev, dev.Programs(), settings, log)
	if err != nil {
		return nil, err
	}
	return pipeline.Run(software.NewPanorama(pano.Width, pano.Height, pano.Pix))
}

// verify reruns the precompute on the CPU device and logs how far each GPU
// map is from it.
func verify(settings ibl.Settings, pano *scene.Panorama, maps opengl.Maps, log *zap.Logger) error {
	ref, err := runSoftware(settings, pano, log.Named("reference"))
	if err != nil {
		return fmt.Errorf("reference precompute: %w", err)
	}
	for _, m := range []struct {
		name string
		gpu  *opengl.Texture
		ref  ibl.Texture
	}{
		{"environment", maps.Environment, ref.Environment},
		{"irradiance", maps.Irradiance, ref.Irradiance},
		{"prefiltered", maps.Prefiltered, ref.Prefiltered},
		{"brdf_lut", maps.BRDFLUT, ref.BRDFLUT},
	} {
		d, err := opengl.Compare(m.gpu, m.ref.(*software.Texture))
		if err != nil {
			return err
		}
		fields := []zap.Field{
			zap.String("map", m.name),
			zap.Float32("max_rel_diff", d.Max),
			zap.Stringer("face", d.Face),
			zap.Int("mip", d.Mip),
			zap.Float32("got", d.Got),
			zap.Float32("wanted", d.Wanted),
		}
		if d.Max > verifyTolerance {
			log.Warn("gpu map differs from reference", fields...)
		} else {
			log.Info("gpu map matches reference", fields...)
		}
	}
	return nil
}
