package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/shunkie/lightprobe/internal/assets"
	"github.com/shunkie/lightprobe/internal/config"
	"github.com/shunkie/lightprobe/internal/cubemap"
	"github.com/shunkie/lightprobe/internal/engine/glcube"
	"github.com/shunkie/lightprobe/internal/engine/window"
	"github.com/shunkie/lightprobe/internal/filter"
	"github.com/shunkie/lightprobe/internal/probe"
	"github.com/shunkie/lightprobe/pkg/math"
)

const sourceHandle assets.Handle = "env"

type viewMode int

const (
	modeSource viewMode = iota
	modeDiffuse
	modeSpecular
)

func (m viewMode) String() string {
	switch m {
	case modeSource:
		return "source"
	case modeDiffuse:
		return "diffuse irradiance"
	case modeSpecular:
		return "specular prefiltered"
	default:
		return "unknown"
	}
}

// App drives the viewer: it feeds one source cubemap through the filter
// pipeline and displays source, diffuse and specular results as a skybox.
type App struct {
	cfg *config.Config
	log *zap.Logger

	store    *assets.Store
	registry *probe.Registry
	pipeline *filter.Pipeline
	probeID  probe.ID

	win    *window.Window
	skybox *glcube.SkyboxRenderer

	texSource   uint32
	texDiffuse  uint32
	texSpecular uint32
	specLevels  int

	mode       viewMode
	lod        float32
	yaw, pitch float32

	envRot       math.Mat4
	envIntensity float32
}

// NewApp loads the source cubemap, starts the filter pipeline and opens
// the window.
func NewApp(cfg *config.Config, envDir string, log *zap.Logger) (*App, error) {
	a := &App{
		cfg:          cfg,
		log:          log,
		store:        assets.NewStore(),
		envRot:       math.Identity(),
		envIntensity: 1,
	}

	src, err := loadCubemapDir(envDir)
	if err != nil {
		return nil, err
	}
	a.store.AddCubemap(sourceHandle, src)
	log.Info("source cubemap loaded",
		zap.String("dir", envDir),
		zap.Int("size", src.Size),
	)

	light := probe.NewGeneratedEnvironmentMapLight(sourceHandle)
	light.Intensity = 1

	a.registry = probe.NewRegistry(log.Named("registry"))
	id, err := a.registry.Add(probe.NewGeneratedReflectionProbe(
		math.Scale(10, 10, 10),
		light,
	))
	if err != nil {
		return nil, fmt.Errorf("registering probe: %w", err)
	}
	a.probeID = id

	a.pipeline = filter.New(a.store, filter.Config{
		Workers:         cfg.Filter.Workers,
		DiffuseSize:     cfg.Filter.DiffuseSize,
		DiffuseSamples:  cfg.Filter.DiffuseSamples,
		SpecularSamples: cfg.Filter.SpecularSamples,
	}, log.Named("filter"))

	if err := a.pipeline.Submit(id, light); err != nil {
		return nil, fmt.Errorf("scheduling filter: %w", err)
	}

	a.win, err = window.New(window.Config{
		Title:      "probeview",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, log.Named("window"))
	if err != nil {
		return nil, err
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	a.skybox, err = glcube.NewSkyboxRenderer()
	if err != nil {
		return nil, err
	}

	a.texSource = glcube.Upload(src)

	return a, nil
}

// Run drives the event and render loop until quit.
func (a *App) Run() error {
	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				if e.Type == sdl.KEYDOWN {
					running = a.handleKey(e.Keysym.Sym)
				}
			}
		}

		a.pollFiltered()
		a.render()
		a.win.SwapBuffers()
	}
	return nil
}

func (a *App) handleKey(key sdl.Keycode) bool {
	switch key {
	case sdl.K_ESCAPE, sdl.K_q:
		return false
	case sdl.K_TAB:
		a.mode = (a.mode + 1) % 3
		a.lod = 0
		a.log.Info("view mode changed", zap.Stringer("mode", a.mode))
	case sdl.K_UP:
		if a.mode == modeSpecular && int(a.lod) < a.specLevels-1 {
			a.lod++
		}
	case sdl.K_DOWN:
		if a.lod > 0 {
			a.lod--
		}
	case sdl.K_a:
		a.yaw -= 0.1
	case sdl.K_d:
		a.yaw += 0.1
	case sdl.K_w:
		a.pitch -= 0.1
	case sdl.K_s:
		a.pitch += 0.1
	}
	return true
}

// pollFiltered picks up pipeline completions and uploads the published
// maps. Resolution runs against a fresh snapshot, the same way a frame
// would consume the registry.
func (a *App) pollFiltered() {
	select {
	case id := <-a.pipeline.Notify():
		if id != a.probeID {
			return
		}
	default:
		return
	}

	snap := a.registry.Snapshot(a.store, a.pipeline)
	res := snap.Resolve(math.Vec3{}, probe.LightmapInfo{}, false)
	if res.Specular.Source != probe.SourceReflectionProbe {
		a.log.Warn("probe did not resolve after filtering",
			zap.Stringer("specular", res.Specular.Source),
		)
		return
	}

	for _, rec := range snap.Records() {
		if rec.ID != res.Specular.Probe || rec.EnvMap == nil {
			continue
		}
		if c, ok := a.store.Cubemap(rec.EnvMap.DiffuseMap); ok {
			if a.texDiffuse != 0 {
				glcube.Delete(a.texDiffuse)
			}
			a.texDiffuse = glcube.Upload(c)
		}
		if mc, ok := a.store.MipChain(rec.EnvMap.SpecularMap); ok {
			if a.texSpecular != 0 {
				glcube.Delete(a.texSpecular)
			}
			a.texSpecular = glcube.UploadChain(mc)
			a.specLevels = len(mc.Levels)
		}
		a.envRot = glcube.EnvRotation(rec.EnvMap.Rotation)
		a.envIntensity = rec.EnvMap.Intensity
		a.log.Info("filtered maps ready",
			zap.String("diffuse", string(rec.EnvMap.DiffuseMap)),
			zap.String("specular", string(rec.EnvMap.SpecularMap)),
			zap.Int("mips", a.specLevels),
		)
	}
}

func (a *App) render() {
	w, h := a.win.GetSize()
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.ClearColor(0.05, 0.05, 0.08, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	tex, lod := a.currentTexture()
	if tex == 0 {
		return
	}

	proj := math.Perspective(60.0*stdDegToRad, float32(w)/float32(h), 0.1, 100)
	view := math.RotateX(a.pitch).Mul(math.RotateY(a.yaw))
	a.skybox.Draw(proj.Mul(view), a.envRot, tex, lod, a.envIntensity)
}

const stdDegToRad = 3.14159265 / 180

func (a *App) currentTexture() (uint32, float32) {
	switch a.mode {
	case modeDiffuse:
		return a.texDiffuse, 0
	case modeSpecular:
		return a.texSpecular, a.lod
	default:
		return a.texSource, 0
	}
}

// Close releases everything in reverse creation order.
func (a *App) Close() {
	if a.skybox != nil {
		a.skybox.Close()
	}
	if a.texSource != 0 {
		glcube.Delete(a.texSource)
	}
	if a.texDiffuse != 0 {
		glcube.Delete(a.texDiffuse)
	}
	if a.texSpecular != 0 {
		glcube.Delete(a.texSpecular)
	}
	if a.win != nil {
		a.win.Close()
	}
	if a.pipeline != nil {
		a.pipeline.Close()
	}
}

func loadCubemapDir(dir string) (*cubemap.Cubemap, error) {
	var imgs [cubemap.FaceCount]image.Image
	for face, name := range cubemap.FaceNames {
		img, err := loadFaceImage(dir, name)
		if err != nil {
			return nil, err
		}
		imgs[face] = img
	}
	return cubemap.FromFaceImages(imgs)
}

func loadFaceImage(dir, name string) (image.Image, error) {
	for _, ext := range []string{".png", ".jpg", ".jpeg"} {
		path := filepath.Join(dir, name+ext)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		defer f.Close()

		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return img, nil
	}
	return nil, fmt.Errorf("face %s not found in %s", name, dir)
}
