package app

import (
	"context"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/sdfrt"
	"github.com/gekko3d/sdfrt/rt/core"
	"github.com/gekko3d/sdfrt/rt/gpu"
	"github.com/gekko3d/sdfrt/rt/render"
	"github.com/gekko3d/sdfrt/rt/shaders"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type App struct {
	Window *glfw.Window
	Config sdfrt.Config
	Logger sdfrt.Logger

	Instance      *wgpu.Instance
	Adapter       *wgpu.Adapter
	Device        *wgpu.Device
	Queue         *wgpu.Queue
	Surface       *wgpu.Surface
	SurfaceConfig *wgpu.SurfaceConfiguration

	Raymarch     *gpu.Pipeline
	BlitPipeline *wgpu.RenderPipeline

	OutputTexture *wgpu.Texture
	OutputView    *wgpu.TextureView
	Output        gpu.Resource
	Sampler       *wgpu.Sampler
	BlitBG        *wgpu.BindGroup

	SceneBuffer *gpu.SceneBuffer
	Params      *gpu.UniformBuffer
	Dispatcher  *gpu.Dispatcher

	State    *render.State
	Profiler *render.Profiler

	MouseCaptured bool
	Paused        bool
	lastCursorX   float64
	lastCursorY   float64
	cursorValid   bool

	StartTime      float64
	LastTime       float64
	LastRenderTime float64
	FrameCount     int
	FPS            float64
	FPSTime        float64
}

func NewApp(window *glfw.Window, cfg sdfrt.Config, logger sdfrt.Logger) *App {
	cfg.Normalize()
	return &App{
		Window:   window,
		Config:   cfg,
		Logger:   sdfrt.OrNop(logger),
		State:    render.NewState(cfg),
		Profiler: render.NewProfiler(),
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	format := caps.Formats[0]
	a.SurfaceConfig = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.SurfaceConfig)

	if err := a.setupRaymarch(); err != nil {
		return err
	}
	if err := a.setupBlit(format); err != nil {
		return err
	}

	device := gpu.NewDevice(a.Device)
	a.SceneBuffer = gpu.NewSceneBuffer(device, gpu.WithSceneLogger(a.Logger))
	a.Params = gpu.NewUniformBuffer(device, "March Params")
	a.Dispatcher = gpu.NewDispatcher(device, gpu.WithDispatchLogger(a.Logger))

	a.Sampler, err = a.Device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}

	if err := a.setupOutput(width, height); err != nil {
		return err
	}

	a.StartTime = glfw.GetTime()
	a.LastTime = a.StartTime
	a.Logger.Infof("initialized %dx%d, tile %dx%d, surface format %v", width, height, a.Raymarch.Tile.X, a.Raymarch.Tile.Y, format)
	return nil
}

func (a *App) setupRaymarch() error {
	src, err := shaders.RaymarchSource()
	if err != nil {
		return err
	}
	tile, err := shaders.WorkgroupSize(src)
	if err != nil {
		return err
	}
	if tile.X != a.Config.TileX || tile.Y != a.Config.TileY {
		a.Logger.Warnf("configured tile %dx%d does not match kernel workgroup %dx%d, using the kernel's",
			a.Config.TileX, a.Config.TileY, tile.X, tile.Y)
	}

	module, err := a.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Raymarch CS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: src},
	})
	if err != nil {
		return fmt.Errorf("raymarch shader: %w", err)
	}
	defer module.Release()

	handle, err := a.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "Raymarch Pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return fmt.Errorf("raymarch pipeline: %w", err)
	}
	a.Raymarch = gpu.NewPipeline("raymarch", handle, tile)
	return nil
}

func (a *App) setupBlit(format wgpu.TextureFormat) error {
	module, err := a.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Fullscreen VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.FullscreenWGSL},
	})
	if err != nil {
		return fmt.Errorf("blit shader: %w", err)
	}
	defer module.Release()

	a.BlitPipeline, err = a.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Blit Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("blit pipeline: %w", err)
	}
	return nil
}

// setupOutput (re)creates the storage texture the kernel writes and the blit
// bind group that samples it. Cached binding sets naming the old texture are
// evicted first.
func (a *App) setupOutput(w, h int) error {
	if w <= 0 || h <= 0 {
		return nil
	}

	if !a.Output.ID.IsZero() {
		n := a.Dispatcher.EvictResource(a.Output.ID)
		a.Logger.Debugf("output replaced, %d binding sets evicted", n)
	}
	if a.BlitBG != nil {
		a.BlitBG.Release()
		a.BlitBG = nil
	}
	if a.OutputView != nil {
		a.OutputView.Release()
		a.OutputView = nil
	}
	if a.OutputTexture != nil {
		a.OutputTexture.Release()
		a.OutputTexture = nil
	}

	var err error
	a.OutputTexture, err = a.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Raymarch Output",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageStorageBinding | wgpu.TextureUsageTextureBinding,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("create output texture: %w", err)
	}
	a.OutputView, err = a.OutputTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create output view: %w", err)
	}
	a.Output = gpu.NewStorageTextureResource("raymarch output", a.OutputView)

	a.BlitBG, err = a.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.BlitPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: a.OutputView},
			{Binding: 1, Sampler: a.Sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("create blit bind group: %w", err)
	}
	return nil
}

func (a *App) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.SurfaceConfig.Width = uint32(w)
	a.SurfaceConfig.Height = uint32(h)
	a.Surface.Configure(a.Adapter, a.Device, a.SurfaceConfig)
	if err := a.setupOutput(w, h); err != nil {
		a.Logger.Errorf("resize to %dx%d: %v", w, h, err)
	}
}

func (a *App) resolution() core.Resolution {
	if a.SurfaceConfig == nil {
		return core.Resolution{}
	}
	return core.Resolution{Width: a.SurfaceConfig.Width, Height: a.SurfaceConfig.Height}
}

func (a *App) pollInput() render.Input {
	axis := func(pos, neg glfw.Key) float32 {
		var v float32
		if a.Window.GetKey(pos) == glfw.Press {
			v++
		}
		if a.Window.GetKey(neg) == glfw.Press {
			v--
		}
		return v
	}
	return render.Input{
		Forward: axis(glfw.KeyW, glfw.KeyS),
		Right:   axis(glfw.KeyD, glfw.KeyA),
		Up:      axis(glfw.KeySpace, glfw.KeyLeftShift),
	}
}

// Update advances the camera and publishes this frame's scene data and
// kernel parameters.
func (a *App) Update() {
	now := glfw.GetTime()
	dt := float32(now - a.LastTime)
	a.LastTime = now

	a.State.Step(a.pollInput(), dt)
	if a.Paused {
		return
	}

	a.Profiler.BeginScope("publish")
	defer a.Profiler.EndScope("publish")

	sd := a.State.BuildFrame(a.resolution(), float32(now-a.StartTime))
	if err := a.SceneBuffer.Publish(sd); err != nil {
		a.Logger.Errorf("publish scene data: %v", err)
		return
	}

	params, err := a.State.March.Bytes()
	if err != nil {
		a.Logger.Errorf("encode march params: %v", err)
		return
	}
	old := a.Params.ID()
	recreated, err := a.Params.Write(params)
	if err != nil {
		a.Logger.Errorf("write march params: %v", err)
		return
	}
	if recreated && !old.IsZero() {
		a.Dispatcher.EvictResource(old)
	}
}

func (a *App) Render(ctx context.Context) {
	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Logger.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.Logger.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		a.Logger.Errorf("CreateCommandEncoder failed: %v", err)
		return
	}
	defer encoder.Release()

	// A skipped dispatch leaves last frame's output in place for the blit.
	a.Profiler.BeginScope("dispatch")
	_, err = a.Dispatcher.Frame(ctx, gpu.WrapEncoder(encoder), a.Raymarch, a.SceneBuffer, a.resolution(),
		a.Output, a.Params.Resource())
	a.Profiler.EndScope("dispatch")
	if err != nil {
		a.Logger.Errorf("raymarch dispatch: %v", err)
	}

	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	if a.BlitBG != nil {
		rPass.SetPipeline(a.BlitPipeline)
		rPass.SetBindGroup(0, a.BlitBG, nil)
		rPass.Draw(3, 1, 0, 0)
	}
	if err := rPass.End(); err != nil {
		a.Logger.Errorf("blit pass End failed: %v", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.Logger.Errorf("encoder Finish failed: %v", err)
		return
	}
	defer cmd.Release()
	a.Queue.Submit(cmd)
	a.Surface.Present()

	a.Profiler.RecordDispatch(a.Dispatcher.Stats())
	a.updateFPS()
}

func (a *App) updateFPS() {
	now := glfw.GetTime()
	if a.LastRenderTime > 0 {
		a.FrameCount++
		a.FPSTime += now - a.LastRenderTime
		if a.FPSTime >= 1.0 {
			a.FPS = float64(a.FrameCount) / a.FPSTime
			a.FrameCount = 0
			a.FPSTime = 0
			if a.Logger.DebugEnabled() {
				a.Logger.Debugf("%.1f fps\n%s", a.FPS, a.Profiler)
			}
			a.Window.SetTitle(fmt.Sprintf("%s - %.1f fps", a.Config.WindowTitle, a.FPS))
		}
	}
	a.LastRenderTime = now
}

// HandleKey maps the viewer hotkeys. Movement keys are polled in Update.
func (a *App) HandleKey(key glfw.Key, action glfw.Action) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyTab:
		a.MouseCaptured = !a.MouseCaptured
		a.cursorValid = false
		if a.MouseCaptured {
			a.Window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		} else {
			a.Window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
		}
	case glfw.KeyEscape:
		a.Window.SetShouldClose(true)
	case glfw.KeyF1:
		mode := a.State.CycleDebug()
		a.Logger.Infof("debug view: %s", render.DebugModeName(mode))
	case glfw.KeyF2:
		a.State.Config.TAA = !a.State.Config.TAA
		a.Logger.Infof("taa jitter: %v", a.State.Config.TAA)
	case glfw.KeyF3:
		a.State.Config.Fog = !a.State.Config.Fog
		a.Logger.Infof("fog: %v", a.State.Config.Fog)
	case glfw.KeyP:
		// While paused nothing is published and dispatches are skipped.
		a.Paused = !a.Paused
		if a.Paused {
			a.SceneBuffer.Disable()
		} else {
			a.SceneBuffer.Enable()
		}
		a.Logger.Infof("paused: %v", a.Paused)
	}
}

func (a *App) HandleCursor(x, y float64) {
	if !a.MouseCaptured {
		return
	}
	if a.cursorValid {
		a.State.Camera.Look(float32(x-a.lastCursorX), float32(y-a.lastCursorY))
	}
	a.lastCursorX, a.lastCursorY = x, y
	a.cursorValid = true
}

func (a *App) Release() {
	if a.Dispatcher != nil {
		a.Dispatcher.Reset()
	}
	if a.SceneBuffer != nil {
		a.SceneBuffer.Release()
	}
	if a.Params != nil {
		a.Params.Release()
	}
	if a.BlitBG != nil {
		a.BlitBG.Release()
	}
	if a.OutputView != nil {
		a.OutputView.Release()
	}
	if a.OutputTexture != nil {
		a.OutputTexture.Release()
	}
	if a.Sampler != nil {
		a.Sampler.Release()
	}
	if a.BlitPipeline != nil {
		a.BlitPipeline.Release()
	}
	if a.Raymarch != nil {
		a.Raymarch.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}
