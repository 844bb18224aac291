package main

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/postfx"
	"github.com/gekko3d/postfx/gpu"
	"github.com/gekko3d/postfx/soft"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// viewer owns the window, the WebGPU surface and the effect chain.
type viewer struct {
	window  *glfw.Window
	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *wgpu.Device
	config  *wgpu.SurfaceConfiguration

	fx      *gpu.Device
	shaders gpu.Library
	scene   *gpu.ScenePass
	camera  *soft.Camera
	chain   *postfx.Chain
	chainOn bool
	logger  postfx.Logger

	statsTime float64
}

const statsInterval = 5.0

func runWindow(opts options, settings postfx.Settings, logger postfx.Logger) {
	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(opts.width, opts.height, "Motion Blur", nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	v := &viewer{window: window, logger: logger}
	v.init(settings)
	defer v.release()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		v.resize(width, height)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyTab:
			v.toggleChain()
		case glfw.Key1:
			v.toggleEffect("accumulation")
		case glfw.Key2:
			v.toggleEffect("reprojection")
		}
	})

	for !window.ShouldClose() {
		glfw.PollEvents()
		v.render(glfw.GetTime())
	}
}

func (v *viewer) init(settings postfx.Settings) {
	instance := wgpu.CreateInstance(nil)
	v.surface = instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(v.window))

	var err error
	v.adapter, err = instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: v.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		panic(err)
	}
	v.device, err = v.adapter.RequestDevice(nil)
	if err != nil {
		panic(err)
	}

	width, height := v.window.GetFramebufferSize()
	caps := v.surface.GetCapabilities(v.adapter)
	v.config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	v.surface.Configure(v.adapter, v.device, v.config)

	v.fx, err = gpu.NewDevice(v.device, v.logger)
	if err != nil {
		panic(err)
	}
	v.scene, err = gpu.NewScenePass(v.fx, width, height)
	if err != nil {
		panic(err)
	}

	v.camera = soft.NewCamera(float32(width) / float32(height))
	v.camera.Position = orbit(0)
	v.camera.LookAt(mgl32.Vec3{})

	v.shaders = gpu.NewLibrary(v.fx)
	v.chain = buildChain(v.fx, v.shaders, settings, v.logger)
	v.chain.Profiler = postfx.NewProfiler()
	v.toggleChain()
}

func (v *viewer) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.config.Width = uint32(width)
	v.config.Height = uint32(height)
	v.surface.Configure(v.adapter, v.device, v.config)
	if err := v.scene.Resize(width, height); err != nil {
		panic(err)
	}
	v.camera.Aspect = float32(width) / float32(height)
}

func (v *viewer) toggleChain() {
	if v.chainOn {
		v.chain.Deactivate()
		v.chainOn = false
		v.logger.Infof("effects off")
		return
	}
	if err := v.chain.Activate(v.camera); err != nil {
		v.logger.Errorf("activate: %v", err)
		return
	}
	v.chainOn = true
	v.logger.Infof("effects on")
}

func (v *viewer) toggleEffect(name string) {
	enabled := !v.chain.Enabled(name)
	if err := v.chain.SetEnabled(name, enabled); err != nil {
		v.logger.Errorf("%s: %v", name, err)
		return
	}
	v.logger.Infof("%s enabled=%v", name, enabled)
}

func (v *viewer) render(now float64) {
	v.camera.Position = orbit(now)
	v.camera.LookAt(mgl32.Vec3{})
	if err := v.scene.Render(v.camera); err != nil {
		v.logger.Errorf("scene: %v", err)
		return
	}

	next, err := v.surface.GetCurrentTexture()
	if err != nil {
		v.logger.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer next.Release()
	view, err := next.CreateView(nil)
	if err != nil {
		v.logger.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	target := gpu.WrapView(view, int(v.config.Width), int(v.config.Height), v.config.Format)
	if v.chainOn {
		err = v.chain.Process(v.scene.Color, target)
	} else {
		err = v.fx.Blit(v.scene.Color, target, nil)
	}
	if err != nil {
		v.logger.Errorf("post effects: %v", err)
	}
	v.surface.Present()

	if now-v.statsTime >= statsInterval {
		v.logger.Debugf("%s", v.chain.Profiler)
		v.chain.Profiler.Reset()
		v.statsTime = now
	}
}

func (v *viewer) release() {
	if v.chainOn {
		v.chain.Deactivate()
	}
	v.scene.Release()
	v.shaders.Release()
	v.fx.Release()
}
