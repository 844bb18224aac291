package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/postfx"
	"github.com/gekko3d/postfx/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

const DepthFormat = wgpu.TextureFormatR32Float

var sceneUniforms = []Uniform{
	{Name: "view_proj", Kind: UniformMat4},
	{Name: "inv_view_proj", Kind: UniformMat4},
	{Name: "tile_size", Kind: UniformFloat},
}

// ScenePass ray-casts a checkerboard ground plane into Color and writes the
// hit depth into Depth.
type ScenePass struct {
	TileSize float32
	Color    *Texture
	Depth    *Texture

	device   *Device
	module   *wgpu.ShaderModule
	pipeline *wgpu.RenderPipeline
	uniforms *wgpu.Buffer
	bg       *wgpu.BindGroup
}

func NewScenePass(d *Device, width, height int) (*ScenePass, error) {
	p := &ScenePass{TileSize: 1, device: d}

	var err error
	p.module, err = d.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Scene VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.SceneWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: scene shader: %w", err)
	}

	_, size := UniformLayout(sceneUniforms)
	p.uniforms, err = d.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Scene Uniforms",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("gpu: scene uniforms: %w", err)
	}

	bgl, err := d.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Scene BGL",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: size,
			},
		}},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("gpu: scene layout: %w", err)
	}
	defer bgl.Release()

	layout, err := d.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("gpu: scene layout: %w", err)
	}
	defer layout.Release()

	p.pipeline, err = d.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Scene Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     p.module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{Format: TargetFormat, WriteMask: wgpu.ColorWriteMaskAll},
				{Format: DepthFormat, WriteMask: wgpu.ColorWriteMaskAll},
			},
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
		p.Release()
		return nil, fmt.Errorf("gpu: scene pipeline: %w", err)
	}

	p.bg, err = d.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Scene BG",
		Layout:  bgl,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: p.uniforms, Size: size}},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("gpu: scene bind group: %w", err)
	}

	if err := p.Resize(width, height); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// Resize recreates the color and depth targets.
func (p *ScenePass) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	p.releaseTargets()

	var err error
	if p.Color, err = newTexture(p.device.Device, width, height, TargetFormat, "Scene Color"); err != nil {
		return fmt.Errorf("gpu: scene color: %w", err)
	}
	if p.Depth, err = newTexture(p.device.Device, width, height, DepthFormat, "Scene Depth"); err != nil {
		return fmt.Errorf("gpu: scene depth: %w", err)
	}
	return nil
}

// Render draws the scene for cam. Depth is installed as the device depth
// texture only while cam requests DepthTextureDepth.
func (p *ScenePass) Render(cam postfx.Camera) error {
	if cam.DepthTextureMode().Has(postfx.DepthTextureDepth) {
		p.device.SetDepthTexture(p.Depth)
	} else if p.device.DepthTexture() == p.Depth {
		p.device.SetDepthTexture(nil)
	}

	vp := postfx.ViewProjection(cam)
	data := PackUniforms(sceneUniforms,
		map[string]float32{"tile_size": p.TileSize},
		map[string]mgl32.Mat4{"view_proj": vp, "inv_view_proj": vp.Inv()},
	)
	if err := p.device.Queue.WriteBuffer(p.uniforms, 0, data); err != nil {
		return fmt.Errorf("gpu: scene uniforms: %w", err)
	}

	return p.device.submit(func(encoder *wgpu.CommandEncoder) error {
		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{
				{View: p.Color.View, LoadOp: wgpu.LoadOpClear, StoreOp: wgpu.StoreOpStore, ClearValue: wgpu.Color{0, 0, 0, 1}},
				{View: p.Depth.View, LoadOp: wgpu.LoadOpClear, StoreOp: wgpu.StoreOpStore, ClearValue: wgpu.Color{1, 1, 1, 1}},
			},
		})
		pass.SetPipeline(p.pipeline)
		pass.SetBindGroup(0, p.bg, nil)
		pass.Draw(3, 1, 0, 0)
		return pass.End()
	})
}

func (p *ScenePass) releaseTargets() {
	if p.Color != nil {
		p.Color.Release()
		p.Color = nil
	}
	if p.Depth != nil {
		if p.device.DepthTexture() == p.Depth {
			p.device.SetDepthTexture(nil)
		}
		p.Depth.Release()
		p.Depth = nil
	}
}

func (p *ScenePass) Release() {
	p.releaseTargets()
	if p.bg != nil {
		p.bg.Release()
		p.bg = nil
	}
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
	if p.uniforms != nil {
		p.uniforms.Release()
		p.uniforms = nil
	}
	if p.module != nil {
		p.module.Release()
		p.module = nil
	}
}
