// Package gpu implements the postfx device boundary on WebGPU.
package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/postfx"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrForeignTexture  = errors.New("gpu: texture was not created by the gpu package")
	ErrForeignShader   = errors.New("gpu: shader was not created by the gpu package")
	ErrReleasedTexture = errors.New("gpu: texture has been released")
	ErrAliased         = errors.New("gpu: source and target are the same texture")
)

// TargetFormat is the format of render targets created by NewRenderTarget.
const TargetFormat = wgpu.TextureFormatRGBA16Float

type Device struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue

	logger  postfx.Logger
	sampler *wgpu.Sampler
	blit    *Material
	depth   *Texture
}

// NewDevice wraps an initialized WebGPU device. The caller keeps ownership
// of dev.
func NewDevice(dev *wgpu.Device, logger postfx.Logger) (*Device, error) {
	if logger == nil {
		logger = postfx.NewNopLogger()
	}
	d := &Device{Device: dev, Queue: dev.GetQueue(), logger: logger}

	var err error
	d.sampler, err = dev.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: sampler: %w", err)
	}

	blit := NewShader(d, blitDesc())
	if !blit.IsSupported() {
		d.sampler.Release()
		return nil, fmt.Errorf("gpu: blit shader: %w", blit.Err())
	}
	mat, err := d.NewMaterial(blit)
	if err != nil {
		blit.Release()
		d.sampler.Release()
		return nil, err
	}
	d.blit = mat.(*Material)
	return d, nil
}

func (d *Device) NewRenderTarget(width, height int) (postfx.RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gpu: invalid render target size %dx%d", width, height)
	}
	t, err := newTexture(d.Device, width, height, TargetFormat, "PostFX Target")
	if err != nil {
		return nil, fmt.Errorf("gpu: render target: %w", err)
	}
	d.logger.Debugf("gpu: render target %s allocated %dx%d", t.ID, width, height)
	return t, nil
}

func (d *Device) NewMaterial(shader postfx.Shader) (postfx.Material, error) {
	s, ok := shader.(*Shader)
	if !ok {
		return nil, ErrForeignShader
	}
	if !s.IsSupported() {
		return nil, fmt.Errorf("gpu: %s: %w", s.Name(), postfx.ErrUnsupportedShader)
	}
	m := &Material{
		shader:   s,
		floats:   make(map[string]float32),
		matrices: make(map[string]mgl32.Mat4),
		dirty:    true,
	}
	if _, size := UniformLayout(s.desc.Uniforms); size > 0 {
		buf, err := d.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: s.desc.Name + " Uniforms",
			Size:  size,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("gpu: %s uniforms: %w", s.Name(), err)
		}
		m.buffer = buf
	}
	return m, nil
}

// SetDepthTexture installs the camera depth read by shaders with UsesDepth.
func (d *Device) SetDepthTexture(t *Texture) { d.depth = t }

func (d *Device) DepthTexture() *Texture { return d.depth }

func (d *Device) Blit(src postfx.Texture, dst postfx.RenderTarget, mat postfx.Material) error {
	s, ok := src.(*Texture)
	if !ok {
		return ErrForeignTexture
	}
	t, ok := dst.(*Texture)
	if !ok {
		return ErrForeignTexture
	}
	if s.released || t.released {
		return ErrReleasedTexture
	}
	if s.View == t.View {
		return ErrAliased
	}
	defer func() { t.restoreExpected = false }()

	m, err := d.material(mat)
	if err != nil {
		return err
	}
	pipelines, err := m.shader.pipelinesFor(d.Device, t.Format)
	if err != nil {
		return err
	}
	if err := m.upload(d.Queue); err != nil {
		return err
	}

	entries := []wgpu.BindGroupEntry{
		{Binding: 0, TextureView: s.View},
		{Binding: 1, Sampler: d.sampler},
	}
	if m.buffer != nil {
		entries = append(entries, wgpu.BindGroupEntry{Binding: 2, Buffer: m.buffer, Size: m.buffer.GetSize()})
	}
	if m.shader.desc.UsesDepth {
		entries = append(entries, wgpu.BindGroupEntry{Binding: 3, TextureView: d.depth.View})
	}
	bg, err := d.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   m.shader.desc.Name + " BG",
		Layout:  m.shader.layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("gpu: %s bind group: %w", m.shader.desc.Name, err)
	}
	defer bg.Release()

	load := wgpu.LoadOpClear
	if t.restoreExpected {
		load = wgpu.LoadOpLoad
	}
	return d.submit(func(encoder *wgpu.CommandEncoder) error {
		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{{
				View:       t.View,
				LoadOp:     load,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{0, 0, 0, 0},
			}},
		})
		for _, p := range pipelines {
			pass.SetPipeline(p)
			pass.SetBindGroup(0, bg, nil)
			pass.Draw(3, 1, 0, 0)
		}
		return pass.End()
	})
}

// material resolves what a blit draws with. A shader that reads depth falls
// back to a plain copy while no depth texture is installed.
func (d *Device) material(mat postfx.Material) (*Material, error) {
	if mat == nil {
		return d.blit, nil
	}
	m, ok := mat.(*Material)
	if !ok {
		return nil, ErrForeignShader
	}
	if m.shader.desc.UsesDepth && d.depth == nil {
		return d.blit, nil
	}
	return m, nil
}

// submit records one command buffer and submits it to the queue.
func (d *Device) submit(record func(encoder *wgpu.CommandEncoder) error) error {
	encoder, err := d.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("gpu: command encoder: %w", err)
	}
	defer encoder.Release()

	if err := record(encoder); err != nil {
		return fmt.Errorf("gpu: render pass: %w", err)
	}
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("gpu: encoder finish: %w", err)
	}
	defer cmd.Release()
	d.Queue.Submit(cmd)
	return nil
}

func (d *Device) Release() {
	if d.blit != nil {
		d.blit.Release()
		d.blit.shader.Release()
		d.blit = nil
	}
	if d.sampler != nil {
		d.sampler.Release()
		d.sampler = nil
	}
}
