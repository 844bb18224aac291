package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/postfx"
	"github.com/gekko3d/postfx/shaders"
)

// Pass is one fullscreen draw of a shader. Passes run in order into the
// same target within one render pass.
type Pass struct {
	FragmentEntry string
	Blend         *wgpu.BlendState
	WriteMask     wgpu.ColorWriteMask
}

type ShaderDesc struct {
	Name     string
	Code     string
	Uniforms []Uniform
	Passes   []Pass
	// UsesDepth binds the device depth texture at binding 3.
	UsesDepth bool
}

// Shader is a compiled WGSL module plus the layout of its bind group:
// 0 source texture, 1 sampler, 2 uniforms (if any), 3 depth (if used).
type Shader struct {
	desc   ShaderDesc
	module *wgpu.ShaderModule
	err    error

	layout         *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	pipelines      map[wgpu.TextureFormat][]*wgpu.RenderPipeline
}

// NewShader compiles desc. A compile failure is kept on the shader and
// reported through IsSupported and Err.
func NewShader(d *Device, desc ShaderDesc) *Shader {
	s := &Shader{desc: desc, pipelines: make(map[wgpu.TextureFormat][]*wgpu.RenderPipeline)}
	if len(desc.Passes) == 0 {
		s.err = fmt.Errorf("gpu: shader %s has no passes", desc.Name)
		return s
	}
	s.module, s.err = d.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.Code},
	})
	if s.err != nil {
		d.logger.Warnf("gpu: shader %s failed to compile: %v", desc.Name, s.err)
		return s
	}
	if s.err = s.createLayout(d.Device); s.err != nil {
		d.logger.Warnf("gpu: shader %s layout: %v", desc.Name, s.err)
	}
	return s
}

func (s *Shader) Name() string      { return s.desc.Name }
func (s *Shader) IsSupported() bool { return s.err == nil && s.module != nil }
func (s *Shader) Err() error        { return s.err }

func (s *Shader) Uniforms() []Uniform { return s.desc.Uniforms }

func (s *Shader) createLayout(dev *wgpu.Device) error {
	entries := []wgpu.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		},
		{
			Binding:    1,
			Visibility: wgpu.ShaderStageFragment,
			Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
		},
	}
	if _, size := UniformLayout(s.desc.Uniforms); size > 0 {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    2,
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: size,
			},
		})
	}
	if s.desc.UsesDepth {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    3,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		})
	}

	var err error
	s.layout, err = dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   s.desc.Name + " BGL",
		Entries: entries,
	})
	if err != nil {
		return err
	}
	s.pipelineLayout, err = dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.desc.Name + " Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{s.layout},
	})
	return err
}

// pipelinesFor returns one pipeline per pass for the target format, building
// them on first use.
func (s *Shader) pipelinesFor(dev *wgpu.Device, format wgpu.TextureFormat) ([]*wgpu.RenderPipeline, error) {
	if ps, ok := s.pipelines[format]; ok {
		return ps, nil
	}
	ps := make([]*wgpu.RenderPipeline, 0, len(s.desc.Passes))
	for i, pass := range s.desc.Passes {
		mask := pass.WriteMask
		if mask == 0 {
			mask = wgpu.ColorWriteMaskAll
		}
		p, err := dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
			Label:  fmt.Sprintf("%s Pass %d", s.desc.Name, i),
			Layout: s.pipelineLayout,
			Vertex: wgpu.VertexState{
				Module:     s.module,
				EntryPoint: "vs_main",
			},
			Fragment: &wgpu.FragmentState{
				Module:     s.module,
				EntryPoint: pass.FragmentEntry,
				Targets: []wgpu.ColorTargetState{{
					Format:    format,
					Blend:     pass.Blend,
					WriteMask: mask,
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
			for _, built := range ps {
				built.Release()
			}
			return nil, fmt.Errorf("gpu: %s pipeline for format %v: %w", s.desc.Name, format, err)
		}
		ps = append(ps, p)
	}
	s.pipelines[format] = ps
	return ps, nil
}

func (s *Shader) Release() {
	for format, ps := range s.pipelines {
		for _, p := range ps {
			p.Release()
		}
		delete(s.pipelines, format)
	}
	if s.pipelineLayout != nil {
		s.pipelineLayout.Release()
		s.pipelineLayout = nil
	}
	if s.layout != nil {
		s.layout.Release()
		s.layout = nil
	}
	if s.module != nil {
		s.module.Release()
		s.module = nil
	}
}

// AccumulationDesc blends the source rgb over the target with
// src_alpha = _BlurAmount, then copies the source alpha.
func AccumulationDesc() ShaderDesc {
	return ShaderDesc{
		Name:     postfx.DefaultAccumulationShader,
		Code:     shaders.AccumulationWGSL,
		Uniforms: []Uniform{{Name: postfx.UniformBlurAmount, Kind: UniformFloat}},
		Passes: []Pass{
			{
				FragmentEntry: "fs_rgb",
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorZero,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskRed | wgpu.ColorWriteMaskGreen | wgpu.ColorWriteMaskBlue,
			},
			{FragmentEntry: "fs_alpha", WriteMask: wgpu.ColorWriteMaskAlpha},
		},
	}
}

func ReprojectionDesc() ShaderDesc {
	return ShaderDesc{
		Name: postfx.DefaultReprojectionShader,
		Code: shaders.ReprojectionWGSL,
		Uniforms: []Uniform{
			{Name: postfx.UniformPreviousViewProjectionMatrix, Kind: UniformMat4},
			{Name: postfx.UniformCurrentViewProjectionInvMatrix, Kind: UniformMat4},
			{Name: postfx.UniformBlurSize, Kind: UniformFloat},
		},
		Passes:    []Pass{{FragmentEntry: "fs_main"}},
		UsesDepth: true,
	}
}

func blitDesc() ShaderDesc {
	return ShaderDesc{
		Name:   "blit",
		Code:   shaders.BlitWGSL,
		Passes: []Pass{{FragmentEntry: "fs_main"}},
	}
}

// Library maps shader names to compiled shaders.
type Library map[string]*Shader

// NewLibrary compiles the built-in effect shaders on d.
func NewLibrary(d *Device) Library {
	return Library{
		postfx.DefaultAccumulationShader: NewShader(d, AccumulationDesc()),
		postfx.DefaultReprojectionShader: NewShader(d, ReprojectionDesc()),
	}
}

func (l Library) Lookup(name string) postfx.Shader {
	s, ok := l[name]
	if !ok {
		return nil
	}
	return s
}

func (l Library) Release() {
	for _, s := range l {
		s.Release()
	}
}
