// Package soft is a software implementation of the postfx device boundary.
// Programs run per pixel on the CPU, which makes every frame deterministic
// and inspectable.
package soft

import (
	"errors"
	"fmt"

	"github.com/gekko3d/postfx"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
)

var (
	ErrForeignTexture  = errors.New("soft: texture was not created by a soft device")
	ErrForeignShader   = errors.New("soft: shader was not created by the soft package")
	ErrReleasedTexture = errors.New("soft: texture has been released")
)

type Device struct {
	logger postfx.Logger
	live   map[string]*Texture
	depth  *Texture
	warned map[string]bool

	Allocations int
	Blits       int
	// MaterialsCreated counts successful NewMaterial calls.
	MaterialsCreated int
}

func NewDevice(logger postfx.Logger) *Device {
	if logger == nil {
		logger = postfx.NewNopLogger()
	}
	return &Device{
		logger: logger,
		live:   make(map[string]*Texture),
		warned: make(map[string]bool),
	}
}

// NewRenderTarget allocates a tracked texture; it stays in Live until released.
func (d *Device) NewRenderTarget(width, height int) (postfx.RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("soft: invalid render target size %dx%d", width, height)
	}
	t := NewTexture(width, height)
	t.device = d
	d.live[t.ID] = t
	d.Allocations++
	d.logger.Debugf("soft: render target %s allocated %dx%d", t.ID, width, height)
	return t, nil
}

func (d *Device) untrack(t *Texture) {
	delete(d.live, t.ID)
	d.logger.Debugf("soft: render target %s released", t.ID)
}

// Live returns the tracked render targets that have not been released.
func (d *Device) Live() []*Texture {
	out := make([]*Texture, 0, len(d.live))
	for _, t := range d.live {
		out = append(out, t)
	}
	return out
}

func (d *Device) NewMaterial(shader postfx.Shader) (postfx.Material, error) {
	s, ok := shader.(*Shader)
	if !ok {
		return nil, ErrForeignShader
	}
	if !s.IsSupported() {
		return nil, fmt.Errorf("soft: %s: %w", s.Name(), postfx.ErrUnsupportedShader)
	}
	d.MaterialsCreated++
	return &Material{
		shader:   s,
		floats:   make(map[string]float32),
		matrices: make(map[string]mgl32.Mat4),
	}, nil
}

// SetDepthTexture installs the camera depth programs may sample.
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
	d.Blits++
	defer func() { t.restoreExpected = false }()

	if mat == nil {
		return d.copy(s, t)
	}
	m, ok := mat.(*Material)
	if !ok {
		return ErrForeignShader
	}
	return d.draw(s, t, m)
}

func (d *Device) copy(src, dst *Texture) error {
	if src == dst {
		return nil
	}
	if src.width == dst.width && src.height == dst.height {
		copy(dst.Pix, src.Pix)
		return nil
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return nil
}

func (d *Device) draw(src, dst *Texture, mat *Material) error {
	program := mat.shader.program
	if program.ReadsTarget() && !dst.restoreExpected {
		d.warnOnce(mat.shader.name, "soft: %s reads its target without MarkRestoreExpected", mat.shader.name)
	}
	if src == dst {
		src = src.Clone()
	}
	ctx := &ShadeContext{Src: src, Depth: d.depth, Mat: mat, Width: dst.width, Height: dst.height}
	if program.ReadsTarget() {
		ctx.Dst = dst.Clone()
	}
	for y := 0; y < dst.height; y++ {
		for x := 0; x < dst.width; x++ {
			dst.SetRGBA(x, y, program.Shade(ctx, x, y))
		}
	}
	return nil
}

func (d *Device) warnOnce(key string, format string, args ...any) {
	if d.warned[key] {
		return
	}
	d.warned[key] = true
	d.logger.Warnf(format, args...)
}
