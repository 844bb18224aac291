package soft

import (
	"github.com/gekko3d/postfx"
	"github.com/go-gl/mathgl/mgl32"
)

// ShadeContext is what a program sees while shading one pixel.
type ShadeContext struct {
	Src   *Texture
	Dst   *Texture // target contents before the draw
	Depth *Texture // camera depth in [0,1], nil when the host has none
	Mat   *Material

	// Width and Height are the target size.
	Width  int
	Height int
}

// UV returns the normalized coordinate of the center of pixel (x, y).
func (c *ShadeContext) UV(x, y int) (float32, float32) {
	return (float32(x) + 0.5) / float32(c.Width), (float32(y) + 0.5) / float32(c.Height)
}

// SrcAt reads the source at target pixel (x, y): an exact texel fetch when
// the sizes match, a bilinear sample otherwise.
func (c *ShadeContext) SrcAt(x, y int) [4]float32 {
	if c.Src.width == c.Width && c.Src.height == c.Height {
		return c.Src.RGBA(x, y)
	}
	u, v := c.UV(x, y)
	return c.Src.Sample(u, v)
}

// Program is a CPU fragment program. Shade returns the new value of the
// target pixel at (x, y).
type Program interface {
	Shade(ctx *ShadeContext, x, y int) [4]float32
	// ReadsTarget reports whether Shade reads ctx.Dst.
	ReadsTarget() bool
}

type Shader struct {
	name      string
	program   Program
	supported bool
}

func NewShader(name string, program Program) *Shader {
	return &Shader{name: name, program: program, supported: program != nil}
}

// NewUnsupportedShader models a shader that failed to compile.
func NewUnsupportedShader(name string) *Shader {
	return &Shader{name: name}
}

func (s *Shader) Name() string      { return s.name }
func (s *Shader) IsSupported() bool { return s.supported }

func (s *Shader) Program() Program { return s.program }

type Material struct {
	shader   *Shader
	floats   map[string]float32
	matrices map[string]mgl32.Mat4
	released bool
}

func (m *Material) Shader() postfx.Shader { return m.shader }

func (m *Material) SetFloat(name string, v float32) { m.floats[name] = v }

func (m *Material) SetMatrix(name string, v mgl32.Mat4) { m.matrices[name] = v }

func (m *Material) Float(name string) float32 { return m.floats[name] }

func (m *Material) Matrix(name string) (mgl32.Mat4, bool) {
	v, ok := m.matrices[name]
	return v, ok
}

func (m *Material) Release() { m.released = true }

func (m *Material) Released() bool { return m.released }

// Library maps shader names to shaders. Unknown names resolve to nil, which
// the effects treat as a missing shader.
type Library map[string]*Shader

// NewLibrary returns the built-in effect shaders.
func NewLibrary() Library {
	return Library{
		"copy":                           NewShader("copy", CopyProgram{}),
		postfx.DefaultAccumulationShader: NewShader(postfx.DefaultAccumulationShader, AccumulationProgram{}),
		postfx.DefaultReprojectionShader: NewShader(postfx.DefaultReprojectionShader, ReprojectionProgram{}),
	}
}

func (l Library) Lookup(name string) postfx.Shader {
	s, ok := l[name]
	if !ok {
		return nil
	}
	return s
}
