package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/postfx"
	"github.com/go-gl/mathgl/mgl32"
)

// Material holds uniform values for a shader and the buffer they are
// uploaded to before each draw.
type Material struct {
	shader   *Shader
	floats   map[string]float32
	matrices map[string]mgl32.Mat4
	buffer   *wgpu.Buffer
	dirty    bool
	released bool
}

func (m *Material) Shader() postfx.Shader { return m.shader }

func (m *Material) SetFloat(name string, v float32) {
	if old, ok := m.floats[name]; ok && old == v {
		return
	}
	m.floats[name] = v
	m.dirty = true
}

func (m *Material) SetMatrix(name string, v mgl32.Mat4) {
	m.matrices[name] = v
	m.dirty = true
}

func (m *Material) Float(name string) float32 { return m.floats[name] }

// bufferWriter is the part of *wgpu.Queue used for uniform uploads.
type bufferWriter interface {
	WriteBuffer(buffer *wgpu.Buffer, offset uint64, data []byte) error
}

// upload writes pending uniform values to the buffer. They stay pending when
// the write fails.
func (m *Material) upload(w bufferWriter) error {
	if m.buffer == nil || !m.dirty {
		return nil
	}
	if err := w.WriteBuffer(m.buffer, 0, PackUniforms(m.shader.desc.Uniforms, m.floats, m.matrices)); err != nil {
		return fmt.Errorf("gpu: %s uniforms: %w", m.shader.desc.Name, err)
	}
	m.dirty = false
	return nil
}

func (m *Material) Released() bool { return m.released }

func (m *Material) Release() {
	if m.released {
		return
	}
	m.released = true
	if m.buffer != nil {
		m.buffer.Release()
		m.buffer = nil
	}
}
