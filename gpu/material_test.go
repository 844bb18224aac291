package gpu

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/postfx"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queueStub records uniform writes and fails while err is set.
type queueStub struct {
	err    error
	writes [][]byte
}

func (q *queueStub) WriteBuffer(buffer *wgpu.Buffer, offset uint64, data []byte) error {
	if q.err != nil {
		return q.err
	}
	q.writes = append(q.writes, data)
	return nil
}

func newTestMaterial(desc ShaderDesc) *Material {
	return &Material{
		shader:   &Shader{desc: desc},
		floats:   make(map[string]float32),
		matrices: make(map[string]mgl32.Mat4),
		buffer:   &wgpu.Buffer{},
		dirty:    true,
	}
}

func TestMaterial_UploadKeepsValuesPendingOnFailure(t *testing.T) {
	m := newTestMaterial(AccumulationDesc())
	m.SetFloat(postfx.UniformBlurAmount, 0.25)
	q := &queueStub{err: errors.New("device lost")}

	err := m.upload(q)
	require.ErrorIs(t, err, q.err)
	assert.True(t, m.dirty)

	q.err = nil
	require.NoError(t, m.upload(q))
	require.Len(t, q.writes, 1)
	assert.False(t, m.dirty)

	require.NoError(t, m.upload(q))
	assert.Len(t, q.writes, 1, "clean material is not rewritten")

	m.SetFloat(postfx.UniformBlurAmount, 0.25)
	assert.False(t, m.dirty, "unchanged value")
	m.SetFloat(postfx.UniformBlurAmount, 0.5)
	require.NoError(t, m.upload(q))
	assert.Len(t, q.writes, 2)
}

func TestDevice_DepthShaderFallsBackWithoutDepth(t *testing.T) {
	d := &Device{blit: newTestMaterial(blitDesc())}
	rep := newTestMaterial(ReprojectionDesc())
	acc := newTestMaterial(AccumulationDesc())

	m, err := d.material(nil)
	require.NoError(t, err)
	assert.Same(t, d.blit, m)

	m, err = d.material(rep)
	require.NoError(t, err)
	assert.Same(t, d.blit, m, "no depth installed")

	m, err = d.material(acc)
	require.NoError(t, err)
	assert.Same(t, acc, m)

	d.SetDepthTexture(&Texture{})
	m, err = d.material(rep)
	require.NoError(t, err)
	assert.Same(t, rep, m)

	_, err = d.material(foreignMaterial{})
	assert.ErrorIs(t, err, ErrForeignShader)
}

type foreignMaterial struct{ postfx.Material }
