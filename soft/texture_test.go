package soft

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTexture_MinimumSize(t *testing.T) {
	tex := NewTexture(0, -3)
	assert.Equal(t, 1, tex.Width())
	assert.Equal(t, 1, tex.Height())
	assert.Len(t, tex.Pix, 4)
	assert.NotEmpty(t, tex.ID)
}

func TestTexture_OutOfBounds(t *testing.T) {
	tex := NewTexture(2, 2)
	tex.SetRGBA(5, 0, [4]float32{1, 1, 1, 1})
	assert.Equal(t, [4]float32{}, tex.RGBA(5, 0))
	assert.Equal(t, [4]float32{}, tex.RGBA(-1, 0))
	for _, v := range tex.Pix {
		assert.Zero(t, v)
	}
}

func TestTexture_Sample(t *testing.T) {
	tex := NewTexture(2, 1)
	tex.SetRGBA(0, 0, [4]float32{0, 0, 0, 1})
	tex.SetRGBA(1, 0, [4]float32{1, 1, 1, 1})

	tests := []struct {
		name string
		u    float32
		want float32
	}{
		{name: "left texel center", u: 0.25, want: 0},
		{name: "right texel center", u: 0.75, want: 1},
		{name: "midpoint", u: 0.5, want: 0.5},
		{name: "clamped left", u: -2, want: 0},
		{name: "clamped right", u: 3, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tex.Sample(tt.u, 0.5)
			assert.InDelta(t, tt.want, c[0], 1e-6)
			assert.InDelta(t, 1, c[3], 1e-6)
		})
	}
}

func TestTexture_CloneAndEqual(t *testing.T) {
	tex := NewTexture(3, 2)
	tex.Fill([4]float32{0.1, 0.2, 0.3, 1})
	c := tex.Clone()
	assert.True(t, tex.Equal(c))
	assert.NotEqual(t, tex.ID, c.ID)

	c.SetRGBA(2, 1, [4]float32{0.1, 0.2, 0.30001, 1})
	assert.False(t, tex.Equal(c))
	assert.False(t, tex.Equal(NewTexture(2, 3)))
}

func TestTexture_ImageInterface(t *testing.T) {
	tex := NewTexture(2, 2)
	tex.Set(1, 1, color.NRGBA64{R: 0xffff, G: 0x8000, A: 0xffff})
	got := tex.RGBA(1, 1)
	assert.InDelta(t, 1, got[0], 1e-4)
	assert.InDelta(t, 0.5, got[1], 1e-4)
	assert.InDelta(t, 0, got[2], 1e-4)

	tex.SetRGBA(0, 0, [4]float32{2, -1, 0.5, 1})
	c := tex.At(0, 0).(color.NRGBA64)
	assert.Equal(t, uint16(0xffff), c.R, "values above one clamp")
	assert.Equal(t, uint16(0), c.G, "negative values clamp")
	assert.Equal(t, 2, tex.Bounds().Dx())
}

func TestTexture_ReleaseUntracks(t *testing.T) {
	dev := NewDevice(nil)
	rt, err := dev.NewRenderTarget(4, 4)
	require.NoError(t, err)
	require.Len(t, dev.Live(), 1)

	tex := rt.(*Texture)
	tex.Release()
	tex.Release()
	assert.True(t, tex.Released())
	assert.Nil(t, tex.Pix)
	assert.Empty(t, dev.Live())
}
