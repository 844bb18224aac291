package soft

import (
	"image"
	"image/color"
	"math"

	"github.com/chewxy/math32"
	"github.com/google/uuid"
)

// Texture is a float32 RGBA image, row-major with y=0 at the top.
// It satisfies postfx.RenderTarget and draw.Image.
type Texture struct {
	ID  string
	Pix []float32

	width           int
	height          int
	device          *Device
	restoreExpected bool
	released        bool
}

// NewTexture returns an untracked texture, typically a camera's frame.
func NewTexture(width, height int) *Texture {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Texture{
		ID:     uuid.NewString(),
		Pix:    make([]float32, width*height*4),
		width:  width,
		height: height,
	}
}

func (t *Texture) Width() int  { return t.width }
func (t *Texture) Height() int { return t.height }

func (t *Texture) MarkRestoreExpected() { t.restoreExpected = true }

// Released reports whether Release has been called.
func (t *Texture) Released() bool { return t.released }

func (t *Texture) Release() {
	if t.released {
		return
	}
	t.released = true
	if t.device != nil {
		t.device.untrack(t)
	}
	t.Pix = nil
}

func (t *Texture) offset(x, y int) int {
	return (y*t.width + x) * 4
}

func (t *Texture) RGBA(x, y int) [4]float32 {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return [4]float32{}
	}
	i := t.offset(x, y)
	return [4]float32{t.Pix[i], t.Pix[i+1], t.Pix[i+2], t.Pix[i+3]}
}

func (t *Texture) SetRGBA(x, y int, c [4]float32) {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return
	}
	i := t.offset(x, y)
	copy(t.Pix[i:i+4], c[:])
}

func (t *Texture) Fill(c [4]float32) {
	for i := 0; i < len(t.Pix); i += 4 {
		copy(t.Pix[i:i+4], c[:])
	}
}

// Sample reads the texture bilinearly at normalized uv, clamped to the edge.
func (t *Texture) Sample(u, v float32) [4]float32 {
	fx := u*float32(t.width) - 0.5
	fy := v*float32(t.height) - 0.5
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	ax := fx - float32(x0)
	ay := fy - float32(y0)

	c00 := t.RGBA(t.clampX(x0), t.clampY(y0))
	c10 := t.RGBA(t.clampX(x0+1), t.clampY(y0))
	c01 := t.RGBA(t.clampX(x0), t.clampY(y0+1))
	c11 := t.RGBA(t.clampX(x0+1), t.clampY(y0+1))

	var out [4]float32
	for i := 0; i < 4; i++ {
		top := c00[i] + (c10[i]-c00[i])*ax
		bottom := c01[i] + (c11[i]-c01[i])*ax
		out[i] = top + (bottom-top)*ay
	}
	return out
}

func (t *Texture) clampX(x int) int { return clampInt(x, 0, t.width-1) }
func (t *Texture) clampY(y int) int { return clampInt(y, 0, t.height-1) }

// Clone returns an untracked copy.
func (t *Texture) Clone() *Texture {
	c := NewTexture(t.width, t.height)
	copy(c.Pix, t.Pix)
	return c
}

// Equal reports bit-identical pixels and size.
func (t *Texture) Equal(o *Texture) bool {
	if t.width != o.width || t.height != o.height || len(t.Pix) != len(o.Pix) {
		return false
	}
	for i := range t.Pix {
		if math.Float32bits(t.Pix[i]) != math.Float32bits(o.Pix[i]) {
			return false
		}
	}
	return true
}

// draw.Image, used for scaled copies

func (t *Texture) ColorModel() color.Model { return color.NRGBA64Model }

func (t *Texture) Bounds() image.Rectangle { return image.Rect(0, 0, t.width, t.height) }

func (t *Texture) At(x, y int) color.Color {
	c := t.RGBA(x, y)
	return color.NRGBA64{
		R: unitToUint16(c[0]),
		G: unitToUint16(c[1]),
		B: unitToUint16(c[2]),
		A: unitToUint16(c[3]),
	}
}

func (t *Texture) Set(x, y int, c color.Color) {
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	t.SetRGBA(x, y, [4]float32{
		float32(n.R) / 0xffff,
		float32(n.G) / 0xffff,
		float32(n.B) / 0xffff,
		float32(n.A) / 0xffff,
	})
}

func unitToUint16(v float32) uint16 {
	v = math32.Max(0, math32.Min(1, v))
	return uint16(v*0xffff + 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
