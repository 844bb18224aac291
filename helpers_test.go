package postfx_test

import (
	"errors"

	"github.com/gekko3d/postfx"
	"github.com/gekko3d/postfx/soft"
)

// recordingDevice remembers the last material handed to Blit.
type recordingDevice struct {
	*soft.Device
	lastMaterial postfx.Material
}

func newRecordingDevice() *recordingDevice {
	return &recordingDevice{Device: soft.NewDevice(nil)}
}

func (d *recordingDevice) Blit(src postfx.Texture, dst postfx.RenderTarget, mat postfx.Material) error {
	if mat != nil {
		d.lastMaterial = mat
	}
	return d.Device.Blit(src, dst, mat)
}

func solidFrame(w, h int, v float32) *soft.Texture {
	t := soft.NewTexture(w, h)
	t.Fill([4]float32{v, v, v, 1})
	return t
}

func gradientFrame(w, h int, seed float32) *soft.Texture {
	t := soft.NewTexture(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := float32(x)/float32(w) + seed
			g := float32(y)/float32(h) + seed/2
			t.SetRGBA(x, y, [4]float32{r, g, seed, 1})
		}
	}
	return t
}

// flakyDevice fails the next plain copies while failCopies is positive.
type flakyDevice struct {
	*soft.Device
	failCopies int
}

var errTransient = errors.New("transient blit failure")

func (d *flakyDevice) Blit(src postfx.Texture, dst postfx.RenderTarget, mat postfx.Material) error {
	if mat == nil && d.failCopies > 0 {
		d.failCopies--
		return errTransient
	}
	return d.Device.Blit(src, dst, mat)
}
