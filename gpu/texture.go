package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// Texture is a render target owned by a Device, or a wrapped view such as
// the current swapchain image.
type Texture struct {
	ID     string
	Format wgpu.TextureFormat
	View   *wgpu.TextureView

	tex             *wgpu.Texture
	width, height   int
	restoreExpected bool
	released        bool
}

func newTexture(dev *wgpu.Device, width, height int, format wgpu.TextureFormat, label string) (*Texture, error) {
	id := uuid.NewString()
	tex, err := dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label + " " + id,
		Size:          wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage: wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding |
			wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &Texture{
		ID:     id,
		Format: format,
		View:   view,
		tex:    tex,
		width:  width,
		height: height,
	}, nil
}

// WrapView adapts a view the caller owns. Release on the result is a no-op.
func WrapView(view *wgpu.TextureView, width, height int, format wgpu.TextureFormat) *Texture {
	return &Texture{
		ID:     uuid.NewString(),
		Format: format,
		View:   view,
		width:  width,
		height: height,
	}
}

func (t *Texture) Width() int  { return t.width }
func (t *Texture) Height() int { return t.height }

func (t *Texture) MarkRestoreExpected() { t.restoreExpected = true }

func (t *Texture) Released() bool { return t.released }

func (t *Texture) Release() {
	if t.released {
		return
	}
	t.released = true
	if t.tex == nil {
		return
	}
	t.View.Release()
	t.tex.Release()
	t.View = nil
	t.tex = nil
}
