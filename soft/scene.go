package soft

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/postfx"
	"github.com/go-gl/mathgl/mgl32"
)

// CheckerScene is a ground plane at z=0 tiled with a two-tone checkerboard
// under a gradient sky.
type CheckerScene struct {
	TileSize float32
	Light    [4]float32
	Dark     [4]float32
	SkyLow   [4]float32
	SkyHigh  [4]float32
}

func NewCheckerScene() *CheckerScene {
	return &CheckerScene{
		TileSize: 1,
		Light:    [4]float32{0.9, 0.85, 0.7, 1},
		Dark:     [4]float32{0.15, 0.2, 0.3, 1},
		SkyLow:   [4]float32{0.7, 0.8, 0.95, 1},
		SkyHigh:  [4]float32{0.2, 0.35, 0.7, 1},
	}
}

// Render ray-casts the scene from cam into color and, when non-nil, depth.
// Depth is the window-space depth in [0,1]; the sky is at 1.
func (s *CheckerScene) Render(cam postfx.Camera, color, depth *Texture) {
	vp := postfx.ViewProjection(cam)
	inv := vp.Inv()
	w, h := color.Width(), color.Height()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			u := (float32(x) + 0.5) / float32(w)
			v := (float32(y) + 0.5) / float32(h)
			nx, ny := UVToNDC(u, v)

			near := unproject(inv, nx, ny, -1)
			far := unproject(inv, nx, ny, 1)
			dir := far.Sub(near)

			c, d := s.sky(v), float32(1)
			if dir.Z() < 0 && near.Z() > 0 {
				if t := -near.Z() / dir.Z(); t <= 1 {
					p := near.Add(dir.Mul(t))
					c = s.tile(p)
					clip := vp.Mul4x1(p.Vec4(1))
					d = (clip.Z()/clip.W() + 1) / 2
				}
			}
			color.SetRGBA(x, y, c)
			if depth != nil {
				depth.SetRGBA(x, y, [4]float32{d, d, d, 1})
			}
		}
	}
}

// Draw renders a frame for cam on dev. Depth is written and installed as the
// device depth texture only while cam requests DepthTextureDepth; otherwise
// the device is left without depth.
func (s *CheckerScene) Draw(dev *Device, cam postfx.Camera, color, depth *Texture) {
	if !cam.DepthTextureMode().Has(postfx.DepthTextureDepth) {
		depth = nil
	}
	s.Render(cam, color, depth)
	dev.SetDepthTexture(depth)
}

func (s *CheckerScene) tile(p mgl32.Vec3) [4]float32 {
	size := s.TileSize
	if size <= 0 {
		size = 1
	}
	ix := int(math32.Floor(p.X() / size))
	iy := int(math32.Floor(p.Y() / size))
	if (ix+iy)&1 == 0 {
		return s.Light
	}
	return s.Dark
}

func (s *CheckerScene) sky(v float32) [4]float32 {
	var out [4]float32
	for i := range out {
		out[i] = s.SkyHigh[i] + (s.SkyLow[i]-s.SkyHigh[i])*v
	}
	return out
}

func unproject(inv mgl32.Mat4, x, y, z float32) mgl32.Vec3 {
	p := inv.Mul4x1(mgl32.Vec4{x, y, z, 1})
	return p.Vec3().Mul(1 / p.W())
}
