package soft

import (
	"testing"

	"github.com/gekko3d/postfx"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCamera_LookAt(t *testing.T) {
	cam := NewCamera(16.0 / 9)
	cam.LookAt(mgl32.Vec3{})

	want := cam.Position.Mul(-1).Normalize()
	got := cam.Forward()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-5)
	}

	// the target projects to the middle of the screen
	clip := postfx.ViewProjection(cam).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-5)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-5)
}

func TestCamera_DepthTextureMode(t *testing.T) {
	cam := NewCamera(0)
	assert.Equal(t, float32(1), cam.Aspect)
	assert.Equal(t, postfx.DepthTextureNone, cam.DepthTextureMode())

	cam.SetDepthTextureMode(postfx.DepthTextureMotionVectors | postfx.DepthTextureDepth)
	assert.True(t, cam.DepthTextureMode().Has(postfx.DepthTextureDepth))
	assert.True(t, cam.DepthTextureMode().Has(postfx.DepthTextureMotionVectors))
	assert.False(t, cam.DepthTextureMode().Has(postfx.DepthTextureDepthNormals))
}

func TestCheckerScene_Render(t *testing.T) {
	cam := NewCamera(1)
	cam.Position = mgl32.Vec3{0.5, -4, 1}
	cam.LookAt(mgl32.Vec3{0.5, 0, 1})

	scene := NewCheckerScene()
	color, depth := NewTexture(16, 16), NewTexture(16, 16)
	scene.Render(cam, color, depth)

	// horizon at mid height: sky above, ground below
	assert.Equal(t, float32(1), depth.RGBA(8, 0)[0])
	assert.NotContains(t, [][4]float32{scene.Light, scene.Dark}, color.RGBA(8, 0))

	d := depth.RGBA(8, 15)[0]
	assert.Greater(t, d, float32(0))
	assert.Less(t, d, float32(1))
	assert.Contains(t, [][4]float32{scene.Light, scene.Dark}, color.RGBA(8, 15))

	// nearer ground is closer
	assert.Less(t, depth.RGBA(8, 15)[0], depth.RGBA(8, 10)[0])
}

func TestCheckerScene_Tiles(t *testing.T) {
	s := NewCheckerScene()
	assert.Equal(t, s.Light, s.tile(mgl32.Vec3{0.5, 0.5, 0}))
	assert.Equal(t, s.Dark, s.tile(mgl32.Vec3{1.5, 0.5, 0}))
	assert.Equal(t, s.Dark, s.tile(mgl32.Vec3{-0.5, 0.5, 0}))
	assert.Equal(t, s.Light, s.tile(mgl32.Vec3{-0.5, -0.5, 0}))

	s.TileSize = 0
	assert.Equal(t, s.Light, s.tile(mgl32.Vec3{0.5, 0.5, 0}))
}

func TestCheckerScene_DrawHonorsDepthRequest(t *testing.T) {
	dev := NewDevice(nil)
	scene := NewCheckerScene()
	cam := NewCamera(2)
	cam.Position = mgl32.Vec3{0.5, -4, 1}
	cam.LookAt(mgl32.Vec3{0.5, 0, 1})
	color, depth := NewTexture(8, 4), NewTexture(8, 4)

	scene.Draw(dev, cam, color, depth)
	assert.Nil(t, dev.DepthTexture())
	assert.True(t, depth.Equal(NewTexture(8, 4)), "depth untouched without a request")
	assert.NotEqual(t, [4]float32{}, color.RGBA(0, 0))

	cam.SetDepthTextureMode(postfx.DepthTextureDepth)
	scene.Draw(dev, cam, color, depth)
	assert.Same(t, depth, dev.DepthTexture())
	assert.InDelta(t, 1, depth.RGBA(0, 0)[0], 1e-6, "sky is at the far plane")
	assert.Less(t, depth.RGBA(4, 3)[0], float32(1), "ground is closer")

	cam.SetDepthTextureMode(postfx.DepthTextureNone)
	scene.Draw(dev, cam, color, depth)
	assert.Nil(t, dev.DepthTexture())
}
