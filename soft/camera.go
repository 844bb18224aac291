package soft

import (
	"math"

	"github.com/gekko3d/postfx"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a Z-up fly camera with a perspective projection.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
	FovY     float32 // degrees
	Aspect   float32
	Near     float32
	Far      float32

	depthMode postfx.DepthTextureMode
}

func NewCamera(aspect float32) *Camera {
	if aspect <= 0 {
		aspect = 1
	}
	return &Camera{
		Position: mgl32.Vec3{0, 2, 6},
		FovY:     60,
		Aspect:   aspect,
		Near:     0.1,
		Far:      1000,
	}
}

func (c *Camera) Forward() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Cos(float64(c.Pitch)) * math.Sin(float64(c.Yaw))),
		float32(-math.Cos(float64(c.Pitch)) * math.Cos(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
	}
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target mgl32.Vec3) {
	dir := target.Sub(c.Position)
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize()
	c.Pitch = float32(math.Asin(float64(dir.Z())))
	c.Yaw = float32(math.Atan2(float64(dir.X()), float64(-dir.Y())))
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

func (c *Camera) WorldToCameraMatrix() mgl32.Mat4 {
	eye := c.Position
	return mgl32.LookAtV(eye, eye.Add(c.Forward()), mgl32.Vec3{0, 0, 1})
}

func (c *Camera) DepthTextureMode() postfx.DepthTextureMode { return c.depthMode }

func (c *Camera) SetDepthTextureMode(mode postfx.DepthTextureMode) { c.depthMode = mode }
