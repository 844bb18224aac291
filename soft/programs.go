package soft

import (
	"github.com/gekko3d/postfx"
	"github.com/go-gl/mathgl/mgl32"
)

// reprojectionTaps is the number of samples taken along the velocity.
const reprojectionTaps = 3

// CopyProgram samples the source unchanged.
type CopyProgram struct{}

func (CopyProgram) ReadsTarget() bool { return false }

func (CopyProgram) Shade(ctx *ShadeContext, x, y int) [4]float32 {
	return ctx.SrcAt(x, y)
}

// AccumulationProgram blends the source over the accumulation target:
// rgb takes _BlurAmount of the source, alpha is replaced by the source alpha.
type AccumulationProgram struct{}

func (AccumulationProgram) ReadsTarget() bool { return true }

func (AccumulationProgram) Shade(ctx *ShadeContext, x, y int) [4]float32 {
	src := ctx.SrcAt(x, y)
	dst := ctx.Dst.RGBA(x, y)
	k := ctx.Mat.Float(postfx.UniformBlurAmount)

	var out [4]float32
	for i := 0; i < 3; i++ {
		out[i] = src[i]*k + dst[i]*(1-k)
	}
	out[3] = src[3]
	return out
}

// ReprojectionProgram rebuilds the world position of every pixel from depth
// and the inverse current view-projection, projects it with the previous
// view-projection and averages samples along the resulting velocity.
type ReprojectionProgram struct{}

func (ReprojectionProgram) ReadsTarget() bool { return false }

func (ReprojectionProgram) Shade(ctx *ShadeContext, x, y int) [4]float32 {
	if ctx.Depth == nil {
		return ctx.SrcAt(x, y)
	}

	u, v := ctx.UV(x, y)
	vel := ReprojectVelocity(ctx.Mat, u, v, ctx.Depth.Sample(u, v)[0])
	blurSize := ctx.Mat.Float(postfx.UniformBlurSize)

	sum := ctx.SrcAt(x, y)
	for i := 1; i < reprojectionTaps; i++ {
		u += vel[0] * blurSize
		v += vel[1] * blurSize
		c := ctx.Src.Sample(u, v)
		for j := range sum {
			sum[j] += c[j]
		}
	}
	for j := range sum {
		sum[j] /= reprojectionTaps
	}
	return sum
}

// ReprojectVelocity returns the uv-space motion of the point at (u, v) with
// depth d between the previous and current frame of mat's matrices.
func ReprojectVelocity(mat *Material, u, v, d float32) mgl32.Vec2 {
	prev, _ := mat.Matrix(postfx.UniformPreviousViewProjectionMatrix)
	inv, ok := mat.Matrix(postfx.UniformCurrentViewProjectionInvMatrix)
	if !ok {
		return mgl32.Vec2{}
	}

	ndcX, ndcY := UVToNDC(u, v)
	h := mgl32.Vec4{ndcX, ndcY, d*2 - 1, 1}
	world := inv.Mul4x1(h)
	world = world.Mul(1 / world.W())

	p := prev.Mul4x1(world)
	p = p.Mul(1 / p.W())

	// ndc y points up, uv v points down
	return mgl32.Vec2{(h.X() - p.X()) / 2, -(h.Y() - p.Y()) / 2}
}

// UVToNDC maps a top-left based uv to normalized device coordinates.
func UVToNDC(u, v float32) (float32, float32) {
	return u*2 - 1, 1 - v*2
}
