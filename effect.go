// Package postfx implements per-camera motion blur post effects on top of a
// small host boundary: a Device that allocates render targets, compiles
// materials and blits, and a Camera that exposes its matrices.
//
// The host calls Activate once when an effect is enabled, Process once per
// rendered frame and Deactivate when the effect is disabled.
package postfx

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrNotActive         = errors.New("postfx: effect is not active")
	ErrNilCamera         = errors.New("postfx: camera is nil")
	ErrUnsupportedShader = errors.New("postfx: shader is not supported")
)

// Uniform names shared by the effects and their shader programs.
const (
	UniformBlurAmount                     = "_BlurAmount"
	UniformBlurSize                       = "_BlurSize"
	UniformPreviousViewProjectionMatrix   = "_PreviousViewProjectionMatrix"
	UniformCurrentViewProjectionInvMatrix = "_CurrentViewProjectionInverseMatrix"
)

type Texture interface {
	Width() int
	Height() int
}

// RenderTarget is a texture the device can draw into.
type RenderTarget interface {
	Texture
	// MarkRestoreExpected tells the device the previous contents are read
	// by the next draw and must not be discarded.
	MarkRestoreExpected()
	Release()
}

type Shader interface {
	Name() string
	IsSupported() bool
}

type Material interface {
	Shader() Shader
	SetFloat(name string, v float32)
	SetMatrix(name string, m mgl32.Mat4)
	Release()
}

type Device interface {
	NewRenderTarget(width, height int) (RenderTarget, error)
	NewMaterial(shader Shader) (Material, error)
	// Blit draws src into dst through mat. A nil mat is a plain copy.
	Blit(src Texture, dst RenderTarget, mat Material) error
}

type DepthTextureMode uint32

const (
	DepthTextureNone          DepthTextureMode = 0
	DepthTextureDepth         DepthTextureMode = 1
	DepthTextureDepthNormals  DepthTextureMode = 2
	DepthTextureMotionVectors DepthTextureMode = 4
)

func (m DepthTextureMode) Has(flag DepthTextureMode) bool {
	return m&flag == flag
}

type Camera interface {
	ProjectionMatrix() mgl32.Mat4
	WorldToCameraMatrix() mgl32.Mat4
	DepthTextureMode() DepthTextureMode
	SetDepthTextureMode(mode DepthTextureMode)
}

// ViewProjection returns projection * worldToCamera for cam.
func ViewProjection(cam Camera) mgl32.Mat4 {
	return cam.ProjectionMatrix().Mul4(cam.WorldToCameraMatrix())
}

type Effect interface {
	Name() string
	Activate(cam Camera) error
	Process(src Texture, dst RenderTarget) error
	Deactivate()
}

func sameSize(a, b Texture) bool {
	return a.Width() == b.Width() && a.Height() == b.Height()
}
