package postfx

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ReprojectionBlur blurs each pixel along the screen-space motion of the
// world point behind it, reconstructed from depth and the view-projection
// matrices of this frame and the previous one.
type ReprojectionBlur struct {
	Shader Shader

	device   Device
	logger   Logger
	slot     *MaterialSlot
	blurSize float32
	camera   Camera
	previous mgl32.Mat4
}

func NewReprojectionBlur(device Device, shader Shader, logger Logger) *ReprojectionBlur {
	logger = Named(logger, "reprojection")
	return &ReprojectionBlur{
		Shader:   shader,
		device:   device,
		logger:   logger,
		slot:     NewMaterialSlot(logger),
		blurSize: DefaultBlurSize,
		previous: mgl32.Ident4(),
	}
}

func (r *ReprojectionBlur) Name() string { return "reprojection" }

func (r *ReprojectionBlur) BlurSize() float32 { return r.blurSize }

func (r *ReprojectionBlur) SetBlurSize(v float32) {
	c := ClampBlurSize(v)
	if c != v {
		r.logger.Debugf("blur size %v clamped to %v", v, c)
	}
	r.blurSize = c
}

// PreviousViewProjection is the matrix the next Process call hands to the
// shader as the previous frame's transform.
func (r *ReprojectionBlur) PreviousViewProjection() mgl32.Mat4 { return r.previous }

func (r *ReprojectionBlur) Activate(cam Camera) error {
	if cam == nil {
		return ErrNilCamera
	}
	r.camera = cam
	cam.SetDepthTextureMode(cam.DepthTextureMode() | DepthTextureDepth)
	r.previous = ViewProjection(cam)
	return nil
}

func (r *ReprojectionBlur) Process(src Texture, dst RenderTarget) error {
	if r.camera == nil {
		return ErrNotActive
	}
	mat := r.slot.Resolve(r.device, r.Shader)
	if mat == nil {
		return r.device.Blit(src, dst, nil)
	}

	mat.SetFloat(UniformBlurSize, r.blurSize)
	mat.SetMatrix(UniformPreviousViewProjectionMatrix, r.previous)

	current := ViewProjection(r.camera)
	mat.SetMatrix(UniformCurrentViewProjectionInvMatrix, current.Inv())
	r.previous = current

	if err := r.device.Blit(src, dst, mat); err != nil {
		return fmt.Errorf("reprojection: %w", err)
	}
	return nil
}

// Deactivate drops the camera and material. The depth texture request on
// the camera is left in place since other effects may rely on it.
func (r *ReprojectionBlur) Deactivate() {
	r.slot.Release()
	r.camera = nil
}
