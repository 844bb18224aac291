package postfx

import (
	"fmt"
)

// AccumulationBlur blends every frame into a persistent render target and
// presents the result, leaving a trail behind moving content.
type AccumulationBlur struct {
	// Shader drives the blend. A nil or unsupported shader makes the effect
	// a pass-through copy.
	Shader Shader

	device     Device
	logger     Logger
	slot       *MaterialSlot
	blurAmount float32
	accum      RenderTarget
}

func NewAccumulationBlur(device Device, shader Shader, logger Logger) *AccumulationBlur {
	logger = Named(logger, "accumulation")
	return &AccumulationBlur{
		Shader:     shader,
		device:     device,
		logger:     logger,
		slot:       NewMaterialSlot(logger),
		blurAmount: DefaultBlurAmount,
	}
}

func (a *AccumulationBlur) Name() string { return "accumulation" }

// BlurAmount is the fraction of history kept each frame.
func (a *AccumulationBlur) BlurAmount() float32 { return a.blurAmount }

func (a *AccumulationBlur) SetBlurAmount(v float32) {
	c := ClampBlurAmount(v)
	if c != v {
		a.logger.Debugf("blur amount %v clamped to %v", v, c)
	}
	a.blurAmount = c
}

// Accumulation exposes the history buffer, nil before the first blended frame.
func (a *AccumulationBlur) Accumulation() RenderTarget { return a.accum }

// Activate needs no camera state; the buffer is allocated by the first Process.
func (a *AccumulationBlur) Activate(cam Camera) error {
	return nil
}

func (a *AccumulationBlur) Process(src Texture, dst RenderTarget) error {
	mat := a.slot.Resolve(a.device, a.Shader)
	if mat == nil {
		return a.device.Blit(src, dst, nil)
	}

	if a.accum == nil || !sameSize(a.accum, src) {
		a.releaseAccumulation()
		rt, err := a.device.NewRenderTarget(src.Width(), src.Height())
		if err != nil {
			return fmt.Errorf("accumulation: allocating %dx%d buffer: %w", src.Width(), src.Height(), err)
		}
		if err := a.device.Blit(src, rt, nil); err != nil {
			rt.Release()
			return fmt.Errorf("accumulation: seeding buffer: %w", err)
		}
		a.accum = rt
		a.logger.Debugf("buffer allocated %dx%d", src.Width(), src.Height())
	}

	// history is blended in place, never cleared
	a.accum.MarkRestoreExpected()

	mat.SetFloat(UniformBlurAmount, 1-a.blurAmount)
	if err := a.device.Blit(src, a.accum, mat); err != nil {
		return fmt.Errorf("accumulation: blend: %w", err)
	}
	if err := a.device.Blit(a.accum, dst, nil); err != nil {
		return fmt.Errorf("accumulation: present: %w", err)
	}
	return nil
}

// Deactivate releases the history buffer and the material. Safe to call
// when nothing was allocated.
func (a *AccumulationBlur) Deactivate() {
	a.releaseAccumulation()
	a.slot.Release()
}

func (a *AccumulationBlur) releaseAccumulation() {
	if a.accum == nil {
		return
	}
	a.accum.Release()
	a.accum = nil
}
