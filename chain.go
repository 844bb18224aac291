package postfx

import (
	"fmt"
)

type chainEntry struct {
	effect  Effect
	enabled bool
	active  bool
}

// Chain runs several effects on one camera in order, passing each effect's
// output to the next through two intermediate targets.
type Chain struct {
	device  Device
	logger  Logger
	entries []*chainEntry
	camera  Camera
	ping    RenderTarget
	pong    RenderTarget

	// Profiler, when set, records the CPU time of every effect.
	Profiler *Profiler
}

func NewChain(device Device, logger Logger) *Chain {
	return &Chain{device: device, logger: Named(logger, "chain")}
}

// Use appends effects, enabled. Effects added after Activate are activated
// immediately.
func (c *Chain) Use(effects ...Effect) *Chain {
	for _, e := range effects {
		entry := &chainEntry{effect: e, enabled: true}
		c.entries = append(c.entries, entry)
		if c.camera != nil {
			if err := c.activate(entry); err != nil {
				c.logger.Errorf("%v", err)
			}
		}
	}
	return c
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Effects() []Effect {
	out := make([]Effect, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.effect)
	}
	return out
}

func (c *Chain) Enabled(name string) bool {
	if e := c.find(name); e != nil {
		return e.enabled
	}
	return false
}

// SetEnabled toggles an effect by name, activating or deactivating it when
// the chain itself is active.
func (c *Chain) SetEnabled(name string, enabled bool) error {
	e := c.find(name)
	if e == nil {
		return fmt.Errorf("postfx: no effect named %q in chain", name)
	}
	if e.enabled == enabled {
		return nil
	}
	e.enabled = enabled
	if c.camera == nil {
		return nil
	}
	if enabled {
		return c.activate(e)
	}
	c.deactivate(e)
	return nil
}

func (c *Chain) Activate(cam Camera) error {
	if cam == nil {
		return ErrNilCamera
	}
	c.camera = cam
	for _, e := range c.entries {
		if !e.enabled {
			continue
		}
		if err := c.activate(e); err != nil {
			return err
		}
	}
	return nil
}

func (c *Chain) Process(src Texture, dst RenderTarget) error {
	if c.camera == nil {
		return ErrNotActive
	}
	var running []Effect
	for _, e := range c.entries {
		if e.enabled && e.active {
			running = append(running, e.effect)
		}
	}
	if len(running) < 2 {
		c.releaseIntermediates()
	} else if err := c.ensureIntermediates(src); err != nil {
		return err
	}
	if len(running) == 0 {
		if c.Profiler != nil {
			c.Profiler.Add("passthrough", 1)
		}
		return c.device.Blit(src, dst, nil)
	}

	in := src
	targets := [2]RenderTarget{c.ping, c.pong}
	for i, effect := range running {
		out := dst
		if i < len(running)-1 {
			out = targets[i%2]
		}
		if c.Profiler != nil {
			c.Profiler.BeginScope(effect.Name())
		}
		err := effect.Process(in, out)
		if c.Profiler != nil {
			c.Profiler.EndScope(effect.Name())
		}
		if err != nil {
			return fmt.Errorf("postfx: %s: %w", effect.Name(), err)
		}
		in = out
	}
	if c.Profiler != nil {
		c.Profiler.EndFrame()
	}
	return nil
}

func (c *Chain) Deactivate() {
	for _, e := range c.entries {
		c.deactivate(e)
	}
	c.releaseIntermediates()
	c.camera = nil
}

func (c *Chain) activate(e *chainEntry) error {
	if e.active {
		return nil
	}
	if err := e.effect.Activate(c.camera); err != nil {
		return fmt.Errorf("postfx: activating %s: %w", e.effect.Name(), err)
	}
	e.active = true
	c.logger.Debugf("%s activated", e.effect.Name())
	return nil
}

func (c *Chain) deactivate(e *chainEntry) {
	if !e.active {
		return
	}
	e.effect.Deactivate()
	e.active = false
	c.logger.Debugf("%s deactivated", e.effect.Name())
}

func (c *Chain) ensureIntermediates(src Texture) error {
	if c.ping != nil && sameSize(c.ping, src) {
		return nil
	}
	c.releaseIntermediates()
	var err error
	if c.ping, err = c.device.NewRenderTarget(src.Width(), src.Height()); err != nil {
		return fmt.Errorf("postfx: chain intermediate: %w", err)
	}
	if c.pong, err = c.device.NewRenderTarget(src.Width(), src.Height()); err != nil {
		c.releaseIntermediates()
		return fmt.Errorf("postfx: chain intermediate: %w", err)
	}
	return nil
}

func (c *Chain) releaseIntermediates() {
	if c.ping != nil {
		c.ping.Release()
		c.ping = nil
	}
	if c.pong != nil {
		c.pong.Release()
		c.pong = nil
	}
}

func (c *Chain) find(name string) *chainEntry {
	for _, e := range c.entries {
		if e.effect.Name() == name {
			return e
		}
	}
	return nil
}
