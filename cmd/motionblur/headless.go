package main

import (
	"time"

	"github.com/gekko3d/postfx"
	"github.com/gekko3d/postfx/capture"
	"github.com/gekko3d/postfx/soft"
	"github.com/go-gl/mathgl/mgl32"
)

const headlessFrameTime = 1.0 / 30

// runHeadless renders an orbiting camera over the checker scene on the soft
// device and writes every processed frame to opts.out.
func runHeadless(opts options, settings postfx.Settings, logger postfx.Logger) error {
	seq, err := capture.NewSequence(opts.out, logger)
	if err != nil {
		return err
	}
	seq.PNG = true

	dev := soft.NewDevice(logger)
	chain := buildChain(dev, soft.NewLibrary(), settings, logger)
	chain.Profiler = postfx.NewProfiler()

	cam := soft.NewCamera(float32(opts.width) / float32(opts.height))
	cam.Position = orbit(0)
	cam.LookAt(mgl32.Vec3{})
	if err := chain.Activate(cam); err != nil {
		return err
	}
	defer chain.Deactivate()

	scene := soft.NewCheckerScene()
	color := soft.NewTexture(opts.width, opts.height)
	depth := soft.NewTexture(opts.width, opts.height)
	out := soft.NewTexture(opts.width, opts.height)

	start := time.Now()
	for i := 0; i < opts.frames; i++ {
		cam.Position = orbit(float64(i) * headlessFrameTime)
		cam.LookAt(mgl32.Vec3{})
		scene.Draw(dev, cam, color, depth)

		if err := chain.Process(color, out); err != nil {
			logger.Errorf("frame %d: %v", i, err)
			continue
		}
		if _, err := seq.Write(out); err != nil {
			return err
		}
	}
	logger.Infof("wrote %d frames to %s in %v", seq.Written(), opts.out, time.Since(start))
	logger.Debugf("%s", chain.Profiler)
	if len(dev.Live()) > 0 {
		logger.Debugf("%d render targets live before deactivate", len(dev.Live()))
	}
	return nil
}
