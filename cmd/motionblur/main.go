package main

import (
	"flag"
	"fmt"
	"runtime"

	"github.com/chewxy/math32"
	"github.com/gekko3d/postfx"
	"github.com/go-gl/mathgl/mgl32"
)

func init() {
	runtime.LockOSThread()
}

type options struct {
	config   string
	debug    bool
	headless bool
	frames   int
	width    int
	height   int
	out      string
	effect   string
}

// shaderSource resolves shader names; soft.Library and gpu.Library both
// satisfy it.
type shaderSource interface {
	Lookup(name string) postfx.Shader
}

func main() {
	var opts options
	flag.StringVar(&opts.config, "config", "", "YAML settings file")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&opts.headless, "headless", false, "Render on the CPU and write frames instead of opening a window")
	flag.IntVar(&opts.frames, "frames", 60, "Frames to render in headless mode")
	flag.IntVar(&opts.width, "width", 1280, "Frame width")
	flag.IntVar(&opts.height, "height", 720, "Frame height")
	flag.StringVar(&opts.out, "out", "frames", "Output directory in headless mode")
	flag.StringVar(&opts.effect, "effect", "", "Override enabled effects: accumulation, reprojection or both")
	flag.Parse()

	settings := postfx.DefaultSettings()
	if opts.config != "" {
		var err error
		settings, err = postfx.LoadSettings(opts.config)
		if err != nil {
			panic(err)
		}
	}
	if err := applyEffectFlag(&settings, opts.effect); err != nil {
		panic(err)
	}

	logger := postfx.NewDefaultLogger("motionblur", opts.debug || settings.Debug)

	if opts.headless {
		if err := runHeadless(opts, settings, logger); err != nil {
			panic(err)
		}
		return
	}
	runWindow(opts, settings, logger)
}

func applyEffectFlag(s *postfx.Settings, effect string) error {
	switch effect {
	case "":
	case "accumulation":
		s.Accumulation.Enabled, s.Reprojection.Enabled = true, false
	case "reprojection":
		s.Accumulation.Enabled, s.Reprojection.Enabled = false, true
	case "both":
		s.Accumulation.Enabled, s.Reprojection.Enabled = true, true
	default:
		return fmt.Errorf("unknown effect %q", effect)
	}
	return nil
}

// buildChain creates both effects from settings. Disabled effects stay in
// the chain so they can be toggled at runtime.
func buildChain(dev postfx.Device, shaders shaderSource, s postfx.Settings, logger postfx.Logger) *postfx.Chain {
	acc := postfx.NewAccumulationBlur(dev, shaders.Lookup(s.Accumulation.Shader), logger)
	acc.SetBlurAmount(s.Accumulation.BlurAmount)
	rep := postfx.NewReprojectionBlur(dev, shaders.Lookup(s.Reprojection.Shader), logger)
	rep.SetBlurSize(s.Reprojection.BlurSize)

	chain := postfx.NewChain(dev, logger).Use(acc, rep)
	if err := chain.SetEnabled(acc.Name(), s.Accumulation.Enabled); err != nil {
		panic(err)
	}
	if err := chain.SetEnabled(rep.Name(), s.Reprojection.Enabled); err != nil {
		panic(err)
	}
	return chain
}

// orbit returns the camera position at time t seconds.
func orbit(t float64) mgl32.Vec3 {
	const radius, height, speed = 6, 2.5, 0.6
	a := float32(t * speed)
	return mgl32.Vec3{radius * math32.Cos(a), radius * math32.Sin(a), height}
}
