package postfx

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBlurAmount = 0.5
	DefaultBlurSize   = 0.5

	MaxBlurAmount = 0.9
	MaxBlurSize   = 1.0

	DefaultAccumulationShader = "accumulation"
	DefaultReprojectionShader = "reprojection"
)

type AccumulationSettings struct {
	Enabled    bool    `yaml:"enabled"`
	BlurAmount float32 `yaml:"blur_amount"`
	Shader     string  `yaml:"shader"`
}

type ReprojectionSettings struct {
	Enabled  bool    `yaml:"enabled"`
	BlurSize float32 `yaml:"blur_size"`
	Shader   string  `yaml:"shader"`
}

// Settings is the tunable surface of the effects, loadable from YAML.
type Settings struct {
	Accumulation AccumulationSettings `yaml:"accumulation"`
	Reprojection ReprojectionSettings `yaml:"reprojection"`
	Debug        bool                 `yaml:"debug"`
}

func DefaultSettings() Settings {
	return Settings{
		Accumulation: AccumulationSettings{
			Enabled:    true,
			BlurAmount: DefaultBlurAmount,
			Shader:     DefaultAccumulationShader,
		},
		Reprojection: ReprojectionSettings{
			Enabled:  false,
			BlurSize: DefaultBlurSize,
			Shader:   DefaultReprojectionShader,
		},
	}
}

// ParseSettings decodes YAML on top of DefaultSettings and clamps the result.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing postfx settings: %w", err)
	}
	s.Accumulation.BlurAmount = ClampBlurAmount(s.Accumulation.BlurAmount)
	s.Reprojection.BlurSize = ClampBlurSize(s.Reprojection.BlurSize)
	if s.Accumulation.Shader == "" {
		s.Accumulation.Shader = DefaultAccumulationShader
	}
	if s.Reprojection.Shader == "" {
		s.Reprojection.Shader = DefaultReprojectionShader
	}
	return s, nil
}

func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading postfx settings: %w", err)
	}
	return ParseSettings(data)
}

func (s Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

func ClampBlurAmount(v float32) float32 {
	return clamp(v, 0, MaxBlurAmount)
}

func ClampBlurSize(v float32) float32 {
	return clamp(v, 0, MaxBlurSize)
}

// clamp maps NaN to lo.
func clamp(v, lo, hi float32) float32 {
	if math.IsNaN(float64(v)) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
