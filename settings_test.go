package postfx_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/postfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettings(t *testing.T) {
	tests := []struct {
		name           string
		yaml           string
		wantAmount     float32
		wantSize       float32
		wantAccEnabled bool
		wantRepEnabled bool
	}{
		{
			name:           "empty uses defaults",
			yaml:           "",
			wantAmount:     0.5,
			wantSize:       0.5,
			wantAccEnabled: true,
		},
		{
			name: "values in range",
			yaml: `
accumulation:
  enabled: false
  blur_amount: 0.25
reprojection:
  enabled: true
  blur_size: 0.75
`,
			wantAmount:     0.25,
			wantSize:       0.75,
			wantRepEnabled: true,
		},
		{
			name: "out of range clamps",
			yaml: `
accumulation:
  blur_amount: 3
reprojection:
  blur_size: -2
`,
			wantAmount:     0.9,
			wantSize:       0,
			wantAccEnabled: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := postfx.ParseSettings([]byte(tt.yaml))
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, s.Accumulation.BlurAmount)
			assert.Equal(t, tt.wantSize, s.Reprojection.BlurSize)
			assert.Equal(t, tt.wantAccEnabled, s.Accumulation.Enabled)
			assert.Equal(t, tt.wantRepEnabled, s.Reprojection.Enabled)
			assert.Equal(t, postfx.DefaultAccumulationShader, s.Accumulation.Shader)
			assert.Equal(t, postfx.DefaultReprojectionShader, s.Reprojection.Shader)
		})
	}
}

func TestParseSettings_Invalid(t *testing.T) {
	_, err := postfx.ParseSettings([]byte("accumulation: [1, 2"))
	assert.Error(t, err)
}

func TestLoadSettings_RoundTrip(t *testing.T) {
	s := postfx.DefaultSettings()
	s.Reprojection.Enabled = true
	s.Reprojection.BlurSize = 0.3
	s.Debug = true
	data, err := s.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "postfx.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := postfx.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)

	_, err = postfx.LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestClamp_NaN(t *testing.T) {
	nan := float32(math.NaN())
	assert.Equal(t, float32(0), postfx.ClampBlurAmount(nan))
	assert.Equal(t, float32(0), postfx.ClampBlurSize(nan))
}
