package main

import (
	"path/filepath"
	"testing"

	"github.com/gekko3d/postfx"
	"github.com/gekko3d/postfx/soft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEffectFlag(t *testing.T) {
	tests := []struct {
		effect  string
		acc     bool
		rep     bool
		wantErr bool
	}{
		{effect: "", acc: true, rep: false},
		{effect: "accumulation", acc: true, rep: false},
		{effect: "reprojection", acc: false, rep: true},
		{effect: "both", acc: true, rep: true},
		{effect: "bloom", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.effect, func(t *testing.T) {
			s := postfx.DefaultSettings()
			err := applyEffectFlag(&s, tt.effect)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.acc, s.Accumulation.Enabled)
			assert.Equal(t, tt.rep, s.Reprojection.Enabled)
		})
	}
}

func TestBuildChain(t *testing.T) {
	s := postfx.DefaultSettings()
	s.Accumulation.BlurAmount = 0.3
	dev := soft.NewDevice(nil)
	chain := buildChain(dev, soft.NewLibrary(), s, nil)

	require.Len(t, chain.Effects(), 2)
	assert.True(t, chain.Enabled("accumulation"))
	assert.False(t, chain.Enabled("reprojection"))
	acc := chain.Effects()[0].(*postfx.AccumulationBlur)
	assert.Equal(t, float32(0.3), acc.BlurAmount())
}

func TestRunHeadless(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frames")
	opts := options{frames: 3, width: 16, height: 8, out: out}
	s := postfx.DefaultSettings()
	require.NoError(t, applyEffectFlag(&s, "both"))

	require.NoError(t, runHeadless(opts, s, postfx.NewNopLogger()))
	for _, name := range []string{"frame_0000.exr", "frame_0002.exr", "frame_0002.png"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	assert.NoFileExists(t, filepath.Join(out, "frame_0003.exr"))
}

func TestOrbitKeepsHeightAndRadius(t *testing.T) {
	for _, tt := range []float64{0, 1.3, 7} {
		p := orbit(tt)
		assert.InDelta(t, 2.5, p.Z(), 1e-6)
		assert.InDelta(t, 6, p.Vec2().Len(), 1e-4)
	}
}
