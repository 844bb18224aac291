package postfx_test

import (
	"testing"

	"github.com/gekko3d/postfx"
	"github.com/gekko3d/postfx/soft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_NoEnabledEffectsPassesThrough(t *testing.T) {
	dev := soft.NewDevice(nil)
	c := postfx.NewChain(dev, nil)
	c.Use(newAccumulation(dev, 0.5))
	require.NoError(t, c.SetEnabled("accumulation", false))
	require.NoError(t, c.Activate(soft.NewCamera(1)))

	src := gradientFrame(4, 4, 0.3)
	dst := soft.NewTexture(4, 4)
	require.NoError(t, c.Process(src, dst))
	assert.True(t, dst.Equal(src))
	assert.Empty(t, dev.Live())
}

func TestChain_SingleEffectMatchesDirectUse(t *testing.T) {
	chainDev := soft.NewDevice(nil)
	c := postfx.NewChain(chainDev, nil).Use(newAccumulation(chainDev, 0.6))
	require.NoError(t, c.Activate(soft.NewCamera(1)))

	directDev := soft.NewDevice(nil)
	direct := newAccumulation(directDev, 0.6)

	for i := 0; i < 4; i++ {
		src := gradientFrame(5, 5, float32(i)*0.2)
		got, want := soft.NewTexture(5, 5), soft.NewTexture(5, 5)
		require.NoError(t, c.Process(src, got))
		require.NoError(t, direct.Process(src, want))
		assert.True(t, got.Equal(want), "frame %d", i)
	}
	assert.Len(t, chainDev.Live(), 1, "a single effect needs no intermediates")
}

func TestChain_RunsEffectsInOrderAndReleases(t *testing.T) {
	dev := soft.NewDevice(nil)
	cam := soft.NewCamera(1)
	acc := newAccumulation(dev, 0.5)
	rep := newReprojection(dev)
	c := postfx.NewChain(dev, nil).Use(acc, rep)

	assert.ErrorIs(t, c.Process(soft.NewTexture(2, 2), soft.NewTexture(2, 2)), postfx.ErrNotActive)
	require.NoError(t, c.Activate(cam))
	assert.True(t, cam.DepthTextureMode().Has(postfx.DepthTextureDepth))

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Process(solidFrame(6, 4, 0.4), soft.NewTexture(6, 4)))
	}
	// accumulation buffer plus ping and pong
	assert.Len(t, dev.Live(), 3)

	require.NoError(t, c.Process(solidFrame(3, 3, 0.4), soft.NewTexture(3, 3)))
	assert.Len(t, dev.Live(), 3, "intermediates follow the frame size")

	c.Deactivate()
	assert.Empty(t, dev.Live())
	assert.Nil(t, acc.Accumulation())
}

func TestChain_SetEnabledTogglesLifecycle(t *testing.T) {
	dev := soft.NewDevice(nil)
	acc := newAccumulation(dev, 0.5)
	c := postfx.NewChain(dev, nil).Use(acc)
	require.NoError(t, c.Activate(soft.NewCamera(1)))

	require.NoError(t, c.Process(solidFrame(4, 4, 0.2), soft.NewTexture(4, 4)))
	require.NotNil(t, acc.Accumulation())

	require.NoError(t, c.SetEnabled("accumulation", false))
	assert.False(t, c.Enabled("accumulation"))
	assert.Nil(t, acc.Accumulation(), "disabling releases the history")
	assert.Empty(t, dev.Live())

	require.NoError(t, c.SetEnabled("accumulation", true))
	dst := soft.NewTexture(4, 4)
	require.NoError(t, c.Process(solidFrame(4, 4, 0.8), dst))
	assert.InDelta(t, 0.8, dst.RGBA(0, 0)[0], 1e-6, "re-enabled effect cold-starts")

	assert.Error(t, c.SetEnabled("bloom", true))
}

func TestChain_DroppingToOneEffectReleasesIntermediates(t *testing.T) {
	dev := soft.NewDevice(nil)
	c := postfx.NewChain(dev, nil).Use(newAccumulation(dev, 0.5), newReprojection(dev))
	require.NoError(t, c.Activate(soft.NewCamera(1)))

	require.NoError(t, c.Process(solidFrame(4, 4, 0.4), soft.NewTexture(4, 4)))
	require.Len(t, dev.Live(), 3)

	require.NoError(t, c.SetEnabled("reprojection", false))
	require.NoError(t, c.Process(solidFrame(4, 4, 0.4), soft.NewTexture(4, 4)))
	assert.Len(t, dev.Live(), 1, "only the accumulation buffer remains")

	require.NoError(t, c.SetEnabled("accumulation", false))
	require.NoError(t, c.Process(solidFrame(4, 4, 0.4), soft.NewTexture(4, 4)))
	assert.Empty(t, dev.Live())

	require.NoError(t, c.SetEnabled("reprojection", true))
	require.NoError(t, c.SetEnabled("accumulation", true))
	require.NoError(t, c.Process(solidFrame(4, 4, 0.4), soft.NewTexture(4, 4)))
	assert.Len(t, dev.Live(), 3)
}
