package main

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstream/dnninfer/dnnbackend"
)

func TestRunOnceNativeSyncPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "a.png", 2, 2, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	writeTestPNG(t, dir, "b.png", 2, 2, color.RGBA{R: 4, G: 5, B: 6, A: 255})
	frames, err := loadFrames(dir, time.Millisecond)
	require.NoError(t, err)

	opts := &runOptions{backend: "native", outputName: "out", nireq: 1, batchSize: 1}
	result, err := runOnce(dnnbackend.VariantNative, opts, frames, false)
	require.NoError(t, err)

	assert.Equal(t, "sync", result.Mode)
	assert.Equal(t, 2, result.FrameCount)
	assert.True(t, result.OrderPreserved)
	assert.Equal(t, 0, result.Errors)
}

func TestRunOnceNativeAsyncFallsBackToSync(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 6; i++ {
		writeTestPNG(t, dir, string(rune('a'+i))+".png", 2, 2, color.RGBA{R: byte(i), G: byte(i), B: byte(i), A: 255})
	}
	frames, err := loadFrames(dir, time.Millisecond)
	require.NoError(t, err)

	opts := &runOptions{backend: "native", outputName: "out", nireq: 2, batchSize: 3}
	result, err := runOnce(dnnbackend.VariantNative, opts, frames, true)
	require.NoError(t, err)

	// native has no async support, so the engine silently downgrades to sync.
	assert.Equal(t, "sync", result.Mode)
	assert.True(t, result.OrderPreserved)
	assert.Equal(t, 0, result.Errors)
}
