package dnndevice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vidstream/dnninfer/dnnbackend"
)

func TestDetectDevicesAlwaysIncludesCPU(t *testing.T) {
	devices := DetectDevices()
	assert.Contains(t, devices, DeviceCPU)
}

func TestSelectBestWithPriorityFallsBackToCPU(t *testing.T) {
	got := SelectBestWithPriority(SelectionPriority{DeviceCUDA, DeviceMetal, DeviceCPU})
	assert.Equal(t, DeviceCPU, got)
}

func TestIsAvailableCPUAlwaysTrue(t *testing.T) {
	assert.True(t, IsAvailable(DeviceCPU))
}

func TestResolveVariantPassesThroughExplicitRequest(t *testing.T) {
	assert.Equal(t, dnnbackend.VariantNative, ResolveVariant(dnnbackend.VariantNative))
	assert.Equal(t, dnnbackend.VariantTensorFlow, ResolveVariant(dnnbackend.VariantTensorFlow))
}

func TestResolveVariantAutoFallsBackToNativeWithoutGPU(t *testing.T) {
	assert.Equal(t, dnnbackend.VariantNative, ResolveVariant(dnnbackend.VariantAuto))
}

func TestGetDevicesReturnsCPUEntry(t *testing.T) {
	devices := GetDevices()
	require := assert.New(t)
	require.NotEmpty(devices)
	require.Equal(DeviceCPU, devices[0].Device)
	require.True(devices[0].IsDefault)
}
