//go:build cuda

package dnndevice

import (
	"strings"

	"github.com/vidstream/dnninfer/envconfig"
)

// cudaDetector reports CUDA availability from CUDA_VISIBLE_DEVICES rather
// than linking against the CUDA runtime: this module has no cgo dependency
// on the NVIDIA driver, so presence of the env var (set by the surrounding
// process/container) is the detection signal under the cuda build tag.
type cudaDetector struct{}

func newCUDADetector() *cudaDetector { return &cudaDetector{} }

func (d *cudaDetector) Detect() bool {
	return strings.TrimSpace(envconfig.CudaVisibleDevices()) != ""
}

func (d *cudaDetector) GetDevices() []DeviceInfo {
	if !d.Detect() {
		return nil
	}
	ids := strings.Split(envconfig.CudaVisibleDevices(), ",")
	devices := make([]DeviceInfo, 0, len(ids))
	for i, id := range ids {
		devices = append(devices, DeviceInfo{
			Device:     DeviceCUDA,
			DeviceID:   i,
			DeviceName: "CUDA:" + strings.TrimSpace(id),
		})
	}
	return devices
}

func (d *cudaDetector) Device() Device { return DeviceCUDA }

func init() {
	RegisterDetector(DeviceCUDA, newCUDADetector())
}
