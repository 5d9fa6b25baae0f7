//go:build !cuda

package dnndevice

type cudaDetector struct{}

func newCUDADetector() *cudaDetector { return &cudaDetector{} }

func (d *cudaDetector) Detect() bool             { return false }
func (d *cudaDetector) GetDevices() []DeviceInfo { return nil }
func (d *cudaDetector) Device() Device           { return DeviceCUDA }

func init() {
	RegisterDetector(DeviceCUDA, newCUDADetector())
}
