//go:build !metal

package dnndevice

type metalDetector struct{}

func newMetalDetector() *metalDetector { return &metalDetector{} }

func (d *metalDetector) Detect() bool             { return false }
func (d *metalDetector) GetDevices() []DeviceInfo { return nil }
func (d *metalDetector) Device() Device           { return DeviceMetal }

func init() {
	RegisterDetector(DeviceMetal, newMetalDetector())
}
