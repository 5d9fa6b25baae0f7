//go:build metal

package dnndevice

// metalDetector reports Metal as available under the metal build tag: on
// Apple Silicon/Intel Mac GPUs Metal is always present, there is no
// equivalent of CUDA_VISIBLE_DEVICES to gate it on.
type metalDetector struct{}

func newMetalDetector() *metalDetector { return &metalDetector{} }

func (d *metalDetector) Detect() bool { return true }

func (d *metalDetector) GetDevices() []DeviceInfo {
	return []DeviceInfo{{Device: DeviceMetal, DeviceID: 0, DeviceName: "Metal", IsDefault: true}}
}

func (d *metalDetector) Device() Device { return DeviceMetal }

func init() {
	RegisterDetector(DeviceMetal, newMetalDetector())
}
