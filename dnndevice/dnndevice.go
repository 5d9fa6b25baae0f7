// MODUL: dnndevice
// ZWECK: CPU/CUDA/Metal-Geraete-Erkennung und Prioritaets-Auswahl, speist
//        dnn_backend=auto (C13)
// INPUT: Keine (reine Erkennung + Registry)
// OUTPUT: Device-Typ, DeviceInfo, aufgeloester dnnbackend.Variant
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: dnnbackend (Variant), envconfig (CUDA_VISIBLE_DEVICES-Getter)
// HINWEISE: Verbatim-Muster aus vision/backend/backend.go (DetectBackends,
//           SelectBestBackendWithPriority, RegisterDetector), retargeted auf
//           dnnbackend.Variant statt das teacher-eigene Backend-Enum;
//           plattformspezifische Erkennung liegt in cuda.go/cuda_stub.go und
//           metal.go/metal_stub.go hinter Build-Tags
package dnndevice

import "github.com/vidstream/dnninfer/dnnbackend"

// Device identifies a compute device class.
type Device string

const (
	DeviceCPU   Device = "cpu"
	DeviceCUDA  Device = "cuda"
	DeviceMetal Device = "metal"
)

// DeviceInfo describes one available compute device.
type DeviceInfo struct {
	Device      Device
	DeviceID    int
	DeviceName  string
	MemoryTotal uint64
	MemoryFree  uint64
	IsDefault   bool
}

// SelectionPriority is a preference order for SelectBestWithPriority.
type SelectionPriority []Device

// DefaultPriority prefers GPU-class devices over CPU.
func DefaultPriority() SelectionPriority {
	return SelectionPriority{DeviceCUDA, DeviceMetal, DeviceCPU}
}

// Detector probes for one non-CPU device class.
type Detector interface {
	Detect() bool
	GetDevices() []DeviceInfo
	Device() Device
}

var registry = make(map[Device]Detector)

// RegisterDetector registers a detector for a device class. Called from
// each platform-specific file's init().
func RegisterDetector(d Device, det Detector) {
	registry[d] = det
}

// DetectDevices returns every currently available device class. CPU is
// always available.
func DetectDevices() []Device {
	available := []Device{DeviceCPU}
	if d, ok := registry[DeviceCUDA]; ok && d.Detect() {
		available = append(available, DeviceCUDA)
	}
	if d, ok := registry[DeviceMetal]; ok && d.Detect() {
		available = append(available, DeviceMetal)
	}
	return available
}

// GetDevices enumerates every available device, CPU first.
func GetDevices() []DeviceInfo {
	devices := []DeviceInfo{cpuDeviceInfo()}
	if d, ok := registry[DeviceCUDA]; ok && d.Detect() {
		devices = append(devices, d.GetDevices()...)
	}
	if d, ok := registry[DeviceMetal]; ok && d.Detect() {
		devices = append(devices, d.GetDevices()...)
	}
	return devices
}

// SelectBest picks a device using DefaultPriority.
func SelectBest() Device {
	return SelectBestWithPriority(DefaultPriority())
}

// SelectBestWithPriority returns the first available device in priority
// order, falling back to DeviceCPU.
func SelectBestWithPriority(priority SelectionPriority) Device {
	available := make(map[Device]bool)
	for _, d := range DetectDevices() {
		available[d] = true
	}
	for _, preferred := range priority {
		if available[preferred] {
			return preferred
		}
	}
	return DeviceCPU
}

// IsAvailable reports whether a specific device class is usable.
func IsAvailable(d Device) bool {
	if d == DeviceCPU {
		return true
	}
	if det, ok := registry[d]; ok {
		return det.Detect()
	}
	return false
}

func cpuDeviceInfo() DeviceInfo {
	return DeviceInfo{Device: DeviceCPU, DeviceID: 0, DeviceName: "CPU", IsDefault: true}
}

// ResolveVariant maps dnn_backend=auto to a concrete backend variant by
// picking the best available device and translating it: GPU-class devices
// get the async-capable OPENVINO-equivalent variant (ONNX Runtime with a
// GPU execution provider), CPU gets NATIVE. Any explicit (non-auto) request
// passes through unchanged.
func ResolveVariant(requested dnnbackend.Variant) dnnbackend.Variant {
	if requested != dnnbackend.VariantAuto {
		return requested
	}
	switch SelectBest() {
	case DeviceCUDA, DeviceMetal:
		return dnnbackend.VariantOpenVINO
	default:
		return dnnbackend.VariantNative
	}
}
