// config_features.go - Geraete-Sichtbarkeitsvariablen
//
// Dieses Modul enthaelt:
// - CudaVisibleDevices/HipVisibleDevices: GPU-Sichtbarkeits-Variablen;
//   CudaVisibleDevices wird vom dnndevice-Paket (Build-Tag cuda) zur
//   Geraeteerkennung gelesen, HipVisibleDevices von keinem Paket des Moduls
package envconfig

// =============================================================================
// GPU-Sichtbarkeits-Variablen
// =============================================================================

var (
	// CudaVisibleDevices steuert sichtbare NVIDIA-Geraete
	CudaVisibleDevices = String("CUDA_VISIBLE_DEVICES")

	// HipVisibleDevices steuert sichtbare AMD-Geraete (numerische ID)
	HipVisibleDevices = String("HIP_VISIBLE_DEVICES")
)
