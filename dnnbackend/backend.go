// MODUL: dnnbackend
// ZWECK: Einheitlicher Vertrag ueber Modell-Laden, synchrone Ausfuehrung und
//        asynchrone Ausfuehrung mit Callback (C4)
// INPUT: Modellpfad, Optionen-String, Request mit Input-Tensor
// OUTPUT: Request mit gefuelltem Output-Tensor
// NEBENEFFEKTE: Alloziert Backend-eigene Puffer, ggf. GPU-Speicher
// ABHAENGIGKEITEN: frame (Tensor-Deskriptor)
// HINWEISE: Nur OPENVINO-aequivalente Varianten unterstuetzen ExecuteAsync;
//           der Core faellt sonst auf Sync zurueck (spec.md §4.4)
package dnnbackend

import (
	"errors"

	"github.com/vidstream/dnninfer/frame"
)

// Variant ist der Backend-Typ, konfigurierbar ueber die Stage-Option
// dnn_backend (spec.md §6).
type Variant string

const (
	VariantNative     Variant = "native"
	VariantTensorFlow Variant = "tensorflow"
	VariantOpenVINO   Variant = "openvino" // hier: ONNX Runtime als konkrete Implementierung
	VariantAuto       Variant = "auto"
)

// IODesc beschreibt einen benannten Modell-Input- oder Output-Tensor.
// Height/Width von -1 bedeuten "dynamisch" (spec.md §4.3).
type IODesc struct {
	Name     string
	ElemType frame.ElemType
	Channels int
	Height   int
	Width    int
}

// DynamicDim ist der Sentinel-Wert fuer eine vom Modell nicht fixierte
// Dimension.
const DynamicDim = -1

// Request ist das Aequivalent des "Request-Slot"-Handles: ein vom Backend
// allozierter Input/Output-Tensor-Puffer, der ueber mehrere Submits hinweg
// wiederverwendet wird, solange das Backend denselben Request zurueckgibt.
type Request struct {
	Input  frame.TensorDesc
	Output frame.TensorDesc
}

// CompletionFunc wird von ExecuteAsync genau einmal aufgerufen, sobald die
// Output-Tensoren im Request lesbar sind (spec.md §4.4).
type CompletionFunc func(userPtr any, err error)

// Backend ist der polymorphe Vertrag ueber Modell-Backends.
type Backend interface {
	// Load laedt ein Modell von einem Dateipfad mit Backend-spezifischen
	// Optionen. Die Batch-Dimension darf hier einmalig reshaped werden.
	Load(modelPath, opts string) error

	// InputDesc/OutputDesc liefern die vom Modell deklarierten Deskriptoren.
	InputDesc() (IODesc, error)
	OutputDesc() (IODesc, error)

	// ReshapeBatch setzt die Batch-Dimension fuer alle folgenden Requests.
	// Darf laut spec.md nur einmal, vor dem ersten Frame, erfolgen.
	ReshapeBatch(n int) error

	// NewRequest alloziert einen wiederverwendbaren Input/Output-Puffer fuer
	// bis zu batchSize gepackte Eintraege.
	NewRequest(batchSize int) (*Request, error)

	// ExecuteSync fuehrt Inferenz synchron auf dem gefuellten Input-Tensor
	// des Requests aus und fuellt dessen Output-Tensor.
	ExecuteSync(req *Request) error

	// ExecuteAsync dispatcht den Request asynchron; cb wird garantiert genau
	// einmal auf irgendeinem Worker-Thread aufgerufen, mit dem Output-Tensor
	// bis zur Rueckkehr von cb lesbar (spec.md §4.4).
	ExecuteAsync(req *Request, userPtr any, cb CompletionFunc) error

	// SupportsAsync meldet ob ExecuteAsync fuer dieses Backend verfuegbar ist.
	SupportsAsync() bool

	// Close gibt alle Backend-Ressourcen frei.
	Close() error
}

// ErrAsyncUnsupported wird von ExecuteAsync zurueckgegeben, wenn ein
// Backend keine asynchrone Ausfuehrung unterstuetzt. engine.New prueft
// vorab SupportsAsync() und nutzt bei false nur ExecuteSync; ein Fehler aus
// ExecuteAsync selbst wird von engine als Dispatch-Fehler behandelt.
var ErrAsyncUnsupported = errors.New("dnnbackend: backend does not support async execution")

// registry of constructors, mirrors vision/backend.go's RegisterDetector
// pattern adapted to backend *construction* rather than device detection.
var registry = make(map[Variant]func() Backend)

// Register adds a backend constructor under a variant name. Called from
// each variant package's init().
func Register(v Variant, ctor func() Backend) {
	registry[v] = ctor
}

// New constructs a fresh Backend instance for the given variant.
func New(v Variant) (Backend, error) {
	ctor, ok := registry[v]
	if !ok {
		return nil, errors.New("dnnbackend: no backend registered for variant " + string(v))
	}
	return ctor(), nil
}

// Available reports the set of currently registered variants.
func Available() []Variant {
	out := make([]Variant, 0, len(registry))
	for v := range registry {
		out = append(out, v)
	}
	return out
}
