//go:build !(onnx && cgo)

// MODUL: onnxrt (stub)
// ZWECK: Platzhalter wenn ohne onnx+cgo Build-Tag gebaut wird
// HINWEISE: Gibt BackendLoadError bei allen Operationen ausser Close und
//           SupportsAsync zurueck, registriert
//           sich aber weiterhin unter VariantOpenVINO damit dnn_backend=openvino
//           einen klaren Fehler statt "keine Variante registriert" liefert
package onnxrt

import (
	"errors"

	"github.com/vidstream/dnninfer/dnnbackend"
	"github.com/vidstream/dnninfer/dnnerr"
)

func init() {
	dnnbackend.Register(dnnbackend.VariantOpenVINO, func() dnnbackend.Backend {
		return &Backend{}
	})
}

// Backend is the disabled-build placeholder.
type Backend struct{}

var errBuildTagRequired error = dnnerr.New(dnnerr.BackendLoadError, "onnxrt",
	errors.New("onnxrt: built without the 'onnx' build tag and cgo"))

func (b *Backend) Load(modelPath, opts string) error { return errBuildTagRequired }

func (b *Backend) InputDesc() (dnnbackend.IODesc, error) {
	return dnnbackend.IODesc{}, errBuildTagRequired
}

func (b *Backend) OutputDesc() (dnnbackend.IODesc, error) {
	return dnnbackend.IODesc{}, errBuildTagRequired
}

func (b *Backend) ReshapeBatch(n int) error { return errBuildTagRequired }

func (b *Backend) NewRequest(batchSize int) (*dnnbackend.Request, error) {
	return nil, errBuildTagRequired
}

func (b *Backend) ExecuteSync(req *dnnbackend.Request) error { return errBuildTagRequired }

func (b *Backend) ExecuteAsync(req *dnnbackend.Request, userPtr any, cb dnnbackend.CompletionFunc) error {
	return errBuildTagRequired
}

func (b *Backend) SupportsAsync() bool { return false }

func (b *Backend) Close() error { return nil }
