// MODUL: tfstub
// ZWECK: TENSORFLOW Backend-Variante: sync-only, faellt ohne echtes
//        TensorFlow-Runtime auf einen BackendLoadError zurueck
// INPUT: Modellpfad, Optionen
// OUTPUT: dnnbackend.Backend
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: dnnbackend, dnnerr
// HINWEISE: Kein TensorFlow-Runtime im Korpus vorhanden; dieser Stub haelt
//           die Variante registriert, damit BackendLoadError statt eines
//           fehlenden-Schluessel-Fehlers zurueckkommt, wenn jemand
//           dnn_backend=tensorflow waehlt, und dokumentiert den
//           erwarteten Erweiterungspunkt fuer ein echtes Binding.
package tfstub

import (
	"github.com/vidstream/dnninfer/dnnbackend"
	"github.com/vidstream/dnninfer/dnnerr"
)

func init() {
	dnnbackend.Register(dnnbackend.VariantTensorFlow, func() dnnbackend.Backend {
		return &Backend{}
	})
}

// Backend is the TENSORFLOW variant placeholder. It loads no model and
// reports BackendLoadError, matching spec.md §4.4's "falls back to sync if
// async unavailable" note — there's nothing to fall back to here until a
// real TensorFlow C API binding is wired up.
type Backend struct{}

func (b *Backend) Load(modelPath, opts string) error {
	return dnnerr.New(dnnerr.BackendLoadError, "tfstub.Load", errNoRuntime)
}

func (b *Backend) InputDesc() (dnnbackend.IODesc, error) {
	return dnnbackend.IODesc{}, dnnerr.New(dnnerr.BackendLoadError, "tfstub.InputDesc", errNoRuntime)
}

func (b *Backend) OutputDesc() (dnnbackend.IODesc, error) {
	return dnnbackend.IODesc{}, dnnerr.New(dnnerr.BackendLoadError, "tfstub.OutputDesc", errNoRuntime)
}

func (b *Backend) ReshapeBatch(n int) error { return nil }

func (b *Backend) NewRequest(batchSize int) (*dnnbackend.Request, error) {
	return nil, dnnerr.New(dnnerr.BackendLoadError, "tfstub.NewRequest", errNoRuntime)
}

func (b *Backend) ExecuteSync(req *dnnbackend.Request) error {
	return dnnerr.New(dnnerr.BackendExecutionError, "tfstub.ExecuteSync", errNoRuntime)
}

func (b *Backend) ExecuteAsync(req *dnnbackend.Request, userPtr any, cb dnnbackend.CompletionFunc) error {
	return dnnbackend.ErrAsyncUnsupported
}

func (b *Backend) SupportsAsync() bool { return false }

func (b *Backend) Close() error { return nil }

var errNoRuntime = noRuntimeError{}

type noRuntimeError struct{}

func (noRuntimeError) Error() string {
	return "tfstub: no TensorFlow runtime linked into this build"
}
