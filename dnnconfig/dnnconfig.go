// MODUL: dnnconfig
// ZWECK: Stage-Optionen (spec.md §6) + Environment-Override-Getter, die
//        envconfig's Getter-Fabriken (Bool/String/Uint) auf die
//        DNNFILTER_*-Variablen dieser Stage anwenden
// INPUT: Vom Aufrufer befuellte Options-Struktur, Environment-Variablen
//        (kein Parser fuer einen Optionen-String)
// OUTPUT: Validierungsfehler fuer Options, Environment-Getter
// NEBENEFFEKTE: Liest os.Getenv ueber envconfig.Var
// ABHAENGIGKEITEN: envconfig (Getter-Fabrik-Muster), dnnbackend, dnnerr
package dnnconfig

import (
	"errors"

	"github.com/vidstream/dnninfer/dnnbackend"
	"github.com/vidstream/dnninfer/dnnerr"
	"github.com/vidstream/dnninfer/envconfig"
)

// Options is the fully resolved configuration of one filter stage instance
// (spec.md §6 "Stage options (configuration)").
type Options struct {
	Backend    dnnbackend.Variant
	Model      string
	InputName  string
	OutputName string
	Async      bool
	NIreq      int
	BatchSize  int

	// ExpectedWidth/ExpectedHeight carry the upstream-negotiated frame
	// geometry, supplied by the caller. Validate does not check them, and
	// no code in this module reads them or passes them to
	// transcode.ValidateCompat.
	ExpectedWidth  int
	ExpectedHeight int
}

const (
	minNIreq, maxNIreq         = 1, 128
	minBatchSize, maxBatchSize = 1, 1000
)

// Validate checks that a model path is set, the ranges spec.md §6 declares
// for nireq/batch_size, and that the backend is one of the known variant
// names (native, tensorflow, openvino, auto). It does not consult the
// dnnbackend registry.
func (o Options) Validate() error {
	if o.Model == "" {
		return dnnerr.New(dnnerr.ConfigError, "dnnconfig.Validate", errors.New("model path is required"))
	}
	if o.NIreq < minNIreq || o.NIreq > maxNIreq {
		return dnnerr.New(dnnerr.ConfigError, "dnnconfig.Validate", errors.New("nireq out of range [1,128]"))
	}
	if o.BatchSize < minBatchSize || o.BatchSize > maxBatchSize {
		return dnnerr.New(dnnerr.ConfigError, "dnnconfig.Validate", errors.New("batch_size out of range [1,1000]"))
	}
	switch o.Backend {
	case dnnbackend.VariantNative, dnnbackend.VariantTensorFlow, dnnbackend.VariantOpenVINO, dnnbackend.VariantAuto:
	default:
		return dnnerr.New(dnnerr.ConfigError, "dnnconfig.Validate", errors.New("unknown dnn_backend variant "+string(o.Backend)))
	}
	return nil
}

// Environment override getters, following envconfig's getter-factory
// pattern (envconfig.Uint/Bool/String return closures, not values).
var (
	// DefaultNIreq reads the nireq default from DNNFILTER_NIREQ (1 when
	// unset); the benchmark CLI uses it as its --nireq default.
	DefaultNIreq = envconfig.Uint("DNNFILTER_NIREQ", 1)

	// DefaultBatchSize reads the batch_size default from
	// DNNFILTER_BATCH_SIZE (1 when unset); the benchmark CLI uses it as its
	// --batch default.
	DefaultBatchSize = envconfig.Uint("DNNFILTER_BATCH_SIZE", 1)

	// DefaultAsync reads DNNFILTER_ASYNC (false when unset). No code in this
	// module consults it when choosing the engine mode.
	DefaultAsync = envconfig.Bool("DNNFILTER_ASYNC")

	// ModelDir reads DNNFILTER_MODEL_DIR, mirroring OLLAMA_MODELS. No code in
	// this module prefixes it onto the model path.
	ModelDir = envconfig.String("DNNFILTER_MODEL_DIR")
)
