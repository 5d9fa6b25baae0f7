// MODUL: native
// ZWECK: Reine Go-Referenzimplementierung des Backend-Vertrags (Variante
//        NATIVE), sync-only wie in spec.md §4.4 Tabelle vorgesehen
// INPUT: ComputeFunc (Tensor -> Tensor), Input/Output-Deskriptoren
// OUTPUT: Backend-Implementierung fuer Tests und den Stage-Default
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: frame, dnnbackend
// HINWEISE: Wird vom Benchmark-CLI (cmd/dnnfilter-bench) und dessen Tests
//           als Identitaetsmodell genutzt (spec.md §8 Property 3,
//           Round-Trip-Transcoding)
package native

import (
	"errors"

	"github.com/vidstream/dnninfer/dnnbackend"
	"github.com/vidstream/dnninfer/frame"
)

func init() {
	dnnbackend.Register(dnnbackend.VariantNative, func() dnnbackend.Backend {
		return New()
	})
}

// ComputeFunc transforms a filled input tensor into an output tensor. The
// default (nil) behaves as an identity model (copies bytes verbatim),
// useful for spec.md §8 property 3 (round-trip transcoding).
type ComputeFunc func(input frame.TensorDesc) (frame.TensorDesc, error)

// Backend is the NATIVE backend variant: a pure-Go reference model runner.
type Backend struct {
	inputDesc  dnnbackend.IODesc
	outputDesc dnnbackend.IODesc
	compute    ComputeFunc
	loaded     bool
}

// New creates an unconfigured native backend. Call Configure before Load to
// install a non-identity ComputeFunc (used by tests that need a specific
// output shape, e.g. 2x super-resolution).
func New() *Backend {
	return &Backend{}
}

// Configure installs the input/output descriptors and compute function a
// "loaded" native model will expose. Intended for tests: production code
// configures these by reading them out of a real model file, which the
// native backend has none of.
func (b *Backend) Configure(in, out dnnbackend.IODesc, compute ComputeFunc) {
	b.inputDesc = in
	b.outputDesc = out
	b.compute = compute
}

func (b *Backend) Load(modelPath, opts string) error {
	// The native backend has no model file; Configure must be called first.
	if b.compute == nil {
		b.compute = identity
	}
	b.loaded = true
	return nil
}

func (b *Backend) InputDesc() (dnnbackend.IODesc, error) {
	if !b.loaded {
		return dnnbackend.IODesc{}, errNotLoaded
	}
	return b.inputDesc, nil
}

func (b *Backend) OutputDesc() (dnnbackend.IODesc, error) {
	if !b.loaded {
		return dnnbackend.IODesc{}, errNotLoaded
	}
	return b.outputDesc, nil
}

// ReshapeBatch is a no-op for the native backend: NewRequest already takes
// the batch size directly, there is no persistent graph to reshape.
func (b *Backend) ReshapeBatch(n int) error {
	return nil
}

func (b *Backend) NewRequest(batchSize int) (*dnnbackend.Request, error) {
	if !b.loaded {
		return nil, errNotLoaded
	}
	inSize := batchSize * b.inputDesc.Channels * dimOrOne(b.inputDesc.Height) * dimOrOne(b.inputDesc.Width) * b.inputDesc.ElemType.ByteSize()
	outSize := batchSize * b.outputDesc.Channels * dimOrOne(b.outputDesc.Height) * dimOrOne(b.outputDesc.Width) * b.outputDesc.ElemType.ByteSize()
	return &dnnbackend.Request{
		Input: frame.TensorDesc{
			ElemType: b.inputDesc.ElemType,
			Shape:    [4]int{batchSize, b.inputDesc.Channels, b.inputDesc.Height, b.inputDesc.Width},
			Data:     make([]byte, inSize),
			Layout:   frame.LayoutNHWC,
		},
		Output: frame.TensorDesc{
			ElemType: b.outputDesc.ElemType,
			Shape:    [4]int{batchSize, b.outputDesc.Channels, b.outputDesc.Height, b.outputDesc.Width},
			Data:     make([]byte, outSize),
			Layout:   frame.LayoutNHWC,
		},
	}, nil
}

func (b *Backend) ExecuteSync(req *dnnbackend.Request) error {
	if !b.loaded {
		return errNotLoaded
	}
	out, err := b.compute(req.Input)
	if err != nil {
		return err
	}
	req.Output = out
	return nil
}

// ExecuteAsync is unsupported: NATIVE is sync-only per spec.md §4.4.
func (b *Backend) ExecuteAsync(req *dnnbackend.Request, userPtr any, cb dnnbackend.CompletionFunc) error {
	return dnnbackend.ErrAsyncUnsupported
}

func (b *Backend) SupportsAsync() bool { return false }

func (b *Backend) Close() error {
	b.loaded = false
	return nil
}

func identity(input frame.TensorDesc) (frame.TensorDesc, error) {
	out := make([]byte, len(input.Data))
	copy(out, input.Data)
	return frame.TensorDesc{
		ElemType: input.ElemType,
		Shape:    input.Shape,
		Data:     out,
		Layout:   input.Layout,
	}, nil
}

func dimOrOne(d int) int {
	if d <= 0 {
		return 1
	}
	return d
}

var errNotLoaded = errors.New("native: backend not loaded")
