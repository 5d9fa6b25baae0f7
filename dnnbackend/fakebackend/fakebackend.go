// MODUL: fakebackend
// ZWECK: Test-Double fuer dnnbackend.Backend, das Verzoegerungen und
//        gezielte Fehlschlaege pro Dispatch-Index simulieren kann
// INPUT: Konfigurierbare Delay-/Fail-Funktionen
// OUTPUT: dnnbackend.Backend Implementierung
// NEBENEFFEKTE: Keine ausser simulierten time.Sleep Verzoegerungen
// ABHAENGIGKEITEN: dnnbackend, frame
// HINWEISE: Entspricht dem "stub backend" aus spec.md §8 Szenarien 5 und 6
//           (Out-of-Order-Abschluss, Mid-Stream-Fehler); nicht unter
//           VariantOpenVINO/NATIVE registriert, wird von Tests direkt
//           instanziiert.
package fakebackend

import (
	"sync/atomic"
	"time"

	"github.com/vidstream/dnninfer/dnnbackend"
	"github.com/vidstream/dnninfer/frame"
)

// Backend is a configurable async-capable stub used by reqpool/engine tests.
type Backend struct {
	InputDescV  dnnbackend.IODesc
	OutputDescV dnnbackend.IODesc

	// DelayFor returns an artificial delay applied before the n-th dispatch
	// completes (n is 0-based dispatch order, not frame index).
	DelayFor func(n int) time.Duration

	// FailDispatch returns a non-nil error to fail the n-th ExecuteAsync
	// dispatch immediately (synchronously, before any goroutine starts).
	FailDispatch func(n int) error

	// FailCallback returns a non-nil error to have the n-th dispatch's
	// callback report a failure after its delay (instead of computing output).
	FailCallback func(n int) error

	// Compute transforms input to output; defaults to byte-for-byte copy.
	Compute func(frame.TensorDesc) (frame.TensorDesc, error)

	dispatchCount atomic.Int64
	closed        atomic.Bool
}

func (b *Backend) Load(modelPath, opts string) error { return nil }

func (b *Backend) InputDesc() (dnnbackend.IODesc, error)  { return b.InputDescV, nil }
func (b *Backend) OutputDesc() (dnnbackend.IODesc, error) { return b.OutputDescV, nil }

func (b *Backend) ReshapeBatch(n int) error { return nil }

func (b *Backend) NewRequest(batchSize int) (*dnnbackend.Request, error) {
	in := b.InputDescV
	out := b.OutputDescV
	return &dnnbackend.Request{
		Input: frame.TensorDesc{
			ElemType: in.ElemType,
			Shape:    [4]int{batchSize, in.Channels, max1(in.Height), max1(in.Width)},
			Data:     make([]byte, batchSize*in.Channels*max1(in.Height)*max1(in.Width)*in.ElemType.ByteSize()),
			Layout:   frame.LayoutNHWC,
		},
		Output: frame.TensorDesc{
			ElemType: out.ElemType,
			Shape:    [4]int{batchSize, out.Channels, max1(out.Height), max1(out.Width)},
			Data:     make([]byte, batchSize*out.Channels*max1(out.Height)*max1(out.Width)*out.ElemType.ByteSize()),
			Layout:   frame.LayoutNHWC,
		},
	}, nil
}

func max1(d int) int {
	if d <= 0 {
		return 1
	}
	return d
}

func (b *Backend) compute(in frame.TensorDesc) (frame.TensorDesc, error) {
	if b.Compute != nil {
		return b.Compute(in)
	}
	out := make([]byte, len(in.Data))
	copy(out, in.Data)
	return frame.TensorDesc{ElemType: in.ElemType, Shape: in.Shape, Data: out, Layout: in.Layout}, nil
}

func (b *Backend) ExecuteSync(req *dnnbackend.Request) error {
	out, err := b.compute(req.Input)
	if err != nil {
		return err
	}
	req.Output = out
	return nil
}

func (b *Backend) ExecuteAsync(req *dnnbackend.Request, userPtr any, cb dnnbackend.CompletionFunc) error {
	n := int(b.dispatchCount.Add(1)) - 1

	if b.FailDispatch != nil {
		if err := b.FailDispatch(n); err != nil {
			return err
		}
	}

	go func() {
		if b.DelayFor != nil {
			time.Sleep(b.DelayFor(n))
		}
		if b.FailCallback != nil {
			if err := b.FailCallback(n); err != nil {
				cb(userPtr, err)
				return
			}
		}
		out, err := b.compute(req.Input)
		if err == nil {
			req.Output = out
		}
		cb(userPtr, err)
	}()
	return nil
}

func (b *Backend) SupportsAsync() bool { return true }

func (b *Backend) Close() error {
	b.closed.Store(true)
	return nil
}
