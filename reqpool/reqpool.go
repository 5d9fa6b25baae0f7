// MODUL: reqpool
// ZWECK: Request-Pool & Batcher (C5): nireq wiederverwendbare Slots, je bis
//        zu batch_size gepackte Eintraege, first-fit Batching ohne Umordnung
// INPUT: Backend, nireq, batch_size, Ausgabe-Tensor-Name
// OUTPUT: Slot-Leihgabe/-Ruecknahme fuer den Orchestrator (engine)
// NEBENEFFEKTE: Alloziert nireq Backend-Requests bei Konstruktion
// ABHAENGIGKEITEN: dnnbackend, reqqueue (generische bounded FIFO), inflight,
//                  transcode (UV-Sideband-Typ), github.com/google/uuid
// HINWEISE: Zustandsmaschine exakt nach spec.md §4.5: FREE -> FILLING ->
//           DISPATCHED -> COMPLETING -> FREE; Slot verlaesst diese Zustaende
//           nie ausser ueber die dort beschriebenen Uebergaenge.
package reqpool

import (
	"container/list"
	"context"

	"github.com/google/uuid"

	"github.com/vidstream/dnninfer/dnnbackend"
	"github.com/vidstream/dnninfer/frame"
	"github.com/vidstream/dnninfer/inflight"
	"github.com/vidstream/dnninfer/reqqueue"
	"github.com/vidstream/dnninfer/transcode"
)

// PackedEntry links one packed in-flight entry to the slot that carries it,
// alongside the data Postproc needs once the slot's request completes.
type PackedEntry struct {
	Elem  *list.Element
	Entry *inflight.Entry
	Orig  *frame.Frame
	UV    *transcode.UVSideband
}

// Slot is the request-pool unit described in spec.md §3 "Request slot":
// a backend request handle, an output-tensor name, up to batch_size packed
// entries, a count counter, and a reusable completion-callback trampoline.
type Slot struct {
	ID         uuid.UUID
	Req        *dnnbackend.Request
	OutputName string
	Packed     []*PackedEntry
	Count      int

	cb dnnbackend.CompletionFunc
}

// Pool owns nireq slots, handed out via a bounded FIFO (reqqueue, C1) in
// FIFO order for `Push`/blocking `Lease`, with `ReturnFilling` jumping the
// queue (push_front, spec.md §4.1) so a partially filled slot is the next
// one leased.
type Pool struct {
	backend   dnnbackend.Backend
	batchSize int
	free      *reqqueue.Queue[*Slot]
}

// NewPool allocates nireq backend requests (each sized for up to batchSize
// packed frames) and primes the free queue. onComplete is bound once per
// slot as its reusable completion trampoline (spec.md §3); it is invoked by
// the backend's worker thread with the slot that just finished.
func NewPool(backend dnnbackend.Backend, nireq, batchSize int, outputName string, onComplete func(slot *Slot, err error)) (*Pool, error) {
	free := reqqueue.New[*Slot](nireq)
	p := &Pool{backend: backend, batchSize: batchSize, free: free}

	for i := 0; i < nireq; i++ {
		req, err := backend.NewRequest(batchSize)
		if err != nil {
			return nil, err
		}
		slot := &Slot{
			ID:         uuid.New(),
			Req:        req,
			OutputName: outputName,
			Packed:     make([]*PackedEntry, 0, batchSize),
		}
		slot.cb = func(userPtr any, err error) {
			onComplete(slot, err)
		}
		free.Push(slot)
	}
	return p, nil
}

// Lease pops the head slot off the free queue (spec.md §4.5 FREE -> FILLING).
// It blocks while the free queue is empty, i.e. while every slot is
// DISPATCHED, until a completion releases one (Release) or ctx is
// cancelled.
func (p *Pool) Lease(ctx context.Context) (*Slot, error) {
	slot, ok := p.free.Pop(ctx)
	if !ok {
		return nil, ctx.Err()
	}
	return slot, nil
}

// TryLease is the non-blocking variant of Lease, used by Flush to check
// whether the head of the free queue is a partially filled slot without
// waiting for one to appear.
func (p *Pool) TryLease() (*Slot, bool) {
	return p.free.TryPop()
}

// Fill packs entry into slot and reports whether the slot has reached
// batch_size (spec.md §4.5 "submit() until count==batch_size").
func (p *Pool) Fill(slot *Slot, entry *PackedEntry) (full bool) {
	slot.Packed = append(slot.Packed, entry)
	slot.Count++
	return slot.Count >= p.batchSize
}

// ReturnFilling pushes a partially filled slot back to the FIFO's front so
// the next submit lands on the same slot (spec.md §4.1 push_front, §4.5
// FILLING).
func (p *Pool) ReturnFilling(slot *Slot) {
	p.free.PushFront(slot)
}

// Dispatch hands the slot's request to the backend (spec.md §4.5 FILLING/
// DISPATCHED transition); the slot's bound trampoline runs the caller's
// onComplete exactly once, per the backend contract (spec.md §4.4).
func (p *Pool) Dispatch(slot *Slot) error {
	return p.backend.ExecuteAsync(slot.Req, slot, slot.cb)
}

// Release resets a slot's packed-entry bookkeeping and returns it to the
// free queue's tail (spec.md §4.5 COMPLETING -> FREE, invariant 4: both
// packed_entries and count_counter reset to 0 before returning to the pool).
func (p *Pool) Release(slot *Slot) {
	slot.Packed = slot.Packed[:0]
	slot.Count = 0
	p.free.Push(slot)
}

// BatchSize reports the configured batch_size.
func (p *Pool) BatchSize() int { return p.batchSize }
