// MODUL: engine
// ZWECK: Inferenz-Orchestrator (C6): verbindet C1-C5, exponiert
//        submit/poll/flush/is_empty, besitzt den Lebenszyklus
// INPUT: Frames (submit), Poll-Aufrufe vom Filter-Thread
// OUTPUT: Output-Frames in Submission-Reihenfolge
// NEBENEFFEKTE: Dispatcht an das Backend; ein Log-Aufruf pro Fehlschlag
// ABHAENGIGKEITEN: dnnbackend, reqpool, inflight, reqqueue, transcode, dnnerr
// HINWEISE: Sync-Modus (kein Request-Pool) und Async-Modus (Request-Pool +
//           geordnete In-Flight-Liste) teilen sich dieselbe Submit/Poll-API,
//           gesteuert durch die Option `async` (spec.md §4.6)
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/vidstream/dnninfer/dnnbackend"
	"github.com/vidstream/dnninfer/dnnerr"
	"github.com/vidstream/dnninfer/frame"
	"github.com/vidstream/dnninfer/inflight"
	"github.com/vidstream/dnninfer/reqpool"
	"github.com/vidstream/dnninfer/reqqueue"
	"github.com/vidstream/dnninfer/transcode"
)

// flushBackoff is the spin-wait interval spec.md §5 calls "a short sleep (≈5 ms)".
const flushBackoff = 5 * time.Millisecond

// Stats are the engine's observability counters — a supplemented feature,
// not named by the original component table, but ambient telemetry any
// production inference loop in the teacher's style carries (see the
// teacher's own request-per-sequence accounting in runner_batch.go).
type Stats struct {
	Submitted  atomic.Int64
	Dispatched atomic.Int64
	Completed  atomic.Int64
	Failed     atomic.Int64
}

// Engine is the orchestrator tying C1-C5 together behind submit/poll/flush.
type Engine struct {
	backend   dnnbackend.Backend
	async     bool
	nireq     int
	batchSize int

	pool *reqpool.Pool  // nil in sync mode
	list *inflight.List // nil in sync mode

	processed *reqqueue.Queue[*frame.Frame] // sync mode only

	readyBuf []*inflight.Entry // async mode: entries drained but not yet delivered

	closed atomic.Bool

	Stats Stats
}

var errClosed = errors.New("engine: called after close")

// New constructs an Engine. In async mode it builds a request pool of nireq
// slots of batchSize each and an ordered in-flight list; in sync mode it
// builds a single processed-frame queue and skips the request pool
// entirely (spec.md §4.6 "No request pool is used"). A backend that does
// not support async execution silently downgrades an async request to sync
// (spec.md §4.4: "only OPENVINO supports execute_async").
func New(backend dnnbackend.Backend, async bool, nireq, batchSize int, outputName string) (*Engine, error) {
	if async && !backend.SupportsAsync() {
		async = false
	}
	e := &Engine{backend: backend, async: async, nireq: nireq, batchSize: batchSize}

	if async {
		e.list = inflight.New()
		pool, err := reqpool.NewPool(backend, nireq, batchSize, outputName, e.onComplete)
		if err != nil {
			return nil, dnnerr.New(dnnerr.BackendLoadError, "engine.New", err)
		}
		e.pool = pool
	} else {
		capacity := nireq * batchSize
		if capacity < 1 {
			capacity = 1
		}
		e.processed = reqqueue.New[*frame.Frame](capacity)
	}
	return e, nil
}

// IsAsync reports whether this engine is actually running in async mode,
// which may be false even when async was requested if the backend does not
// support it (see New).
func (e *Engine) IsAsync() bool {
	return e.async
}

// MaxInFlight reports the maximum number of frames that can be concurrently
// in flight: in async mode nireq slots of up to batch_size each (Open
// Question decision, DESIGN.md); in sync mode 1.
func (e *Engine) MaxInFlight() int {
	if !e.async {
		return 1
	}
	return e.nireq * e.batchSize
}

// Submit preprocs f and either dispatches it synchronously or packs it into
// the head request slot, per spec.md §4.6. In async mode it returns without
// waiting for its own frame's inference; when every slot is dispatched it
// blocks in reqpool.Lease until a completion callback releases a slot or
// ctx is cancelled.
func (e *Engine) Submit(ctx context.Context, f *frame.Frame) error {
	if e.closed.Load() {
		return dnnerr.NewWithPTS(dnnerr.ShutdownError, "engine.Submit", f.PTS, errClosed)
	}
	e.Stats.Submitted.Add(1)
	if !e.async {
		return e.submitSync(f)
	}
	return e.submitAsync(ctx, f)
}

func (e *Engine) submitSync(f *frame.Frame) error {
	req, err := e.backend.NewRequest(1)
	if err != nil {
		e.Stats.Failed.Add(1)
		return dnnerr.NewWithPTS(dnnerr.ResourceError, "engine.Submit(sync)", f.PTS, err)
	}

	uv, err := transcode.Preproc(req.Input, 0, f)
	if err != nil {
		e.Stats.Failed.Add(1)
		return dnnerr.NewWithPTS(dnnerr.BackendExecutionError, "engine.Submit(sync)", f.PTS, err)
	}

	if err := e.backend.ExecuteSync(req); err != nil {
		e.Stats.Failed.Add(1)
		slog.Error("dnn inference failed", "mode", "sync", "pts", f.PTS, "err", err)
		return dnnerr.NewWithPTS(dnnerr.BackendExecutionError, "engine.Submit(sync)", f.PTS, err)
	}

	out, err := transcode.Postproc(req.Output, 0, f, uv)
	if err != nil {
		e.Stats.Failed.Add(1)
		return dnnerr.NewWithPTS(dnnerr.BackendExecutionError, "engine.Submit(sync)", f.PTS, err)
	}

	e.processed.Push(out)
	e.Stats.Completed.Add(1)
	return nil
}

func (e *Engine) submitAsync(ctx context.Context, f *frame.Frame) error {
	slot, err := e.pool.Lease(ctx)
	if err != nil {
		e.Stats.Failed.Add(1)
		return dnnerr.NewWithPTS(dnnerr.ResourceError, "engine.Submit", f.PTS, err)
	}

	entry := &inflight.Entry{Input: f}
	elem := e.list.Append(entry)

	uv, err := transcode.Preproc(slot.Req.Input, slot.Count, f)
	if err != nil {
		e.list.MarkDone(elem, nil, err)
		e.pool.ReturnFilling(slot)
		e.Stats.Failed.Add(1)
		return dnnerr.NewWithPTS(dnnerr.BackendExecutionError, "engine.Submit", f.PTS, err)
	}

	packed := &reqpool.PackedEntry{Elem: elem, Entry: entry, Orig: f, UV: uv}
	full := e.pool.Fill(slot, packed)
	if !full {
		e.pool.ReturnFilling(slot)
		return nil
	}

	if err := e.pool.Dispatch(slot); err != nil {
		n := len(slot.Packed)
		e.failSlot(slot, err)
		e.pool.Release(slot)
		e.Stats.Failed.Add(int64(n))
		slog.Error("dnn dispatch failed", "mode", "async", "pts", f.PTS, "err", err)
		return dnnerr.NewWithPTS(dnnerr.BackendExecutionError, "engine.Submit", f.PTS, err)
	}
	e.Stats.Dispatched.Add(1)
	return nil
}

// onComplete is the per-slot reusable completion trampoline (spec.md §3),
// bound once at pool construction and invoked by the backend's worker
// thread exactly once per dispatch (spec.md §4.4).
func (e *Engine) onComplete(slot *reqpool.Slot, err error) {
	if err != nil {
		n := len(slot.Packed)
		e.failSlot(slot, err)
		slog.Error("dnn inference failed", "mode", "async", "batch", n, "err", err)
		e.Stats.Failed.Add(int64(n))
		e.pool.Release(slot)
		return
	}

	for i, pe := range slot.Packed {
		out, perr := transcode.Postproc(slot.Req.Output, i, pe.Orig, pe.UV)
		if perr != nil {
			e.list.MarkDone(pe.Elem, nil, perr)
			slog.Error("dnn postproc failed", "pts", pe.Orig.PTS, "err", perr)
			e.Stats.Failed.Add(1)
			continue
		}
		e.list.MarkDone(pe.Elem, out, nil)
		e.Stats.Completed.Add(1)
	}
	e.pool.Release(slot)
}

func (e *Engine) failSlot(slot *reqpool.Slot, err error) {
	for _, pe := range slot.Packed {
		e.list.MarkDone(pe.Elem, nil, err)
	}
}

// Poll returns the next frame in submission order, if any is ready. The
// second return value is false only when nothing is ready (spec.md §6
// "poll() → {frame | EMPTY}"); a ready-but-failed entry returns (nil, true)
// so the adapter can tell "nothing yet" from "this frame errored".
func (e *Engine) Poll() (*frame.Frame, bool) {
	if !e.async {
		out, ok := e.processed.TryPop()
		if !ok {
			return nil, false
		}
		return out, true
	}

	if len(e.readyBuf) == 0 {
		e.readyBuf = e.list.DrainReady()
		if len(e.readyBuf) == 0 {
			return nil, false
		}
	}
	entry := e.readyBuf[0]
	e.readyBuf = e.readyBuf[1:]
	return entry.Output, true
}

// Flush dispatches the head slot even if partially filled, then polls with
// a short backoff until the in-flight list is empty (spec.md §4.6).
// Idempotent: a Flush with nothing pending is a cheap no-op.
func (e *Engine) Flush(ctx context.Context) error {
	if !e.async {
		return nil
	}

	if slot, ok := e.pool.TryLease(); ok {
		if slot.Count > 0 {
			if err := e.pool.Dispatch(slot); err != nil {
				n := len(slot.Packed)
				e.failSlot(slot, err)
				e.pool.Release(slot)
				e.Stats.Failed.Add(int64(n))
			} else {
				e.Stats.Dispatched.Add(1)
			}
		} else {
			e.pool.ReturnFilling(slot)
		}
	}

	for !e.list.Empty() {
		select {
		case <-ctx.Done():
			return dnnerr.New(dnnerr.ShutdownError, "engine.Flush", ctx.Err())
		case <-time.After(flushBackoff):
		}
	}
	return nil
}

// IsEmpty reports whether there is no in-flight work and no buffered output
// remaining (spec.md §4.6).
func (e *Engine) IsEmpty() bool {
	if !e.async {
		return e.processed.Len() == 0
	}
	return e.list.Empty() && len(e.readyBuf) == 0
}

// Close releases the backend. Submit returns ShutdownError afterward.
func (e *Engine) Close() error {
	e.closed.Store(true)
	return e.backend.Close()
}
