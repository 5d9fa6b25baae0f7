// MODUL: stage
// ZWECK: Filter-Stage-Adapter (C7): implementiert die Upstream/Downstream-
//        Kantenprotokoll-Seite des Cores, pro-Stream Konfiguration, Drain
//        bei End-of-Stream
// INPUT: Upstream-Frames (ueber Upstream.TryNext), End-of-Stream-Signal
// OUTPUT: Downstream-Frames (ueber Downstream.Push), End-of-Stream-Weitergabe
// NEBENEFFEKTE: Ein strukturierter Log-Eintrag pro Fehlschlag (spec.md §7)
// ABHAENGIGKEITEN: engine, dnnerr, log/slog
// HINWEISE: Das Aktivierungs-Schema (solange verfuegbar submitten, dann
//           pollen) ist an runner.go's Server-Aktivierungsschleife angelehnt;
//           already_flushed macht SignalEndOfStream at-most-once (spec.md §4.7)
package stage

import (
	"context"
	"log/slog"
	"time"

	"github.com/vidstream/dnninfer/dnnerr"
	"github.com/vidstream/dnninfer/engine"
	"github.com/vidstream/dnninfer/frame"
)

// Upstream is the source-side edge the core reads frames from. The
// upstream/downstream filter-graph activation protocol itself is out of
// scope (spec.md §1); this is the minimal shape the stage needs to drive it.
type Upstream interface {
	// TryNext returns the next available frame and true, or (nil, false) if
	// none is currently available. This is not an end-of-stream signal.
	TryNext() (*frame.Frame, bool)
}

// Downstream is the sink-side edge the core pushes results to.
type Downstream interface {
	Push(*frame.Frame)
	SignalEndOfStream(pts time.Duration)
}

// Stage wraps an engine.Engine with the per-activation submit/poll loop and
// the end-of-stream drain+flush protocol (spec.md §4.7).
type Stage struct {
	name string
	eng  *engine.Engine

	alreadyFlushed bool
	lastPTS        time.Duration
	hasLastPTS     bool
}

// New builds a stage adapter named name (used only in log lines) around an
// already-configured engine.
func New(name string, eng *engine.Engine) *Stage {
	return &Stage{name: name, eng: eng}
}

// Activate runs one pipeline-thread activation: submit every frame upstream
// currently has available, then poll repeatedly, forwarding each produced
// frame downstream (spec.md §4.7).
func (s *Stage) Activate(ctx context.Context, up Upstream, down Downstream) {
	for {
		f, ok := up.TryNext()
		if !ok {
			break
		}
		if err := s.eng.Submit(ctx, f); err != nil {
			s.logError("submit", f.PTS, err)
			if dnnerr.KindOf(err) == dnnerr.ResourceError {
				s.SignalEndOfStream(ctx, down, f.PTS)
				return
			}
		}
	}

	for {
		out, ready := s.eng.Poll()
		if !ready {
			break
		}
		if out == nil {
			continue
		}
		s.lastPTS = out.PTS
		s.hasLastPTS = true
		down.Push(out)
	}
}

// SignalEndOfStream triggers drain+flush and propagates end-of-stream
// downstream with the last produced PTS, or fallbackPTS if nothing was
// drained. Guarded by alreadyFlushed so repeated calls are no-ops
// (spec.md §4.7 "at-most-once").
func (s *Stage) SignalEndOfStream(ctx context.Context, down Downstream, fallbackPTS time.Duration) error {
	if s.alreadyFlushed {
		return nil
	}
	s.alreadyFlushed = true

	if err := s.eng.Flush(ctx); err != nil {
		s.logError("flush", fallbackPTS, err)
		down.SignalEndOfStream(fallbackPTS)
		return err
	}

	for {
		out, ready := s.eng.Poll()
		if !ready {
			break
		}
		if out == nil {
			continue
		}
		s.lastPTS = out.PTS
		s.hasLastPTS = true
		down.Push(out)
	}

	pts := fallbackPTS
	if s.hasLastPTS {
		pts = s.lastPTS
	}
	down.SignalEndOfStream(pts)
	return nil
}

// Close tears down the underlying engine.
func (s *Stage) Close() error {
	return s.eng.Close()
}

func (s *Stage) logError(op string, pts time.Duration, err error) {
	slog.Error("dnn filter stage error",
		"stage", s.name,
		"op", op,
		"pts", pts,
		"kind", dnnerr.KindOf(err),
		"err", err,
	)
}
