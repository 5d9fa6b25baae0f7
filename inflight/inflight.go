// MODUL: inflight
// ZWECK: Geordnete In-Flight-Liste, bewahrt Submission-Reihenfolge ueber
//        asynchrone Callback-Abschluesse hinweg (C2)
// INPUT: Append von Entry, DrainReady liest vom Kopf
// OUTPUT: Fertige Entries in Submission-Reihenfolge
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: keine externen (container/list, sync)
// HINWEISE: done wird pro Entry genau einmal gesetzt (vom Callback-Thread,
//           bei Preproc-/Dispatch-Fehlern vom Filter-Thread), immer unter dem
//           Listen-Mutex; List-Methoden lesen es unter demselben Mutex,
//           Entry.Done() dagegen ohne Lock
package inflight

import (
	"container/list"
	"sync"

	"github.com/vidstream/dnninfer/frame"
)

// Entry verknuepft ein eingereichtes Input-Frame mit seinem ausstehenden
// Output-Frame.
type Entry struct {
	Input  *frame.Frame
	Output *frame.Frame // bleibt nil bis Postproc laeuft
	Err    error        // gesetzt wenn die Inferenz fuer dieses Entry fehlschlug
	done   bool
}

// Done meldet ob dieses Entry bereit zum Poll ist. Liest das Flag ohne den
// Listen-Mutex.
func (e *Entry) Done() bool { return e.done }

// List ist eine durch einen Mutex geschuetzte doppelt verkettete Liste von
// In-Flight-Entries, vom Kopf aus geleert.
type List struct {
	mu sync.Mutex
	l  *list.List
}

// New erstellt eine leere In-Flight-Liste.
func New() *List {
	return &List{l: list.New()}
}

// Append haengt ein neues Entry ans Ende der Liste (Submission-Reihenfolge).
func (il *List) Append(e *Entry) *list.Element {
	il.mu.Lock()
	defer il.mu.Unlock()
	return il.l.PushBack(e)
}

// MarkDone setzt done=true auf dem Entry am gegebenen Element unter dem
// Listen-Mutex. Aufgerufen vom Callback-Thread und, bei Preproc- oder
// Dispatch-Fehlern, vom Filter-Thread (engine.Submit/Flush).
func (il *List) MarkDone(elem *list.Element, output *frame.Frame, err error) {
	il.mu.Lock()
	defer il.mu.Unlock()
	e := elem.Value.(*Entry)
	e.Output = output
	e.Err = err
	e.done = true
}

// DrainReady entfernt Entries vom Kopf solange deren done-Flag gesetzt ist,
// und stoppt beim ersten nicht-fertigen Entry — so bleibt die globale
// Reihenfolge erhalten, auch wenn das Backend Requests out-of-order
// abschliesst (spec.md §4.2).
func (il *List) DrainReady() []*Entry {
	il.mu.Lock()
	defer il.mu.Unlock()

	var ready []*Entry
	for {
		front := il.l.Front()
		if front == nil {
			break
		}
		e := front.Value.(*Entry)
		if !e.done {
			break
		}
		ready = append(ready, e)
		il.l.Remove(front)
	}
	return ready
}

// Empty meldet ob die Liste leer ist.
func (il *List) Empty() bool {
	il.mu.Lock()
	defer il.mu.Unlock()
	return il.l.Len() == 0
}

// Len gibt die aktuelle Anzahl an In-Flight-Entries zurueck.
func (il *List) Len() int {
	il.mu.Lock()
	defer il.mu.Unlock()
	return il.l.Len()
}

// HeadDone meldet ob der Kopf der Liste (falls vorhanden) fertig ist, ohne
// ihn zu entfernen — praktisch fuer Polling-Schleifen, die auf eine
// Zustandsaenderung warten wollen, ohne staendig zu draenen.
func (il *List) HeadDone() bool {
	il.mu.Lock()
	defer il.mu.Unlock()
	front := il.l.Front()
	if front == nil {
		return false
	}
	return front.Value.(*Entry).done
}
