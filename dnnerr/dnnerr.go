// MODUL: dnnerr
// ZWECK: Fehler-Taxonomie fuer den DNN-Inferenz-Core (spec.md §7)
// INPUT: Op-Name, Kind, optionale PTS, zugrundeliegender Fehler
// OUTPUT: *Error mit Kind-Klassifizierung, errors.Is/As kompatibel
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: keine externen (nur stdlib)
// HINWEISE: Ein Log-Aufruf pro Fehler obliegt dem Aufrufer (stage-Paket)
package dnnerr

import (
	"errors"
	"fmt"
	"time"
)

// Kind klassifiziert einen Fehler nach spec.md §7.
type Kind string

const (
	// ConfigError: fehlende Pflichtoption, nicht unterstuetztes Backend,
	// Pixelformat ausserhalb der unterstuetzten Menge, Kanal-/Elementtyp-
	// Mismatch zwischen Frame und Modell.
	ConfigError Kind = "config"
	// BackendLoadError: Modelldatei nicht lesbar oder inkompatibel.
	BackendLoadError Kind = "backend_load"
	// BackendExecutionError: execute_sync oder execute_async meldet Fehler.
	BackendExecutionError Kind = "backend_execution"
	// ResourceError: Output-Frame kann nicht alloziert werden, Request-Pool
	// erschoepft (sollte nicht passieren; deutet auf einen verlorenen Slot hin).
	ResourceError Kind = "resource"
	// ShutdownError: Aufruf nach Teardown.
	ShutdownError Kind = "shutdown"
)

// Error ist der strukturierte Fehlertyp des Cores. PTS ist optional (-1 wenn
// unbekannt, z.B. bei Init-Fehlern die noch kein Frame betreffen).
type Error struct {
	Kind Kind
	Op   string
	PTS  time.Duration
	Err  error
}

func (e *Error) Error() string {
	if e.PTS >= 0 {
		return fmt.Sprintf("%s: %s (pts=%s): %v", e.Op, e.Kind, e.PTS, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is erlaubt errors.Is(err, dnnerr.ErrConfig)-artige Vergleiche gegen die
// Sentinels unten: Kind selbst implementiert das error Interface nicht,
// stattdessen prueft Is() am *Error die Kind-Gleichheit gegen ein anderes
// *Error (Op, PTS und Err werden ignoriert).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New baut einen klassifizierten Fehler ohne PTS-Bezug (z.B. Init-Fehler).
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, PTS: -1, Err: err}
}

// NewWithPTS baut einen klassifizierten Fehler mit PTS-Bezug (Pro-Frame-Fehler).
func NewWithPTS(kind Kind, op string, pts time.Duration, err error) *Error {
	return &Error{Kind: kind, Op: op, PTS: pts, Err: err}
}

// KindOf gibt die Kind eines (moeglicherweise gewrappten) Fehlers zurueck,
// oder "" wenn es kein *Error ist.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// sentinels fuer errors.Is(err, dnnerr.ErrConfig) etc. ohne PTS/Op-Kontext.
var (
	ErrConfig           = &Error{Kind: ConfigError, Op: "", PTS: -1, Err: errors.New("config error")}
	ErrBackendLoad      = &Error{Kind: BackendLoadError, Op: "", PTS: -1, Err: errors.New("backend load error")}
	ErrBackendExecution = &Error{Kind: BackendExecutionError, Op: "", PTS: -1, Err: errors.New("backend execution error")}
	ErrResource         = &Error{Kind: ResourceError, Op: "", PTS: -1, Err: errors.New("resource error")}
	ErrShutdown         = &Error{Kind: ShutdownError, Op: "", PTS: -1, Err: errors.New("operation called after teardown")}
)
