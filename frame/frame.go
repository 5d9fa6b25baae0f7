// MODUL: frame
// ZWECK: Pixel-Frame- und Tensor-Datenmodell fuer die DNN-Filter-Pipeline
// INPUT: Keine (reine Datenstrukturen)
// OUTPUT: Frame, Plane, TensorDesc, PixFmt
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: keine externen (nur stdlib)
// HINWEISE: Besitz wechselt beim submit/poll, siehe engine-Paket
package frame

import (
	"encoding/binary"
	"math"
	"time"
)

// PixFmt ist das Pixelformat eines Frames an der Stage-Grenze.
type PixFmt string

const (
	PixRGB24    PixFmt = "rgb24"
	PixBGR24    PixFmt = "bgr24"
	PixGRAY8    PixFmt = "gray8"
	PixGRAYF32  PixFmt = "grayf32"
	PixYUV420P  PixFmt = "yuv420p"
	PixYUV422P  PixFmt = "yuv422p"
	PixYUV444P  PixFmt = "yuv444p"
	PixYUV410P  PixFmt = "yuv410p"
	PixYUV411P  PixFmt = "yuv411p"
	PixUnknown  PixFmt = "unknown"
)

// SupportedPixFmts ist die an der Stage-Grenze erlaubte Formatmenge (spec.md §6).
var SupportedPixFmts = map[PixFmt]bool{
	PixRGB24:   true,
	PixBGR24:   true,
	PixGRAY8:   true,
	PixGRAYF32: true,
	PixYUV420P: true,
	PixYUV422P: true,
	PixYUV444P: true,
	PixYUV410P: true,
	PixYUV411P: true,
}

// IsYUVPlanar meldet ob das Format eine planare YUV-Variante ist.
func (f PixFmt) IsYUVPlanar() bool {
	switch f {
	case PixYUV420P, PixYUV422P, PixYUV444P, PixYUV410P, PixYUV411P:
		return true
	default:
		return false
	}
}

// ChromaSubsampling gibt den horizontalen/vertikalen Unterabtastfaktor fuer
// Chroma-Ebenen eines planaren YUV-Formats zurueck (1 = keine Unterabtastung).
func (f PixFmt) ChromaSubsampling() (xDiv, yDiv int) {
	switch f {
	case PixYUV420P:
		return 2, 2
	case PixYUV422P:
		return 2, 1
	case PixYUV444P:
		return 1, 1
	case PixYUV410P:
		return 4, 4
	case PixYUV411P:
		return 4, 1
	default:
		return 1, 1
	}
}

// Channels gibt die Modell-sichtbare Kanalzahl zurueck: 3 fuer RGB/BGR,
// 1 fuer GRAY und fuer YUV (nur die Y-Ebene geht ins Modell, spec.md §4.3).
func (f PixFmt) Channels() int {
	switch f {
	case PixRGB24, PixBGR24:
		return 3
	case PixGRAY8, PixGRAYF32:
		return 1
	default:
		if f.IsYUVPlanar() {
			return 1
		}
		return 0
	}
}

// Plane ist eine einzelne Bildebene mit eigenem Stride.
type Plane struct {
	Data   []byte
	Stride int
}

// Frame ist das externe Bildobjekt, das zwischen Stages transportiert wird.
type Frame struct {
	Format   PixFmt
	Width    int
	Height   int
	Planes   []Plane
	PTS      time.Duration
	Metadata map[string]any
}

// CopyMetadataTo kopiert die Metadata-Map (nicht die Pixel-Daten), damit
// Postproc ein neues Output-Frame bauen kann, das weiter Side-Band-Metadaten
// des Input-Frames traegt (spec.md §4.3).
func (f *Frame) CopyMetadataTo(dst *Frame) {
	if f == nil || dst == nil || len(f.Metadata) == 0 {
		return
	}
	dst.Metadata = make(map[string]any, len(f.Metadata))
	for k, v := range f.Metadata {
		dst.Metadata[k] = v
	}
}

// ElemType ist der Elementtyp eines Tensors.
type ElemType string

const (
	ElemFloat32 ElemType = "float32"
	ElemUint8   ElemType = "uint8"
)

// ByteSize gibt die Groesse eines Elements in Bytes zurueck.
func (e ElemType) ByteSize() int {
	switch e {
	case ElemFloat32:
		return 4
	case ElemUint8:
		return 1
	default:
		return 0
	}
}

// Layout beschreibt ob ein Tensor channel-first oder channel-last ist.
type Layout int

const (
	LayoutNCHW Layout = iota // channel-first
	LayoutNHWC               // channel-last (Tensor-Raum-Konvention des Cores)
)

// TensorDesc ist ein vierfeldiger Tensor-Deskriptor: Elementtyp, Shape in
// logischer Reihenfolge (batch, channels, height, width), ein Daten-Slice
// in einen backend-eigenen Puffer, und das Layout-Flag.
type TensorDesc struct {
	ElemType ElemType
	Shape    [4]int // N, C, H, W (logische Reihenfolge unabhaengig vom Layout)
	Data     []byte
	Layout   Layout
}

// N, C, H, W sind bequeme Zugriffe auf die logische Shape.
func (t TensorDesc) N() int { return t.Shape[0] }
func (t TensorDesc) C() int { return t.Shape[1] }
func (t TensorDesc) H() int { return t.Shape[2] }
func (t TensorDesc) W() int { return t.Shape[3] }

// NumElements gibt die Gesamtzahl der Elemente im Tensor zurueck.
func (t TensorDesc) NumElements() int {
	return t.N() * t.C() * t.H() * t.W()
}

// Float32Data interpretiert Data als []float32 (ElemType muss ElemFloat32 sein).
func (t TensorDesc) Float32Data() []float32 {
	if t.ElemType != ElemFloat32 {
		return nil
	}
	n := t.NumElements()
	if n*4 > len(t.Data) {
		return nil
	}
	out := make([]float32, n)
	for i := range out {
		bits := binary.LittleEndian.Uint32(t.Data[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out
}
