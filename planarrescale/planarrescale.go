// MODUL: planarrescale
// ZWECK: Bicubic-Resampler fuer einzelne Bild-Ebenen (Stand-in fuer den
//        swscale-artigen planar-rescale Dienst, spec.md §1 "out of scope")
// INPUT: Ebene (Bytes + Stride) mit Quellgroesse, Zielgroesse
// OUTPUT: Neue Ebene mit Zielgroesse
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: golang.org/x/image/draw
// HINWEISE: Behandelt nur einzelne 8-Bit-Ebenen (U/V-Chroma); keine
//           allgemeine Pixelformat-Konvertierung
package planarrescale

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Plane8 ist eine einzelne 8-Bit-pro-Pixel Ebene mit eigenem Stride.
type Plane8 struct {
	Data   []byte
	Stride int
	Width  int
	Height int
}

// Rescale skaliert eine 8-Bit-Ebene per bicubic (Catmull-Rom) Resampling von
// src.Width x src.Height auf dstWidth x dstHeight. Wird fuer U/V-Ebenen
// verwendet, wenn das Modell die Aufloesung veraendert (spec.md §4.3).
func Rescale(src Plane8, dstWidth, dstHeight int) (Plane8, error) {
	if dstWidth <= 0 || dstHeight <= 0 {
		return Plane8{}, fmt.Errorf("planarrescale: invalid target size %dx%d", dstWidth, dstHeight)
	}

	srcImg := &image.Gray{
		Pix:    src.Data,
		Stride: src.Stride,
		Rect:   image.Rect(0, 0, src.Width, src.Height),
	}

	dstImg := image.NewGray(image.Rect(0, 0, dstWidth, dstHeight))
	draw.CatmullRom.Scale(dstImg, dstImg.Bounds(), srcImg, srcImg.Bounds(), draw.Src, nil)

	return Plane8{
		Data:   dstImg.Pix,
		Stride: dstImg.Stride,
		Width:  dstWidth,
		Height: dstHeight,
	}, nil
}

// CopyVerbatim copies a plane unchanged into a freshly allocated buffer,
// used when input and output resolutions match (spec.md §4.3 case (a)).
func CopyVerbatim(src Plane8) Plane8 {
	out := make([]byte, len(src.Data))
	copy(out, src.Data)
	return Plane8{Data: out, Stride: src.Stride, Width: src.Width, Height: src.Height}
}
