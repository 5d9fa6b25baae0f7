// MODUL: dnnfilter-bench/frames
// ZWECK: Bild-Laden und Konvertierung nach frame.Frame (RGB24) fuer den Benchmark
// INPUT: Dateipfade
// OUTPUT: []*frame.Frame mit aufsteigenden PTS
// NEBENEFFEKTE: Dateisystem-Lesezugriff
// ABHAENGIGKEITEN: image/jpeg, image/png, golang.org/x/image/webp (Blank-Import)
// HINWEISE: Alle Bilder werden nach RGB24 konvertiert, analog zu
//           vision/image.go's toRGBA, aber ohne Alpha-Kanal
package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "golang.org/x/image/webp"

	"github.com/vidstream/dnninfer/frame"
)

// loadFrames decodes every image file directly inside dir (non-recursive),
// sorted by filename, and assigns each a PTS spaced by frameInterval.
func loadFrames(dir string, frameInterval time.Duration) ([]*frame.Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no image files found in %s", dir)
	}

	frames := make([]*frame.Frame, 0, len(paths))
	for i, p := range paths {
		f, err := decodeRGB24(p)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		f.PTS = time.Duration(i) * frameInterval
		frames = append(frames, f)
	}
	return frames, nil
}

// cycleFrames repeats src in order until it reaches count entries, assigning
// freshly spaced PTS so a small sample directory can still drive a large
// benchmark run.
func cycleFrames(src []*frame.Frame, count int, frameInterval time.Duration) []*frame.Frame {
	if count <= 0 || len(src) == 0 {
		return nil
	}
	out := make([]*frame.Frame, count)
	for i := 0; i < count; i++ {
		base := src[i%len(src)]
		cp := *base
		cp.PTS = time.Duration(i) * frameInterval
		out[i] = &cp
	}
	return out
}

func decodeRGB24(path string) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	stride := w * 3
	data := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			off := y*stride + x*3
			data[off] = byte(r >> 8)
			data[off+1] = byte(g >> 8)
			data[off+2] = byte(b >> 8)
		}
	}

	return &frame.Frame{
		Format: frame.PixRGB24,
		Width:  w,
		Height: h,
		Planes: []frame.Plane{{Data: data, Stride: stride}},
	}, nil
}
