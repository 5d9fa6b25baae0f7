// MODUL: transcode
// ZWECK: Frame<->Tensor Umwandlung nach der Tabelle aus spec.md §4.3:
//        Pixelformat + Ziel-Elementtyp bestimmen die Konvertierung
// INPUT: Pixel-Frame + Ziel-TensorDesc-Puffer (preproc), Tensor + Original-
//        Frame (postproc)
// OUTPUT: Gefuellter Tensor-Puffer bzw. neues Output-Frame
// NEBENEFFEKTE: Keine (schreibt nur in vom Aufrufer bereitgestellte Puffer)
// ABHAENGIGKEITEN: frame, dnnbackend (IODesc), planarrescale (UV-Bicubic)
// HINWEISE: Preproc schreibt direkt in den vom Backend allozierten
//           Eingabepuffer (Open Question 2, DESIGN.md); NHWC ist die vom
//           Core erzeugte Tensor-Raum-Konvention (spec.md §3)
package transcode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/vidstream/dnninfer/dnnbackend"
	"github.com/vidstream/dnninfer/frame"
	"github.com/vidstream/dnninfer/planarrescale"
)

// UVSideband carries the chroma planes of a YUV-planar frame around the
// model (spec.md §4.3: "U and V planes bypass the model").
type UVSideband struct {
	U, V       planarrescale.Plane8
	SrcW, SrcH int
}

// ValidateCompat validates a frame's pixel format against a model's input
// descriptor at stage-config time (spec.md §4.3, §7 ConfigError): channel
// count must match, element type must be compatible per the conversion
// table, and height/width must either match the model's fixed dimensions
// or the model must declare them dynamic (dnnbackend.DynamicDim).
func ValidateCompat(pixFmt frame.PixFmt, frameW, frameH int, desc dnnbackend.IODesc) error {
	if !frame.SupportedPixFmts[pixFmt] {
		return fmt.Errorf("unsupported pixel format %q", pixFmt)
	}

	wantChannels := pixFmt.Channels()
	if desc.Channels != wantChannels {
		return fmt.Errorf("channel mismatch: frame format %q needs %d channels, model declares %d", pixFmt, wantChannels, desc.Channels)
	}

	switch {
	case pixFmt == frame.PixGRAY8:
		if desc.ElemType != frame.ElemUint8 {
			return fmt.Errorf("GRAY8 requires a UINT8 model input, got %s", desc.ElemType)
		}
	case pixFmt == frame.PixGRAYF32:
		if desc.ElemType != frame.ElemFloat32 {
			return fmt.Errorf("GRAYF32 requires a FLOAT32 model input, got %s", desc.ElemType)
		}
	case pixFmt.IsYUVPlanar():
		if desc.ElemType != frame.ElemFloat32 {
			return fmt.Errorf("YUV planar input requires a FLOAT32 model input, got %s", desc.ElemType)
		}
	case pixFmt == frame.PixRGB24 || pixFmt == frame.PixBGR24:
		if desc.ElemType != frame.ElemFloat32 && desc.ElemType != frame.ElemUint8 {
			return fmt.Errorf("RGB24/BGR24 requires a FLOAT32 or UINT8 model input, got %s", desc.ElemType)
		}
	}

	if desc.Height != dnnbackend.DynamicDim && desc.Height != frameH {
		return fmt.Errorf("height mismatch: frame is %d, model declares %d", frameH, desc.Height)
	}
	if desc.Width != dnnbackend.DynamicDim && desc.Width != frameW {
		return fmt.Errorf("width mismatch: frame is %d, model declares %d", frameW, desc.Width)
	}
	return nil
}

// Preproc fills the batchIndex-th slot of dst (an NHWC tensor buffer
// allocated by the backend) from f, per the conversion table in spec.md
// §4.3. For YUV-planar inputs it also returns the UV sideband to carry
// around the model.
func Preproc(dst frame.TensorDesc, batchIndex int, f *frame.Frame) (*UVSideband, error) {
	if batchIndex < 0 || batchIndex >= dst.N() {
		return nil, fmt.Errorf("transcode: batch index %d out of range [0,%d)", batchIndex, dst.N())
	}

	switch {
	case f.Format == frame.PixRGB24 || f.Format == frame.PixBGR24:
		return nil, preprocRGB(dst, batchIndex, f)
	case f.Format == frame.PixGRAY8:
		return nil, preprocGray8(dst, batchIndex, f)
	case f.Format == frame.PixGRAYF32:
		return nil, preprocGrayF32(dst, batchIndex, f)
	case f.Format.IsYUVPlanar():
		return preprocYUV(dst, batchIndex, f)
	default:
		return nil, fmt.Errorf("transcode: unsupported pixel format %q", f.Format)
	}
}

func preprocRGB(dst frame.TensorDesc, batchIndex int, f *frame.Frame) error {
	plane := f.Planes[0]
	h, w := dst.H(), dst.W()
	elemSize := dst.ElemType.ByteSize()

	for y := 0; y < h; y++ {
		row := plane.Data[y*plane.Stride : y*plane.Stride+w*3]
		for x := 0; x < w; x++ {
			r, g, b := row[x*3], row[x*3+1], row[x*3+2]
			if f.Format == frame.PixBGR24 {
				r, b = b, r
			}
			base := nhwcOffset(batchIndex, h, w, 3, y, x, 0, elemSize)
			writeChannel(dst.Data, base, elemSize, dst.ElemType, r)
			writeChannel(dst.Data, base+elemSize, elemSize, dst.ElemType, g)
			writeChannel(dst.Data, base+2*elemSize, elemSize, dst.ElemType, b)
		}
	}
	return nil
}

func preprocGray8(dst frame.TensorDesc, batchIndex int, f *frame.Frame) error {
	plane := f.Planes[0]
	h, w := dst.H(), dst.W()
	for y := 0; y < h; y++ {
		srcRow := plane.Data[y*plane.Stride : y*plane.Stride+w]
		dstOff := nhwcOffset(batchIndex, h, w, 1, y, 0, 0, 1)
		copy(dst.Data[dstOff:dstOff+w], srcRow)
	}
	return nil
}

func preprocGrayF32(dst frame.TensorDesc, batchIndex int, f *frame.Frame) error {
	plane := f.Planes[0]
	h, w := dst.H(), dst.W()
	for y := 0; y < h; y++ {
		srcOff := y * plane.Stride
		dstOff := nhwcOffset(batchIndex, h, w, 1, y, 0, 0, 4)
		copy(dst.Data[dstOff:dstOff+w*4], plane.Data[srcOff:srcOff+w*4])
	}
	return nil
}

func preprocYUV(dst frame.TensorDesc, batchIndex int, f *frame.Frame) (*UVSideband, error) {
	if len(f.Planes) < 3 {
		return nil, fmt.Errorf("transcode: YUV planar frame needs 3 planes, got %d", len(f.Planes))
	}
	yPlane := f.Planes[0]
	h, w := dst.H(), dst.W()

	for y := 0; y < h; y++ {
		dstOff := nhwcOffset(batchIndex, h, w, 1, y, 0, 0, 4)
		for x := 0; x < w; x++ {
			v := yPlane.Data[y*yPlane.Stride+x]
			binary.LittleEndian.PutUint32(dst.Data[dstOff+x*4:dstOff+x*4+4], math.Float32bits(float32(v)))
		}
	}

	xDiv, yDiv := f.Format.ChromaSubsampling()
	chromaW, chromaH := ceilDiv(f.Width, xDiv), ceilDiv(f.Height, yDiv)

	uv := &UVSideband{
		SrcW: f.Width,
		SrcH: f.Height,
		U: planarrescale.Plane8{Data: f.Planes[1].Data, Stride: f.Planes[1].Stride, Width: chromaW, Height: chromaH},
		V: planarrescale.Plane8{Data: f.Planes[2].Data, Stride: f.Planes[2].Stride, Width: chromaW, Height: chromaH},
	}
	return uv, nil
}

// Postproc builds an output frame from the model's output tensor, reversing
// the conversion table and clamping float32->uint8 narrowing to [0,255].
// The output frame's width/height come from src; its pixel format matches
// orig's; PTS and metadata are copied from orig (spec.md §4.3).
func Postproc(src frame.TensorDesc, batchIndex int, orig *frame.Frame, uv *UVSideband) (*frame.Frame, error) {
	if batchIndex < 0 || batchIndex >= src.N() {
		return nil, fmt.Errorf("transcode: batch index %d out of range [0,%d)", batchIndex, src.N())
	}

	out := &frame.Frame{
		Format: orig.Format,
		Width:  src.W(),
		Height: src.H(),
		PTS:    orig.PTS,
	}
	orig.CopyMetadataTo(out)

	switch {
	case orig.Format == frame.PixRGB24 || orig.Format == frame.PixBGR24:
		postprocRGB(src, batchIndex, out)
	case orig.Format == frame.PixGRAY8:
		postprocGray8(src, batchIndex, out)
	case orig.Format == frame.PixGRAYF32:
		postprocGrayF32(src, batchIndex, out)
	case orig.Format.IsYUVPlanar():
		if uv == nil {
			return nil, fmt.Errorf("transcode: YUV postproc requires a UV sideband")
		}
		if err := postprocYUV(src, batchIndex, out, uv); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("transcode: unsupported pixel format %q", orig.Format)
	}
	return out, nil
}

func postprocRGB(src frame.TensorDesc, batchIndex int, out *frame.Frame) {
	h, w := src.H(), src.W()
	stride := w * 3
	data := make([]byte, stride*h)
	elemSize := src.ElemType.ByteSize()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			base := nhwcOffset(batchIndex, h, w, 3, y, x, 0, elemSize)
			r := readChannelClamped(src.Data, base, elemSize, src.ElemType)
			g := readChannelClamped(src.Data, base+elemSize, elemSize, src.ElemType)
			b := readChannelClamped(src.Data, base+2*elemSize, elemSize, src.ElemType)
			if out.Format == frame.PixBGR24 {
				b, r = r, b
			}
			data[y*stride+x*3] = r
			data[y*stride+x*3+1] = g
			data[y*stride+x*3+2] = b
		}
	}
	out.Planes = []frame.Plane{{Data: data, Stride: stride}}
}

func postprocGray8(src frame.TensorDesc, batchIndex int, out *frame.Frame) {
	h, w := src.H(), src.W()
	data := make([]byte, w*h)
	for y := 0; y < h; y++ {
		srcOff := nhwcOffset(batchIndex, h, w, 1, y, 0, 0, src.ElemType.ByteSize())
		for x := 0; x < w; x++ {
			data[y*w+x] = readChannelClamped(src.Data, srcOff+x*src.ElemType.ByteSize(), src.ElemType.ByteSize(), src.ElemType)
		}
	}
	out.Planes = []frame.Plane{{Data: data, Stride: w}}
}

func postprocGrayF32(src frame.TensorDesc, batchIndex int, out *frame.Frame) {
	h, w := src.H(), src.W()
	stride := w * 4
	data := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		srcOff := nhwcOffset(batchIndex, h, w, 1, y, 0, 0, 4)
		copy(data[y*stride:y*stride+stride], src.Data[srcOff:srcOff+stride])
	}
	out.Planes = []frame.Plane{{Data: data, Stride: stride}}
}

func postprocYUV(src frame.TensorDesc, batchIndex int, out *frame.Frame, uv *UVSideband) error {
	h, w := src.H(), src.W()
	yStride := w
	yData := make([]byte, yStride*h)
	elemSize := src.ElemType.ByteSize()

	for y := 0; y < h; y++ {
		srcOff := nhwcOffset(batchIndex, h, w, 1, y, 0, 0, elemSize)
		for x := 0; x < w; x++ {
			yData[y*yStride+x] = readChannelClamped(src.Data, srcOff+x*elemSize, elemSize, src.ElemType)
		}
	}

	xDiv, yDiv := out.Format.ChromaSubsampling()
	wantChromaW, wantChromaH := ceilDiv(w, xDiv), ceilDiv(h, yDiv)

	var uPlane, vPlane planarrescale.Plane8
	var err error
	if wantChromaW == uv.U.Width && wantChromaH == uv.U.Height {
		uPlane = planarrescale.CopyVerbatim(uv.U)
		vPlane = planarrescale.CopyVerbatim(uv.V)
	} else {
		uPlane, err = planarrescale.Rescale(uv.U, wantChromaW, wantChromaH)
		if err != nil {
			return fmt.Errorf("transcode: rescale U plane: %w", err)
		}
		vPlane, err = planarrescale.Rescale(uv.V, wantChromaW, wantChromaH)
		if err != nil {
			return fmt.Errorf("transcode: rescale V plane: %w", err)
		}
	}

	out.Planes = []frame.Plane{
		{Data: yData, Stride: yStride},
		{Data: uPlane.Data, Stride: uPlane.Stride},
		{Data: vPlane.Data, Stride: vPlane.Stride},
	}
	return nil
}

// nhwcOffset computes the byte offset of element (n, y, x, c) in an NHWC
// tensor buffer with the given logical H, W, C.
func nhwcOffset(n, h, w, c, y, x, ch, elemSize int) int {
	return ((n*h+y)*w+x)*c*elemSize + ch*elemSize
}

func writeChannel(data []byte, off, elemSize int, elemType frame.ElemType, v byte) {
	switch elemType {
	case frame.ElemUint8:
		data[off] = v
	case frame.ElemFloat32:
		binary.LittleEndian.PutUint32(data[off:off+4], math.Float32bits(float32(v)))
	}
}

func readChannelClamped(data []byte, off, elemSize int, elemType frame.ElemType) byte {
	switch elemType {
	case frame.ElemUint8:
		return data[off]
	case frame.ElemFloat32:
		v := math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
		return clampToUint8(v)
	}
	return 0
}

func clampToUint8(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v + 0.5)
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		b = 1
	}
	return (a + b - 1) / b
}
