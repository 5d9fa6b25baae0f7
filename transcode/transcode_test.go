package transcode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstream/dnninfer/dnnbackend"
	"github.com/vidstream/dnninfer/frame"
)

func makeRGBFrame(w, h int) *frame.Frame {
	stride := w * 3
	data := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			data[y*stride+x*3] = byte((x + y) % 256)
			data[y*stride+x*3+1] = byte(x % 256)
			data[y*stride+x*3+2] = byte(y % 256)
		}
	}
	return &frame.Frame{
		Format: frame.PixRGB24,
		Width:  w,
		Height: h,
		Planes: []frame.Plane{{Data: data, Stride: stride}},
		PTS:    42 * time.Millisecond,
	}
}

func makeTensorBuf(batch, c, h, w int, elemType frame.ElemType) frame.TensorDesc {
	return frame.TensorDesc{
		ElemType: elemType,
		Shape:    [4]int{batch, c, h, w},
		Data:     make([]byte, batch*c*h*w*elemType.ByteSize()),
		Layout:   frame.LayoutNHWC,
	}
}

func TestValidateCompatAcceptsMatchingRGB(t *testing.T) {
	desc := dnnbackend.IODesc{Channels: 3, Height: 64, Width: 64, ElemType: frame.ElemFloat32}
	assert.NoError(t, ValidateCompat(frame.PixRGB24, 64, 64, desc))
}

func TestValidateCompatRejectsChannelMismatch(t *testing.T) {
	desc := dnnbackend.IODesc{Channels: 1, Height: 64, Width: 64, ElemType: frame.ElemFloat32}
	assert.Error(t, ValidateCompat(frame.PixRGB24, 64, 64, desc))
}

func TestValidateCompatAllowsDynamicDims(t *testing.T) {
	desc := dnnbackend.IODesc{Channels: 3, Height: dnnbackend.DynamicDim, Width: dnnbackend.DynamicDim, ElemType: frame.ElemFloat32}
	assert.NoError(t, ValidateCompat(frame.PixRGB24, 128, 96, desc))
}

func TestValidateCompatRejectsWrongElemTypeForGray8(t *testing.T) {
	desc := dnnbackend.IODesc{Channels: 1, Height: 32, Width: 32, ElemType: frame.ElemFloat32}
	assert.Error(t, ValidateCompat(frame.PixGRAY8, 32, 32, desc))
}

func TestPreprocPostprocRGBRoundTrip(t *testing.T) {
	f := makeRGBFrame(4, 3)
	buf := makeTensorBuf(2, 3, 3, 4, frame.ElemFloat32)

	uv, err := Preproc(buf, 1, f)
	require.NoError(t, err)
	assert.Nil(t, uv)

	out, err := Postproc(buf, 1, f, nil)
	require.NoError(t, err)
	assert.Equal(t, f.Width, out.Width)
	assert.Equal(t, f.Height, out.Height)
	assert.Equal(t, f.PTS, out.PTS)
	assert.Equal(t, f.Planes[0].Data, out.Planes[0].Data)
}

func TestPreprocBGRSwapsChannelOrder(t *testing.T) {
	f := makeRGBFrame(2, 2)
	f.Format = frame.PixBGR24
	buf := makeTensorBuf(1, 3, 2, 2, frame.ElemUint8)

	_, err := Preproc(buf, 0, f)
	require.NoError(t, err)
	// Pixel (1,1) is stored as B,G,R at bytes 9..11; the tensor holds R,G,B.
	assert.Equal(t, f.Planes[0].Data[11], buf.Data[9])
	assert.Equal(t, f.Planes[0].Data[9], buf.Data[11])

	out, err := Postproc(buf, 0, f, nil)
	require.NoError(t, err)
	assert.Equal(t, f.Planes[0].Data, out.Planes[0].Data)
}

func TestPreprocRejectsOutOfRangeBatchIndex(t *testing.T) {
	f := makeRGBFrame(2, 2)
	buf := makeTensorBuf(1, 3, 2, 2, frame.ElemFloat32)
	_, err := Preproc(buf, 5, f)
	assert.Error(t, err)
}

func TestYUVPreprocPostprocWithMatchingChroma(t *testing.T) {
	w, h := 4, 4
	yData := make([]byte, w*h)
	uData := make([]byte, (w/2)*(h/2))
	vData := make([]byte, (w/2)*(h/2))
	for i := range yData {
		yData[i] = byte(i * 7 % 256)
	}
	for i := range uData {
		uData[i] = byte(i*3 + 10)
		vData[i] = byte(i*5 + 20)
	}
	f := &frame.Frame{
		Format: frame.PixYUV420P,
		Width:  w,
		Height: h,
		Planes: []frame.Plane{
			{Data: yData, Stride: w},
			{Data: uData, Stride: w / 2},
			{Data: vData, Stride: w / 2},
		},
		PTS: 7 * time.Millisecond,
	}

	buf := makeTensorBuf(1, 1, h, w, frame.ElemFloat32)
	uv, err := Preproc(buf, 0, f)
	require.NoError(t, err)
	require.NotNil(t, uv)
	assert.Equal(t, w/2, uv.U.Width)
	assert.Equal(t, h/2, uv.U.Height)

	out, err := Postproc(buf, 0, f, uv)
	require.NoError(t, err)
	require.Len(t, out.Planes, 3)
	assert.Equal(t, yData, out.Planes[0].Data)
	assert.Equal(t, uData, out.Planes[1].Data)
	assert.Equal(t, vData, out.Planes[2].Data)
}

func TestYUVPostprocRejectsMissingSideband(t *testing.T) {
	f := &frame.Frame{Format: frame.PixYUV420P, Width: 2, Height: 2}
	buf := makeTensorBuf(1, 1, 2, 2, frame.ElemFloat32)
	_, err := Postproc(buf, 0, f, nil)
	assert.Error(t, err)
}

func TestClampToUint8(t *testing.T) {
	assert.Equal(t, byte(0), clampToUint8(-5))
	assert.Equal(t, byte(255), clampToUint8(300))
	assert.Equal(t, byte(128), clampToUint8(127.6))
}
