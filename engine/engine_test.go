package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/vidstream/dnninfer/dnnbackend"
	"github.com/vidstream/dnninfer/dnnbackend/fakebackend"
	"github.com/vidstream/dnninfer/frame"
)

func grayF32Frame(w, h int, pts time.Duration, fill byte) *frame.Frame {
	stride := w * 4
	data := make([]byte, stride*h)
	for i := range data {
		data[i] = fill
	}
	return &frame.Frame{
		Format: frame.PixGRAYF32,
		Width:  w,
		Height: h,
		Planes: []frame.Plane{{Data: data, Stride: stride}},
		PTS:    pts,
	}
}

func grayF32Backend(h, w int) *fakebackend.Backend {
	desc := dnnbackend.IODesc{Channels: 1, Height: h, Width: w, ElemType: frame.ElemFloat32}
	return &fakebackend.Backend{InputDescV: desc, OutputDescV: desc}
}

func TestBatchSaturationPreservesOrder(t *testing.T) {
	backend := grayF32Backend(2, 2)
	e, err := New(backend, true, 2, 4, "out")
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 9; i++ {
		require.NoError(t, e.Submit(ctx, grayF32Frame(2, 2, time.Duration(i)*time.Millisecond, byte(i))))
	}
	require.NoError(t, e.Flush(ctx))

	var gotPTS []time.Duration
	for {
		f, ok := e.Poll()
		if !ok {
			break
		}
		require.NotNil(t, f)
		gotPTS = append(gotPTS, f.PTS)
	}
	require.Len(t, gotPTS, 9)
	for i, pts := range gotPTS {
		assert.Equal(t, time.Duration(i)*time.Millisecond, pts)
	}
}

func TestOutOfOrderCompletionStillPollsInOrder(t *testing.T) {
	backend := grayF32Backend(2, 2)
	backend.DelayFor = func(n int) time.Duration {
		if n%2 == 0 {
			return 20 * time.Millisecond
		}
		return 0
	}
	e, err := New(backend, true, 4, 1, "out")
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		require.NoError(t, e.Submit(ctx, grayF32Frame(2, 2, time.Duration(i)*time.Millisecond, byte(i))))
	}
	require.NoError(t, e.Flush(ctx))

	var gotPTS []time.Duration
	for {
		f, ok := e.Poll()
		if !ok {
			break
		}
		gotPTS = append(gotPTS, f.PTS)
	}
	require.Len(t, gotPTS, 8)
	for i, pts := range gotPTS {
		assert.Equal(t, time.Duration(i)*time.Millisecond, pts)
	}
}

func TestMidStreamErrorDropsOneFrameAndContinues(t *testing.T) {
	backend := grayF32Backend(2, 2)
	backend.FailDispatch = func(n int) error {
		if n == 2 {
			return errDispatchFailure
		}
		return nil
	}
	e, err := New(backend, true, 4, 1, "out")
	require.NoError(t, err)
	ctx := context.Background()

	const total = 6
	for i := 0; i < total; i++ {
		_ = e.Submit(ctx, grayF32Frame(2, 2, time.Duration(i)*time.Millisecond, byte(i)))
	}
	require.NoError(t, e.Flush(ctx))

	var gotPTS []time.Duration
	var sawNull bool
	for {
		f, ok := e.Poll()
		if !ok {
			break
		}
		if f == nil {
			sawNull = true
			continue
		}
		gotPTS = append(gotPTS, f.PTS)
	}
	assert.True(t, sawNull, "expected the failed dispatch to surface a null frame")
	require.Len(t, gotPTS, total-1)
	for i, pts := range gotPTS {
		want := time.Duration(i) * time.Millisecond
		if i >= 2 {
			want = time.Duration(i+1) * time.Millisecond
		}
		assert.Equal(t, want, pts)
	}
}

func TestSyncAndAsyncAreNumericallyIdentical(t *testing.T) {
	frames := make([]*frame.Frame, 5)
	for i := range frames {
		frames[i] = grayF32Frame(2, 2, time.Duration(i)*time.Millisecond, byte(i*10))
	}

	syncEngine, err := New(grayF32Backend(2, 2), false, 1, 1, "out")
	require.NoError(t, err)
	asyncEngine, err := New(grayF32Backend(2, 2), true, 2, 2, "out")
	require.NoError(t, err)
	ctx := context.Background()

	var syncOut, asyncOut []*frame.Frame
	for _, f := range frames {
		cp := *f
		require.NoError(t, syncEngine.Submit(ctx, &cp))
	}
	for {
		f, ok := syncEngine.Poll()
		if !ok {
			break
		}
		syncOut = append(syncOut, f)
	}

	for _, f := range frames {
		cp := *f
		require.NoError(t, asyncEngine.Submit(ctx, &cp))
	}
	require.NoError(t, asyncEngine.Flush(ctx))
	for {
		f, ok := asyncEngine.Poll()
		if !ok {
			break
		}
		asyncOut = append(asyncOut, f)
	}

	require.Len(t, syncOut, len(frames))
	require.Len(t, asyncOut, len(frames))

	var diffs []float64
	for i := range syncOut {
		a, b := syncOut[i].Planes[0].Data, asyncOut[i].Planes[0].Data
		require.Equal(t, len(a), len(b))
		for j := range a {
			diffs = append(diffs, math.Abs(float64(int(a[j])-int(b[j]))))
		}
	}
	assert.Equal(t, 0.0, stat.Mean(diffs, nil))
}

var errDispatchFailure = &stubError{"dispatch failed"}

type stubError struct{ msg string }

func (e *stubError) Error() string { return e.msg }
