package stage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstream/dnninfer/dnnbackend"
	"github.com/vidstream/dnninfer/dnnbackend/fakebackend"
	"github.com/vidstream/dnninfer/engine"
	"github.com/vidstream/dnninfer/frame"
)

type fakeUpstream struct {
	frames []*frame.Frame
	idx    int
}

func (u *fakeUpstream) TryNext() (*frame.Frame, bool) {
	if u.idx >= len(u.frames) {
		return nil, false
	}
	f := u.frames[u.idx]
	u.idx++
	return f, true
}

type fakeDownstream struct {
	pushed []*frame.Frame
	eosPTS time.Duration
	sawEOS bool
}

func (d *fakeDownstream) Push(f *frame.Frame) { d.pushed = append(d.pushed, f) }
func (d *fakeDownstream) SignalEndOfStream(pts time.Duration) {
	d.sawEOS = true
	d.eosPTS = pts
}

func grayFrame(pts time.Duration) *frame.Frame {
	return &frame.Frame{
		Format: frame.PixGRAYF32,
		Width:  2,
		Height: 2,
		Planes: []frame.Plane{{Data: make([]byte, 16), Stride: 8}},
		PTS:    pts,
	}
}

func newSyncStage(t *testing.T) *Stage {
	t.Helper()
	desc := dnnbackend.IODesc{Channels: 1, Height: 2, Width: 2, ElemType: frame.ElemFloat32}
	backend := &fakebackend.Backend{InputDescV: desc, OutputDescV: desc}
	e, err := engine.New(backend, false, 1, 1, "out")
	require.NoError(t, err)
	return New("test-stage", e)
}

func TestActivateForwardsAllFrames(t *testing.T) {
	s := newSyncStage(t)
	up := &fakeUpstream{frames: []*frame.Frame{grayFrame(0), grayFrame(1 * time.Millisecond)}}
	down := &fakeDownstream{}

	s.Activate(context.Background(), up, down)

	require.Len(t, down.pushed, 2)
	assert.Equal(t, time.Duration(0), down.pushed[0].PTS)
	assert.Equal(t, 1*time.Millisecond, down.pushed[1].PTS)
	assert.False(t, down.sawEOS)
}

func TestSignalEndOfStreamUsesLastDrainedPTS(t *testing.T) {
	s := newSyncStage(t)
	up := &fakeUpstream{frames: []*frame.Frame{grayFrame(5 * time.Millisecond)}}
	down := &fakeDownstream{}

	s.Activate(context.Background(), up, down)
	require.NoError(t, s.SignalEndOfStream(context.Background(), down, 99*time.Millisecond))

	assert.True(t, down.sawEOS)
	assert.Equal(t, 5*time.Millisecond, down.eosPTS)
}

func TestSignalEndOfStreamFallsBackWhenNothingDrained(t *testing.T) {
	s := newSyncStage(t)
	down := &fakeDownstream{}

	require.NoError(t, s.SignalEndOfStream(context.Background(), down, 42*time.Millisecond))

	assert.True(t, down.sawEOS)
	assert.Equal(t, 42*time.Millisecond, down.eosPTS)
}

func TestSignalEndOfStreamIsAtMostOnce(t *testing.T) {
	s := newSyncStage(t)
	down := &fakeDownstream{}

	require.NoError(t, s.SignalEndOfStream(context.Background(), down, 1*time.Millisecond))
	down.sawEOS = false

	require.NoError(t, s.SignalEndOfStream(context.Background(), down, 2*time.Millisecond))
	assert.False(t, down.sawEOS, "second SignalEndOfStream call must be a no-op")
}
