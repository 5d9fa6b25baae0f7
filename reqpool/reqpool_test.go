package reqpool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstream/dnninfer/dnnbackend"
	"github.com/vidstream/dnninfer/dnnbackend/fakebackend"
	"github.com/vidstream/dnninfer/frame"
	"github.com/vidstream/dnninfer/inflight"
)

func testBackend() *fakebackend.Backend {
	desc := dnnbackend.IODesc{Channels: 1, Height: 2, Width: 2, ElemType: frame.ElemFloat32}
	return &fakebackend.Backend{InputDescV: desc, OutputDescV: desc}
}

func TestNewPoolPrimesFreeQueueAtCapacity(t *testing.T) {
	backend := testBackend()
	onComplete := func(slot *Slot, err error) {}
	pool, err := NewPool(backend, 3, 2, "out", onComplete)
	require.NoError(t, err)
	assert.Equal(t, 3, pool.free.Len())
}

func TestFillReportsFullAtBatchSize(t *testing.T) {
	backend := testBackend()
	pool, err := NewPool(backend, 1, 2, "out", func(slot *Slot, err error) {})
	require.NoError(t, err)

	slot, err := pool.Lease(context.Background())
	require.NoError(t, err)

	e1 := &PackedEntry{Entry: &inflight.Entry{}}
	e2 := &PackedEntry{Entry: &inflight.Entry{}}

	assert.False(t, pool.Fill(slot, e1))
	assert.True(t, pool.Fill(slot, e2))
	assert.Equal(t, 2, slot.Count)
	assert.Len(t, slot.Packed, 2)
}

func TestReturnFillingJumpsTheQueue(t *testing.T) {
	backend := testBackend()
	pool, err := NewPool(backend, 2, 2, "out", func(slot *Slot, err error) {})
	require.NoError(t, err)

	slotA, err := pool.Lease(context.Background())
	require.NoError(t, err)
	slotB, err := pool.Lease(context.Background())
	require.NoError(t, err)

	pool.free.Push(slotA)
	pool.ReturnFilling(slotB)

	leased, err := pool.Lease(context.Background())
	require.NoError(t, err)
	assert.Equal(t, slotB.ID, leased.ID)
}

func TestReleaseResetsSlotAndReturnsToFreeQueue(t *testing.T) {
	backend := testBackend()
	pool, err := NewPool(backend, 1, 2, "out", func(slot *Slot, err error) {})
	require.NoError(t, err)

	slot, err := pool.Lease(context.Background())
	require.NoError(t, err)
	pool.Fill(slot, &PackedEntry{Entry: &inflight.Entry{}})

	pool.Release(slot)
	assert.Equal(t, 0, slot.Count)
	assert.Len(t, slot.Packed, 0)
	assert.Equal(t, 1, pool.free.Len())
}

func TestDispatchInvokesBoundTrampoline(t *testing.T) {
	backend := testBackend()
	done := make(chan error, 1)
	pool, err := NewPool(backend, 1, 1, "out", func(slot *Slot, err error) {
		done <- err
	})
	require.NoError(t, err)

	slot, err := pool.Lease(context.Background())
	require.NoError(t, err)
	pool.Fill(slot, &PackedEntry{Entry: &inflight.Entry{}})

	require.NoError(t, pool.Dispatch(slot))
	assert.NoError(t, <-done)
}
