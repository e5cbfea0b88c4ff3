package events

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmitter(t *testing.T, buffer int) *Emitter {
	t.Helper()
	e, err := NewEmitter(buffer, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	return e
}

func TestEmitAssignsIncreasingSequence(t *testing.T) {
	e := newTestEmitter(t, 8)
	for _, k := range []Kind{KindLocation, KindNavigationProgress, KindRealtime} {
		require.NoError(t, e.Emit(Event{Kind: k, CorrelationID: "c1"}))
	}
	e.Close()

	var seqs []uint64
	for evt := range e.Events() {
		seqs = append(seqs, evt.Seq)
	}
	assert.Equal(t, []uint64{1, 2, 3}, seqs)
}

func TestConcurrentEmittersDoNotInterleave(t *testing.T) {
	e := newTestEmitter(t, 1)
	const producers, perProducer = 4, 50

	var received []Event
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for evt := range e.Events() {
			received = append(received, evt)
		}
	}()

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				assert.NoError(t, e.Emit(Event{Kind: KindLocation, Data: [2]int{p, i}}))
			}
		}()
	}
	wg.Wait()
	e.Close()
	<-consumed

	require.Len(t, received, producers*perProducer)
	last := make(map[int]int)
	for i, evt := range received {
		assert.Equal(t, uint64(i+1), evt.Seq)
		pi := evt.Data.([2]int)
		if prev, ok := last[pi[0]]; ok {
			assert.Greater(t, pi[1], prev, "producer %d out of order", pi[0])
		}
		last[pi[0]] = pi[1]
	}
}

func TestEmitIfDropsStaleEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	e, err := NewEmitter(4, slog.New(slog.NewTextHandler(io.Discard, nil)), reg)
	require.NoError(t, err)

	ok, err := e.EmitIf(Event{Kind: KindLocation}, func() bool { return false })
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.EmitIf(Event{Kind: KindLocation}, func() bool { return true })
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, 1.0, testutil.ToFloat64(e.dropped.WithLabelValues("location")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.emitted.WithLabelValues("location")))

	evt := <-e.Events()
	assert.Equal(t, uint64(1), evt.Seq, "dropped events do not consume a sequence number")
}

func TestCloseUnblocksPendingEmit(t *testing.T) {
	e := newTestEmitter(t, 1)
	require.NoError(t, e.Emit(Event{Kind: KindRealtime}))

	errCh := make(chan error, 1)
	go func() { errCh <- e.Emit(Event{Kind: KindRealtime}) }()

	select {
	case <-errCh:
		t.Fatal("emit should block while the buffer is full")
	case <-time.After(20 * time.Millisecond):
	}

	e.Close()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("close did not unblock the pending emit")
	}

	assert.ErrorIs(t, e.Emit(Event{Kind: KindRealtime}), ErrClosed)
	e.Close()
}

func TestSyncWaitsForInFlightEmission(t *testing.T) {
	e := newTestEmitter(t, 1)
	require.NoError(t, e.Emit(Event{Kind: KindLocation}))

	go func() { _ = e.Emit(Event{Kind: KindLocation}) }()
	time.Sleep(10 * time.Millisecond)

	synced := make(chan struct{})
	go func() {
		e.Sync()
		close(synced)
	}()

	select {
	case <-synced:
		t.Fatal("sync returned while an emission was blocked")
	case <-time.After(20 * time.Millisecond):
	}

	<-e.Events()
	select {
	case <-synced:
	case <-time.After(time.Second):
		t.Fatal("sync did not return after the emission completed")
	}
	e.Close()
}

func TestKindIsValid(t *testing.T) {
	assert.True(t, KindGeofenceExit.IsValid())
	assert.False(t, Kind("weather").IsValid())
}
