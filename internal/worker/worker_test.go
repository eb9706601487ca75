package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_RunsTasksWithoutJoiningCaller(t *testing.T) {
	d := NewDispatcher()
	release := make(chan struct{})
	var ran atomic.Int32

	d.Go("blocked", func(ctx context.Context) error {
		<-release
		ran.Add(1)
		return nil
	})
	d.Go("failing", func(ctx context.Context) error {
		ran.Add(1)
		return errors.New("boom")
	})
	d.Go("panicking", func(ctx context.Context) error {
		ran.Add(1)
		panic("unexpected")
	})

	shortCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(shortCtx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, d.Wait(context.Background()))
	assert.EqualValues(t, 3, ran.Load())
}

type fakePinger struct {
	err error
}

func (f *fakePinger) PingContext(ctx context.Context) error {
	return f.err
}

func TestAvailabilityProbe_TracksStore(t *testing.T) {
	store := &fakePinger{}
	probe := NewAvailabilityProbe(store, time.Hour)
	assert.True(t, probe.StoreAvailable())

	store.err = errors.New("connection refused")
	assert.False(t, probe.Check(context.Background()))
	assert.False(t, probe.StoreAvailable())

	store.err = nil
	assert.True(t, probe.Check(context.Background()))
	assert.True(t, probe.StoreAvailable())
}

func TestAvailabilityProbe_StopsOnCancel(t *testing.T) {
	probe := NewAvailabilityProbe(&fakePinger{}, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		probe.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("probe did not stop")
	}
}
