package worker

import (
	"context"
	"log/slog"
	"sync"
)

// Dispatcher runs fire-and-forget tasks. Callers never join a task; a failed
// task is only logged. Wait exists for shutdown draining and tests.
type Dispatcher struct {
	wg sync.WaitGroup
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Go starts fn on its own goroutine with a context that is never cancelled,
// so the task runs until its own timeout or retry budget is exhausted.
func (d *Dispatcher) Go(name string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("background task panicked", "task", name, "panic", r)
			}
		}()

		if err := fn(context.Background()); err != nil {
			slog.Error("background task failed", "task", name, "error", err)
			return
		}
		slog.Debug("background task done", "task", name)
	}()
}

// Wait blocks until every dispatched task has returned or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
