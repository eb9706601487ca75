package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Pinger is anything whose reachability can be checked, such as *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// AvailabilityProbe periodically pings the store and remembers the outcome.
// Services read it through StoreAvailable instead of a global flag.
type AvailabilityProbe struct {
	store     Pinger
	interval  time.Duration
	timeout   time.Duration
	available atomic.Bool
}

func NewAvailabilityProbe(store Pinger, interval time.Duration) *AvailabilityProbe {
	p := &AvailabilityProbe{
		store:    store,
		interval: interval,
		timeout:  2 * time.Second,
	}
	p.available.Store(true)
	return p
}

func (p *AvailabilityProbe) StoreAvailable() bool {
	return p.available.Load()
}

func (p *AvailabilityProbe) Start(ctx context.Context) {
	slog.Info("starting availability probe", "interval", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("availability probe stopped")
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Check pings the store once and records the result.
func (p *AvailabilityProbe) Check(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.store.PingContext(pingCtx)
	up := err == nil
	if was := p.available.Swap(up); was != up {
		if up {
			slog.Info("store available again")
		} else {
			slog.Error("store unavailable, entering degraded mode", "error", err)
		}
	}
	return up
}
