package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type expiredStore interface {
	SweepExpired(ctx context.Context) (int, error)
}

// Sweeper periodically removes expired OTP records. It is owned by the process
// lifecycle: Start launches the background loop, Stop halts it and waits for
// the in-flight sweep to finish. The interval must not exceed the OTP window;
// any interval up to the window only reduces churn, never correctness.
type Sweeper struct {
	store    expiredStore
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewSweeper(store expiredStore, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. ctx bounds each individual sweep.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the loop and blocks until it has exited. Safe to call twice.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.store.SweepExpired(ctx)
	if err != nil {
		slog.Warn("otp sweep failed", "err", err)
		return
	}
	if removed > 0 {
		slog.Info("swept expired otps", "removed", removed)
	}
}
