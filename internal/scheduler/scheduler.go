package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler fires tickFn on a fixed period, single-flight: a tick that
// arrives while a previous run is still in progress is dropped, never
// queued. Dropped ticks are counted for observability.
type Scheduler struct {
	interval time.Duration
	tickFn   func(context.Context) error

	running  atomic.Bool
	inFlight atomic.Bool
	skipped  atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	ticks  sync.WaitGroup
}

func New(interval time.Duration, tickFn func(context.Context) error) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}
	if tickFn == nil {
		return nil, errors.New("tickFn must not be nil")
	}
	return &Scheduler{
		interval: interval,
		tickFn:   tickFn,
		done:     make(chan struct{}),
	}, nil
}

func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		slog.Info("scheduler started", "interval", s.interval.String())

		s.fire(ctx)

		for {
			select {
			case <-ctx.Done():
				slog.Info("scheduler stopping")
				return
			case <-ticker.C:
				s.fire(ctx)
			}
		}
	}()

	return true
}

// Stop cancels the tick loop and waits for an in-flight run to finish.
// A running cycle is never aborted mid-flight.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.done
	s.ticks.Wait()
	s.running.Store(false)

	slog.Info("scheduler stopped")
	return true
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// SkippedTicks reports how many ticks were dropped because a previous run
// was still in flight.
func (s *Scheduler) SkippedTicks() int64 {
	return s.skipped.Load()
}

// fire launches one run unless the previous one is still in progress.
func (s *Scheduler) fire(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		slog.Warn("scheduler tick skipped, previous run still in flight")
		return
	}

	s.ticks.Add(1)
	go func() {
		defer s.ticks.Done()
		defer s.inFlight.Store(false)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("scheduler tick panic recovered", "panic", r)
			}
		}()

		start := time.Now()
		if err := s.tickFn(ctx); err != nil {
			// Swallowed: ticks are self-healing, the next one retries.
			slog.Error("scheduler tick failed", "err", err, "duration_ms", time.Since(start).Milliseconds())
			return
		}
		slog.Info("scheduler tick completed", "duration_ms", time.Since(start).Milliseconds())
	}()
}
