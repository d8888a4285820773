package retry

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adams-okode/messaging-gateway-service/internal/model"
	"github.com/adams-okode/messaging-gateway-service/internal/queue"
	"github.com/adams-okode/messaging-gateway-service/internal/repo"
)

// Sweeper periodically republishes pending records whose retry counter is
// still below the configured ceiling. It drives redelivery from the store,
// outside the transport's own at-most-once publish path.
type Sweeper struct {
	interval   time.Duration
	batchSize  int
	maxRetries int
	store      repo.MessageRepository
	transport  queue.Transport

	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(interval time.Duration, batchSize, maxRetries int, store repo.MessageRepository, transport queue.Transport) (*Sweeper, error) {
	if interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}
	if batchSize <= 0 {
		return nil, errors.New("batch size must be > 0")
	}
	if maxRetries <= 0 {
		return nil, errors.New("max retries must be > 0")
	}
	if store == nil || transport == nil {
		return nil, errors.New("store and transport must not be nil")
	}
	return &Sweeper{
		interval:   interval,
		batchSize:  batchSize,
		maxRetries: maxRetries,
		store:      store,
		transport:  transport,
		done:       make(chan struct{}),
	}, nil
}

func (s *Sweeper) Start() bool {
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

		slog.Info("retry sweeper started", "interval", s.interval.String(), "maxRetries", s.maxRetries)

		s.safeSweep(ctx)

		for {
			select {
			case <-ctx.Done():
				slog.Info("retry sweeper stopping")
				return
			case <-ticker.C:
				s.safeSweep(ctx)
			}
		}
	}()

	return true
}

func (s *Sweeper) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.done
	s.running.Store(false)

	slog.Info("retry sweeper stopped")
	return true
}

func (s *Sweeper) IsRunning() bool {
	return s.running.Load()
}

func (s *Sweeper) safeSweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("retry sweep panic recovered", "panic", r)
		}
	}()

	start := time.Now()
	republished := s.sweep(ctx)
	slog.Info("retry sweep completed", "republished", republished, "duration_ms", time.Since(start).Milliseconds())
}

// sweep republishes one batch of eligible records and reports how many made
// it back onto the queue. Publish failures are logged and skipped; the
// record stays eligible for the next sweep.
func (s *Sweeper) sweep(ctx context.Context) int {
	msgs, err := s.store.FindEligibleToRetry(ctx, model.Pending, s.maxRetries, s.batchSize, 0)
	if err != nil {
		slog.Error("retry sweep query failed", "error", err)
		return 0
	}

	republished := 0
	for _, m := range msgs {
		if err := s.transport.Publish(ctx, queue.FromMessage(m)); err != nil {
			slog.Error("retry republish failed", "id", m.ID, "error", err)
			continue
		}
		republished++
	}
	return republished
}
