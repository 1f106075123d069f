package payment

import (
	"context"
	"time"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/logger"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/metrics"
)

// Sweeper cancels payments that never reached a terminal state. Nothing else
// in the system drives GetProcessingOlderThan, so the sweeper owns it.
type Sweeper struct {
	repo       Repository
	interval   time.Duration
	staleAfter time.Duration
}

func NewSweeper(repo Repository, interval, staleAfter time.Duration) *Sweeper {
	return &Sweeper{
		repo:       repo,
		interval:   interval,
		staleAfter: staleAfter,
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	logger.Info("Payment sweeper started",
		"interval", s.interval, "stale_after", s.staleAfter)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Payment sweeper stopped")
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				logger.Errorf("Payment sweep failed: %v", err)
			} else if n > 0 {
				logger.Info("Swept stale payments", "count", n)
			}
		}
	}
}

// SweepOnce cancels every stale open payment and reports how many it handled.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	minutes := int(s.staleAfter.Minutes())
	stale, err := s.repo.GetProcessingOlderThan(ctx, minutes)
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range stale {
		p := &stale[i]
		if err := p.Cancel(); err != nil {
			logger.Errorf("Cannot cancel stale payment %d: %v", p.ID, err)
			continue
		}
		p.setExtra("cancel_reason", "payment timed out")

		if err := s.repo.Update(ctx, p); err != nil {
			logger.Errorf("Failed to persist swept payment %d: %v", p.ID, err)
			continue
		}
		metrics.StalePaymentsSwept.Inc()
		swept++
	}

	return swept, nil
}
