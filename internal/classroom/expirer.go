package classroom

import (
	"context"
	"time"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/logger"
)

// Expirer periodically closes rooms whose expiry has passed.
type Expirer struct {
	service  Service
	interval time.Duration
}

func NewExpirer(service Service, interval time.Duration) *Expirer {
	return &Expirer{service: service, interval: interval}
}

func (e *Expirer) Start(ctx context.Context) {
	logger.Info("Classroom expirer started", "interval", e.interval)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Classroom expirer stopped")
			return
		case <-ticker.C:
			if err := e.service.ExpireStale(ctx); err != nil {
				logger.Errorf("Classroom expiry sweep failed: %v", err)
			}
		}
	}
}
