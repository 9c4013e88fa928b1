package cleanup

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper purges trashed transcripts that have outlived their retention
// window. Implemented by the transcript lifecycle service.
type Sweeper interface {
	SweepExpired(ctx context.Context, owner string) (int, error)
}

// Service runs the retention sweep on a fixed interval so expired trash is
// purged even when nobody opens the trash view.
type Service struct {
	sweeper       Sweeper
	sweepInterval time.Duration
	cancel        context.CancelFunc
}

// NewService creates a new retention sweep service
func NewService(sweeper Sweeper, sweepInterval time.Duration) *Service {
	return &Service{
		sweeper:       sweeper,
		sweepInterval: sweepInterval,
	}
}

// Start begins the periodic sweep
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	// Run initial sweep
	s.sweep(ctx)

	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-ctx.Done():
				logrus.Info("Retention sweep service stopped")
				return
			}
		}
	}()

	logrus.WithField("interval", s.sweepInterval).Info("Retention sweep service started")
}

// Stop stops the sweep service
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// sweep runs one pass over all owners
func (s *Service) sweep(ctx context.Context) {
	purged, err := s.sweeper.SweepExpired(ctx, "")
	if err != nil {
		logrus.WithError(err).Warn("Retention sweep failed")
		return
	}
	if purged > 0 {
		logrus.WithField("purged", purged).Info("Retention sweep purged expired transcripts")
	}
}
