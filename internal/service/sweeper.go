package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository"
)

// ExpirySweeper periodically persists the EXPIRED transition for stale
// reservations. Reads already treat past-expiry rows as expired, so the
// sweeper only keeps the stored state from lagging indefinitely.
type ExpirySweeper struct {
	reservations repository.ReservationRepository
	interval     time.Duration
	log          *logrus.Logger
	now          func() time.Time
}

// NewExpirySweeper creates a new ExpirySweeper.
func NewExpirySweeper(reservations repository.ReservationRepository, interval time.Duration, log *logrus.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		reservations: reservations,
		interval:     interval,
		log:          log,
		now:          time.Now,
	}
}

// Run sweeps until the context is cancelled. Intended to run in its own
// goroutine.
func (s *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single expiry pass.
func (s *ExpirySweeper) Sweep(ctx context.Context) {
	count, err := s.reservations.ExpireStale(ctx, s.now())
	if err != nil {
		s.log.WithError(err).Error("reservation expiry sweep failed")
		return
	}
	if count > 0 {
		s.log.WithFields(logrus.Fields{"count": count}).Info("expired stale reservations")
	}
}
