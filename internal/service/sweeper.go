package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PendingDeleteSweeper periodically finishes image deletes that were left
// pending, covering cleanup messages that were lost or exhausted.
type PendingDeleteSweeper struct {
	images   *ImageService
	interval time.Duration
	grace    time.Duration
	log      *zap.Logger
}

func NewPendingDeleteSweeper(images *ImageService, interval, grace time.Duration, log *zap.Logger) *PendingDeleteSweeper {
	return &PendingDeleteSweeper{
		images:   images,
		interval: interval,
		grace:    grace,
		log:      log,
	}
}

// Run blocks until ctx is cancelled
func (s *PendingDeleteSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info("Pending delete sweeper is disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Stopping pending delete sweeper")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *PendingDeleteSweeper) sweep(ctx context.Context) {
	completed, err := s.images.SweepPendingDeletes(ctx, s.grace)
	if err != nil {
		s.log.Error("Pending delete sweep failed", zap.Error(err))
		return
	}
	if completed > 0 {
		s.log.Info("Completed pending image deletes", zap.Int("count", completed))
	}
}
