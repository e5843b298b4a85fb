package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type idleCartPurger interface {
	PurgeIdle(ctx context.Context, cutoff time.Time) (int64, error)
}

type CartPurgeJobParams struct {
	Logger *logger.Logger
	Sink   idleCartPurger
	// IdleFor is how long a snapshot may go unwritten before it is dropped.
	IdleFor time.Duration
}

// NewCartPurgeJob drops database cart snapshots nobody has touched for IdleFor. The redis
// backend expires keys on its own and does not need this job.
func NewCartPurgeJob(params CartPurgeJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sink == nil {
		return nil, fmt.Errorf("cart sink required")
	}
	if params.IdleFor <= 0 {
		return nil, fmt.Errorf("idle window must be positive")
	}
	return &cartPurgeJob{
		logg:    params.Logger,
		sink:    params.Sink,
		idleFor: params.IdleFor,
		now:     time.Now,
	}, nil
}

type cartPurgeJob struct {
	logg    *logger.Logger
	sink    idleCartPurger
	idleFor time.Duration
	now     func() time.Time
}

func (j *cartPurgeJob) Name() string { return "cart-snapshot-purge" }

func (j *cartPurgeJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.idleFor)
	deleted, err := j.sink.PurgeIdle(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cart snapshot purge: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "idle cart snapshots purged")
	return nil
}
