package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type discountExpirer interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type DiscountExpiryJobParams struct {
	Logger     *logger.Logger
	Repository discountExpirer
}

// NewDiscountExpiryJob switches off codes whose validity window has closed.
func NewDiscountExpiryJob(params DiscountExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	return &discountExpiryJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type discountExpiryJob struct {
	logg *logger.Logger
	repo discountExpirer
	now  func() time.Time
}

func (j *discountExpiryJob) Name() string { return "discount-expiry" }

func (j *discountExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	updated, err := j.repo.DeactivateExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("discount expiry: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "rows_updated", updated), "expired discounts deactivated")
	return nil
}
