package discounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Reasons reported when a known code cannot be used right now.
const (
	ReasonInactive   = "inactive"
	ReasonNotStarted = "not_started"
	ReasonExpired    = "expired"
)

type Service interface {
	Validate(ctx context.Context, code string) (*DiscountDTO, error)
	Quote(ctx context.Context, code string, subtotal decimal.Decimal) (*Quote, error)
}

type ServiceParams struct {
	Repo *Repository
	Now  func() time.Time
}

type service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("discounts repo required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{repo: params.Repo, now: now}, nil
}

func (s *service) Validate(ctx context.Context, code string) (*DiscountDTO, error) {
	discount, err := s.usable(ctx, code)
	if err != nil {
		return nil, err
	}
	return fromModel(discount), nil
}

func (s *service) Quote(ctx context.Context, code string, subtotal decimal.Decimal) (*Quote, error) {
	discount, err := s.usable(ctx, code)
	if err != nil {
		return nil, err
	}
	amount, total := Apply(discount.PercentOff, subtotal)
	return &Quote{
		Code:     discount.Code,
		Subtotal: subtotal.StringFixed(2),
		Discount: amount.StringFixed(2),
		Total:    total.StringFixed(2),
	}, nil
}

func (s *service) usable(ctx context.Context, code string) (*models.Discount, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount code is required")
	}

	discount, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load discount")
	}

	if reason := unusableReason(discount, s.now()); reason != "" {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "discount code is not active").WithDetails(map[string]any{
			"code":   discount.Code,
			"reason": reason,
		})
	}
	return discount, nil
}

func unusableReason(d *models.Discount, now time.Time) string {
	switch {
	case !d.IsActive:
		return ReasonInactive
	case now.Before(d.StartsAt):
		return ReasonNotStarted
	case now.After(d.EndsAt):
		return ReasonExpired
	}
	return ""
}
