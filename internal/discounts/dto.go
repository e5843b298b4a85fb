package discounts

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// DiscountDTO is the public view of a valid code.
type DiscountDTO struct {
	Code       string    `json:"code"`
	PercentOff string    `json:"percent_off"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

// Quote is the outcome of applying a code to a subtotal.
type Quote struct {
	Code     string `json:"code"`
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

func fromModel(d *models.Discount) *DiscountDTO {
	return &DiscountDTO{
		Code:       d.Code,
		PercentOff: d.PercentOff.StringFixed(2),
		StartsAt:   d.StartsAt.UTC(),
		EndsAt:     d.EndsAt.UTC(),
	}
}

var hundred = decimal.NewFromInt(100)

// Apply returns the amount taken off subtotal and the remaining total, both rounded to cents.
func Apply(percentOff, subtotal decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if percentOff.IsNegative() {
		percentOff = decimal.Zero
	}
	if percentOff.GreaterThan(hundred) {
		percentOff = hundred
	}
	amount := subtotal.Mul(percentOff).Div(hundred).Round(2)
	return amount, subtotal.Sub(amount).Round(2)
}
