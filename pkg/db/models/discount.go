package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discount is a percent-off code valid inside [StartsAt, EndsAt].
type Discount struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code       string          `gorm:"column:code;not null;uniqueIndex"`
	PercentOff decimal.Decimal `gorm:"column:percent_off;type:numeric(5,2);not null"`
	StartsAt   time.Time       `gorm:"column:starts_at;not null"`
	EndsAt     time.Time       `gorm:"column:ends_at;not null"`
	IsActive   bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
