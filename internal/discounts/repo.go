package discounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository reads discount codes.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByCode looks up an uppercased code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Discount, error) {
	return repo.First[models.Discount](r.DB(ctx), "code = ?", code)
}

// Create persists a discount; used by seeding and tests.
func (r *Repository) Create(ctx context.Context, discount *models.Discount) error {
	if discount.ID == uuid.Nil {
		discount.ID = uuid.New()
	}
	return r.DB(ctx).Create(discount).Error
}

// DeactivateExpired flips is_active off for codes whose window closed before now.
func (r *Repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB(ctx).Model(&models.Discount{}).
		Where("is_active = ? AND ends_at < ?", true, now.UTC()).
		Updates(map[string]any{"is_active": false, "updated_at": now.UTC()})
	return res.RowsAffected, res.Error
}
