package locations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListActive returns active locations ordered by name, optionally filtered by country code.
func (r *Repository) ListActive(ctx context.Context, country string) ([]models.Location, error) {
	qb := r.DB(ctx).Where("is_active = ?", true)
	if country != "" {
		qb = qb.Where("country = ?", country)
	}
	var rows []models.Location
	if err := qb.Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Create(ctx context.Context, location *models.Location) error {
	if location.ID == uuid.Nil {
		location.ID = uuid.New()
	}
	return r.DB(ctx).Create(location).Error
}
