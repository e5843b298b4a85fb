package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Repository handles catalog persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds a repository to the provided database handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

type listQuery struct {
	Category *enums.ProductCategory
	Locales  []string
	Cursor   *pagination.Cursor
	Limit    int
}

// ListActive returns one page of active products, newest first, plus one lookahead row.
func (r *Repository) ListActive(ctx context.Context, q listQuery) ([]models.Product, error) {
	qb := r.DB(ctx).Model(&models.Product{}).Where("is_active = ?", true)
	if q.Category != nil {
		qb = qb.Where("category = ?", *q.Category)
	}

	var rows []models.Product
	err := withTranslations(qb, q.Locales).
		Preload("Variants", orderVariants).
		Preload("Variants.Storages", orderStorages).
		Scopes(pagination.Keyset(q.Cursor, q.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return rows, nil
}

// FindBySlug loads a product with translations for locales, variants and storages.
func (r *Repository) FindBySlug(ctx context.Context, slug string, locales []string) (*models.Product, error) {
	var product models.Product
	err := withTranslations(r.DB(ctx).Model(&models.Product{}), locales).
		Preload("Variants", orderVariants).
		Preload("Variants.Storages", orderStorages).
		Where("slug = ?", slug).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindVariant loads a product and one of its variants, with storages.
func (r *Repository) FindVariant(ctx context.Context, productID, variantID uuid.UUID, locales []string) (*models.Product, *models.ProductVariant, error) {
	var product models.Product
	err := withTranslations(r.DB(ctx).Model(&models.Product{}), locales).
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		return nil, nil, err
	}

	var variant models.ProductVariant
	err = r.DB(ctx).
		Preload("Storages", orderStorages).
		Where("id = ? AND product_id = ?", variantID, productID).
		First(&variant).Error
	if err != nil {
		return &product, nil, err
	}
	return &product, &variant, nil
}

// Create inserts a product graph. IDs are assigned here so every driver gets the same keys.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	if product == nil {
		return errors.New("product is required")
	}
	assignIDs(product)
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func assignIDs(product *models.Product) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	for i := range product.Translations {
		if product.Translations[i].ID == uuid.Nil {
			product.Translations[i].ID = uuid.New()
		}
		product.Translations[i].ProductID = product.ID
	}
	for i := range product.Variants {
		variant := &product.Variants[i]
		if variant.ID == uuid.Nil {
			variant.ID = uuid.New()
		}
		variant.ProductID = product.ID
		for j := range variant.Storages {
			if variant.Storages[j].ID == uuid.Nil {
				variant.Storages[j].ID = uuid.New()
			}
			variant.Storages[j].VariantID = variant.ID
		}
	}
}

func withTranslations(db *gorm.DB, locales []string) *gorm.DB {
	if len(locales) == 0 {
		return db.Preload("Translations")
	}
	return db.Preload("Translations", "locale IN ?", locales)
}

func orderVariants(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("name ASC")
}

func orderStorages(db *gorm.DB) *gorm.DB {
	return db.Order("price ASC").Order("label ASC")
}
