package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Product is the locale-independent catalog entry. Display copy lives in ProductTranslation.
type Product struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug         string                `gorm:"column:slug;not null;uniqueIndex"`
	Category     enums.ProductCategory `gorm:"column:category;not null;index"`
	Brand        string                `gorm:"column:brand;not null;default:''"`
	Image        string                `gorm:"column:image;not null;default:''"`
	Tags         pq.StringArray        `gorm:"column:tags;type:text[]"`
	IsActive     bool                  `gorm:"column:is_active;not null;default:true"`
	Translations []ProductTranslation  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Variants     []ProductVariant      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

type ProductTranslation struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:product_translations_product_locale_key"`
	Locale      string    `gorm:"column:locale;not null;uniqueIndex:product_translations_product_locale_key"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description;not null;default:''"`
}

type ProductVariant struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index"`
	Name      string           `gorm:"column:name;not null"`
	Image     string           `gorm:"column:image;not null;default:''"`
	Position  int              `gorm:"column:position;not null;default:0"`
	Storages  []VariantStorage `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
}

// VariantStorage is one purchasable storage option of a variant and carries the price.
type VariantStorage struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VariantID      uuid.UUID        `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:variant_storages_variant_label_key"`
	Label          string           `gorm:"column:label;not null;uniqueIndex:variant_storages_variant_label_key"`
	Price          decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	CompareAtPrice *decimal.Decimal `gorm:"column:compare_at_price;type:numeric(12,2)"`
	Stock          int              `gorm:"column:stock;not null;default:0"`
}
