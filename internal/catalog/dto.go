package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// ProductSummaryDTO is one card on a listing page.
type ProductSummaryDTO struct {
	ID        uuid.UUID             `json:"id"`
	Slug      string                `json:"slug"`
	Category  enums.ProductCategory `json:"category"`
	Brand     string                `json:"brand"`
	Image     string                `json:"image"`
	Title     string                `json:"title"`
	Locale    string                `json:"locale"`
	Tags      []string              `json:"tags"`
	PriceFrom *string               `json:"price_from,omitempty"`
}

type ProductPageDTO = pagination.Page[ProductSummaryDTO]

type ProductDetailDTO struct {
	ProductSummaryDTO
	Description string       `json:"description"`
	Variants    []VariantDTO `json:"variants"`
}

type VariantDTO struct {
	ID       uuid.UUID    `json:"id"`
	Name     string       `json:"name"`
	Image    string       `json:"image"`
	Storages []StorageDTO `json:"storages"`
}

type StorageDTO struct {
	Label          string  `json:"label"`
	Price          string  `json:"price"`
	CompareAtPrice *string `json:"compare_at_price,omitempty"`
	InStock        bool    `json:"in_stock"`
}

// VariantSnapshot is the catalog data a cart line captures at add time.
type VariantSnapshot struct {
	ProductID   uuid.UUID
	VariantID   uuid.UUID
	Title       string
	VariantName string
	Storage     string
	Image       string
	UnitPrice   decimal.Decimal
	Stock       int
}

func summaryFromModel(p models.Product, tr models.ProductTranslation) ProductSummaryDTO {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	dto := ProductSummaryDTO{
		ID:       p.ID,
		Slug:     p.Slug,
		Category: p.Category,
		Brand:    p.Brand,
		Image:    p.Image,
		Title:    tr.Title,
		Locale:   tr.Locale,
		Tags:     tags,
	}
	if low, ok := lowestPrice(p.Variants); ok {
		formatted := low.StringFixed(2)
		dto.PriceFrom = &formatted
	}
	return dto
}

func detailFromModel(p models.Product, tr models.ProductTranslation) ProductDetailDTO {
	variants := make([]VariantDTO, 0, len(p.Variants))
	for _, v := range p.Variants {
		storages := make([]StorageDTO, 0, len(v.Storages))
		for _, s := range v.Storages {
			storage := StorageDTO{
				Label:   s.Label,
				Price:   s.Price.StringFixed(2),
				InStock: s.Stock > 0,
			}
			if s.CompareAtPrice != nil {
				formatted := s.CompareAtPrice.StringFixed(2)
				storage.CompareAtPrice = &formatted
			}
			storages = append(storages, storage)
		}
		variants = append(variants, VariantDTO{
			ID:       v.ID,
			Name:     v.Name,
			Image:    v.Image,
			Storages: storages,
		})
	}
	return ProductDetailDTO{
		ProductSummaryDTO: summaryFromModel(p, tr),
		Description:       tr.Description,
		Variants:          variants,
	}
}

func lowestPrice(variants []models.ProductVariant) (decimal.Decimal, bool) {
	var (
		low   decimal.Decimal
		found bool
	)
	for _, v := range variants {
		for _, s := range v.Storages {
			if !found || s.Price.LessThan(low) {
				low = s.Price
				found = true
			}
		}
	}
	return low, found
}
