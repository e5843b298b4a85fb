package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo          *Repository
	DefaultLocale string
}

// ListParams captures listing filters. Locale must already be negotiated.
type ListParams struct {
	Locale     string
	Category   *enums.ProductCategory
	Pagination pagination.Params
}

// Service exposes the read side of the catalog.
type Service interface {
	ListProducts(ctx context.Context, params ListParams) (ProductPageDTO, error)
	GetProduct(ctx context.Context, slug, locale string) (*ProductDetailDTO, error)
	ResolveVariant(ctx context.Context, productID, variantID uuid.UUID, storage, locale string) (*VariantSnapshot, error)
}

type service struct {
	repo          *Repository
	defaultLocale string
}

// NewService builds a catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repo required")
	}
	def := strings.TrimSpace(params.DefaultLocale)
	if def == "" {
		return nil, fmt.Errorf("default locale required")
	}
	return &service{repo: params.Repo, defaultLocale: def}, nil
}

func (s *service) ListProducts(ctx context.Context, params ListParams) (ProductPageDTO, error) {
	if params.Category != nil && !params.Category.IsValid() {
		return ProductPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	cursor, err := pagination.ParseCursor(params.Pagination.Cursor)
	if err != nil {
		return ProductPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListActive(ctx, listQuery{
		Category: params.Category,
		Locales:  s.locales(params.Locale),
		Cursor:   cursor,
		Limit:    params.Pagination.Limit,
	})
	if err != nil {
		return ProductPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	page := pagination.BuildPage(rows, params.Pagination.Limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	items := make([]ProductSummaryDTO, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, summaryFromModel(p, s.translation(p, params.Locale)))
	}
	return ProductPageDTO{Items: items, NextCursor: page.NextCursor}, nil
}

func (s *service) GetProduct(ctx context.Context, slug, locale string) (*ProductDetailDTO, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	product, err := s.repo.FindBySlug(ctx, slug, s.locales(locale))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	detail := detailFromModel(*product, s.translation(*product, locale))
	return &detail, nil
}

// ResolveVariant returns the price and display fields for one storage option of a variant.
func (s *service) ResolveVariant(ctx context.Context, productID, variantID uuid.UUID, storage, locale string) (*VariantSnapshot, error) {
	storage = strings.TrimSpace(storage)
	if storage == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "storage is required")
	}
	product, variant, err := s.repo.FindVariant(ctx, productID, variantID, s.locales(locale))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if product == nil {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load variant")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	for _, option := range variant.Storages {
		if !strings.EqualFold(option.Label, storage) {
			continue
		}
		image := variant.Image
		if image == "" {
			image = product.Image
		}
		return &VariantSnapshot{
			ProductID:   product.ID,
			VariantID:   variant.ID,
			Title:       s.translation(*product, locale).Title,
			VariantName: variant.Name,
			Storage:     option.Label,
			Image:       image,
			UnitPrice:   option.Price,
			Stock:       option.Stock,
		}, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "storage option not found").WithDetails(map[string]any{
		"storage": storage,
	})
}

func (s *service) locales(locale string) []string {
	locale = strings.TrimSpace(locale)
	if locale == "" || locale == s.defaultLocale {
		return []string{s.defaultLocale}
	}
	return []string{locale, s.defaultLocale}
}

// translation picks the requested locale, then the default, then any loaded row.
func (s *service) translation(p models.Product, locale string) models.ProductTranslation {
	var fallback *models.ProductTranslation
	for i := range p.Translations {
		tr := p.Translations[i]
		if tr.Locale == locale {
			return tr
		}
		if tr.Locale == s.defaultLocale {
			fallback = &p.Translations[i]
		}
	}
	if fallback != nil {
		return *fallback
	}
	if len(p.Translations) > 0 {
		return p.Translations[0]
	}
	return models.ProductTranslation{Title: p.Slug, Locale: s.defaultLocale}
}
