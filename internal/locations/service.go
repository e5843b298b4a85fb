package locations

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// LocationDTO is the storefront view of a physical shop.
type LocationDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	AddressLine  string    `json:"address_line"`
	City         string    `json:"city"`
	Country      string    `json:"country"`
	Phone        *string   `json:"phone,omitempty"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	OpeningHours string    `json:"opening_hours"`
}

type Service interface {
	List(ctx context.Context, country string) ([]LocationDTO, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("locations repo required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, country string) ([]LocationDTO, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country != "" && len(country) != 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "country must be a 2-letter code").WithDetails(map[string]any{
			"country": country,
		})
	}
	rows, err := s.repo.ListActive(ctx, country)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list locations")
	}
	out := make([]LocationDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

func toDTO(m models.Location) LocationDTO {
	return LocationDTO{
		ID:           m.ID,
		Name:         m.Name,
		AddressLine:  m.AddressLine,
		City:         m.City,
		Country:      m.Country,
		Phone:        m.Phone,
		Lat:          m.Lat,
		Lng:          m.Lng,
		OpeningHours: m.OpeningHours,
	}
}
