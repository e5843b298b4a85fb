package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a physical store shown on the storefront.
type Location struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	AddressLine  string    `gorm:"column:address_line;not null"`
	City         string    `gorm:"column:city;not null"`
	Country      string    `gorm:"column:country;not null;index"`
	Phone        *string   `gorm:"column:phone"`
	Lat          float64   `gorm:"column:lat;not null"`
	Lng          float64   `gorm:"column:lng;not null"`
	OpeningHours string    `gorm:"column:opening_hours;not null;default:''"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
