package enums

import (
	"fmt"
	"strings"
)

// ProductCategory is the storefront listing category.
type ProductCategory string

const (
	ProductCategoryPhone     ProductCategory = "phone"
	ProductCategoryTablet    ProductCategory = "tablet"
	ProductCategoryLaptop    ProductCategory = "laptop"
	ProductCategoryWatch     ProductCategory = "watch"
	ProductCategoryAudio     ProductCategory = "audio"
	ProductCategoryAccessory ProductCategory = "accessory"
)

var validProductCategories = []ProductCategory{
	ProductCategoryPhone,
	ProductCategoryTablet,
	ProductCategoryLaptop,
	ProductCategoryWatch,
	ProductCategoryAudio,
	ProductCategoryAccessory,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory. Matching ignores case.
func ParseProductCategory(value string) (ProductCategory, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validProductCategories {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
