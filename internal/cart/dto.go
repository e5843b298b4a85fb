package cart

import "github.com/shopspring/decimal"

// CartDTO is the API view of a cart.
type CartDTO struct {
	Items     []LineItemDTO `json:"items"`
	ItemCount int           `json:"item_count"`
	Subtotal  string        `json:"subtotal"`
}

type LineItemDTO struct {
	ProductID   string `json:"product_id"`
	VariantID   string `json:"variant_id"`
	VariantName string `json:"variant_name"`
	Storage     string `json:"storage"`
	Title       string `json:"title"`
	Image       string `json:"image"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"line_total"`
}

// ToDTO renders a state with money as fixed two-decimal strings.
func ToDTO(state State) CartDTO {
	items := make([]LineItemDTO, 0, len(state.Items))
	for _, item := range state.Items {
		items = append(items, LineItemDTO{
			ProductID:   item.ProductID,
			VariantID:   item.Variant.VariantID,
			VariantName: item.Variant.VariantName,
			Storage:     item.Variant.Storage,
			Title:       item.Title,
			Image:       item.Image,
			UnitPrice:   money(item.UnitPrice),
			Quantity:    item.Quantity,
			LineTotal:   money(item.LineTotal()),
		})
	}
	return CartDTO{
		Items:     items,
		ItemCount: state.ItemCount(),
		Subtotal:  money(state.Subtotal()),
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
