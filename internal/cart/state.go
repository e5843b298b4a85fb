package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Variant is the SKU configuration chosen for a line item.
type Variant struct {
	VariantID   string `json:"variantId"`
	VariantName string `json:"variantName"`
	Storage     string `json:"storage"`
}

// LineItem is one purchasable configuration in a cart. Title, image and price are captured
// when the item is first added and are never re-synced with the catalog.
type LineItem struct {
	UserID    string          `json:"userId"`
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Variant   Variant         `json:"variant"`
	Quantity  int             `json:"quantity"`
}

// Key identifies a line item. A cart holds at most one item per key.
type Key struct {
	VariantID string
	Storage   string
}

func (i LineItem) Key() Key {
	return Key{VariantID: i.Variant.VariantID, Storage: i.Variant.Storage}
}

// LineTotal is unit price times quantity.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// State is the cart aggregate in insertion order. Its JSON form is the persisted document.
type State struct {
	Items []LineItem `json:"cartItems"`
}

// Clone returns a copy that shares no backing array with s.
func (s State) Clone() State {
	items := make([]LineItem, len(s.Items))
	copy(items, s.Items)
	return State{Items: items}
}

func (s State) Len() int {
	return len(s.Items)
}

// ItemCount sums quantities across all lines.
func (s State) ItemCount() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

func (s State) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Find returns the line item stored under key.
func (s State) Find(key Key) (LineItem, bool) {
	for _, item := range s.Items {
		if item.Key() == key {
			return item, true
		}
	}
	return LineItem{}, false
}

// RemovalRule selects the predicate RemoveFromCart uses.
type RemovalRule string

const (
	// RemovalExact drops the item whose variant id and storage both match.
	RemovalExact RemovalRule = "exact"
	// RemovalLegacy keeps items whose variant id differs or whose storage equals the target.
	// The net effect drops sibling storages of the same variant and keeps the exact match.
	RemovalLegacy RemovalRule = "legacy"
)

func ParseRemovalRule(value string) (RemovalRule, error) {
	switch RemovalRule(strings.ToLower(strings.TrimSpace(value))) {
	case "", RemovalExact:
		return RemovalExact, nil
	case RemovalLegacy:
		return RemovalLegacy, nil
	}
	return "", fmt.Errorf("invalid cart removal rule %q", value)
}

// Add merges item into s. When a line with the same key exists its quantity grows by
// item.Quantity and every other field of the existing line is kept; otherwise item is
// appended. Quantities are not validated.
func Add(s State, item LineItem) State {
	next := s.Clone()
	key := item.Key()
	for i, existing := range next.Items {
		if existing.Key() == key {
			merged := existing
			merged.Quantity = existing.Quantity + item.Quantity
			next.Items[i] = merged
			return next
		}
	}
	next.Items = append(next.Items, item)
	return next
}

// RemoveOne decrements every line matching key by one, then drops lines at or below zero.
func RemoveOne(s State, key Key) State {
	next := State{Items: make([]LineItem, 0, len(s.Items))}
	for _, item := range s.Items {
		if item.Key() == key {
			item.Quantity--
		}
		if item.Quantity <= 0 {
			continue
		}
		next.Items = append(next.Items, item)
	}
	return next
}

// Remove drops lines selected by rule regardless of quantity.
func Remove(s State, key Key, rule RemovalRule) State {
	next := State{Items: make([]LineItem, 0, len(s.Items))}
	for _, item := range s.Items {
		if keep(item, key, rule) {
			next.Items = append(next.Items, item)
		}
	}
	return next
}

func keep(item LineItem, key Key, rule RemovalRule) bool {
	if rule == RemovalLegacy {
		return item.Variant.VariantID != key.VariantID || item.Variant.Storage == key.Storage
	}
	return item.Key() != key
}

// Clear returns an empty cart.
func Clear(State) State {
	return State{Items: []LineItem{}}
}
