package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one product entry inside a shop basket. Lines carry no price;
// pricing is always read live from the catalog.
type CartLine struct {
	ProductID    uuid.UUID `json:"productId"`
	VariantIndex *int      `json:"variantIndex,omitempty"`
	Quantity     int       `json:"quantity"`
}

// Qty returns the effective quantity, defaulting to one.
func (l CartLine) Qty() int {
	if l.Quantity < 1 {
		return 1
	}
	return l.Quantity
}

// SameItem reports whether both lines reference the same product and variant.
func (l CartLine) SameItem(other CartLine) bool {
	if l.ProductID != other.ProductID {
		return false
	}
	if l.VariantIndex == nil || other.VariantIndex == nil {
		return l.VariantIndex == nil && other.VariantIndex == nil
	}
	return *l.VariantIndex == *other.VariantIndex
}

// OrderLine is the frozen snapshot of a purchased item.
type OrderLine struct {
	ProductID    uuid.UUID       `json:"productId"`
	Title        string          `json:"title"`
	VariantIndex *int            `json:"variantIndex,omitempty"`
	VariantName  string          `json:"variantName,omitempty"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
}

// Shipment holds the delivery contact captured at checkout.
type Shipment struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}
