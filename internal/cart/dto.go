package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	"github.com/angelmondragon/shopfront-backend/pkg/types"
)

// AddItemInput captures one add-to-cart request.
type AddItemInput struct {
	ShopID       uuid.UUID
	ProductID    uuid.UUID
	VariantIndex *int
	Quantity     int
}

// Basket is a stored basket as checkout reads it. ID identifies this exact
// basket; a basket removed and added again gets a new one.
type Basket struct {
	ID     uuid.UUID
	ShopID uuid.UUID
	Lines  []types.CartLine
}

// CartView is the cart joined with live shop and product data.
type CartView struct {
	ID      uuid.UUID       `json:"id"`
	UserID  uuid.UUID       `json:"userId"`
	Baskets []BasketView    `json:"baskets"`
	Total   decimal.Decimal `json:"total"`
}

// BasketView is one shop's basket. Shop is nil when the shop no longer exists.
type BasketView struct {
	ShopID    uuid.UUID       `json:"shopId"`
	Shop      *ShopSummary    `json:"shop"`
	Items     []LineView      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ShopSummary is the slice of shop data rendered inside a cart.
type ShopSummary struct {
	ID        uuid.UUID        `json:"id"`
	Subdomain string           `json:"subdomain"`
	Name      string           `json:"name"`
	Status    enums.ShopStatus `json:"status"`
}

// LineView is a cart line with its current price. Product is nil when the
// referenced product or variant is gone; such lines add nothing to totals.
type LineView struct {
	ProductID    uuid.UUID        `json:"productId"`
	VariantIndex *int             `json:"variantIndex,omitempty"`
	Quantity     int              `json:"quantity"`
	Product      *ProductSummary  `json:"product"`
	UnitPrice    *decimal.Decimal `json:"unitPrice,omitempty"`
	LineTotal    decimal.Decimal  `json:"lineTotal"`
}

// ProductSummary is the slice of product data rendered inside a cart.
type ProductSummary struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	VariantName string          `json:"variantName,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Stock       int             `json:"stock"`
}
