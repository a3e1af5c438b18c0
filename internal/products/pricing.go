package products

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
)

var hundred = decimal.NewFromInt(100)

// UnitPrice applies a percentage discount: price - discount/100*price.
func UnitPrice(price, discount decimal.Decimal) decimal.Decimal {
	if !discount.IsPositive() {
		return price
	}
	return price.Sub(discount.Div(hundred).Mul(price))
}

// Offer is the priced form of a product or one of its variants.
type Offer struct {
	Title       string
	VariantName string
	Price       decimal.Decimal
	Discount    decimal.Decimal
	Stock       int
}

// Unit returns the discounted unit price.
func (o Offer) Unit() decimal.Decimal {
	return UnitPrice(o.Price, o.Discount)
}

// OfferFor resolves the product or variant a line points at.
func OfferFor(product *models.Product, variantIndex *int) (Offer, bool) {
	if product == nil {
		return Offer{}, false
	}
	if variantIndex == nil {
		return Offer{
			Title:    product.Title,
			Price:    product.Price,
			Discount: product.Discount,
			Stock:    product.Stock,
		}, true
	}
	variant, ok := product.Variant(*variantIndex)
	if !ok {
		return Offer{}, false
	}
	return Offer{
		Title:       product.Title,
		VariantName: variant.Name,
		Price:       variant.Price,
		Discount:    variant.Discount,
		Stock:       variant.Stock,
	}, true
}
