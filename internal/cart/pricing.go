package cart

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shopfront-backend/internal/products"
)

// PricedLine is a cart line joined with its live catalog price.
type PricedLine struct {
	Price    decimal.Decimal
	Discount decimal.Decimal
	Quantity int
}

// Unit returns the discounted unit price of the line.
func (l PricedLine) Unit() decimal.Decimal {
	return products.UnitPrice(l.Price, l.Discount)
}

// Total returns unit price times quantity.
func (l PricedLine) Total() decimal.Decimal {
	return l.Unit().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ComputeTotal sums unit price times quantity over lines. The result does not
// depend on line order.
func ComputeTotal(lines []PricedLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Total())
	}
	return total
}
