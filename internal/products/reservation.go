package products

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
)

// StockRequest asks for qty units of a product or one of its variants.
type StockRequest struct {
	ProductID    uuid.UUID
	VariantIndex *int
	Qty          int
}

type stockKey struct {
	productID uuid.UUID
	variant   int
}

const noVariant = -1

// Reserve decrements stock for every request inside tx. Each decrement is
// conditional on enough stock remaining, so concurrent orders cannot oversell.
func Reserve(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, requests []StockRequest) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock reservation")
	}
	merged, err := merge(requests)
	if err != nil {
		return err
	}
	for _, req := range merged {
		res := decrement(ctx, tx, shopID, req)
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve stock")
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
				WithDetails(map[string]any{"productId": req.ProductID, "variantIndex": req.VariantIndex})
		}
	}
	return nil
}

// Release returns stock taken by Reserve.
func Release(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, requests []StockRequest) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock release")
	}
	merged, err := merge(requests)
	if err != nil {
		return err
	}
	for _, req := range merged {
		if err := increment(ctx, tx, shopID, req).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release stock")
		}
	}
	return nil
}

func decrement(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, req StockRequest) *gorm.DB {
	if req.VariantIndex == nil {
		return tx.WithContext(ctx).Model(&models.Product{}).
			Where("id = ? AND shop_id = ? AND stock >= ?", req.ProductID, shopID, req.Qty).
			Update("stock", gorm.Expr("stock - ?", req.Qty))
	}
	return tx.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("product_id = ? AND position = ? AND stock >= ?", req.ProductID, *req.VariantIndex, req.Qty).
		Where("product_id IN (?)", tx.Model(&models.Product{}).Select("id").Where("shop_id = ?", shopID)).
		Update("stock", gorm.Expr("stock - ?", req.Qty))
}

func increment(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, req StockRequest) *gorm.DB {
	if req.VariantIndex == nil {
		return tx.WithContext(ctx).Model(&models.Product{}).
			Where("id = ? AND shop_id = ?", req.ProductID, shopID).
			Update("stock", gorm.Expr("stock + ?", req.Qty))
	}
	return tx.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("product_id = ? AND position = ?", req.ProductID, *req.VariantIndex).
		Where("product_id IN (?)", tx.Model(&models.Product{}).Select("id").Where("shop_id = ?", shopID)).
		Update("stock", gorm.Expr("stock + ?", req.Qty))
}

// merge sums quantities per item and orders rows deterministically so
// concurrent transactions lock them in the same sequence.
func merge(requests []StockRequest) ([]StockRequest, error) {
	totals := make(map[stockKey]int, len(requests))
	order := make([]stockKey, 0, len(requests))
	for _, req := range requests {
		if req.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity for product %s must be positive", req.ProductID))
		}
		key := stockKey{productID: req.ProductID, variant: noVariant}
		if req.VariantIndex != nil {
			key.variant = *req.VariantIndex
		}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		totals[key] += req.Qty
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i].productID.String(), order[j].productID.String()
		if a != b {
			return a < b
		}
		return order[i].variant < order[j].variant
	})
	out := make([]StockRequest, 0, len(order))
	for _, key := range order {
		req := StockRequest{ProductID: key.productID, Qty: totals[key]}
		if key.variant != noVariant {
			idx := key.variant
			req.VariantIndex = &idx
		}
		out = append(out, req)
	}
	return out, nil
}
