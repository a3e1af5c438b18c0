package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func intPtr(v int) *int { return &v }

func seedProduct(t *testing.T, db *gorm.DB, shopID uuid.UUID, stock int, variantStocks ...int) *models.Product {
	t.Helper()
	product := &models.Product{ShopID: shopID, Title: "Tee", Price: dec("200"), Discount: dec("10"), Stock: stock}
	for i, vs := range variantStocks {
		product.Variants = append(product.Variants, models.ProductVariant{
			Position: i,
			Name:     []string{"S", "M", "L"}[i%3],
			Price:    dec("100"),
			Discount: dec("50"),
			Stock:    vs,
		})
	}
	require.NoError(t, NewRepository(db).Create(context.Background(), product))
	return product
}

func stockOf(t *testing.T, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, "id = ?", productID).Error)
	return p.Stock
}

func variantStockOf(t *testing.T, db *gorm.DB, productID uuid.UUID, position int) int {
	t.Helper()
	var v models.ProductVariant
	require.NoError(t, db.First(&v, "product_id = ? AND position = ?", productID, position).Error)
	return v.Stock
}

func TestUnitPrice(t *testing.T) {
	assert.True(t, UnitPrice(dec("100"), dec("50")).Equal(dec("50")))
	assert.True(t, UnitPrice(dec("200"), dec("10")).Equal(dec("180")))
	assert.True(t, UnitPrice(dec("19.99"), decimal.Zero).Equal(dec("19.99")))
	assert.True(t, UnitPrice(dec("10"), dec("-5")).Equal(dec("10")), "negative discounts are ignored")
}

func TestOfferFor(t *testing.T) {
	product := &models.Product{Title: "Tee", Price: dec("200"), Discount: dec("10"), Stock: 3,
		Variants: []models.ProductVariant{{Position: 0, Name: "S", Price: dec("100"), Discount: dec("50"), Stock: 1}}}

	offer, ok := OfferFor(product, nil)
	require.True(t, ok)
	assert.True(t, offer.Unit().Equal(dec("180")))

	offer, ok = OfferFor(product, intPtr(0))
	require.True(t, ok)
	assert.Equal(t, "S", offer.VariantName)
	assert.True(t, offer.Unit().Equal(dec("50")))

	_, ok = OfferFor(product, intPtr(3))
	assert.False(t, ok)
	_, ok = OfferFor(nil, nil)
	assert.False(t, ok)
}

func TestFindInShopScopesByShop(t *testing.T) {
	db := dbtest.Open(t)
	shopA, shopB := uuid.New(), uuid.New()
	pa := seedProduct(t, db, shopA, 5, 1, 2)
	pb := seedProduct(t, db, shopB, 5)
	repo := NewRepository(db)

	found, err := repo.FindInShop(context.Background(), shopA, []uuid.UUID{pa.ID, pb.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, pa.ID, found[0].ID)
	require.Len(t, found[0].Variants, 2)
	assert.Equal(t, 0, found[0].Variants[0].Position)
	assert.True(t, found[0].Price.Equal(dec("200")))

	all, err := repo.FindByIDs(context.Background(), []uuid.UUID{pa.ID, pb.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, Index(all), 2)
}

func TestReserveAndRelease(t *testing.T) {
	db := dbtest.Open(t)
	shop := uuid.New()
	product := seedProduct(t, db, shop, 5, 2)
	ctx := context.Background()

	requests := []StockRequest{
		{ProductID: product.ID, Qty: 2},
		{ProductID: product.ID, Qty: 1},
		{ProductID: product.ID, VariantIndex: intPtr(0), Qty: 2},
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Reserve(ctx, tx, shop, requests)
	}))
	assert.Equal(t, 2, stockOf(t, db, product.ID))
	assert.Equal(t, 0, variantStockOf(t, db, product.ID, 0))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Release(ctx, tx, shop, requests)
	}))
	assert.Equal(t, 5, stockOf(t, db, product.ID))
	assert.Equal(t, 2, variantStockOf(t, db, product.ID, 0))
}

func TestReserveInsufficientStockRollsBack(t *testing.T) {
	db := dbtest.Open(t)
	shop := uuid.New()
	first := seedProduct(t, db, shop, 5)
	second := seedProduct(t, db, shop, 1)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		return Reserve(ctx, tx, shop, []StockRequest{
			{ProductID: first.ID, Qty: 3},
			{ProductID: second.ID, Qty: 2},
		})
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	assert.Equal(t, 5, stockOf(t, db, first.ID))
	assert.Equal(t, 1, stockOf(t, db, second.ID))
}

func TestReserveRejectsForeignShopAndBadQty(t *testing.T) {
	db := dbtest.Open(t)
	product := seedProduct(t, db, uuid.New(), 5, 5)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		return Reserve(ctx, tx, uuid.New(), []StockRequest{{ProductID: product.ID, VariantIndex: intPtr(0), Qty: 1}})
	})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	err = Reserve(ctx, db, uuid.New(), []StockRequest{{ProductID: product.ID, Qty: 0}})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	err = Reserve(ctx, nil, uuid.New(), nil)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}
