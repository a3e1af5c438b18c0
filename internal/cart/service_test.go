package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/internal/products"
	"github.com/angelmondragon/shopfront-backend/internal/shops"
	"github.com/angelmondragon/shopfront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func intPtr(v int) *int { return &v }

type fixture struct {
	db   *gorm.DB
	svc  Service
	repo *Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	shopSvc, err := shops.NewService(shops.NewRepository(conn))
	require.NoError(t, err)
	repo := NewRepository(conn)
	svc, err := NewService(repo, shopSvc, products.NewRepository(conn), nil)
	require.NoError(t, err)
	return &fixture{db: conn, svc: svc, repo: repo}
}

func (f *fixture) shop(t *testing.T, subdomain string, status enums.ShopStatus) *models.Shop {
	t.Helper()
	shop := &models.Shop{Subdomain: subdomain, Name: subdomain, OwnerID: uuid.New(), Status: status}
	require.NoError(t, f.db.Create(shop).Error)
	return shop
}

func (f *fixture) product(t *testing.T, shopID uuid.UUID, price, discount string, variants ...string) *models.Product {
	t.Helper()
	product := &models.Product{ShopID: shopID, Title: "Item", Price: dec(price), Discount: dec(discount), Stock: 10}
	for i, name := range variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			Position: i, Name: name, Price: dec("100"), Discount: dec("50"), Stock: 5,
		})
	}
	require.NoError(t, products.NewRepository(f.db).Create(context.Background(), product))
	return product
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, pkgerrors.As(err).Code(), err.Error())
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil)
	require.Error(t, err)
}

func TestGetOrCreateCartIsIdempotent(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()

	first, err := f.svc.GetOrCreateCart(context.Background(), user)
	require.NoError(t, err)
	second, err := f.svc.GetOrCreateCart(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, second.Baskets)
	assert.True(t, second.Total.IsZero())

	var count int64
	require.NoError(t, f.db.Model(&models.Cart{}).Where("user_id = ?", user).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAddItemBuildsOneBasketPerShop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	s1 := f.shop(t, "shop-one", enums.ShopStatusActive)
	s2 := f.shop(t, "shop-two", enums.ShopStatusActive)
	p1 := f.product(t, s1.ID, "200", "10")
	p2 := f.product(t, s2.ID, "100", "0", "S", "M")

	_, err := f.svc.AddItem(ctx, user, AddItemInput{ShopID: s1.ID, ProductID: p1.ID})
	require.NoError(t, err)
	view, err := f.svc.AddItem(ctx, user, AddItemInput{ShopID: s2.ID, ProductID: p2.ID, VariantIndex: intPtr(1), Quantity: 2})
	require.NoError(t, err)

	require.Len(t, view.Baskets, 2)
	assert.Equal(t, s1.ID, view.Baskets[0].ShopID)
	assert.Equal(t, s2.ID, view.Baskets[1].ShopID)
	require.NotNil(t, view.Baskets[0].Shop)
	assert.Equal(t, "shop-one", view.Baskets[0].Shop.Subdomain)

	first := view.Baskets[0].Items[0]
	assert.Equal(t, 1, first.Quantity)
	require.NotNil(t, first.UnitPrice)
	assert.True(t, first.UnitPrice.Equal(dec("180")))

	second := view.Baskets[1].Items[0]
	require.NotNil(t, second.Product)
	assert.Equal(t, "M", second.Product.VariantName)
	assert.True(t, second.LineTotal.Equal(dec("100")), "variant 100 at half price times 2")

	assert.True(t, view.Total.Equal(dec("280")))
}

func TestAddItemRejectsSecondBasketForShopWithoutMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	shop := f.shop(t, "dupe", enums.ShopStatusActive)
	product := f.product(t, shop.ID, "50", "0")

	_, err := f.svc.AddItem(ctx, user, AddItemInput{ShopID: shop.ID, ProductID: product.ID})
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, user, AddItemInput{ShopID: shop.ID, ProductID: product.ID, Quantity: 3})
	assertCode(t, err, pkgerrors.CodeShopAlreadyInCart)

	view, err := f.svc.GetOrCreateCart(ctx, user)
	require.NoError(t, err)
	require.Len(t, view.Baskets, 1)
	require.Len(t, view.Baskets[0].Items, 1)
	assert.Equal(t, 1, view.Baskets[0].Items[0].Quantity)
}

func TestAddItemConcurrentSameShopHasOneWinner(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	shop := f.shop(t, "race", enums.ShopStatusActive)
	product := f.product(t, shop.ID, "10", "0")

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AddItem(context.Background(), user, AddItemInput{ShopID: shop.ID, ProductID: product.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case pkgerrors.HasCode(err, pkgerrors.CodeShopAlreadyInCart):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	var baskets int64
	require.NoError(t, f.db.Model(&models.CartBasket{}).Count(&baskets).Error)
	assert.EqualValues(t, 1, baskets)
}

func TestAddItemValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	active := f.shop(t, "open", enums.ShopStatusActive)
	suspended := f.shop(t, "closed", enums.ShopStatusSuspended)
	other := f.shop(t, "other", enums.ShopStatusActive)
	product := f.product(t, active.ID, "10", "0", "S")
	foreign := f.product(t, other.ID, "10", "0")
	closedProduct := f.product(t, suspended.ID, "10", "0")

	cases := []struct {
		name  string
		input AddItemInput
		code  pkgerrors.Code
	}{
		{"missing shop", AddItemInput{ProductID: product.ID}, pkgerrors.CodeMissingParameter},
		{"missing product", AddItemInput{ShopID: active.ID}, pkgerrors.CodeMissingParameter},
		{"unknown shop", AddItemInput{ShopID: uuid.New(), ProductID: product.ID}, pkgerrors.CodeNotFound},
		{"suspended shop", AddItemInput{ShopID: suspended.ID, ProductID: closedProduct.ID}, pkgerrors.CodeTenantUnavailable},
		{"product of another shop", AddItemInput{ShopID: active.ID, ProductID: foreign.ID}, pkgerrors.CodeNotFound},
		{"variant out of range", AddItemInput{ShopID: active.ID, ProductID: product.ID, VariantIndex: intPtr(3)}, pkgerrors.CodeValidation},
		{"negative quantity", AddItemInput{ShopID: active.ID, ProductID: product.ID, Quantity: -1}, pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.AddItem(ctx, user, tc.input)
			assertCode(t, err, tc.code)
		})
	}

	var baskets int64
	require.NoError(t, f.db.Model(&models.CartBasket{}).Count(&baskets).Error)
	assert.Zero(t, baskets)
}

func TestCartViewToleratesDanglingReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	shop := f.shop(t, "fading", enums.ShopStatusActive)
	product := f.product(t, shop.ID, "40", "0")

	_, err := f.svc.AddItem(ctx, user, AddItemInput{ShopID: shop.ID, ProductID: product.ID})
	require.NoError(t, err)

	require.NoError(t, f.db.Delete(&models.Product{}, "id = ?", product.ID).Error)
	require.NoError(t, f.db.Delete(&models.Shop{}, "id = ?", shop.ID).Error)

	view, err := f.svc.GetOrCreateCart(ctx, user)
	require.NoError(t, err)
	require.Len(t, view.Baskets, 1)
	assert.Nil(t, view.Baskets[0].Shop)
	require.Len(t, view.Baskets[0].Items, 1)
	assert.Nil(t, view.Baskets[0].Items[0].Product)
	assert.True(t, view.Total.IsZero())
}

func TestRemoveBasketAndOpenBasket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	shop := f.shop(t, "leaving", enums.ShopStatusActive)
	product := f.product(t, shop.ID, "40", "0")

	_, err := f.svc.AddItem(ctx, user, AddItemInput{ShopID: shop.ID, ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	basket, err := f.svc.OpenBasket(ctx, user, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, shop.ID, basket.ShopID)
	require.Len(t, basket.Lines, 1)
	assert.Equal(t, 2, basket.Lines[0].Quantity)

	view, err := f.svc.RemoveBasket(ctx, user, shop.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Baskets)

	_, err = f.svc.RemoveBasket(ctx, user, shop.ID)
	require.NoError(t, err, "removing twice is a no-op")

	_, err = f.svc.OpenBasket(ctx, user, shop.ID)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestClaimBasketSucceedsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	shop := f.shop(t, "claimed", enums.ShopStatusActive)
	product := f.product(t, shop.ID, "40", "0")

	_, err := f.svc.AddItem(ctx, user, AddItemInput{ShopID: shop.ID, ProductID: product.ID})
	require.NoError(t, err)
	basket, err := f.svc.OpenBasket(ctx, user, shop.ID)
	require.NoError(t, err)

	err = f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.ClaimBasket(ctx, tx, basket.ID)
	})
	require.NoError(t, err)

	err = f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.ClaimBasket(ctx, tx, basket.ID)
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)

	view, err := f.svc.GetOrCreateCart(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, view.Baskets)
}

func TestClaimBasketRolledBackKeepsBasket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	shop := f.shop(t, "kept", enums.ShopStatusActive)
	product := f.product(t, shop.ID, "40", "0")

	_, err := f.svc.AddItem(ctx, user, AddItemInput{ShopID: shop.ID, ProductID: product.ID})
	require.NoError(t, err)
	basket, err := f.svc.OpenBasket(ctx, user, shop.ID)
	require.NoError(t, err)

	rollback := pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")
	err = f.db.Transaction(func(tx *gorm.DB) error {
		if err := f.svc.ClaimBasket(ctx, tx, basket.ID); err != nil {
			return err
		}
		return rollback
	})
	require.ErrorIs(t, err, rollback)

	again, err := f.svc.OpenBasket(ctx, user, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, basket.ID, again.ID)
}

func TestComputeTotal(t *testing.T) {
	a := PricedLine{Price: dec("100"), Discount: dec("50"), Quantity: 1}
	b := PricedLine{Price: dec("200"), Discount: dec("10"), Quantity: 2}
	c := PricedLine{Price: dec("9.99"), Quantity: 3}

	assert.True(t, a.Unit().Equal(dec("50")))
	assert.True(t, ComputeTotal(nil).IsZero())

	forward := ComputeTotal([]PricedLine{a, b, c})
	backward := ComputeTotal([]PricedLine{c, b, a})
	assert.True(t, forward.Equal(backward))
	assert.True(t, forward.Equal(dec("439.97")))
}
