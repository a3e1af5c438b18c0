package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/internal/products"
	"github.com/angelmondragon/shopfront-backend/internal/shops"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/metrics"
	"github.com/angelmondragon/shopfront-backend/pkg/types"
)

type shopDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*shops.ShopDTO, error)
	LookupMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*shops.ShopDTO, error)
}

type catalog interface {
	FindInShop(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) ([]models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Service exposes the cart engine.
type Service interface {
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*CartView, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartView, error)
	RemoveBasket(ctx context.Context, userID, shopID uuid.UUID) (*CartView, error)
	OpenBasket(ctx context.Context, userID, shopID uuid.UUID) (*Basket, error)
	ClaimBasket(ctx context.Context, tx *gorm.DB, basketID uuid.UUID) error
}

type service struct {
	store   Store
	shops   shopDirectory
	catalog catalog
	metrics *metrics.Domain
}

// NewService builds a cart service backed by the provided stack.
func NewService(store Store, shopDir shopDirectory, products catalog, m *metrics.Domain) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if shopDir == nil {
		return nil, fmt.Errorf("shop directory required")
	}
	if products == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	return &service{store: store, shops: shopDir, catalog: products, metrics: m}, nil
}

func (s *service) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity required")
	}
	cart, err := s.store.EnsureCart(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return s.view(ctx, cart)
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity required")
	}
	if input.ShopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeMissingParameter, "shopId is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeMissingParameter, "productId is required")
	}
	qty := input.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.VariantIndex != nil && *input.VariantIndex < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variantIndex out of range")
	}

	shop, err := s.shops.GetByID(ctx, input.ShopID)
	if err != nil {
		return nil, err
	}
	if err := shops.AssertActive(shop); err != nil {
		s.metrics.IncCartConflict(metrics.ConflictTenantUnavailable)
		return nil, err
	}

	found, err := s.catalog.FindInShop(ctx, shop.ID, []uuid.UUID{input.ProductID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if len(found) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found in shop")
	}
	if _, ok := products.OfferFor(&found[0], input.VariantIndex); !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variantIndex out of range").
			WithDetails(map[string]any{"variants": len(found[0].Variants)})
	}

	line := types.CartLine{ProductID: input.ProductID, VariantIndex: input.VariantIndex, Quantity: qty}
	cart, err := s.store.AppendBasket(ctx, userID, shop.ID, []types.CartLine{line})
	if err != nil {
		if errors.Is(err, ErrShopAlreadyInCart) {
			s.metrics.IncCartConflict(metrics.ConflictShopAlreadyInCart)
			return nil, pkgerrors.New(pkgerrors.CodeShopAlreadyInCart, "a basket for this shop is already in the cart").
				WithDetails(map[string]any{"shopId": shop.ID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append basket")
	}
	s.metrics.IncCartItemAdded()
	return s.view(ctx, cart)
}

func (s *service) RemoveBasket(ctx context.Context, userID, shopID uuid.UUID) (*CartView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity required")
	}
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeMissingParameter, "shopId is required")
	}
	if _, err := s.store.RemoveBasket(ctx, userID, shopID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove basket")
	}
	return s.GetOrCreateCart(ctx, userID)
}

// OpenBasket reads the user's basket for shopID without changing it.
func (s *service) OpenBasket(ctx context.Context, userID, shopID uuid.UUID) (*Basket, error) {
	basket, err := s.store.FindBasket(ctx, userID, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "no basket for this shop in the cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}
	return &Basket{ID: basket.ID, ShopID: basket.ShopID, Lines: basket.Items}, nil
}

// ClaimBasket consumes a basket inside the caller's transaction. It fails with
// STATE_CONFLICT when the basket is already gone, so only one order can be
// placed from it.
func (s *service) ClaimBasket(ctx context.Context, tx *gorm.DB, basketID uuid.UUID) error {
	claimed, err := s.store.DeleteBasket(ctx, tx, basketID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim basket")
	}
	if !claimed {
		s.metrics.IncCartConflict(metrics.ConflictBasketClaimed)
		return pkgerrors.New(pkgerrors.CodeStateConflict, "basket was already checked out or removed").
			WithDetails(map[string]any{"basketId": basketID})
	}
	return nil
}

// view joins the stored cart with current shop and product rows in two
// batched lookups.
func (s *service) view(ctx context.Context, cart *models.Cart) (*CartView, error) {
	shopIDs := make([]uuid.UUID, 0, len(cart.Baskets))
	productIDs := make([]uuid.UUID, 0)
	for _, basket := range cart.Baskets {
		shopIDs = append(shopIDs, basket.ShopID)
		for _, line := range basket.Items {
			productIDs = append(productIDs, line.ProductID)
		}
	}

	shopByID, err := s.shops.LookupMany(ctx, shopIDs)
	if err != nil {
		return nil, err
	}
	rows, err := s.catalog.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	productByID := products.Index(rows)

	out := &CartView{ID: cart.ID, UserID: cart.UserID, Baskets: make([]BasketView, 0, len(cart.Baskets))}
	var priced []PricedLine
	for _, basket := range cart.Baskets {
		bv := BasketView{ShopID: basket.ShopID, CreatedAt: basket.CreatedAt, Items: make([]LineView, 0, len(basket.Items))}
		if shop, ok := shopByID[basket.ShopID]; ok {
			bv.Shop = &ShopSummary{ID: shop.ID, Subdomain: shop.Subdomain, Name: shop.Name, Status: shop.Status}
		}
		var basketLines []PricedLine
		for _, line := range basket.Items {
			lv := LineView{ProductID: line.ProductID, VariantIndex: line.VariantIndex, Quantity: line.Qty()}
			product := productByID[line.ProductID]
			if product != nil && product.ShopID == basket.ShopID {
				if offer, ok := products.OfferFor(product, line.VariantIndex); ok {
					pl := PricedLine{Price: offer.Price, Discount: offer.Discount, Quantity: line.Qty()}
					unit := pl.Unit()
					lv.Product = &ProductSummary{
						ID:          product.ID,
						Title:       offer.Title,
						VariantName: offer.VariantName,
						Price:       offer.Price,
						Discount:    offer.Discount,
						Stock:       offer.Stock,
					}
					lv.UnitPrice = &unit
					lv.LineTotal = pl.Total()
					basketLines = append(basketLines, pl)
				}
			}
			bv.Items = append(bv.Items, lv)
		}
		bv.Subtotal = ComputeTotal(basketLines)
		priced = append(priced, basketLines...)
		out.Baskets = append(out.Baskets, bv)
	}
	out.Total = ComputeTotal(priced)
	return out, nil
}
