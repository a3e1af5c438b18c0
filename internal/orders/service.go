package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/internal/cart"
	"github.com/angelmondragon/shopfront-backend/internal/products"
	"github.com/angelmondragon/shopfront-backend/internal/shops"
	"github.com/angelmondragon/shopfront-backend/pkg/auth"
	"github.com/angelmondragon/shopfront-backend/pkg/checkout"
	"github.com/angelmondragon/shopfront-backend/pkg/db"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
	"github.com/angelmondragon/shopfront-backend/pkg/metrics"
	"github.com/angelmondragon/shopfront-backend/pkg/pagination"
	"github.com/angelmondragon/shopfront-backend/pkg/types"
)

const defaultTrackingAttempts = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type shopDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*shops.ShopDTO, error)
}

type catalog interface {
	FindInShop(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) ([]models.Product, error)
}

type basketSource interface {
	OpenBasket(ctx context.Context, userID, shopID uuid.UUID) (*cart.Basket, error)
	ClaimBasket(ctx context.Context, tx *gorm.DB, basketID uuid.UUID) error
}

type trackingIDs interface {
	Next(ctx context.Context) (int64, error)
}

// StockKeeper moves inventory inside an order transaction.
type StockKeeper interface {
	Reserve(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, requests []products.StockRequest) error
	Release(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, requests []products.StockRequest) error
}

type stockEngine struct{}

func (stockEngine) Reserve(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, requests []products.StockRequest) error {
	return products.Reserve(ctx, tx, shopID, requests)
}

func (stockEngine) Release(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, requests []products.StockRequest) error {
	return products.Release(ctx, tx, shopID, requests)
}

// Service defines the order engine.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	Checkout(ctx context.Context, userID, shopID uuid.UUID, input CheckoutInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, userID, shopID uuid.UUID, trackingID int64) (*OrderDTO, error)
	ListOrders(ctx context.Context, userID, shopID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListShopOrders(ctx context.Context, actor auth.Identity, shopID uuid.UUID, params pagination.Params) (*OrderList, error)
	CancelOrder(ctx context.Context, userID, shopID uuid.UUID, trackingID int64) (*OrderDTO, error)
	AdvanceFulfillment(ctx context.Context, actor auth.Identity, shopID uuid.UUID, trackingID int64, target enums.OrderStatus) (*OrderDTO, error)
}

// ServiceParams bundles the dependencies required to build an order service.
type ServiceParams struct {
	Store       Store
	Tx          txRunner
	Shops       shopDirectory
	Catalog     catalog
	Baskets     basketSource
	TrackingIDs trackingIDs
	Stock       StockKeeper
	Metrics     *metrics.Domain
	Logger      *logger.Logger
	// MaxTrackingAttempts bounds retries on tracking id collisions.
	MaxTrackingAttempts int
	Now                 func() time.Time
}

type service struct {
	store       Store
	tx          txRunner
	shops       shopDirectory
	catalog     catalog
	baskets     basketSource
	tracking    trackingIDs
	stock       StockKeeper
	metrics     *metrics.Domain
	logg        *logger.Logger
	maxAttempts int
	now         func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("orders store required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Shops == nil {
		return nil, fmt.Errorf("shop directory required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if params.Baskets == nil {
		return nil, fmt.Errorf("basket source required")
	}
	if params.TrackingIDs == nil {
		return nil, fmt.Errorf("tracking id generator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Stock == nil {
		params.Stock = stockEngine{}
	}
	if params.MaxTrackingAttempts <= 0 {
		params.MaxTrackingAttempts = defaultTrackingAttempts
	}
	if params.Now == nil {
		params.Now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		store:       params.Store,
		tx:          params.Tx,
		shops:       params.Shops,
		catalog:     params.Catalog,
		baskets:     params.Baskets,
		tracking:    params.TrackingIDs,
		stock:       params.Stock,
		metrics:     params.Metrics,
		logg:        params.Logger,
		maxAttempts: params.MaxTrackingAttempts,
		now:         params.Now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	return s.place(ctx, input, nil)
}

// place validates, prices and stores an order. claim, when set, runs first in
// the order transaction; its error rolls the whole order back.
func (s *service) place(ctx context.Context, input CreateOrderInput, claim func(tx *gorm.DB) error) (*OrderDTO, error) {
	if input.ShopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeMissingParameter, "shopId is required")
	}
	if err := checkout.ValidateLines(input.Lines); err != nil {
		return nil, err
	}
	if err := checkout.ValidateShipment(input.Shipment); err != nil {
		return nil, err
	}
	if err := checkout.ValidatePayment(input.PaymentMethod, input.PaymentReference); err != nil {
		return nil, err
	}

	shop, err := s.shops.GetByID(ctx, input.ShopID)
	if err != nil {
		return nil, err
	}
	if err := shops.AssertActive(shop); err != nil {
		return nil, err
	}

	lines, total, requests, err := s.freeze(ctx, shop.ID, input.Lines)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		trackingID, err := s.tracking.Next(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate tracking id")
		}
		order := &models.Order{
			ShopID:           shop.ID,
			UserID:           input.UserID,
			TrackingID:       trackingID,
			Items:            lines,
			TotalAmount:      total,
			Status:           enums.OrderStatusProcessing,
			PaymentMethod:    input.PaymentMethod,
			PaymentReference: input.PaymentReference,
			Shipment:         input.Shipment,
			Note:             input.Note,
		}

		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if claim != nil {
				if err := claim(tx); err != nil {
					return err
				}
			}
			if err := s.stock.Reserve(ctx, tx, shop.ID, requests); err != nil {
				return err
			}
			return s.store.WithTx(tx).Create(ctx, order)
		})
		if err == nil {
			s.metrics.IncOrderCreated(string(input.PaymentMethod))
			return FromModel(order), nil
		}

		switch {
		case db.IsUniqueViolation(err, db.OrderTrackingIDKey):
			s.metrics.IncTrackingCollision()
			if attempt >= s.maxAttempts {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not allocate a unique tracking id")
			}
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"tracking_id": trackingID,
				"attempt":     attempt,
			}), "orders.tracking_id_collision")
		case db.IsUniqueViolation(err, db.OrderPaymentRefKey):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment reference already used")
		case pkgerrors.As(err) != nil:
			return nil, err
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
	}
}

// freeze prices every line from the current catalog and returns the order
// snapshot, its total and the stock to reserve.
func (s *service) freeze(ctx context.Context, shopID uuid.UUID, in []types.CartLine) ([]types.OrderLine, decimal.Decimal, []products.StockRequest, error) {
	ids := make([]uuid.UUID, 0, len(in))
	for _, line := range in {
		ids = append(ids, line.ProductID)
	}
	rows, err := s.catalog.FindInShop(ctx, shopID, ids)
	if err != nil {
		return nil, decimal.Zero, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := products.Index(rows)

	lines := make([]types.OrderLine, 0, len(in))
	requests := make([]products.StockRequest, 0, len(in))
	total := decimal.Zero
	for _, line := range in {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, decimal.Zero, nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found in shop").
				WithDetails(map[string]any{"productId": line.ProductID})
		}
		offer, ok := products.OfferFor(product, line.VariantIndex)
		if !ok {
			return nil, decimal.Zero, nil, pkgerrors.New(pkgerrors.CodeValidation, "variantIndex out of range").
				WithDetails(map[string]any{"productId": line.ProductID})
		}
		qty := line.Qty()
		unit := offer.Unit()
		lineTotal := unit.Mul(decimal.NewFromInt(int64(qty)))
		lines = append(lines, types.OrderLine{
			ProductID:    product.ID,
			Title:        offer.Title,
			VariantIndex: line.VariantIndex,
			VariantName:  offer.VariantName,
			Quantity:     qty,
			Price:        unit,
			LineTotal:    lineTotal,
		})
		requests = append(requests, products.StockRequest{ProductID: product.ID, VariantIndex: line.VariantIndex, Qty: qty})
		total = total.Add(lineTotal)
	}
	return lines, total, requests, nil
}

func (s *service) Checkout(ctx context.Context, userID, shopID uuid.UUID, input CheckoutInput) (*OrderDTO, error) {
	create := CreateOrderInput{
		ShopID:           shopID,
		Lines:            input.Items,
		PaymentMethod:    input.PaymentMethod,
		PaymentReference: input.PaymentReference,
		Shipment:         input.Shipment,
		Note:             input.Note,
	}

	if userID == uuid.Nil {
		return s.place(ctx, create, nil)
	}
	if len(input.Items) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items are only accepted for guest checkout")
	}
	basket, err := s.baskets.OpenBasket(ctx, userID, shopID)
	if err != nil {
		return nil, err
	}
	uid := userID
	create.UserID = &uid
	create.Lines = basket.Lines

	// the basket is deleted in the order transaction; a concurrent checkout of
	// the same basket finds it gone and rolls back
	return s.place(ctx, create, func(tx *gorm.DB) error {
		return s.baskets.ClaimBasket(ctx, tx, basket.ID)
	})
}

func (s *service) GetOrder(ctx context.Context, userID, shopID uuid.UUID, trackingID int64) (*OrderDTO, error) {
	order, err := s.store.FindByTracking(ctx, shopID, trackingID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	if !order.OwnedBy(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return FromModel(order), nil
}

func (s *service) ListOrders(ctx context.Context, userID, shopID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity required")
	}
	if err := validateCursor(params.Cursor); err != nil {
		return nil, err
	}
	rows, err := s.store.ListForUser(ctx, userID, shopID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toList(rows, params.Limit), nil
}

func (s *service) ListShopOrders(ctx context.Context, actor auth.Identity, shopID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if err := s.authorizeOwner(ctx, actor, shopID); err != nil {
		return nil, err
	}
	if err := validateCursor(params.Cursor); err != nil {
		return nil, err
	}
	rows, err := s.store.ListForShop(ctx, shopID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shop orders")
	}
	return toList(rows, params.Limit), nil
}

func (s *service) CancelOrder(ctx context.Context, userID, shopID uuid.UUID, trackingID int64) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity required")
	}

	var cancelled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)
		applied, err := store.Transition(ctx, Transition{
			ShopID:     shopID,
			TrackingID: trackingID,
			UserID:     &userID,
			From:       enums.OrderStatusProcessing,
			To:         enums.OrderStatusCancelled,
			At:         s.now(),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}

		current, err := store.FindByTracking(ctx, shopID, trackingID)
		if err != nil {
			return mapLookupError(err)
		}
		if !current.OwnedBy(userID) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only processing orders can be cancelled").
				WithDetails(map[string]any{"status": current.Status})
		}

		if err := s.stock.Release(ctx, tx, shopID, stockFor(current.Items)); err != nil {
			return err
		}
		cancelled = current
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	s.metrics.IncOrderCancelled()
	return FromModel(cancelled), nil
}

func (s *service) AdvanceFulfillment(ctx context.Context, actor auth.Identity, shopID uuid.UUID, trackingID int64, target enums.OrderStatus) (*OrderDTO, error) {
	from, ok := previousFulfillment(target)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target status must be shipped or delivered").
			WithDetails(map[string]any{"status": target})
	}
	if err := s.authorizeOwner(ctx, actor, shopID); err != nil {
		return nil, err
	}

	applied, err := s.store.Transition(ctx, Transition{
		ShopID:     shopID,
		TrackingID: trackingID,
		From:       from,
		To:         target,
		At:         s.now(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order")
	}
	current, err := s.store.FindByTracking(ctx, shopID, trackingID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	if !applied {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order cannot move from %s to %s", current.Status, target)).
			WithDetails(map[string]any{"status": current.Status})
	}
	return FromModel(current), nil
}

func (s *service) authorizeOwner(ctx context.Context, actor auth.Identity, shopID uuid.UUID) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity required")
	}
	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return err
	}
	if actor.IsAdmin {
		return nil
	}
	return shops.AssertOwnership(shop, actor.UserID)
}

func previousFulfillment(target enums.OrderStatus) (enums.OrderStatus, bool) {
	for _, from := range []enums.OrderStatus{enums.OrderStatusProcessing, enums.OrderStatusShipped} {
		if from.CanAdvanceTo(target) {
			return from, true
		}
	}
	return "", false
}

func stockFor(lines []types.OrderLine) []products.StockRequest {
	out := make([]products.StockRequest, 0, len(lines))
	for _, line := range lines {
		out = append(out, products.StockRequest{ProductID: line.ProductID, VariantIndex: line.VariantIndex, Qty: line.Quantity})
	}
	return out
}

func toList(rows []models.Order, limit int) *OrderList {
	page, next := pagination.Trim(rows, limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	out := &OrderList{Orders: make([]OrderDTO, 0, len(page)), NextCursor: next}
	for i := range page {
		out.Orders = append(out.Orders, *FromModel(&page[i]))
	}
	return out
}

func validateCursor(cursor string) error {
	if _, err := pagination.ParseCursor(cursor); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return nil
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
}
