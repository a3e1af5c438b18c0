package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/shopfront-backend/internal/repo"
	"github.com/angelmondragon/shopfront-backend/pkg/db"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/types"
)

// ErrShopAlreadyInCart is returned by AppendBasket when the cart already holds
// a basket for the shop.
var ErrShopAlreadyInCart = errors.New("shop already in cart")

// Store is the persistence surface required by the cart service. Every
// mutation is a single atomic operation; callers never read-modify-write.
type Store interface {
	EnsureCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AppendBasket(ctx context.Context, userID, shopID uuid.UUID, lines []types.CartLine) (*models.Cart, error)
	RemoveBasket(ctx context.Context, userID, shopID uuid.UUID) (bool, error)
	FindBasket(ctx context.Context, userID, shopID uuid.UUID) (*models.CartBasket, error)
	DeleteBasket(ctx context.Context, tx *gorm.DB, basketID uuid.UUID) (bool, error)
}

// Repository is the GORM-backed Store.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to cart operations.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// EnsureCart creates the user's cart if it does not exist and returns it with
// its baskets in insertion order.
func (r *Repository) EnsureCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if err := insertCartIfAbsent(r.DB(ctx), userID); err != nil {
		return nil, err
	}
	return r.loadCart(r.DB(ctx), userID)
}

// AppendBasket ensures the cart and inserts a basket for shopID in one
// transaction. The (cart_id, shop_id) unique key arbitrates concurrent adds.
func (r *Repository) AppendBasket(ctx context.Context, userID, shopID uuid.UUID, lines []types.CartLine) (*models.Cart, error) {
	err := r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := insertCartIfAbsent(tx, userID); err != nil {
			return err
		}
		var cart models.Cart
		if err := tx.Select("id").Where("user_id = ?", userID).First(&cart).Error; err != nil {
			return err
		}
		basket := &models.CartBasket{CartID: cart.ID, ShopID: shopID, Items: lines}
		if err := tx.Create(basket).Error; err != nil {
			if db.IsUniqueViolation(err, db.CartBasketShopKey) {
				return ErrShopAlreadyInCart
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.loadCart(r.DB(ctx), userID)
}

// RemoveBasket deletes the basket for shopID and reports whether one existed.
func (r *Repository) RemoveBasket(ctx context.Context, userID, shopID uuid.UUID) (bool, error) {
	res := r.DB(ctx).
		Where("shop_id = ? AND cart_id IN (?)", shopID, r.cartIDs(ctx, userID)).
		Delete(&models.CartBasket{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteBasket removes one basket by id on tx and reports whether this call
// removed it. Concurrent callers racing on the same basket see exactly one true.
func (r *Repository) DeleteBasket(ctx context.Context, tx *gorm.DB, basketID uuid.UUID) (bool, error) {
	conn := r.DB(ctx)
	if tx != nil {
		conn = tx.WithContext(ctx)
	}
	res := conn.Where("id = ?", basketID).Delete(&models.CartBasket{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FindBasket loads the user's basket for shopID.
func (r *Repository) FindBasket(ctx context.Context, userID, shopID uuid.UUID) (*models.CartBasket, error) {
	var basket models.CartBasket
	err := r.DB(ctx).
		Where("shop_id = ? AND cart_id IN (?)", shopID, r.cartIDs(ctx, userID)).
		First(&basket).Error
	if err != nil {
		return nil, err
	}
	return &basket, nil
}

func (r *Repository) cartIDs(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.DB(ctx).Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)
}

func insertCartIfAbsent(tx *gorm.DB, userID uuid.UUID) error {
	cart := &models.Cart{UserID: userID}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(cart).Error
}

func (r *Repository) loadCart(tx *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := tx.
		Preload("Baskets", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}
