package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	"github.com/angelmondragon/shopfront-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Store {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Store {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByTracking(ctx context.Context, shopID uuid.UUID, trackingID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND tracking_id = ?", shopID, trackingID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListForUser(ctx context.Context, userID, shopID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Where("user_id = ? AND shop_id = ?", userID, shopID)
	return r.page(query, params)
}

func (r *repository) ListForShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	return r.page(query, params)
}

// page applies newest-first keyset pagination and fetches one extra row so the
// caller can tell whether another page exists.
func (r *repository) page(query *gorm.DB, params pagination.Params) ([]models.Order, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var orders []models.Order
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) Transition(ctx context.Context, t Transition) (bool, error) {
	updates := map[string]any{
		"status":     t.To,
		"updated_at": t.At,
	}
	switch t.To {
	case enums.OrderStatusShipped:
		updates["shipped_at"] = t.At
	case enums.OrderStatusDelivered:
		updates["delivered_at"] = t.At
	case enums.OrderStatusCancelled:
		updates["cancelled_at"] = t.At
	}

	query := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("shop_id = ? AND tracking_id = ? AND status = ?", t.ShopID, t.TrackingID, t.From)
	if t.UserID != nil {
		query = query.Where("user_id = ?", *t.UserID)
	}
	res := query.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
