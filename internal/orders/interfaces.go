package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	"github.com/angelmondragon/shopfront-backend/pkg/pagination"
)

// Store defines persistence operations for the orders table.
type Store interface {
	WithTx(tx *gorm.DB) Store
	Create(ctx context.Context, order *models.Order) error
	FindByTracking(ctx context.Context, shopID uuid.UUID, trackingID int64) (*models.Order, error)
	ListForUser(ctx context.Context, userID, shopID uuid.UUID, params pagination.Params) ([]models.Order, error)
	ListForShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) ([]models.Order, error)
	Transition(ctx context.Context, t Transition) (bool, error)
}

// Transition is a conditional status change. It applies only while the order
// is still in From; UserID, when set, further restricts it to the buyer.
type Transition struct {
	ShopID     uuid.UUID
	TrackingID int64
	UserID     *uuid.UUID
	From       enums.OrderStatus
	To         enums.OrderStatus
	At         time.Time
}
