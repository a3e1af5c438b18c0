package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	"github.com/angelmondragon/shopfront-backend/pkg/types"
)

// Order is an immutable purchase snapshot; only its status fields change.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ShopID           uuid.UUID           `gorm:"column:shop_id;type:uuid;not null;index"`
	UserID           *uuid.UUID          `gorm:"column:user_id;type:uuid"`
	TrackingID       int64               `gorm:"column:tracking_id;not null;uniqueIndex:orders_tracking_id_key"`
	Items            []types.OrderLine   `gorm:"column:items;type:jsonb;serializer:json;not null"`
	TotalAmount      decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status           enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'processing'"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null"`
	PaymentReference *string             `gorm:"column:payment_reference"`
	Shipment         types.Shipment      `gorm:"column:shipment;type:jsonb;serializer:json;not null"`
	Note             *string             `gorm:"column:note"`
	ShippedAt        *time.Time          `gorm:"column:shipped_at"`
	DeliveredAt      *time.Time          `gorm:"column:delivered_at"`
	CancelledAt      *time.Time          `gorm:"column:cancelled_at"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OwnedBy reports whether userID placed the order.
func (o Order) OwnedBy(userID uuid.UUID) bool {
	return o.UserID != nil && *o.UserID == userID
}
