package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	"github.com/angelmondragon/shopfront-backend/pkg/types"
)

// CreateOrderInput is a fully resolved order request for one shop.
type CreateOrderInput struct {
	UserID           *uuid.UUID
	ShopID           uuid.UUID
	Lines            []types.CartLine
	PaymentMethod    enums.PaymentMethod
	PaymentReference *string
	Shipment         types.Shipment
	Note             *string
}

// CheckoutInput is the buyer-supplied part of a checkout. Items are only
// accepted from guests; signed-in buyers check out their basket.
type CheckoutInput struct {
	Items            []types.CartLine    `json:"items,omitempty"`
	PaymentMethod    enums.PaymentMethod `json:"paymentMethod" validate:"required"`
	PaymentReference *string             `json:"paymentReference,omitempty"`
	Shipment         types.Shipment      `json:"shipment"`
	Note             *string             `json:"note,omitempty" validate:"omitempty,max=500"`
}

// OrderDTO is the API view of an order.
type OrderDTO struct {
	ID               uuid.UUID           `json:"id"`
	ShopID           uuid.UUID           `json:"shopId"`
	UserID           *uuid.UUID          `json:"userId,omitempty"`
	TrackingID       int64               `json:"trackingId"`
	Items            []types.OrderLine   `json:"items"`
	TotalAmount      decimal.Decimal     `json:"totalAmount"`
	Status           enums.OrderStatus   `json:"status"`
	PaymentMethod    enums.PaymentMethod `json:"paymentMethod"`
	PaymentReference *string             `json:"paymentReference,omitempty"`
	Shipment         types.Shipment      `json:"shipment"`
	Note             *string             `json:"note,omitempty"`
	ShippedAt        *time.Time          `json:"shippedAt,omitempty"`
	DeliveredAt      *time.Time          `json:"deliveredAt,omitempty"`
	CancelledAt      *time.Time          `json:"cancelledAt,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// FromModel maps a persisted order into its DTO.
func FromModel(m *models.Order) *OrderDTO {
	if m == nil {
		return nil
	}
	return &OrderDTO{
		ID:               m.ID,
		ShopID:           m.ShopID,
		UserID:           m.UserID,
		TrackingID:       m.TrackingID,
		Items:            m.Items,
		TotalAmount:      m.TotalAmount,
		Status:           m.Status,
		PaymentMethod:    m.PaymentMethod,
		PaymentReference: m.PaymentReference,
		Shipment:         m.Shipment,
		Note:             m.Note,
		ShippedAt:        m.ShippedAt,
		DeliveredAt:      m.DeliveredAt,
		CancelledAt:      m.CancelledAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
