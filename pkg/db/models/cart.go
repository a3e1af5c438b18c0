package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/pkg/types"
)

// Cart is the per-user container of shop baskets.
type Cart struct {
	ID        uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID    `gorm:"column:user_id;type:uuid;not null;uniqueIndex:carts_user_id_key"`
	Baskets   []CartBasket `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (Cart) TableName() string { return "carts" }

func (c *Cart) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CartBasket groups the lines a user holds for one shop.
type CartBasket struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	CartID    uuid.UUID        `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:cart_baskets_cart_shop_key,priority:1"`
	ShopID    uuid.UUID        `gorm:"column:shop_id;type:uuid;not null;uniqueIndex:cart_baskets_cart_shop_key,priority:2"`
	Items     []types.CartLine `gorm:"column:items;type:jsonb;serializer:json;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartBasket) TableName() string { return "cart_baskets" }

func (b *CartBasket) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
