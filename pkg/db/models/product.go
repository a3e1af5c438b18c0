package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a shop catalog entry. Discount is a percentage.
type Product struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	ShopID    uuid.UUID        `gorm:"column:shop_id;type:uuid;not null;index"`
	Title     string           `gorm:"column:title;not null"`
	Price     decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	Discount  decimal.Decimal  `gorm:"column:discount;type:numeric(5,2);not null;default:0"`
	Stock     int              `gorm:"column:stock;not null;default:0"`
	Variants  []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Variant returns the variant at index, if present.
func (p Product) Variant(index int) (*ProductVariant, bool) {
	for i := range p.Variants {
		if p.Variants[i].Position == index {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// ProductVariant is addressed by its position inside the product.
type ProductVariant struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:product_variants_position_key,priority:1"`
	Position  int             `gorm:"column:position;not null;uniqueIndex:product_variants_position_key,priority:2"`
	Name      string          `gorm:"column:name;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Discount  decimal.Decimal `gorm:"column:discount;type:numeric(5,2);not null;default:0"`
	Stock     int             `gorm:"column:stock;not null;default:0"`
}

func (ProductVariant) TableName() string { return "product_variants" }

func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
