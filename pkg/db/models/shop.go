package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/pkg/enums"
)

// Shop is the tenant row addressed by subdomain.
type Shop struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Subdomain string           `gorm:"column:subdomain;not null;uniqueIndex:shops_subdomain_key"`
	Name      string           `gorm:"column:name;not null"`
	OwnerID   uuid.UUID        `gorm:"column:owner_id;type:uuid;not null"`
	Status    enums.ShopStatus `gorm:"column:status;type:shop_status;not null;default:'active'"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Shop) TableName() string { return "shops" }

func (s *Shop) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
