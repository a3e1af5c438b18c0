package shops

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
)

// ShopDTO exposes shop data in API responses.
type ShopDTO struct {
	ID        uuid.UUID        `json:"id"`
	Subdomain string           `json:"subdomain"`
	Name      string           `json:"name"`
	OwnerID   uuid.UUID        `json:"ownerId"`
	Status    enums.ShopStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// StatusDTO is the lifecycle view returned by the status query.
type StatusDTO struct {
	ShopID    uuid.UUID        `json:"shopId"`
	Subdomain string           `json:"subdomain"`
	Status    enums.ShopStatus `json:"status"`
	Active    bool             `json:"active"`
	IsOwner   bool             `json:"isOwner"`
}

// RegisterInput captures the fields a new shop is created with.
type RegisterInput struct {
	Subdomain string `json:"subdomain" validate:"required"`
	Name      string `json:"name" validate:"required,max=120"`
}

// FromModel maps the persisted shop into a DTO.
func FromModel(m *models.Shop) *ShopDTO {
	if m == nil {
		return nil
	}
	return &ShopDTO{
		ID:        m.ID,
		Subdomain: m.Subdomain,
		Name:      m.Name,
		OwnerID:   m.OwnerID,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
