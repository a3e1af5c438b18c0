package shops

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/internal/repo"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
)

// Repository handles shop persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to shop operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create persists a new shop row.
func (r *Repository) Create(ctx context.Context, shop *models.Shop) error {
	return r.DB(ctx).Create(shop).Error
}

// FindBySubdomain loads a shop by its exact subdomain.
func (r *Repository) FindBySubdomain(ctx context.Context, subdomain string) (*models.Shop, error) {
	var shop models.Shop
	if err := r.DB(ctx).Where("subdomain = ?", subdomain).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// FindByID loads a shop by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.DB(ctx).Where("id = ?", id).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// FindByIDs loads every shop in ids in one query. Missing ids are simply absent.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Shop, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var shops []models.Shop
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// UpdateStatus sets the lifecycle status and reports whether a row changed.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ShopStatus) (bool, error) {
	res := r.DB(ctx).Model(&models.Shop{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
