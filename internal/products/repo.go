// Package products loads catalog rows for the cart and order engines and
// applies stock reservations. Catalog management itself lives elsewhere.
package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
)

// Repository reads products with their variants.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) withVariants(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// Create persists a product and its variants.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByIDs loads products by id across shops. Missing ids are simply absent.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.withVariants(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindInShop loads the products in ids that belong to shopID.
func (r *Repository) FindInShop(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.withVariants(ctx).Where("shop_id = ? AND id IN ?", shopID, ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Index keys products by id.
func Index(products []models.Product) map[uuid.UUID]*models.Product {
	out := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out
}
