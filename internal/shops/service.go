package shops

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/pkg/auth"
	"github.com/angelmondragon/shopfront-backend/pkg/db"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
)

const (
	minSubdomainLen = 3
	maxSubdomainLen = 63
)

var subdomainRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// reserved labels collide with the root site or the API host.
var reservedSubdomains = map[string]struct{}{
	"www": {},
	"api": {},
}

type shopRepository interface {
	Create(ctx context.Context, shop *models.Shop) error
	FindBySubdomain(ctx context.Context, subdomain string) (*models.Shop, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Shop, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ShopStatus) (bool, error)
}

// Service exposes the shop directory.
type Service interface {
	ResolveBySubdomain(ctx context.Context, subdomain string) (*ShopDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ShopDTO, error)
	LookupMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ShopDTO, error)
	StatusFor(ctx context.Context, subdomain string, viewer auth.Identity) (*StatusDTO, error)
	Register(ctx context.Context, ownerID uuid.UUID, input RegisterInput) (*ShopDTO, error)
	SetStatus(ctx context.Context, actor auth.Identity, shopID uuid.UUID, status enums.ShopStatus) (*ShopDTO, error)
}

type service struct {
	repo shopRepository
}

// NewService builds a shop directory over the provided repository.
func NewService(repo shopRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	return &service{repo: repo}, nil
}

// ValidateSubdomain enforces the DNS label rules used for shop subdomains.
func ValidateSubdomain(subdomain string) error {
	if len(subdomain) < minSubdomainLen || len(subdomain) > maxSubdomainLen {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("subdomain must be %d-%d characters", minSubdomainLen, maxSubdomainLen))
	}
	if !subdomainRe.MatchString(subdomain) {
		return pkgerrors.New(pkgerrors.CodeValidation, "subdomain may contain lowercase letters, digits and inner hyphens only")
	}
	if _, ok := reservedSubdomains[subdomain]; ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "subdomain is reserved")
	}
	return nil
}

// AssertActive fails with TENANT_UNAVAILABLE for suspended or banned shops.
func AssertActive(shop *ShopDTO) error {
	if shop == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	if !shop.Status.IsActive() {
		return pkgerrors.New(pkgerrors.CodeTenantUnavailable, "shop is not available").
			WithDetails(map[string]any{"shopId": shop.ID, "status": shop.Status})
	}
	return nil
}

// AssertOwnership fails with FORBIDDEN unless userID owns the shop.
func AssertOwnership(shop *ShopDTO, userID uuid.UUID) error {
	if shop == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	if userID == uuid.Nil || shop.OwnerID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not the shop owner")
	}
	return nil
}

func (s *service) ResolveBySubdomain(ctx context.Context, subdomain string) (*ShopDTO, error) {
	subdomain = strings.TrimSpace(subdomain)
	if subdomain == "" {
		return nil, pkgerrors.New(pkgerrors.CodeMissingParameter, "subdomain is required")
	}
	shop, err := s.repo.FindBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return FromModel(shop), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ShopDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeMissingParameter, "shop id is required")
	}
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return FromModel(shop), nil
}

func (s *service) LookupMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ShopDTO, error) {
	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shops")
	}
	out := make(map[uuid.UUID]*ShopDTO, len(rows))
	for i := range rows {
		out[rows[i].ID] = FromModel(&rows[i])
	}
	return out, nil
}

func (s *service) StatusFor(ctx context.Context, subdomain string, viewer auth.Identity) (*StatusDTO, error) {
	shop, err := s.ResolveBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	privileged := viewer.IsAdmin || (viewer.UserID != uuid.Nil && shop.OwnerID == viewer.UserID)
	if !privileged && !shop.Status.IsActive() {
		// inactive shops are invisible to everyone but their owner and admins
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return &StatusDTO{
		ShopID:    shop.ID,
		Subdomain: shop.Subdomain,
		Status:    shop.Status,
		Active:    shop.Status.IsActive(),
		IsOwner:   shop.OwnerID == viewer.UserID,
	}, nil
}

func (s *service) Register(ctx context.Context, ownerID uuid.UUID, input RegisterInput) (*ShopDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner identity required")
	}
	subdomain := strings.TrimSpace(input.Subdomain)
	if err := ValidateSubdomain(subdomain); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	shop := &models.Shop{
		Subdomain: subdomain,
		Name:      name,
		OwnerID:   ownerID,
		Status:    enums.ShopStatusActive,
	}
	if err := s.repo.Create(ctx, shop); err != nil {
		if db.IsUniqueViolation(err, db.ShopSubdomainKey) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "subdomain already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shop")
	}
	return FromModel(shop), nil
}

func (s *service) SetStatus(ctx context.Context, actor auth.Identity, shopID uuid.UUID, status enums.ShopStatus) (*ShopDTO, error) {
	if !actor.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid shop status %q", status))
	}
	updated, err := s.repo.UpdateStatus(ctx, shopID, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shop status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return s.GetByID(ctx, shopID)
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
}
