package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/shopfront-backend/api/responses"
	"github.com/angelmondragon/shopfront-backend/api/validators"
	cartsvc "github.com/angelmondragon/shopfront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
)

// addItemRequest is the add-to-cart body. A missing productId is reported by
// the cart engine as MISSING_PARAMETER.
type addItemRequest struct {
	ProductID    uuid.UUID `json:"productId"`
	VariantIndex *int      `json:"variantIndex,omitempty"`
	Quantity     int       `json:"quantity,omitempty"`
}

// CartGet returns the caller's cart, creating it on first access.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.GetOrCreateCart(r.Context(), identity.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// TenantCartGet handles GET /shops/{subdomain}/cart. It returns the whole
// cart once the addressed shop is known to be active.
func TenantCartGet(shops shopResolver, svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	cartGet := CartGet(svc, logg)
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := activeShopFromPath(r, shops); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cartGet(w, r)
	}
}

// CartAddItem handles POST /cart?shopId=X.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := validators.RequireQueryUUID(r, "shopId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addItem(w, r, svc, logg, shopID)
	}
}

// TenantCartAddItem handles POST /shops/{subdomain}/cart.
func TenantCartAddItem(shops shopResolver, svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, err := activeShopFromPath(r, shops)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addItem(w, r, svc, logg, shop.ID)
	}
}

func addItem(w http.ResponseWriter, r *http.Request, svc cartsvc.Service, logg *logger.Logger, shopID uuid.UUID) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
		return
	}
	identity, err := requireIdentity(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	var payload addItemRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	view, err := svc.AddItem(r.Context(), identity.UserID, cartsvc.AddItemInput{
		ShopID:       shopID,
		ProductID:    payload.ProductID,
		VariantIndex: payload.VariantIndex,
		Quantity:     payload.Quantity,
	})
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, view)
}

// CartRemoveBasket handles DELETE /cart?shopId=X.
func CartRemoveBasket(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shopID, err := validators.RequireQueryUUID(r, "shopId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.RemoveBasket(r.Context(), identity.UserID, shopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
