package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/shopfront-backend/api/middleware"
	"github.com/angelmondragon/shopfront-backend/internal/shops"
	"github.com/angelmondragon/shopfront-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
)

type shopResolver interface {
	ResolveBySubdomain(ctx context.Context, subdomain string) (*shops.ShopDTO, error)
}

func requireIdentity(r *http.Request) (auth.Identity, error) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return auth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return identity, nil
}

// shopFromPath resolves the {subdomain} URL parameter. The shop may be inactive.
func shopFromPath(r *http.Request, resolver shopResolver) (*shops.ShopDTO, error) {
	if resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shop directory unavailable")
	}
	return resolver.ResolveBySubdomain(r.Context(), chi.URLParam(r, "subdomain"))
}

// activeShopFromPath is shopFromPath gated on the shop lifecycle. Every
// tenant data route goes through it; only the status view reads inactive shops.
func activeShopFromPath(r *http.Request, resolver shopResolver) (*shops.ShopDTO, error) {
	shop, err := shopFromPath(r, resolver)
	if err != nil {
		return nil, err
	}
	if err := shops.AssertActive(shop); err != nil {
		return nil, err
	}
	return shop, nil
}
