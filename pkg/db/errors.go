package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation    = "23505"
	sqliteUniquePrefix   = "UNIQUE constraint failed: "
	postgresDuplicateMsg = "duplicate key value"
)

// UniqueKey names a unique constraint the way each driver reports it.
type UniqueKey struct {
	// Constraint is the Postgres constraint or index name.
	Constraint string
	// Columns is the SQLite rendering, e.g. "orders.tracking_id".
	Columns string
}

var (
	ShopSubdomainKey   = UniqueKey{Constraint: "shops_subdomain_key", Columns: "shops.subdomain"}
	CartUserKey        = UniqueKey{Constraint: "carts_user_id_key", Columns: "carts.user_id"}
	CartBasketShopKey  = UniqueKey{Constraint: "cart_baskets_cart_shop_key", Columns: "cart_baskets.cart_id, cart_baskets.shop_id"}
	OrderTrackingIDKey = UniqueKey{Constraint: "orders_tracking_id_key", Columns: "orders.tracking_id"}
	OrderPaymentRefKey = UniqueKey{Constraint: "orders_payment_reference_key", Columns: "orders.payment_reference"}
)

// IsUniqueViolation reports whether err is a unique violation on key.
func IsUniqueViolation(err error, key UniqueKey) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == key.Constraint
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation && pqErr.Constraint == key.Constraint
	}

	msg := err.Error()
	if idx := strings.Index(msg, sqliteUniquePrefix); idx >= 0 {
		return strings.TrimSpace(msg[idx+len(sqliteUniquePrefix):]) == key.Columns
	}
	return strings.Contains(msg, postgresDuplicateMsg) && strings.Contains(msg, key.Constraint)
}

// IsAnyUniqueViolation reports whether err is any unique violation.
func IsAnyUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	msg := err.Error()
	return strings.Contains(msg, sqliteUniquePrefix) || strings.Contains(msg, postgresDuplicateMsg)
}
