// Package dbtest opens isolated SQLite databases carrying the storefront schema.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var seq atomic.Int64

// Schema mirrors the Postgres migrations closely enough for repository tests:
// same tables, same unique keys, JSON columns as TEXT.
var Schema = []string{
	`CREATE TABLE shops (
  id TEXT PRIMARY KEY,
  subdomain TEXT NOT NULL,
  name TEXT NOT NULL,
  owner_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (subdomain)
);`,
	`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  shop_id TEXT NOT NULL,
  title TEXT NOT NULL,
  price TEXT NOT NULL,
  discount TEXT NOT NULL DEFAULT '0',
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  name TEXT NOT NULL,
  price TEXT NOT NULL,
  discount TEXT NOT NULL DEFAULT '0',
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  UNIQUE (product_id, position)
);`,
	`CREATE TABLE carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id)
);`,
	`CREATE TABLE cart_baskets (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  shop_id TEXT NOT NULL,
  items TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, shop_id)
);`,
	`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  shop_id TEXT NOT NULL,
  user_id TEXT,
  tracking_id INTEGER NOT NULL,
  items TEXT NOT NULL,
  total_amount TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'processing',
  payment_method TEXT NOT NULL,
  payment_reference TEXT,
  shipment TEXT NOT NULL,
  note TEXT,
  shipped_at DATETIME,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (tracking_id)
);`,
	`CREATE UNIQUE INDEX orders_payment_reference_key ON orders (payment_reference) WHERE payment_reference IS NOT NULL;`,
}

// Open returns a private in-memory database with Schema applied. The pool is
// pinned to one connection so the database outlives individual queries.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=0", name, seq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range Schema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}
