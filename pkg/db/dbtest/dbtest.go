// Package dbtest opens throwaway sqlite databases carrying the storefront schema.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLite DDL mirroring pkg/migrate/migrations. Defaults that Postgres generates (ids) are
// assigned by the repositories instead.
const (
	UsersTable = `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		phone TEXT,
		preferred_locale TEXT NOT NULL DEFAULT 'en',
		role TEXT NOT NULL DEFAULT 'customer',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`

	ProductsTable = `CREATE TABLE products (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL,
		brand TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		tags TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`

	ProductTranslationsTable = `CREATE TABLE product_translations (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		locale TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		UNIQUE (product_id, locale)
	)`

	ProductVariantsTable = `CREATE TABLE product_variants (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		name TEXT NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0
	)`

	VariantStoragesTable = `CREATE TABLE variant_storages (
		id TEXT PRIMARY KEY,
		variant_id TEXT NOT NULL,
		label TEXT NOT NULL,
		price NUMERIC NOT NULL,
		compare_at_price NUMERIC,
		stock INTEGER NOT NULL DEFAULT 0,
		UNIQUE (variant_id, label)
	)`

	DiscountsTable = `CREATE TABLE discounts (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		percent_off NUMERIC NOT NULL,
		starts_at DATETIME NOT NULL,
		ends_at DATETIME NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`

	LocationsTable = `CREATE TABLE locations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address_line TEXT NOT NULL,
		city TEXT NOT NULL,
		country TEXT NOT NULL,
		phone TEXT,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		opening_hours TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`

	ContactMessagesTable = `CREATE TABLE contact_messages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		subject TEXT NOT NULL,
		message TEXT NOT NULL,
		locale TEXT NOT NULL DEFAULT 'en',
		user_id TEXT,
		created_at DATETIME
	)`

	CartSnapshotsTable = `CREATE TABLE cart_snapshots (
		storage_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`
)

// CatalogTables lists the DDL for the product graph.
var CatalogTables = []string{ProductsTable, ProductTranslationsTable, ProductVariantsTable, VariantStoragesTable}

// Open returns an isolated in-memory database with ddl applied.
func Open(t testing.TB, ddl ...string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range ddl {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply ddl: %v", err)
		}
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}
