package migrate

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// sqliteSchema mirrors the goose migrations for the local sqlite driver and tests.
// Constraints that matter for behaviour (unique keys, partial unique indexes) are kept.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		category_name TEXT NOT NULL,
		is_deleted BOOLEAN NOT NULL DEFAULT false,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		category_id TEXT NOT NULL,
		item_name TEXT NOT NULL,
		item_price NUMERIC NOT NULL,
		image TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		parcel_fee_per_piece NUMERIC NOT NULL DEFAULT 0,
		is_available BOOLEAN NOT NULL DEFAULT true,
		is_published BOOLEAN NOT NULL DEFAULT true,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS banners (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		file_url TEXT NOT NULL,
		is_deleted BOOLEAN NOT NULL DEFAULT false,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		phone_no TEXT NOT NULL UNIQUE,
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		business_name TEXT NOT NULL,
		user_name TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		pin INTEGER NOT NULL,
		convenience_fee NUMERIC NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT true,
		is_deleted BOOLEAN NOT NULL DEFAULT false,
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS clients_singleton_idx ON clients (is_deleted) WHERE is_deleted = false`,
	`CREATE TABLE IF NOT EXISTS carts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		is_deleted BOOLEAN NOT NULL DEFAULT false,
		is_purchased BOOLEAN NOT NULL DEFAULT false,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS carts_active_user_idx ON carts (user_id) WHERE is_deleted = false AND is_purchased = false`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id TEXT PRIMARY KEY,
		cart_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (cart_id, item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS day_sequences (
		day TEXT PRIMARY KEY,
		counter INTEGER NOT NULL,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		cart_id TEXT NOT NULL,
		order_number TEXT NOT NULL UNIQUE,
		token_number TEXT NOT NULL,
		order_day TEXT NOT NULL,
		order_type TEXT NOT NULL,
		order_status TEXT NOT NULL DEFAULT 'Confirm',
		sub_total NUMERIC NOT NULL,
		parcel_fee NUMERIC NOT NULL,
		convenience_fee NUMERIC NOT NULL,
		business_name TEXT NOT NULL,
		total_price NUMERIC NOT NULL,
		is_deleted BOOLEAN NOT NULL DEFAULT false,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (order_day, token_number)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price NUMERIC NOT NULL,
		parcel_fee_per_piece NUMERIC NOT NULL,
		total_item_price NUMERIC NOT NULL,
		position INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS order_status_events (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		action TEXT NOT NULL,
		from_status TEXT,
		to_status TEXT NOT NULL,
		actor_id TEXT,
		actor_role TEXT NOT NULL,
		forced BOOLEAN NOT NULL DEFAULT false,
		created_at DATETIME
	)`,
}

// ApplySQLite creates the schema on a sqlite connection. It is idempotent.
func ApplySQLite(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	if name := conn.Dialector.Name(); name != "sqlite" {
		return fmt.Errorf("sqlite schema cannot be applied to %s", name)
	}
	for _, stmt := range sqliteSchema {
		if err := conn.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema (%s): %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return strings.TrimSpace(stmt[:i])
	}
	return stmt
}
