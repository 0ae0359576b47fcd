package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the DDL for the menu backend. Every statement is idempotent.
const Schema = `
	CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		name_en TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		description_en TEXT NOT NULL DEFAULT '',
		price NUMERIC(10, 2) NOT NULL CHECK (price >= 0),
		image_url TEXT NOT NULL DEFAULT '',
		category_id BIGINT NOT NULL,
		featured BOOLEAN NOT NULL DEFAULT FALSE,
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		details TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id);
	CREATE INDEX IF NOT EXISTS idx_products_featured ON products(featured) WHERE featured;

	CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		table_number INTEGER NOT NULL CHECK (table_number > 0),
		status TEXT NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'preparing', 'prepared', 'served')),
		total_price NUMERIC(10, 2) NOT NULL CHECK (total_price >= 0),
		customer_note TEXT NOT NULL DEFAULT '',
		estimated_minutes INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC);

	CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id),
		product_name TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		price NUMERIC(10, 2) NOT NULL CHECK (price >= 0),
		note TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
`

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
