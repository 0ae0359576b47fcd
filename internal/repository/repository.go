package repository

import (
	"context"
	"time"

	"qr-menu/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductFilter narrows a product listing. Zero values mean no restriction.
type ProductFilter struct {
	CategoryID int64
	Limit      int
	Offset     int
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves products ordered by ID.
	List(ctx context.Context, filter ProductFilter) ([]model.Product, error)

	// GetFeatured retrieves featured products, newest first.
	GetFeatured(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. A missing product is (nil, nil).
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByIDs retrieves the products that exist among ids.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	// Upsert inserts or replaces products by ID and returns how many rows were written.
	Upsert(ctx context.Context, products []model.Product) (int, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// List retrieves up to limit orders with their items, newest first.
	List(ctx context.Context, limit int) ([]model.Order, error)

	// UpdateStatus sets the status of an order. It reports false if no order has id.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, at time.Time) (bool, error)
}
