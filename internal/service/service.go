package service

import (
	"context"

	"qr-menu/internal/model"
	"qr-menu/internal/repository"

	"github.com/google/uuid"
)

// ProductService defines operations for the product catalogue.
type ProductService interface {
	// List retrieves products, optionally narrowed to one category and paginated.
	List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetTop retrieves the featured products, newest first.
	GetTop(ctx context.Context) ([]model.Product, error)
}

// OrderService defines operations for table orders.
type OrderService interface {
	// CreateOrder validates and persists an order and acknowledges it.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderAck, error)

	// GetByID retrieves an order by its ID with all items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// List retrieves the most recent orders, newest first.
	List(ctx context.Context, limit int) ([]model.Order, error)

	// UpdateStatus moves an order to a new status and returns the updated order.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
}
