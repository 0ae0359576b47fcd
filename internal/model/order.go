package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the kitchen-facing status of a placed order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusPrepared  OrderStatus = "prepared"
	OrderStatusServed    OrderStatus = "served"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusPrepared, OrderStatusServed:
		return true
	}
	return false
}

// Order represents a persisted table order.
type Order struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	TableNumber      int             `json:"tableNumber" db:"table_number"`
	Status           OrderStatus     `json:"status" db:"status"`
	TotalPrice       decimal.Decimal `json:"totalPrice" db:"total_price"`
	CustomerNote     string          `json:"customerNote" db:"customer_note"`
	EstimatedMinutes int             `json:"estimatedTime" db:"estimated_minutes"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time       `json:"updatedAt" db:"updated_at"`
	Items            []OrderItem     `json:"items"`
}

// OrderItem represents a line in a persisted order.
type OrderItem struct {
	ID          uuid.UUID       `json:"-" db:"id"`
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	ProductID   int64           `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Note        string          `json:"note" db:"note"`
}

// OrderRequest is the body of POST /api/orders.
type OrderRequest struct {
	TableNumber int                `json:"tableNumber"`
	Items       []OrderItemRequest `json:"items"`
	TotalPrice  decimal.Decimal    `json:"totalPrice"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// OrderItemRequest represents a single line in an order request.
type OrderItemRequest struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Note        string          `json:"note"`
}

// OrderAck is the acknowledgement returned when an order is accepted.
type OrderAck struct {
	OrderID       string      `json:"orderId"`
	EstimatedTime int         `json:"estimatedTime"`
	Status        OrderStatus `json:"status,omitempty"`
	Message       string      `json:"message,omitempty"`
}

// StatusUpdateRequest is the body of PATCH /api/orders/{id}.
type StatusUpdateRequest struct {
	Status OrderStatus `json:"status"`
}

// OrderSnapshot is the customer-side record of the order being tracked.
type OrderSnapshot struct {
	OrderID       string             `json:"orderId,omitempty"`
	TableNumber   int                `json:"tableNumber"`
	Items         []OrderItemRequest `json:"items"`
	TotalPrice    decimal.Decimal    `json:"totalPrice"`
	CreatedAt     time.Time          `json:"createdAt"`
	EstimatedTime int                `json:"estimatedTime,omitempty"`
	Message       string             `json:"message,omitempty"`
}

// Request converts the snapshot into the submission payload.
func (s OrderSnapshot) Request() OrderRequest {
	return OrderRequest{
		TableNumber: s.TableNumber,
		Items:       s.Items,
		TotalPrice:  s.TotalPrice,
		CreatedAt:   s.CreatedAt,
	}
}

// WithAck merges the server acknowledgement into the snapshot.
func (s OrderSnapshot) WithAck(ack OrderAck) OrderSnapshot {
	s.OrderID = ack.OrderID
	s.EstimatedTime = ack.EstimatedTime
	s.Message = ack.Message
	return s
}
