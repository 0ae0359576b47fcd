package service

import (
	"context"
	"fmt"
	"time"

	"qr-menu/internal/events"
	"qr-menu/internal/model"
	"qr-menu/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AckMessage is returned with every accepted order.
const AckMessage = "Order received"

// OrderSettings holds the venue limits applied to incoming orders.
type OrderSettings struct {
	TableCount       int
	EstimatedMinutes int
}

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	publisher   events.Publisher
	settings    OrderSettings
	logger      zerolog.Logger
	now         func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	publisher events.Publisher,
	settings OrderSettings,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		settings:    settings,
		logger:      logger.With().Str("service", "order").Logger(),
		now:         time.Now,
	}
}

// CreateOrder validates the request against the catalogue, recomputes the
// total from the submitted lines and persists the order in one transaction.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderAck, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	products, err := s.lookupProducts(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, item := range req.Items {
		price := products[item.ProductID].Price
		if !item.Price.Equal(price) {
			s.logger.Warn().
				Int64("product_id", item.ProductID).
				Str("submitted", item.Price.String()).
				Str("menu", price.String()).
				Msg("order item price mismatch")
			return nil, model.ErrPriceMismatch
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if !total.Equal(req.TotalPrice) {
		s.logger.Warn().
			Str("submitted", req.TotalPrice.String()).
			Str("computed", total.String()).
			Msg("order total mismatch")
		return nil, model.ErrTotalMismatch
	}

	// Start transaction
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := s.now()
	order := &model.Order{
		ID:               uuid.New(),
		TableNumber:      req.TableNumber,
		Status:           model.OrderStatusPending,
		TotalPrice:       total,
		EstimatedMinutes: s.settings.EstimatedMinutes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	orderItems := make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		name := item.ProductName
		if name == "" {
			name = products[item.ProductID].Name
		}
		orderItems[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: name,
			Quantity:    item.Quantity,
			Price:       products[item.ProductID].Price,
			Note:        item.Note,
		}
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(orderItems)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	order.Items = orderItems

	// The order is stored; a lost event only delays downstream consumers.
	if pubErr := s.publisher.OrderPlaced(ctx, order); pubErr != nil {
		s.logger.Warn().Err(pubErr).Str("order_id", order.ID.String()).Msg("failed to publish order placed event")
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("table_number", order.TableNumber).
		Int("item_count", len(orderItems)).
		Str("total", total.String()).
		Msg("order created successfully")

	return &model.OrderAck{
		OrderID:       order.ID.String(),
		EstimatedTime: order.EstimatedMinutes,
		Status:        order.Status,
		Message:       AckMessage,
	}, nil
}

// GetByID retrieves an order by its ID with all items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	order.Items = items
	if order.Items == nil {
		order.Items = []model.OrderItem{}
	}
	return order, nil
}

// List retrieves the most recent orders.
func (s *orderService) List(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	orders, err := s.orderRepo.List(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets an order's status. Any known status may follow any other;
// staff correct mistakes by stepping back.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		s.logger.Warn().Str("order_id", id.String()).Str("status", string(status)).Msg("invalid order status")
		return nil, model.ErrInvalidStatus
	}

	found, err := s.orderRepo.UpdateStatus(ctx, id, status, s.now())
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !found {
		return nil, model.ErrOrderNotFound
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if pubErr := s.publisher.StatusChanged(ctx, order); pubErr != nil {
		s.logger.Warn().Err(pubErr).Str("order_id", id.String()).Msg("failed to publish status changed event")
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("status", string(status)).
		Msg("order status updated")

	return order, nil
}

// validateOrderRequest checks the request shape before touching the database.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil || len(req.Items) == 0 {
		return model.ErrEmptyOrder
	}

	if req.TableNumber < 1 || req.TableNumber > s.settings.TableCount {
		s.logger.Warn().Int("table_number", req.TableNumber).Msg("invalid table number")
		return model.ErrInvalidTable
	}

	for i, item := range req.Items {
		if item.ProductID <= 0 {
			return fmt.Errorf("item %d: product ID is required", i)
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Int64("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}

		if item.Price.IsNegative() {
			return fmt.Errorf("item %d: price must not be negative", i)
		}
	}

	return nil
}

// lookupProducts loads every referenced product and rejects unknown or
// unavailable ones.
func (s *orderService) lookupProducts(ctx context.Context, items []model.OrderItemRequest) (map[int64]model.Product, error) {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to look up products")
		return nil, fmt.Errorf("failed to look up products: %w", err)
	}

	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			s.logger.Warn().Int64("product_id", id).Msg("product not found")
			return nil, model.ErrProductNotFound
		}
		if !p.IsAvailable {
			s.logger.Warn().Int64("product_id", id).Msg("product not available")
			return nil, model.ErrUnavailable
		}
	}

	return byID, nil
}
