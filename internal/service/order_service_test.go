package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"qr-menu/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	items, _ := args.Get(1).([]model.OrderItem)
	return args.Get(0).(*model.Order), items, args.Error(2)
}

func (m *MockOrderRepository) List(ctx context.Context, limit int) ([]model.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, at time.Time) (bool, error) {
	args := m.Called(ctx, id, status, at)
	return args.Bool(0), args.Error(1)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) OrderPlaced(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPublisher) StatusChanged(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

var settings = OrderSettings{TableCount: 20, EstimatedMinutes: 15}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// validRequest orders two Türk Kahvesi, one with a note, and an Espresso.
func validRequest() *model.OrderRequest {
	return &model.OrderRequest{
		TableNumber: 5,
		Items: []model.OrderItemRequest{
			{ProductID: 2, ProductName: "Türk Kahvesi", Quantity: 1, Price: dec("55.00")},
			{ProductID: 2, ProductName: "Türk Kahvesi", Quantity: 1, Price: dec("55.00"), Note: "Şekersiz"},
			{ProductID: 1, Quantity: 1, Price: dec("45.00")},
		},
		TotalPrice: dec("155"),
		CreatedAt:  time.Now(),
	}
}

type orderMocks struct {
	orders    *MockOrderRepository
	products  *MockProductRepository
	publisher *MockPublisher
	tx        *MockTx
}

func newOrderService() (*orderService, orderMocks) {
	m := orderMocks{
		orders:    new(MockOrderRepository),
		products:  new(MockProductRepository),
		publisher: new(MockPublisher),
		tx:        new(MockTx),
	}
	svc := NewOrderService(m.orders, m.products, m.publisher, settings, zerolog.Nop()).(*orderService)
	return svc, m
}

func (m orderMocks) assertExpectations(t *testing.T) {
	m.orders.AssertExpectations(t)
	m.products.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
	m.tx.AssertExpectations(t)
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService()

	var stored *model.Order
	var storedItems []model.OrderItem

	m.products.On("GetByIDs", ctx, []int64{2, 1}).Return(testProducts(), nil)
	m.orders.On("BeginTx", ctx).Return(m.tx, nil)
	m.orders.On("CreateOrder", ctx, m.tx, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) { stored = args.Get(2).(*model.Order) }).
		Return(nil)
	m.orders.On("CreateOrderItems", ctx, m.tx, mock.AnythingOfType("[]model.OrderItem")).
		Run(func(args mock.Arguments) { storedItems = args.Get(2).([]model.OrderItem) }).
		Return(nil)
	m.tx.On("Commit", ctx).Return(nil)
	m.publisher.On("OrderPlaced", ctx, mock.AnythingOfType("*model.Order")).Return(nil)

	ack, err := svc.CreateOrder(ctx, validRequest())

	require.NoError(t, err)
	require.NotNil(t, ack)
	assert.Equal(t, stored.ID.String(), ack.OrderID)
	assert.Equal(t, 15, ack.EstimatedTime)
	assert.Equal(t, model.OrderStatusPending, ack.Status)
	assert.Equal(t, AckMessage, ack.Message)

	assert.Equal(t, 5, stored.TableNumber)
	assert.True(t, dec("155").Equal(stored.TotalPrice))

	require.Len(t, storedItems, 3)
	assert.Equal(t, "Şekersiz", storedItems[1].Note)
	assert.Equal(t, "Espresso", storedItems[2].ProductName, "missing names come from the catalogue")
	for _, item := range storedItems {
		assert.Equal(t, stored.ID, item.OrderID)
	}

	assert.False(t, m.tx.rolledBack)
	m.assertExpectations(t)
}

func TestOrderService_CreateOrder_PublishFailureKeepsOrder(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService()

	m.products.On("GetByIDs", ctx, []int64{2, 1}).Return(testProducts(), nil)
	m.orders.On("BeginTx", ctx).Return(m.tx, nil)
	m.orders.On("CreateOrder", ctx, m.tx, mock.Anything).Return(nil)
	m.orders.On("CreateOrderItems", ctx, m.tx, mock.Anything).Return(nil)
	m.tx.On("Commit", ctx).Return(nil)
	m.publisher.On("OrderPlaced", ctx, mock.Anything).Return(errors.New("broker down"))

	ack, err := svc.CreateOrder(ctx, validRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, ack.OrderID)
	m.assertExpectations(t)
}

func TestOrderService_CreateOrder_ValidationErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		mutate      func(*model.OrderRequest) *model.OrderRequest
		expectedErr error
	}{
		{
			name:        "Nil request",
			mutate:      func(*model.OrderRequest) *model.OrderRequest { return nil },
			expectedErr: model.ErrEmptyOrder,
		},
		{
			name: "No items",
			mutate: func(r *model.OrderRequest) *model.OrderRequest {
				r.Items = nil
				return r
			},
			expectedErr: model.ErrEmptyOrder,
		},
		{
			name: "Table zero",
			mutate: func(r *model.OrderRequest) *model.OrderRequest {
				r.TableNumber = 0
				return r
			},
			expectedErr: model.ErrInvalidTable,
		},
		{
			name: "Table above count",
			mutate: func(r *model.OrderRequest) *model.OrderRequest {
				r.TableNumber = 21
				return r
			},
			expectedErr: model.ErrInvalidTable,
		},
		{
			name: "Zero quantity",
			mutate: func(r *model.OrderRequest) *model.OrderRequest {
				r.Items[0].Quantity = 0
				return r
			},
			expectedErr: model.ErrInvalidQuantity,
		},
		{
			name: "Missing product ID",
			mutate: func(r *model.OrderRequest) *model.OrderRequest {
				r.Items[0].ProductID = 0
				return r
			},
		},
		{
			name: "Negative price",
			mutate: func(r *model.OrderRequest) *model.OrderRequest {
				r.Items[0].Price = dec("-1")
				return r
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newOrderService()

			ack, err := svc.CreateOrder(ctx, tt.mutate(validRequest()))

			require.Error(t, err)
			assert.Nil(t, ack)
			if tt.expectedErr != nil {
				assert.Equal(t, tt.expectedErr, err)
			}
			m.products.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
			m.orders.AssertNotCalled(t, "BeginTx", mock.Anything)
		})
	}
}

func TestOrderService_CreateOrder_CatalogueChecks(t *testing.T) {
	ctx := context.Background()

	unavailable := testProducts()
	unavailable[0].IsAvailable = false

	tests := []struct {
		name        string
		products    []model.Product
		repoErr     error
		expectedErr error
	}{
		{name: "Unknown product", products: testProducts()[1:], expectedErr: model.ErrProductNotFound},
		{name: "Unavailable product", products: unavailable, expectedErr: model.ErrUnavailable},
		{name: "Repository error", repoErr: errors.New("database error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newOrderService()
			if tt.repoErr != nil {
				m.products.On("GetByIDs", ctx, []int64{2, 1}).Return(nil, tt.repoErr)
			} else {
				m.products.On("GetByIDs", ctx, []int64{2, 1}).Return(tt.products, nil)
			}

			ack, err := svc.CreateOrder(ctx, validRequest())

			require.Error(t, err)
			assert.Nil(t, ack)
			if tt.expectedErr != nil {
				assert.Equal(t, tt.expectedErr, err)
			}
			m.orders.AssertNotCalled(t, "BeginTx", mock.Anything)
		})
	}
}

func TestOrderService_CreateOrder_TotalMismatch(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService()
	m.products.On("GetByIDs", ctx, []int64{2, 1}).Return(testProducts(), nil)

	req := validRequest()
	req.TotalPrice = dec("150")

	ack, err := svc.CreateOrder(ctx, req)

	assert.Equal(t, model.ErrTotalMismatch, err)
	assert.Nil(t, ack)
	m.orders.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestOrderService_CreateOrder_PriceMismatch(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService()
	m.products.On("GetByIDs", ctx, []int64{1}).Return(testProducts()[:1], nil)

	req := &model.OrderRequest{
		TableNumber: 5,
		Items: []model.OrderItemRequest{
			{ProductID: 1, ProductName: "Espresso", Quantity: 10, Price: dec("0.01")},
		},
		TotalPrice: dec("0.10"),
		CreatedAt:  time.Now(),
	}

	ack, err := svc.CreateOrder(ctx, req)

	assert.Equal(t, model.ErrPriceMismatch, err)
	assert.Nil(t, ack)
	m.orders.AssertNotCalled(t, "BeginTx", mock.Anything)
	m.publisher.AssertNotCalled(t, "OrderPlaced", mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrder_StoresMenuPrices(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService()

	var storedItems []model.OrderItem

	m.products.On("GetByIDs", ctx, []int64{1}).Return(testProducts()[:1], nil)
	m.orders.On("BeginTx", ctx).Return(m.tx, nil)
	m.orders.On("CreateOrder", ctx, m.tx, mock.AnythingOfType("*model.Order")).Return(nil)
	m.orders.On("CreateOrderItems", ctx, m.tx, mock.AnythingOfType("[]model.OrderItem")).
		Run(func(args mock.Arguments) { storedItems = args.Get(2).([]model.OrderItem) }).
		Return(nil)
	m.tx.On("Commit", ctx).Return(nil)
	m.publisher.On("OrderPlaced", ctx, mock.AnythingOfType("*model.Order")).Return(nil)

	req := &model.OrderRequest{
		TableNumber: 3,
		Items: []model.OrderItemRequest{
			{ProductID: 1, Quantity: 2, Price: dec("45")},
		},
		TotalPrice: dec("90.00"),
		CreatedAt:  time.Now(),
	}

	_, err := svc.CreateOrder(ctx, req)

	require.NoError(t, err)
	require.Len(t, storedItems, 1)
	assert.Equal(t, "45.00", storedItems[0].Price.StringFixed(2))
	m.assertExpectations(t)
}

func TestOrderService_CreateOrder_TransactionRollback(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(m orderMocks)
	}{
		{
			name: "Order insert fails",
			setup: func(m orderMocks) {
				m.orders.On("CreateOrder", ctx, m.tx, mock.Anything).Return(errors.New("database error"))
			},
		},
		{
			name: "Item insert fails",
			setup: func(m orderMocks) {
				m.orders.On("CreateOrder", ctx, m.tx, mock.Anything).Return(nil)
				m.orders.On("CreateOrderItems", ctx, m.tx, mock.Anything).Return(errors.New("database error"))
			},
		},
		{
			name: "Commit fails",
			setup: func(m orderMocks) {
				m.orders.On("CreateOrder", ctx, m.tx, mock.Anything).Return(nil)
				m.orders.On("CreateOrderItems", ctx, m.tx, mock.Anything).Return(nil)
				m.tx.On("Commit", ctx).Return(errors.New("commit error"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newOrderService()
			m.products.On("GetByIDs", ctx, []int64{2, 1}).Return(testProducts(), nil)
			m.orders.On("BeginTx", ctx).Return(m.tx, nil)
			m.tx.On("Rollback", ctx).Return(nil)
			tt.setup(m)

			ack, err := svc.CreateOrder(ctx, validRequest())

			require.Error(t, err)
			assert.Nil(t, ack)
			assert.True(t, m.tx.rolledBack)
			m.publisher.AssertNotCalled(t, "OrderPlaced", mock.Anything, mock.Anything)
			m.assertExpectations(t)
		})
	}
}

func TestOrderService_CreateOrder_BeginTxError(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService()
	m.products.On("GetByIDs", ctx, []int64{2, 1}).Return(testProducts(), nil)
	m.orders.On("BeginTx", ctx).Return(nil, errors.New("pool closed"))

	ack, err := svc.CreateOrder(ctx, validRequest())

	require.Error(t, err)
	assert.Nil(t, ack)
	m.assertExpectations(t)
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	order := &model.Order{ID: orderID, TableNumber: 5, Status: model.OrderStatusPending}
	items := []model.OrderItem{
		{ID: uuid.New(), OrderID: orderID, ProductID: 1, ProductName: "Espresso", Quantity: 2, Price: dec("45")},
	}

	tests := []struct {
		name        string
		mockOrder   *model.Order
		mockItems   []model.OrderItem
		mockErr     error
		expectedErr error
		expectError bool
		expectItems int
	}{
		{name: "Success", mockOrder: order, mockItems: items, expectItems: 1},
		{name: "No items", mockOrder: &model.Order{ID: orderID}, expectItems: 0},
		{name: "Order not found", expectedErr: model.ErrOrderNotFound, expectError: true},
		{name: "Repository error", mockErr: errors.New("database error"), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newOrderService()
			if tt.mockOrder != nil {
				m.orders.On("GetByID", ctx, orderID).Return(tt.mockOrder, tt.mockItems, nil)
			} else {
				m.orders.On("GetByID", ctx, orderID).Return(nil, nil, tt.mockErr)
			}

			got, err := svc.GetByID(ctx, orderID)

			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, got)
				if tt.expectedErr != nil {
					assert.Equal(t, tt.expectedErr, err)
				}
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, got.Items)
			assert.Len(t, got.Items, tt.expectItems)
		})
	}
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{name: "Default", limit: 0, expected: 100},
		{name: "Explicit", limit: 20, expected: 20},
		{name: "Capped", limit: 1000, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newOrderService()
			m.orders.On("List", ctx, tt.expected).Return([]model.Order{{ID: uuid.New()}}, nil)

			orders, err := svc.List(ctx, tt.limit)
			require.NoError(t, err)
			assert.Len(t, orders, 1)
			m.assertExpectations(t)
		})
	}

	t.Run("Repository error", func(t *testing.T) {
		svc, m := newOrderService()
		m.orders.On("List", ctx, 100).Return(nil, errors.New("database error"))

		orders, err := svc.List(ctx, 0)
		require.Error(t, err)
		assert.Nil(t, orders)
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	t.Run("Success publishes the change", func(t *testing.T) {
		svc, m := newOrderService()
		svc.now = func() time.Time { return now }

		updated := &model.Order{ID: orderID, Status: model.OrderStatusPrepared, UpdatedAt: now}
		m.orders.On("UpdateStatus", ctx, orderID, model.OrderStatusPrepared, now).Return(true, nil)
		m.orders.On("GetByID", ctx, orderID).Return(updated, []model.OrderItem{}, nil)
		m.publisher.On("StatusChanged", ctx, updated).Return(nil)

		got, err := svc.UpdateStatus(ctx, orderID, model.OrderStatusPrepared)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusPrepared, got.Status)
		m.assertExpectations(t)
	})

	t.Run("Unknown status", func(t *testing.T) {
		svc, m := newOrderService()

		got, err := svc.UpdateStatus(ctx, orderID, "cancelled")
		assert.Equal(t, model.ErrInvalidStatus, err)
		assert.Nil(t, got)
		m.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing order", func(t *testing.T) {
		svc, m := newOrderService()
		svc.now = func() time.Time { return now }
		m.orders.On("UpdateStatus", ctx, orderID, model.OrderStatusServed, now).Return(false, nil)

		got, err := svc.UpdateStatus(ctx, orderID, model.OrderStatusServed)
		assert.Equal(t, model.ErrOrderNotFound, err)
		assert.Nil(t, got)
		m.publisher.AssertNotCalled(t, "StatusChanged", mock.Anything, mock.Anything)
	})

	t.Run("Repository error", func(t *testing.T) {
		svc, m := newOrderService()
		svc.now = func() time.Time { return now }
		m.orders.On("UpdateStatus", ctx, orderID, model.OrderStatusServed, now).Return(false, errors.New("database error"))

		got, err := svc.UpdateStatus(ctx, orderID, model.OrderStatusServed)
		require.Error(t, err)
		assert.Nil(t, got)
	})
}
