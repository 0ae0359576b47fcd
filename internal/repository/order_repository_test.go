package repository

import (
	"context"
	"testing"
	"time"

	"qr-menu/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupOrderTestDB creates a test database with seeded products.
func setupOrderTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	pool, cleanup := setupTestDB(t)
	seedProducts(t, NewProductRepository(pool, zerolog.Nop()), testProducts())
	return pool, cleanup
}

func newOrder(table int, at time.Time) *model.Order {
	return &model.Order{
		ID:               uuid.New(),
		TableNumber:      table,
		Status:           model.OrderStatusPending,
		TotalPrice:       price("145.00"),
		CustomerNote:     "",
		EstimatedMinutes: 15,
		CreatedAt:        at,
		UpdatedAt:        at,
	}
}

func orderItems(orderID uuid.UUID) []model.OrderItem {
	return []model.OrderItem{
		{ID: uuid.New(), OrderID: orderID, ProductID: 2, ProductName: "Türk Kahvesi", Quantity: 2, Price: price("55.00"), Note: "Şekersiz"},
		{ID: uuid.New(), OrderID: orderID, ProductID: 1, ProductName: "Espresso", Quantity: 1, Price: price("45.00")},
	}
}

// insertOrder commits an order with its items.
func insertOrder(t *testing.T, repo OrderRepository, order *model.Order, items []model.OrderItem) {
	ctx := context.Background()
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, repo.CreateOrderItems(ctx, tx, items))
	require.NoError(t, tx.Commit(ctx))
}

func TestOrderRepository_BeginTx(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NotNil(t, tx)

	assert.NoError(t, tx.Rollback(ctx))
}

func TestOrderRepository_CreateOrder(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	now := time.Now()
	noted := newOrder(7, now)
	noted.CustomerNote = "Pencere kenarı"

	tests := []struct {
		name      string
		order     *model.Order
		expectErr bool
	}{
		{name: "Create order", order: newOrder(5, now)},
		{name: "Create order with note", order: noted},
		{
			name: "Unknown status is rejected",
			order: func() *model.Order {
				o := newOrder(5, now)
				o.Status = "cancelled"
				return o
			}(),
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.expectErr {
				sub, err := tx.Begin(ctx)
				require.NoError(t, err)
				defer sub.Rollback(ctx)
				require.Error(t, repo.CreateOrder(ctx, sub, tt.order))
				return
			}

			require.NoError(t, repo.CreateOrder(ctx, tx, tt.order))

			var count int
			err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM orders WHERE id = $1", tt.order.ID).Scan(&count)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	}
}

func TestOrderRepository_CreateOrderItems(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	order := newOrder(3, time.Now())
	require.NoError(t, repo.CreateOrder(ctx, tx, order))

	tests := []struct {
		name  string
		items []model.OrderItem
	}{
		{name: "Create multiple order items", items: orderItems(order.ID)},
		{name: "Create single order item", items: orderItems(order.ID)[:1]},
		{name: "Create empty order items", items: []model.OrderItem{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, repo.CreateOrderItems(ctx, tx, tt.items))

			if len(tt.items) > 0 {
				var count int
				err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM order_items WHERE id = $1", tt.items[0].ID).Scan(&count)
				require.NoError(t, err)
				assert.Equal(t, 1, count)
			}
		})
	}
}

func TestOrderRepository_GetByID(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	order := newOrder(5, time.Now().UTC())
	items := orderItems(order.ID)
	insertOrder(t, repo, order, items)

	t.Run("Order exists with items", func(t *testing.T) {
		got, gotItems, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, got)

		assert.Equal(t, order.ID, got.ID)
		assert.Equal(t, 5, got.TableNumber)
		assert.Equal(t, model.OrderStatusPending, got.Status)
		assert.True(t, order.TotalPrice.Equal(got.TotalPrice))
		assert.Equal(t, 15, got.EstimatedMinutes)
		assert.WithinDuration(t, order.CreatedAt, got.CreatedAt, time.Millisecond)

		require.Len(t, gotItems, 2)
		for i := range items {
			assert.Equal(t, items[i].ProductID, gotItems[i].ProductID)
			assert.Equal(t, items[i].ProductName, gotItems[i].ProductName)
			assert.Equal(t, items[i].Quantity, gotItems[i].Quantity)
			assert.True(t, items[i].Price.Equal(gotItems[i].Price))
			assert.Equal(t, items[i].Note, gotItems[i].Note)
		}
	})

	t.Run("Order does not exist", func(t *testing.T) {
		got, gotItems, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Nil(t, gotItems)
	})
}

func TestOrderRepository_List(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	older := newOrder(3, base)
	newer := newOrder(5, base.Add(10*time.Minute))
	insertOrder(t, repo, older, orderItems(older.ID)[:1])
	insertOrder(t, repo, newer, orderItems(newer.ID))

	t.Run("Newest first with items", func(t *testing.T) {
		orders, err := repo.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, orders, 2)

		assert.Equal(t, newer.ID, orders[0].ID)
		assert.Len(t, orders[0].Items, 2)
		assert.Equal(t, older.ID, orders[1].ID)
		assert.Len(t, orders[1].Items, 1)
	})

	t.Run("Limit", func(t *testing.T) {
		orders, err := repo.List(ctx, 1)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, newer.ID, orders[0].ID)
	})
}

func TestOrderRepository_List_Empty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	orders, err := NewOrderRepository(pool, zerolog.Nop()).List(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	order := newOrder(5, time.Now().UTC().Add(-time.Minute))
	insertOrder(t, repo, order, orderItems(order.ID))

	t.Run("Existing order", func(t *testing.T) {
		at := time.Now().UTC()
		found, err := repo.UpdateStatus(ctx, order.ID, model.OrderStatusPreparing, at)
		require.NoError(t, err)
		assert.True(t, found)

		got, _, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, model.OrderStatusPreparing, got.Status)
		assert.WithinDuration(t, at, got.UpdatedAt, time.Millisecond)
	})

	t.Run("Missing order", func(t *testing.T) {
		found, err := repo.UpdateStatus(ctx, uuid.New(), model.OrderStatusServed, time.Now())
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Status outside the check constraint", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, order.ID, "cancelled", time.Now())
		require.Error(t, err)
	})
}

func TestOrderRepository_TransactionRollback(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	order := newOrder(2, time.Now())
	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, tx.Rollback(ctx))

	got, _, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOrderRepository_UnknownProductFailsItems(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	order := newOrder(2, time.Now())
	require.NoError(t, repo.CreateOrder(ctx, tx, order))

	items := []model.OrderItem{
		{ID: uuid.New(), OrderID: order.ID, ProductID: 999, ProductName: "Ghost", Quantity: 1, Price: price("1.00")},
	}
	require.Error(t, repo.CreateOrderItems(ctx, tx, items))
}

func TestOrderRepository_ErrorPaths(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	order := newOrder(1, time.Now())
	insertOrder(t, repo, order, nil)

	// Close the pool to simulate database errors
	pool.Close()

	t.Run("BeginTx with closed pool", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.Error(t, err)
		assert.Nil(t, tx)
	})

	t.Run("GetByID with closed pool", func(t *testing.T) {
		got, items, err := repo.GetByID(ctx, order.ID)
		require.Error(t, err)
		assert.Nil(t, got)
		assert.Nil(t, items)
	})

	t.Run("List with closed pool", func(t *testing.T) {
		orders, err := repo.List(ctx, 10)
		require.Error(t, err)
		assert.Nil(t, orders)
	})

	t.Run("UpdateStatus with closed pool", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, order.ID, model.OrderStatusServed, time.Now())
		require.Error(t, err)
	})
}
