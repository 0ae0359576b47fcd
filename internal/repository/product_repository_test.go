package repository

import (
	"context"
	"testing"
	"time"

	"qr-menu/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, EnsureSchema(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedProducts inserts test products into the database.
func seedProducts(t *testing.T, repo ProductRepository, products []model.Product) {
	n, err := repo.Upsert(context.Background(), products)
	require.NoError(t, err)
	require.Equal(t, len(products), n)
}

func testProducts() []model.Product {
	return []model.Product{
		{ID: 1, Name: "Espresso", NameEN: "Espresso", Price: price("45.00"), CategoryID: 1, IsAvailable: true},
		{ID: 2, Name: "Türk Kahvesi", NameEN: "Turkish Coffee", Price: price("55.00"), CategoryID: 1, Featured: true, IsAvailable: true},
		{ID: 3, Name: "Çay", NameEN: "Tea", Price: price("20.00"), CategoryID: 2, IsAvailable: true},
		{ID: 4, Name: "Cheesecake", NameEN: "Cheesecake", Price: price("120.50"), CategoryID: 4, Featured: true, IsAvailable: false},
		{ID: 5, Name: "Limonata", NameEN: "Lemonade", Price: price("60.00"), CategoryID: 3, IsAvailable: true},
	}
}

func TestProductRepository_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	seedProducts(t, repo, testProducts())

	tests := []struct {
		name     string
		filter   ProductFilter
		expected []int64
	}{
		{
			name:     "All products",
			filter:   ProductFilter{},
			expected: []int64{1, 2, 3, 4, 5},
		},
		{
			name:     "First page",
			filter:   ProductFilter{Limit: 2},
			expected: []int64{1, 2},
		},
		{
			name:     "Second page",
			filter:   ProductFilter{Limit: 2, Offset: 2},
			expected: []int64{3, 4},
		},
		{
			name:     "Offset beyond results",
			filter:   ProductFilter{Limit: 10, Offset: 10},
			expected: []int64{},
		},
		{
			name:     "By category",
			filter:   ProductFilter{CategoryID: 1},
			expected: []int64{1, 2},
		},
		{
			name:     "Empty category",
			filter:   ProductFilter{CategoryID: 6},
			expected: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.List(context.Background(), tt.filter)
			require.NoError(t, err)

			ids := make([]int64, len(products))
			for i, p := range products {
				ids[i] = p.ID
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestProductRepository_GetFeatured(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	seedProducts(t, repo, testProducts())

	products, err := repo.GetFeatured(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, int64(4), products[0].ID)
	assert.Equal(t, int64(2), products[1].ID)
	for _, p := range products {
		assert.True(t, p.IsPopular)
	}
}

func TestProductRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	seedProducts(t, repo, testProducts())

	tests := []struct {
		name      string
		id        int64
		expectNil bool
	}{
		{
			name:      "Product exists",
			id:        4,
			expectNil: false,
		},
		{
			name:      "Product does not exist",
			id:        999,
			expectNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, err := repo.GetByID(context.Background(), tt.id)
			require.NoError(t, err)

			if tt.expectNil {
				assert.Nil(t, product)
				return
			}
			require.NotNil(t, product)
			assert.Equal(t, "Cheesecake", product.Name)
			assert.True(t, price("120.50").Equal(product.Price))
			assert.Equal(t, int64(4), product.CategoryID)
			assert.False(t, product.IsAvailable)
			assert.False(t, product.CreatedAt.IsZero())
		})
	}
}

func TestProductRepository_GetByIDs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	seedProducts(t, repo, testProducts())

	tests := []struct {
		name     string
		ids      []int64
		expected int
	}{
		{name: "Multiple products", ids: []int64{1, 2, 3}, expected: 3},
		{name: "Some products do not exist", ids: []int64{1, 999}, expected: 1},
		{name: "No products exist", ids: []int64{998, 999}, expected: 0},
		{name: "Empty ID list", ids: []int64{}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.GetByIDs(context.Background(), tt.ids)
			require.NoError(t, err)
			assert.Len(t, products, tt.expected)
		})
	}
}

func TestProductRepository_Upsert(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewProductRepository(pool, zerolog.Nop())
	seedProducts(t, repo, testProducts())

	t.Run("Replaces existing rows", func(t *testing.T) {
		updated := testProducts()[0]
		updated.Price = price("50.00")
		updated.Featured = true

		n, err := repo.Upsert(ctx, []model.Product{updated})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		product, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, product)
		assert.True(t, price("50.00").Equal(product.Price))
		assert.True(t, product.Featured)

		all, err := repo.List(ctx, ProductFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("Advances the ID sequence", func(t *testing.T) {
		var id int64
		err := pool.QueryRow(ctx,
			`INSERT INTO products (name, price, category_id) VALUES ('Su', 10, 3) RETURNING id`).Scan(&id)
		require.NoError(t, err)
		assert.Equal(t, int64(6), id)
	})

	t.Run("Empty input", func(t *testing.T) {
		n, err := repo.Upsert(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Negative price rolls back the batch", func(t *testing.T) {
		bad := []model.Product{
			{ID: 10, Name: "Ok", Price: price("1.00"), CategoryID: 1},
			{ID: 11, Name: "Bad", Price: price("-1.00"), CategoryID: 1},
		}
		_, err := repo.Upsert(ctx, bad)
		require.Error(t, err)

		product, err := repo.GetByID(ctx, 10)
		require.NoError(t, err)
		assert.Nil(t, product)
	})
}

func TestProductRepository_ErrorPaths(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	seedProducts(t, repo, testProducts()[:1])

	// Close the pool to simulate database errors
	pool.Close()
	ctx := context.Background()

	t.Run("List with closed pool", func(t *testing.T) {
		products, err := repo.List(ctx, ProductFilter{})
		require.Error(t, err)
		assert.Nil(t, products)
	})

	t.Run("GetFeatured with closed pool", func(t *testing.T) {
		products, err := repo.GetFeatured(ctx)
		require.Error(t, err)
		assert.Nil(t, products)
	})

	t.Run("GetByID with closed pool", func(t *testing.T) {
		product, err := repo.GetByID(ctx, 1)
		require.Error(t, err)
		assert.Nil(t, product)
	})

	t.Run("GetByIDs with closed pool", func(t *testing.T) {
		products, err := repo.GetByIDs(ctx, []int64{1})
		require.Error(t, err)
		assert.Nil(t, products)
	})

	t.Run("Upsert with closed pool", func(t *testing.T) {
		_, err := repo.Upsert(ctx, testProducts()[:1])
		require.Error(t, err)
	})
}
