package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"qr-menu/internal/model"
	"qr-menu/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a pool and the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// TestProducts is the catalogue every integration test starts from.
// Product 4 is off the menu.
func TestProducts() []model.Product {
	return []model.Product{
		{ID: 1, Name: "Espresso", NameEN: "Espresso", Price: decimal.RequireFromString("45.00"), CategoryID: 1, IsAvailable: true},
		{ID: 2, Name: "Cappuccino", NameEN: "Cappuccino", Price: decimal.RequireFromString("65.00"), CategoryID: 1, Featured: true, IsAvailable: true},
		{ID: 3, Name: "Limonata", NameEN: "Lemonade", Price: decimal.RequireFromString("60.00"), CategoryID: 2, IsAvailable: true},
		{ID: 4, Name: "Künefe", Price: decimal.RequireFromString("130.00"), CategoryID: 3, IsAvailable: false},
		{ID: 5, Name: "Cheeseburger", Price: decimal.RequireFromString("145.00"), CategoryID: 4, Featured: true, IsAvailable: true},
	}
}

// SeedProducts upserts TestProducts.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	repo := repository.NewProductRepository(pool, zerolog.Nop())
	if _, err := repo.Upsert(context.Background(), TestProducts()); err != nil {
		t.Fatalf("failed to seed products: %v", err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "products"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
