package repository

import (
	"context"
	"errors"
	"fmt"

	"qr-menu/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, name_en, description, description_en, price,
	image_url, category_id, featured, is_available, details, created_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// List retrieves products ordered by ID. A zero limit returns every row.
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1::bigint = 0 OR category_id = $1::bigint)
		ORDER BY id
		LIMIT NULLIF($2::int, 0) OFFSET $3::int
	`

	rows, err := r.pool.Query(ctx, query, filter.CategoryID, filter.Limit, filter.Offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("category_id", filter.CategoryID).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return r.collect(rows)
}

// GetFeatured retrieves featured products, newest first.
func (r *productRepository) GetFeatured(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE featured
		ORDER BY id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query featured products")
		return nil, fmt.Errorf("failed to query featured products: %w", err)
	}
	return r.collect(rows)
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	return r.collect(rows)
}

// Upsert writes products in one transaction, replacing rows with the same ID.
// The ID sequence is moved past the highest ID so later inserts do not collide.
func (r *productRepository) Upsert(ctx context.Context, products []model.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO products (id, name, name_en, description, description_en, price,
			image_url, category_id, featured, is_available, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			name_en = EXCLUDED.name_en,
			description = EXCLUDED.description,
			description_en = EXCLUDED.description_en,
			price = EXCLUDED.price,
			image_url = EXCLUDED.image_url,
			category_id = EXCLUDED.category_id,
			featured = EXCLUDED.featured,
			is_available = EXCLUDED.is_available,
			details = EXCLUDED.details
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(query, p.ID, p.Name, p.NameEN, p.Description, p.DescriptionEN, p.Price,
			p.Image, p.CategoryID, p.Featured, p.IsAvailable, p.Details)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range products {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			r.logger.Error().Err(err).Int64("product_id", products[i].ID).Msg("failed to upsert product")
			return 0, fmt.Errorf("failed to upsert product %d: %w", products[i].ID, err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to upsert products: %w", err)
	}

	_, err = tx.Exec(ctx, `
		SELECT setval(pg_get_serial_sequence('products', 'id'),
			GREATEST((SELECT MAX(id) FROM products), 1))
	`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to advance product sequence")
		return 0, fmt.Errorf("failed to advance product sequence: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit product upsert")
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info().Int("count", len(products)).Msg("products upserted")
	return len(products), nil
}

func (r *productRepository) collect(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.NameEN,
		&p.Description,
		&p.DescriptionEN,
		&p.Price,
		&p.Image,
		&p.CategoryID,
		&p.Featured,
		&p.IsAvailable,
		&p.Details,
		&p.CreatedAt,
	)
	p.IsPopular = p.Featured
	return p, err
}
