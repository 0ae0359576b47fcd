package service

import (
	"context"
	"fmt"

	"qr-menu/internal/model"
	"qr-menu/internal/repository"

	"github.com/rs/zerolog"
)

// maxPageSize caps explicit page sizes. A zero limit still means the whole catalogue.
const maxPageSize = 100

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves products. The catalogue is small, so no limit returns everything.
func (s *productService) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	if filter.Limit < 0 {
		filter.Limit = 0
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).
			Int64("category_id", filter.CategoryID).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int64("category_id", filter.CategoryID).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		s.logger.Warn().Int64("product_id", id).Msg("invalid product ID")
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// GetTop retrieves the featured products.
func (s *productService) GetTop(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.GetFeatured(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get featured products")
		return nil, fmt.Errorf("failed to get featured products: %w", err)
	}
	return products, nil
}
