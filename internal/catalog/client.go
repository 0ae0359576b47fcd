package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"qr-menu/internal/model"

	"github.com/rs/zerolog"
)

// client implements Service against the menu backend's REST API.
type client struct {
	baseURL    string
	httpClient *http.Client
	data       *Dataset
	logger     zerolog.Logger
}

// NewClient creates a catalog adapter for the backend at baseURL.
// A nil dataset means DefaultDataset.
func NewClient(baseURL string, timeout time.Duration, data *Dataset, logger zerolog.Logger) Service {
	if data == nil {
		data = DefaultDataset()
	}
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		data:       data,
		logger:     logger.With().Str("component", "catalog-client").Logger(),
	}
}

// GetCategories returns the static category list.
func (c *client) GetCategories(ctx context.Context) Result[[]model.Category] {
	return Result[[]model.Category]{Data: c.data.Categories, Success: true}
}

// GetCafeInfo returns the static venue details.
func (c *client) GetCafeInfo(ctx context.Context) Result[model.CafeInfo] {
	return Result[model.CafeInfo]{Data: c.data.Cafe, Success: true}
}

// GetAllProducts fetches every product. On any failure it returns the
// fallback list with Success false.
func (c *client) GetAllProducts(ctx context.Context) Result[[]model.Product] {
	products, err := c.fetchProducts(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("catalog fetch failed, serving fallback products")
		return Result[[]model.Product]{Data: normalizeAll(c.data.Fallback), Success: false}
	}

	c.logger.Debug().Int("count", len(products)).Msg("products fetched")
	return Result[[]model.Product]{Data: products, Success: true}
}

// GetProductsByCategory fetches every product and keeps those in
// categoryID. A zero categoryID keeps all of them.
func (c *client) GetProductsByCategory(ctx context.Context, categoryID int64) Result[[]model.Product] {
	products, err := c.fetchProducts(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Int64("category_id", categoryID).Msg("catalog fetch failed")
		return Result[[]model.Product]{Data: []model.Product{}, Success: false}
	}
	if categoryID == 0 {
		return Result[[]model.Product]{Data: products, Success: true}
	}

	filtered := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.CategoryID == categoryID {
			filtered = append(filtered, p)
		}
	}
	return Result[[]model.Product]{Data: filtered, Success: true}
}

// GetProductByID fetches a single product.
func (c *client) GetProductByID(ctx context.Context, id int64) Result[*model.Product] {
	var dto model.ProductDTO
	if err := c.getJSON(ctx, "/api/products/"+strconv.FormatInt(id, 10), &dto); err != nil {
		c.logger.Warn().Err(err).Int64("product_id", id).Msg("product fetch failed")
		return Result[*model.Product]{Success: false}
	}
	p := dto.Normalize()
	return Result[*model.Product]{Data: &p, Success: true}
}

// GetPopularProducts fetches every product and keeps the featured ones.
func (c *client) GetPopularProducts(ctx context.Context) Result[[]model.Product] {
	products, err := c.fetchProducts(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("catalog fetch failed")
		return Result[[]model.Product]{Data: []model.Product{}, Success: false}
	}

	popular := make([]model.Product, 0)
	for _, p := range products {
		if p.Featured {
			popular = append(popular, p)
		}
	}
	return Result[[]model.Product]{Data: popular, Success: true}
}

func (c *client) fetchProducts(ctx context.Context) ([]model.Product, error) {
	var dtos []model.ProductDTO
	if err := c.getJSON(ctx, "/api/products", &dtos); err != nil {
		return nil, err
	}
	return normalizeAll(dtos), nil
}

func (c *client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach catalog backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("catalog backend returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}
