// Package catalog fetches the menu from the backend and supplies the static
// data the menu needs when the backend is unreachable.
package catalog

import (
	"context"

	"qr-menu/internal/model"
)

// Result carries a catalog payload and whether it came from the backend.
// Success is false when Data is fallback or empty because the fetch failed.
type Result[T any] struct {
	Data    T    `json:"data"`
	Success bool `json:"success"`
}

// Service is the read side of the menu as seen by the ordering service.
// None of its methods return an error: failures are folded into Result.
type Service interface {
	GetCategories(ctx context.Context) Result[[]model.Category]
	GetAllProducts(ctx context.Context) Result[[]model.Product]
	GetProductsByCategory(ctx context.Context, categoryID int64) Result[[]model.Product]
	GetProductByID(ctx context.Context, id int64) Result[*model.Product]
	GetPopularProducts(ctx context.Context) Result[[]model.Product]
	GetCafeInfo(ctx context.Context) Result[model.CafeInfo]
}

// Dataset is the static part of the catalog: categories, venue details and
// the placeholder products shown when the backend cannot be reached.
type Dataset struct {
	Categories []model.Category   `json:"categories"`
	Fallback   []model.ProductDTO `json:"fallback"`
	Cafe       model.CafeInfo     `json:"cafe"`
	Products   []model.ProductDTO `json:"products,omitempty"`
}

// Loader reads a gzipped JSON dataset.
type Loader interface {
	Load(ctx context.Context, path string) (*Dataset, error)
}

// CategoryBySlug returns the category with the given slug.
func CategoryBySlug(categories []model.Category, slug string) (model.Category, bool) {
	for _, c := range categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return model.Category{}, false
}

func normalizeAll(dtos []model.ProductDTO) []model.Product {
	products := make([]model.Product, len(dtos))
	for i, dto := range dtos {
		products[i] = dto.Normalize()
	}
	return products
}
