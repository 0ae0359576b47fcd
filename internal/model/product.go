package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers on the wire, matching the catalog contract.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a menu item in the catalogue.
type Product struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	NameEN        string          `json:"nameEN" db:"name_en"`
	Description   string          `json:"description" db:"description"`
	DescriptionEN string          `json:"descriptionEN" db:"description_en"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Image         string          `json:"image" db:"image_url"`
	CategoryID    int64           `json:"categoryId" db:"category_id"`
	Featured      bool            `json:"featured" db:"featured"`
	IsPopular     bool            `json:"isPopular"`
	IsAvailable   bool            `json:"isAvailable" db:"is_available"`
	Details       string          `json:"details,omitempty" db:"details"`
	CreatedAt     time.Time       `json:"-" db:"created_at"`
}

// ProductDTO is the wire shape served by GET /api/products.
// It uses imageUrl where the normalised Product uses image.
type ProductDTO struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	NameEN        string          `json:"nameEN"`
	Description   string          `json:"description"`
	DescriptionEN string          `json:"descriptionEN"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	Image         string          `json:"image,omitempty"`
	Details       string          `json:"details,omitempty"`
	CategoryID    int64           `json:"categoryId"`
	Featured      bool            `json:"featured"`
	IsAvailable   *bool           `json:"isAvailable,omitempty"`
}

// ToDTO converts a stored product into its wire representation.
func (p Product) ToDTO() ProductDTO {
	available := p.IsAvailable
	return ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		NameEN:        p.NameEN,
		Description:   p.Description,
		DescriptionEN: p.DescriptionEN,
		Price:         p.Price,
		ImageURL:      p.Image,
		Details:       p.Details,
		CategoryID:    p.CategoryID,
		Featured:      p.Featured,
		IsAvailable:   &available,
	}
}

// Normalize maps the wire representation onto a Product.
// imageUrl wins over image, featured doubles as isPopular and a missing
// isAvailable means the product is available.
func (d ProductDTO) Normalize() Product {
	image := d.ImageURL
	if image == "" {
		image = d.Image
	}
	return Product{
		ID:            d.ID,
		Name:          d.Name,
		NameEN:        d.NameEN,
		Description:   d.Description,
		DescriptionEN: d.DescriptionEN,
		Price:         d.Price,
		Image:         image,
		CategoryID:    d.CategoryID,
		Featured:      d.Featured,
		IsPopular:     d.Featured,
		IsAvailable:   d.IsAvailable == nil || *d.IsAvailable,
		Details:       d.Details,
	}
}

// LocalizedName returns the product name for the given language,
// falling back to the default name when no translation exists.
func (p Product) LocalizedName(lang string) string {
	if lang == "en" && p.NameEN != "" {
		return p.NameEN
	}
	return p.Name
}

// Category is a static menu section.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	NameEN      string `json:"nameEN"`
	Slug        string `json:"slug"`
	Icon        string `json:"icon"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description"`
}

// CafeInfo holds the venue details shown on the home view.
type CafeInfo struct {
	Name        string            `json:"name"`
	Address     string            `json:"address"`
	Phone       string            `json:"phone"`
	OpenHours   string            `json:"openHours"`
	Social      map[string]string `json:"social,omitempty"`
	VATIncluded bool              `json:"vatIncluded"`
}
