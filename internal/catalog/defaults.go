package catalog

import (
	"qr-menu/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultDataset returns the built-in categories, venue details and the
// single placeholder product.
func DefaultDataset() *Dataset {
	available := true
	return &Dataset{
		Categories: []model.Category{
			{ID: 1, Name: "Kahve", NameEN: "Coffee", Slug: "coffee", Icon: "Coffee", Image: "/images/ClassicCoffe.png", Description: "Özenle hazırlanmış kahve çeşitlerimiz"},
			{ID: 2, Name: "Soğuk İçecekler", NameEN: "Cold Drinks", Slug: "cold-drinks", Icon: "LocalBar", Image: "/images/Beverages.png", Description: "Serinletici soğuk içecekler"},
			{ID: 3, Name: "Tatlılar", NameEN: "Desserts", Slug: "desserts", Icon: "Cake", Image: "/images/Dessert.png", Description: "Taze tatlılar"},
			{ID: 4, Name: "Burgerler & Sandviçler", NameEN: "Burgers", Slug: "burgers", Icon: "LunchDining", Image: "/images/BurgersAndSandwiches.png", Description: "Lezzetli burgerler"},
			{ID: 5, Name: "Salatalar", NameEN: "Salads", Slug: "salads", Icon: "RestaurantMenu", Image: "/images/FreshSalads.png", Description: "Taze salatalar"},
			{ID: 6, Name: "Pizza & Makarna", NameEN: "Pizza", Slug: "pizza-pasta", Icon: "LocalPizza", Image: "/images/Pizza.png", Description: "İtalyan lezzetleri"},
		},
		Fallback: []model.ProductDTO{
			{
				ID:          1,
				CategoryID:  1,
				Name:        "Fallback Espresso (No Backend)",
				Price:       decimal.RequireFromString("45.00"),
				Description: "Backend connection failed",
				Image:       "/images/Doubleespresso07.11.2025_11zon.png",
				IsAvailable: &available,
			},
		},
		Cafe: model.CafeInfo{
			Name:        "Akasya Kitchen & Bistro",
			Address:     "Atatürk Mah. Lale Sok. No:32, Kadıköy/İstanbul",
			Phone:       "+90 216 123 55 67",
			OpenHours:   "09:00 - 23:00",
			Social:      map[string]string{"instagram": "https://instagram.com"},
			VATIncluded: true,
		},
	}
}

// Merge overlays other onto d. Non-empty sections of other replace the
// matching section of d; empty sections leave d untouched.
func (d *Dataset) Merge(other *Dataset) {
	if other == nil {
		return
	}
	if len(other.Categories) > 0 {
		d.Categories = other.Categories
	}
	if len(other.Fallback) > 0 {
		d.Fallback = other.Fallback
	}
	if other.Cafe.Name != "" {
		d.Cafe = other.Cafe
	}
	if len(other.Products) > 0 {
		d.Products = other.Products
	}
}
