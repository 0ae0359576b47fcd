// Command generate_catalog_seed writes a sample gzipped catalog dataset for
// local runs. Point CATALOG_SEED_FILES at the output to seed the backend.
package main

import (
	"compress/gzip"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"qr-menu/internal/catalog"
	"qr-menu/internal/model"

	"github.com/shopspring/decimal"
)

type item struct {
	name, nameEN, description, price string
	category                         int64
	featured                         bool
}

// Product IDs follow list order, starting at 1. Cappuccino is 2 and
// Cheeseburger is 20 to line up with the demo orders.
var menu = []item{
	{"Espresso", "Espresso", "Yoğun ve aromatik tek shot", "45.00", 1, false},
	{"Cappuccino", "Cappuccino", "Espresso, süt ve bol köpük", "65.00", 1, true},
	{"Latte", "Latte", "Espresso ve buharda ısıtılmış süt", "70.00", 1, false},
	{"Türk Kahvesi", "Turkish Coffee", "Lokum ile servis edilir", "55.00", 1, true},
	{"Filtre Kahve", "Filter Coffee", "Günün çekirdeğiyle demlenir", "50.00", 1, false},
	{"Limonata", "Lemonade", "Taze sıkılmış ev yapımı limonata", "60.00", 2, false},
	{"Soğuk Çay", "Iced Tea", "Şeftalili soğuk çay", "55.00", 2, false},
	{"Ice Latte", "Iced Latte", "Buzlu latte", "75.00", 2, true},
	{"Milkshake", "Milkshake", "Çikolata, çilek veya vanilya", "85.00", 2, false},
	{"Maden Suyu", "Sparkling Water", "", "25.00", 2, false},
	{"San Sebastian Cheesecake", "San Sebastian Cheesecake", "Akışkan iç, yanık yüzey", "120.00", 3, true},
	{"Tiramisu", "Tiramisu", "Mascarpone ve espresso", "110.00", 3, false},
	{"Sufle", "Chocolate Soufflé", "Sıcak servis, dondurma ile", "105.00", 3, false},
	{"Künefe", "Künefe", "Antep fıstıklı", "130.00", 3, false},
	{"Brownie", "Brownie", "Cevizli", "90.00", 3, false},
	{"Klasik Burger", "Classic Burger", "150 g dana köfte, cheddar, turşu", "185.00", 4, false},
	{"Tavuk Burger", "Chicken Burger", "Çıtır tavuk, coleslaw", "165.00", 4, false},
	{"Club Sandviç", "Club Sandwich", "Hindi füme, bacon, yumurta", "155.00", 4, false},
	{"Tost", "Toasted Sandwich", "Kaşarlı ve sucuklu", "95.00", 4, false},
	{"Cheeseburger", "Cheeseburger", "Çift cheddar, karamelize soğan", "145.00", 4, true},
	{"Sezar Salata", "Caesar Salad", "Izgara tavuk, parmesan, kruton", "150.00", 5, false},
	{"Akdeniz Salata", "Mediterranean Salad", "Beyaz peynir, zeytin, domates", "130.00", 5, false},
	{"Kinoa Salata", "Quinoa Salad", "Avokado ve nar ekşisi", "145.00", 5, false},
	{"Margherita", "Margherita", "Mozzarella, domates, fesleğen", "170.00", 6, false},
	{"Karışık Pizza", "Mixed Pizza", "Sucuk, mantar, biber, zeytin", "195.00", 6, true},
	{"Penne Arrabbiata", "Penne Arrabbiata", "Acılı domates sos", "150.00", 6, false},
	{"Fettuccine Alfredo", "Fettuccine Alfredo", "Kremalı mantar sos", "165.00", 6, false},
}

func main() {
	out := flag.String("out", "data/catalog/menu.json.gz", "output file")
	flag.Parse()

	data := catalog.DefaultDataset()
	for i, m := range menu {
		data.Products = append(data.Products, model.ProductDTO{
			ID:            int64(i + 1),
			Name:          m.name,
			NameEN:        m.nameEN,
			Description:   m.description,
			DescriptionEN: m.description,
			Price:         decimal.RequireFromString(m.price),
			ImageURL:      fmt.Sprintf("/images/products/%d.png", i+1),
			CategoryID:    m.category,
			Featured:      m.featured,
		})
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}
	if err := writeDataset(*out, data); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}

	fmt.Printf("Created %s with %d categories and %d products\n", *out, len(data.Categories), len(data.Products))
}

func writeDataset(path string, data *catalog.Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	if err := json.NewEncoder(gzipWriter).Encode(data); err != nil {
		gzipWriter.Close()
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	return gzipWriter.Close()
}
