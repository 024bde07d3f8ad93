package entity

import "time"

// Stock status values for ProductRecord. Unknown is the default when no
// extraction strategy could determine availability.
const (
	StockInStock    = "in_stock"
	StockOutOfStock = "out_of_stock"
	StockUnknown    = "unknown"
)

// ProductRecord mirrors the `product_records` PostgreSQL table schema.
// One row per listing extracted from a fetched page. A zero price means the
// strategy could not find one; ProductURL may carry the listing instead.
type ProductRecord struct {
	ID            int64
	PlatformURL   string
	Name          string
	OriginalPrice float64
	CurrentPrice  float64
	ProductURL    string
	ImageURL      string
	Description   string
	Rating        float64
	ReviewCount   int
	StockStatus   string
	Brand         string
	ExtractedAt   time.Time
}
