package entity

import "time"

// Product mirrors the `products` PostgreSQL table schema.
type Product struct {
	ID              int64
	Name            string
	CategoryID      int64
	LastExtractedAt *time.Time
}
