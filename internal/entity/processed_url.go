package entity

import "time"

// ProcessedURL mirrors the `processed_urls` PostgreSQL table schema.
// It is the dedup ledger: at most one row ever exists per
// (product_id, template_id) pair, enforced by a unique constraint.
// A row is written after every fetch attempt, success or failure.
type ProcessedURL struct {
	ID            int64
	ProductID     int64
	TemplateID    int64
	URL           string
	ProductsFound int
	ProductsSaved int
	Success       bool
	ProcessedAt   time.Time
}
