package entity

import "time"

// SearchTemplate mirrors the `search_templates` PostgreSQL table schema.
// URLTemplate contains exactly one `{query}` placeholder. Templates are
// immutable once created; duplicates per category are rejected by a unique
// constraint on (category_id, url_template).
type SearchTemplate struct {
	ID          int64
	CategoryID  int64
	URLTemplate string
	CreatedAt   time.Time
}
