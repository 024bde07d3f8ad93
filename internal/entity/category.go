package entity

import "time"

// Category mirrors the `categories` PostgreSQL table schema.
// LastCycledAt drives oldest-first selection by the discovery cycler;
// a NULL timestamp means the category has never been cycled and sorts first.
type Category struct {
	ID           int64
	Name         string
	LastInputAt  *time.Time
	LastCycledAt *time.Time
}
