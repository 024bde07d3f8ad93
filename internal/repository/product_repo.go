package repository

import (
	"context"

	"github.com/user/harvester-service/internal/entity"
)

// ProductRepository defines the store contract for extraction work units.
type ProductRepository interface {
	// OldestExtracted returns the product with the oldest last_extracted_at
	// (never-extracted first, ties broken by id). Returns ErrEmptyQueue when
	// the table is empty.
	OldestExtracted(ctx context.Context) (*entity.Product, error)
	// MarkExtracted sets last_extracted_at to now.
	MarkExtracted(ctx context.Context, id int64) error
	// ListNamesByCategory returns the product terms of a category in a
	// deterministic order, for the per-category rotation.
	ListNamesByCategory(ctx context.Context, categoryID int64) ([]string, error)
}
