package repository

import (
	"context"

	"github.com/user/harvester-service/internal/entity"
)

// CategoryRepository defines the store contract for discovery work units.
type CategoryRepository interface {
	// OldestCycled returns the category with the oldest last_cycled_at
	// (never-cycled first, ties broken by id). Returns ErrEmptyQueue when
	// the table is empty.
	OldestCycled(ctx context.Context) (*entity.Category, error)
	// MarkCycled sets last_cycled_at to now, moving the category to the
	// back of the selection order.
	MarkCycled(ctx context.Context, id int64) error
}
