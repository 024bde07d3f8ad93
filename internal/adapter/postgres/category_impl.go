package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/harvester-service/internal/entity"
	"github.com/user/harvester-service/internal/repository"
)

// CategoryRepoImpl provides a concrete implementation for the
// CategoryRepository interface using PostgreSQL.
type CategoryRepoImpl struct {
	db *pgxpool.Pool
}

func NewCategoryRepo(db *pgxpool.Pool) *CategoryRepoImpl {
	return &CategoryRepoImpl{db: db}
}

// OldestCycled selects the discovery work unit: least recently cycled first,
// never-cycled before everything, id as the deterministic tie-break.
func (r *CategoryRepoImpl) OldestCycled(ctx context.Context) (*entity.Category, error) {
	var c entity.Category
	err := r.db.QueryRow(ctx,
		`SELECT id, name, last_input_at, last_cycled_at
		 FROM categories
		 ORDER BY last_cycled_at ASC NULLS FIRST, id ASC
		 LIMIT 1`,
	).Scan(&c.ID, &c.Name, &c.LastInputAt, &c.LastCycledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrEmptyQueue
	}
	if err != nil {
		return nil, fmt.Errorf("select oldest category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepoImpl) MarkCycled(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE categories SET last_cycled_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark category %d cycled: %w", id, err)
	}
	return nil
}
