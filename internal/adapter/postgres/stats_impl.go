package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/harvester-service/internal/entity"
)

// StatsRepoImpl provides store row counts for the ops endpoint.
type StatsRepoImpl struct {
	db *pgxpool.Pool
}

func NewStatsRepo(db *pgxpool.Pool) *StatsRepoImpl {
	return &StatsRepoImpl{db: db}
}

func (r *StatsRepoImpl) Counts(ctx context.Context) (*entity.StoreStats, error) {
	var s entity.StoreStats
	err := r.db.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM search_templates),
			(SELECT COUNT(*) FROM product_records),
			(SELECT COUNT(*) FROM processed_urls)`,
	).Scan(&s.Categories, &s.Products, &s.Templates, &s.Records, &s.ProcessedURLs)
	if err != nil {
		return nil, fmt.Errorf("store stats: %w", err)
	}
	return &s, nil
}
