package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/harvester-service/internal/entity"
)

// ProcessedURLRepoImpl provides a concrete implementation for the
// ProcessedURLRepository interface using PostgreSQL.
type ProcessedURLRepoImpl struct {
	db *pgxpool.Pool
}

func NewProcessedURLRepo(db *pgxpool.Pool) *ProcessedURLRepoImpl {
	return &ProcessedURLRepoImpl{db: db}
}

func (r *ProcessedURLRepoImpl) Exists(ctx context.Context, productID, templateID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM processed_urls WHERE product_id = $1 AND template_id = $2
		 )`, productID, templateID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check processed (%d,%d): %w", productID, templateID, err)
	}
	return exists, nil
}

// Save writes a ledger row. ON CONFLICT DO NOTHING makes a concurrent
// duplicate insert by another process a silent no-op, which is what turns
// double-selection into idempotent double-processing.
func (r *ProcessedURLRepoImpl) Save(ctx context.Context, p *entity.ProcessedURL) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO processed_urls
		 (product_id, template_id, url, products_found, products_saved, success, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (product_id, template_id) DO NOTHING`,
		p.ProductID, p.TemplateID, p.URL, p.ProductsFound, p.ProductsSaved,
		p.Success, p.ProcessedAt)
	if err != nil {
		return fmt.Errorf("save processed (%d,%d): %w", p.ProductID, p.TemplateID, err)
	}
	return nil
}
