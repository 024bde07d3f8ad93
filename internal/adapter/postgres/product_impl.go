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

// ProductRepoImpl provides a concrete implementation for the
// ProductRepository interface using PostgreSQL.
type ProductRepoImpl struct {
	db *pgxpool.Pool
}

func NewProductRepo(db *pgxpool.Pool) *ProductRepoImpl {
	return &ProductRepoImpl{db: db}
}

func (r *ProductRepoImpl) OldestExtracted(ctx context.Context) (*entity.Product, error) {
	var p entity.Product
	err := r.db.QueryRow(ctx,
		`SELECT id, name, category_id, last_extracted_at
		 FROM products
		 ORDER BY last_extracted_at ASC NULLS FIRST, id ASC
		 LIMIT 1`,
	).Scan(&p.ID, &p.Name, &p.CategoryID, &p.LastExtractedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrEmptyQueue
	}
	if err != nil {
		return nil, fmt.Errorf("select oldest product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepoImpl) MarkExtracted(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE products SET last_extracted_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark product %d extracted: %w", id, err)
	}
	return nil
}

// ListNamesByCategory orders by id so the rotation index maps onto a stable
// sequence across restarts.
func (r *ProductRepoImpl) ListNamesByCategory(ctx context.Context, categoryID int64) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name FROM products WHERE category_id = $1 ORDER BY id ASC`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list product names for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
