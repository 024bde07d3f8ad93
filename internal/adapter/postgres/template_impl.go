package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/harvester-service/internal/entity"
)

// TemplateRepoImpl provides a concrete implementation for the
// TemplateRepository interface using PostgreSQL.
type TemplateRepoImpl struct {
	db *pgxpool.Pool
}

func NewTemplateRepo(db *pgxpool.Pool) *TemplateRepoImpl {
	return &TemplateRepoImpl{db: db}
}

// Save inserts a template; re-inserting the same (category, template) string
// is a no-op via the unique constraint, so duplicates never accumulate.
func (r *TemplateRepoImpl) Save(ctx context.Context, tpl *entity.SearchTemplate) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO search_templates (category_id, url_template)
		 VALUES ($1, $2)
		 ON CONFLICT (category_id, url_template) DO NOTHING`,
		tpl.CategoryID, tpl.URLTemplate)
	if err != nil {
		return fmt.Errorf("save template for category %d: %w", tpl.CategoryID, err)
	}
	return nil
}

func (r *TemplateRepoImpl) ListByCategory(ctx context.Context, categoryID int64) ([]*entity.SearchTemplate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, category_id, url_template, created_at
		 FROM search_templates
		 WHERE category_id = $1
		 ORDER BY id ASC`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list templates for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	var templates []*entity.SearchTemplate
	for rows.Next() {
		var t entity.SearchTemplate
		if err := rows.Scan(&t.ID, &t.CategoryID, &t.URLTemplate, &t.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, &t)
	}
	return templates, rows.Err()
}
