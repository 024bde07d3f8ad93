package repository

import (
	"context"

	"github.com/user/harvester-service/internal/entity"
)

// TemplateRepository defines the store contract for search URL templates.
type TemplateRepository interface {
	// Save persists a template. Saving the same (category, template) pair
	// again is a no-op; duplicates never accumulate.
	Save(ctx context.Context, tpl *entity.SearchTemplate) error
	// ListByCategory returns all templates for a category in insertion order.
	ListByCategory(ctx context.Context, categoryID int64) ([]*entity.SearchTemplate, error)
}
