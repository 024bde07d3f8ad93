package repository

import (
	"context"

	"github.com/user/harvester-service/internal/entity"
)

// ProcessedURLRepository defines the store contract for the dedup ledger.
// The store must enforce uniqueness on (product_id, template_id) server-side;
// it is the only duplicate-prevention mechanism across processes.
type ProcessedURLRepository interface {
	// Exists reports whether the (product, template) pair was already attempted.
	Exists(ctx context.Context, productID, templateID int64) (bool, error)
	// Save inserts a ledger row. A concurrent duplicate insert is silently
	// ignored, making double-processing idempotent.
	Save(ctx context.Context, p *entity.ProcessedURL) error
}
