package repository

import (
	"context"

	"github.com/user/harvester-service/internal/entity"
)

// ProductRecordRepository defines the store contract for extracted listings.
type ProductRecordRepository interface {
	// SaveAll inserts the records in one batch and returns how many were
	// actually stored.
	SaveAll(ctx context.Context, records []*entity.ProductRecord) (int, error)
}
