package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/harvester-service/internal/entity"
)

// ProductRecordRepoImpl provides a concrete implementation for the
// ProductRecordRepository interface using PostgreSQL.
type ProductRecordRepoImpl struct {
	db *pgxpool.Pool
}

func NewProductRecordRepo(db *pgxpool.Pool) *ProductRecordRepoImpl {
	return &ProductRecordRepoImpl{db: db}
}

// SaveAll batch-inserts the records in one round trip.
func (r *ProductRecordRepoImpl) SaveAll(ctx context.Context, records []*entity.ProductRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(
			`INSERT INTO product_records
			 (platform_url, name, original_price, current_price, product_url,
			  image_url, description, rating, review_count, stock_status, brand, extracted_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			rec.PlatformURL, rec.Name, rec.OriginalPrice, rec.CurrentPrice,
			rec.ProductURL, rec.ImageURL, rec.Description, rec.Rating,
			rec.ReviewCount, rec.StockStatus, rec.Brand, rec.ExtractedAt)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	saved := 0
	for range records {
		if _, err := results.Exec(); err != nil {
			return saved, fmt.Errorf("save product records: %w", err)
		}
		saved++
	}
	return saved, nil
}
