package repository

import (
	"context"

	"github.com/user/harvester-service/internal/entity"
)

// StatsRepository exposes store row counts for the ops endpoint.
type StatsRepository interface {
	Counts(ctx context.Context) (*entity.StoreStats, error)
}
