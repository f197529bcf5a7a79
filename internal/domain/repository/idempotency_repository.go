package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
)

// IdempotencyRepository stores replayable responses keyed by client-supplied idempotency keys
type IdempotencyRepository interface {
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Save inserts the key, replacing an expired entry with the same key and user
	Save(ctx context.Context, ikey *entity.IdempotencyKey) error
	DeleteExpired(ctx context.Context) (int64, error)
}
