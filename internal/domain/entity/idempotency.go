package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey caches the response of a mutating request so that a client
// retrying with the same Idempotency-Key header receives the original result.
type IdempotencyKey struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Key          string     `gorm:"size:255;not null;uniqueIndex:idx_idempotency_user_key"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_idempotency_user_key"`
	TenantID     *uuid.UUID `gorm:"type:uuid;index"`
	Endpoint     string     `gorm:"size:255;not null"`
	RequestHash  string     `gorm:"size:64"`
	ResponseCode int        `gorm:"not null"`
	ResponseBody string     `gorm:"type:text"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	ExpiresAt    time.Time  `gorm:"not null;index"`
}

func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpired reports whether the cached response may no longer be replayed
func (i *IdempotencyKey) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// Matches reports whether a retried request carries the same endpoint and body
func (i *IdempotencyKey) Matches(endpoint, requestHash string) bool {
	if i.Endpoint != endpoint {
		return false
	}
	return i.RequestHash == "" || requestHash == "" || i.RequestHash == requestHash
}
