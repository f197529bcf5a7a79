package repository

import (
	"context"

	domainRepo "github.com/sangkips/clinic-api/internal/domain/repository"
	"gorm.io/gorm"
)

// txKey is the context key holding the active transaction
const txKey ctxKey = "gorm_tx"

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor creates a transactor backed by GORM
func NewTransactor(db *gorm.DB) domainRepo.Transactor {
	return &gormTransactor{db: db}
}

// WithinTransaction runs fn in a transaction. Nested calls reuse the outer transaction.
func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey, tx))
	})
}

// conn returns the transaction stored in ctx, or db when there is none
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// advisoryLock takes a transaction-scoped Postgres advisory lock on key
func advisoryLock(ctx context.Context, db *gorm.DB, key string) error {
	return conn(ctx, db).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}
