package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txContextKey struct{}

// GormTransactionManager implements shared.TransactionManager. The
// transaction handle travels in the context so repositories join it
// transparently.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// WithinTransaction runs fn inside a database transaction. Nested calls
// join the transaction already carried by the context.
func (m *GormTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := txFromContext(ctx); tx != nil {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

func txFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txContextKey{}).(*gorm.DB)
	return tx
}

// Session returns the transaction carried by the context, or the base
// connection when none is active. Exported so sibling infrastructure
// packages can join the same transaction.
func Session(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}

func session(ctx context.Context, db *gorm.DB) *gorm.DB {
	return Session(ctx, db)
}
