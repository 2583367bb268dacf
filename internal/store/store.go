// Package store is the persistence layer: keyed CRUD over users, bank
// accounts, incomes and expenses, plus the row locks and cascades the ledger
// relies on. Every error it returns is already translated by apperr.FromStore.
package store

import (
	"context"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Tx runs fn inside one database transaction. fn receives a Store bound to
// the transaction; returning an error rolls everything back.
func (s *Store) Tx(ctx context.Context, fn func(tx *Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Page bounds a listing. Offset-based, ordered by id.
type Page struct {
	Offset int
	Limit  int
}
