package postgres

import (
	"context"
	"fmt"

	"github.com/nkiryanov/accounts/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) *Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{db: s.db}
}

// InTx runs fn with storage bound to a single transaction.
// Commit happens only when fn returns nil. On failure the transaction is
// rolled back and the fn error is returned as is: rollback problems must not
// shadow the business error that caused them.
func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	err = fn(NewStorage(tx))
	if err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("db tx commit error: %w", err)
	}

	return nil
}
