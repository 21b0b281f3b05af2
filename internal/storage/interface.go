package storage

import (
	"context"

	"rentlink-backend/internal/repository"
)

// Backend is an opened persistence backend: postgres or in-process memory.
type Backend interface {
	repository.TxManager
	// Repositories returns repositories usable outside a transaction.
	Repositories() repository.Repositories
	Ping(ctx context.Context) error
	Close() error
}
