package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	_ "github.com/lib/pq"

	"rentlink-backend/internal/domain"
	"rentlink-backend/internal/logger"
	"rentlink-backend/internal/metrics"
	"rentlink-backend/internal/repository"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	Metrics      *metrics.Metrics
}

type Store struct {
	db *sql.DB
	repository.ListingRepository
	repository.RentalRequestRepository
	repository.RentalRepository

	retrier *retrier.Retrier
	metrics *metrics.Metrics
}

func NewStore(db *sql.DB, opts Options) *Store {
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = 20 * time.Millisecond
	}
	return &Store{
		db:                      db,
		ListingRepository:       NewListingRepository(db),
		RentalRequestRepository: NewRentalRequestRepository(db),
		RentalRepository:        NewRentalRepository(db),
		retrier:                 retrier.New(retrier.ExponentialBackoff(opts.MaxRetries, backoff), transientClassifier{}),
		metrics:                 opts.Metrics,
	}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// Repositories returns the non-transactional repositories.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Listings: s.ListingRepository,
		Requests: s.RentalRequestRepository,
		Rentals:  s.RentalRepository,
		Locks:    listingLocker{db: s.db},
	}
}

// WithinTx runs fn in a READ COMMITTED transaction. Transient failures
// (serialization, deadlock, dropped connection) restart the whole closure.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	attempt := 0
	err := s.retrier.RunCtx(ctx, func(ctx context.Context) error {
		if attempt > 0 {
			s.metrics.Retry()
			logger.WarnContext(ctx, "Retrying transaction after transient error", "attempt", attempt)
		}
		attempt++
		return s.runTx(ctx, fn)
	})
	if err != nil && IsTransient(err) {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) (err error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	repos := repository.Repositories{
		Listings: NewListingRepository(tx),
		Requests: NewRentalRequestRepository(tx),
		Rentals:  NewRentalRepository(tx),
		Locks:    listingLocker{db: tx},
	}
	if err = fn(ctx, repos); err != nil {
		return err
	}
	return tx.Commit()
}

type listingLocker struct {
	db DBTX
}

// LockListing takes a transaction-scoped advisory lock keyed by the listing ID.
// Outside a transaction the lock is released as soon as the statement ends.
func (l listingLocker) LockListing(ctx context.Context, listingID string) error {
	logger.DatabaseCall(ctx, "LockListing", "listing_id", listingID)
	_, err := l.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, listingID)
	logger.DatabaseResult(ctx, "LockListing", 0, err)
	return err
}

// normalizePage returns LIMIT and OFFSET. The offset is widened so large
// page numbers cannot wrap negative.
func normalizePage(page, pageSize int32) (int32, int64) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return pageSize, (int64(page) - 1) * int64(pageSize)
}
