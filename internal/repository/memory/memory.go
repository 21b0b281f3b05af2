package memory

import (
	"context"
	"maps"
	"sync"

	"rentlink-backend/internal/domain"
	"rentlink-backend/internal/repository"
)

type state struct {
	listings map[string]domain.Listing
	requests map[string]domain.RentalRequest
	rentals  map[string]domain.Rental
}

func (s *state) clone() *state {
	return &state{
		listings: maps.Clone(s.listings),
		requests: maps.Clone(s.requests),
		rentals:  maps.Clone(s.rentals),
	}
}

// Store keeps everything in process memory. Transactions are serialised by a
// single writer lock and see a private copy that replaces the shared state on
// success, so a failed closure leaves no trace.
type Store struct {
	mu sync.Mutex
	st *state

	repository.ListingRepository
	repository.RentalRequestRepository
	repository.RentalRepository
}

func NewStore() *Store {
	s := &Store{st: &state{
		listings: map[string]domain.Listing{},
		requests: map[string]domain.RentalRequest{},
		rentals:  map[string]domain.Rental{},
	}}
	s.ListingRepository = &listingRepository{store: s}
	s.RentalRequestRepository = &rentalRequestRepository{store: s}
	s.RentalRepository = &rentalRepository{store: s}
	return s
}

// PutListing seeds or replaces a listing snapshot.
func (s *Store) PutListing(l domain.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.listings[l.ID] = l
}

func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Listings: s.ListingRepository,
		Requests: s.RentalRequestRepository,
		Rentals:  s.RentalRepository,
		Locks:    noopLocker{},
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.st.clone()
	repos := repository.Repositories{
		Listings: &listingRepository{store: s, tx: tx},
		Requests: &rentalRequestRepository{store: s, tx: tx},
		Rentals:  &rentalRepository{store: s, tx: tx},
		Locks:    noopLocker{},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// with runs fn against the transaction state when bound to one, otherwise
// against the shared state under the store lock.
func (s *Store) with(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

type noopLocker struct{}

func (noopLocker) LockListing(context.Context, string) error { return nil }

type listingRepository struct {
	store *Store
	tx    *state
}

func (r *listingRepository) GetByID(_ context.Context, id string) (*domain.Listing, error) {
	var out *domain.Listing
	err := r.store.with(r.tx, func(st *state) error {
		l, ok := st.listings[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &l
		return nil
	})
	return out, err
}

func paginate[T any](items []T, page, pageSize int32) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	from := (int64(page) - 1) * int64(pageSize)
	if from >= int64(len(items)) {
		return nil
	}
	to := min(from+int64(pageSize), int64(len(items)))
	return items[from:to]
}
