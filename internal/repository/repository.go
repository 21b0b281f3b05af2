package repository

import (
	"context"
	"time"

	"rentlink-backend/internal/domain"
)

// ListingRepository is the read-only listing snapshot provider.
type ListingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
}

type RentalRequestRepository interface {
	Create(ctx context.Context, req *domain.RentalRequest) error
	GetByID(ctx context.Context, id string) (*domain.RentalRequest, error)
	// LockByID reads the request and holds a row lock until the enclosing transaction ends.
	LockByID(ctx context.Context, id string) (*domain.RentalRequest, error)
	ExistsDuplicate(ctx context.Context, listingID, borrowerID string, start, end time.Time) (bool, error)
	// UpdateStatus moves req to req.Status only if the stored status is still from.
	// It returns false when another writer got there first.
	UpdateStatus(ctx context.Context, req *domain.RentalRequest, from domain.RequestStatus) (bool, error)
	ListByBorrower(ctx context.Context, borrowerID string, status domain.RequestStatus, page, pageSize int32) ([]domain.RentalRequest, int32, error)
	ListByLender(ctx context.Context, lenderID string, status domain.RequestStatus, page, pageSize int32) ([]domain.RentalRequest, int32, error)
	ListStalePending(ctx context.Context, startedBefore time.Time) ([]domain.RentalRequest, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id string) (*domain.Rental, error)
	// FindByRequest returns nil, nil when no rental references the request.
	FindByRequest(ctx context.Context, requestID string) (*domain.Rental, error)
	// ListActiveStartingBefore returns ACTIVE rentals of a listing whose start is strictly before end.
	ListActiveStartingBefore(ctx context.Context, listingID string, end time.Time) ([]domain.Rental, error)
	// UpdateStatus is a compare-and-swap on status, see RentalRequestRepository.UpdateStatus.
	UpdateStatus(ctx context.Context, rental *domain.Rental, from domain.RentalStatus) (bool, error)
	List(ctx context.Context, userID string, role domain.RentalRole, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error)
	ListOverdueActive(ctx context.Context, endedBefore time.Time) ([]domain.Rental, error)
}

// ListingLocker serialises writers touching the same listing until the
// enclosing transaction ends.
type ListingLocker interface {
	LockListing(ctx context.Context, listingID string) error
}

// Repositories groups the repositories bound to a single transaction.
type Repositories struct {
	Listings ListingRepository
	Requests RentalRequestRepository
	Rentals  RentalRepository
	Locks    ListingLocker
}

// TxManager runs fn inside a transaction. Writes made through repos are
// applied only if fn returns nil.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
