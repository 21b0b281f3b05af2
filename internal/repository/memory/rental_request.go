package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"rentlink-backend/internal/domain"
)

type rentalRequestRepository struct {
	store *Store
	tx    *state
}

func copyRequest(req domain.RentalRequest) *domain.RentalRequest {
	if req.GuestCount != nil {
		n := *req.GuestCount
		req.GuestCount = &n
	}
	return &req
}

func (r *rentalRequestRepository) Create(_ context.Context, req *domain.RentalRequest) error {
	return r.store.with(r.tx, func(st *state) error {
		if _, ok := st.requests[req.ID]; ok {
			return fmt.Errorf("rental request %s already exists", req.ID)
		}
		for _, other := range st.requests {
			if sameTuple(other, req.ListingID, req.BorrowerID, req.StartDate, req.EndDate) {
				return domain.ErrDuplicateRequest
			}
		}
		now := time.Now().UTC()
		req.CreatedOn = now
		req.UpdatedOn = now
		st.requests[req.ID] = *copyRequest(*req)
		return nil
	})
}

func sameTuple(req domain.RentalRequest, listingID, borrowerID string, start, end time.Time) bool {
	return req.ListingID == listingID && req.BorrowerID == borrowerID && req.StartDate.Equal(start) && req.EndDate.Equal(end)
}

func (r *rentalRequestRepository) GetByID(_ context.Context, id string) (*domain.RentalRequest, error) {
	var out *domain.RentalRequest
	err := r.store.with(r.tx, func(st *state) error {
		req, ok := st.requests[id]
		if !ok {
			return fmt.Errorf("rental request %s: %w", id, domain.ErrNotFound)
		}
		out = copyRequest(req)
		return nil
	})
	return out, err
}

// LockByID is GetByID: the store lock already serialises transactions.
func (r *rentalRequestRepository) LockByID(ctx context.Context, id string) (*domain.RentalRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *rentalRequestRepository) ExistsDuplicate(_ context.Context, listingID, borrowerID string, start, end time.Time) (bool, error) {
	var found bool
	err := r.store.with(r.tx, func(st *state) error {
		for _, req := range st.requests {
			if sameTuple(req, listingID, borrowerID, start, end) {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *rentalRequestRepository) UpdateStatus(_ context.Context, req *domain.RentalRequest, from domain.RequestStatus) (bool, error) {
	var swapped bool
	err := r.store.with(r.tx, func(st *state) error {
		cur, ok := st.requests[req.ID]
		if !ok {
			return fmt.Errorf("rental request %s: %w", req.ID, domain.ErrNotFound)
		}
		if cur.Status != from {
			return nil
		}
		cur.Status = req.Status
		cur.RejectionReason = req.RejectionReason
		cur.UpdatedOn = time.Now().UTC()
		st.requests[req.ID] = cur
		req.UpdatedOn = cur.UpdatedOn
		swapped = true
		return nil
	})
	return swapped, err
}

func (r *rentalRequestRepository) ListByBorrower(_ context.Context, borrowerID string, status domain.RequestStatus, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	return r.list(func(req domain.RentalRequest) bool {
		return req.BorrowerID == borrowerID && (status == "" || req.Status == status)
	}, page, pageSize)
}

func (r *rentalRequestRepository) ListByLender(_ context.Context, lenderID string, status domain.RequestStatus, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	return r.list(func(req domain.RentalRequest) bool {
		return req.LenderID == lenderID && (status == "" || req.Status == status)
	}, page, pageSize)
}

func (r *rentalRequestRepository) list(match func(domain.RentalRequest) bool, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	var all []domain.RentalRequest
	_ = r.store.with(r.tx, func(st *state) error {
		for _, req := range st.requests {
			if match(req) {
				all = append(all, *copyRequest(req))
			}
		}
		return nil
	})
	slices.SortFunc(all, func(a, b domain.RentalRequest) int {
		if c := b.CreatedOn.Compare(a.CreatedOn); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return paginate(all, page, pageSize), int32(len(all)), nil
}

func (r *rentalRequestRepository) ListStalePending(_ context.Context, startedBefore time.Time) ([]domain.RentalRequest, error) {
	var out []domain.RentalRequest
	err := r.store.with(r.tx, func(st *state) error {
		for _, req := range st.requests {
			if req.Status == domain.RequestStatusPending && req.StartDate.Before(startedBefore) {
				out = append(out, *copyRequest(req))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.RentalRequest) int { return a.StartDate.Compare(b.StartDate) })
	return out, err
}
