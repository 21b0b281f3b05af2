package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"rentlink-backend/internal/domain"
)

type rentalRepository struct {
	store *Store
	tx    *state
}

func copyRental(rt domain.Rental) *domain.Rental {
	if rt.CancelledBy != nil {
		by := *rt.CancelledBy
		rt.CancelledBy = &by
	}
	return &rt
}

func (r *rentalRepository) Create(_ context.Context, rt *domain.Rental) error {
	return r.store.with(r.tx, func(st *state) error {
		if _, ok := st.rentals[rt.ID]; ok {
			return fmt.Errorf("rental %s already exists", rt.ID)
		}
		for _, other := range st.rentals {
			if other.RentalRequestID == rt.RentalRequestID {
				return domain.ErrDuplicateApproval
			}
		}
		now := time.Now().UTC()
		rt.CreatedOn = now
		rt.UpdatedOn = now
		st.rentals[rt.ID] = *copyRental(*rt)
		return nil
	})
}

func (r *rentalRepository) GetByID(_ context.Context, id string) (*domain.Rental, error) {
	var out *domain.Rental
	err := r.store.with(r.tx, func(st *state) error {
		rt, ok := st.rentals[id]
		if !ok {
			return fmt.Errorf("rental %s: %w", id, domain.ErrNotFound)
		}
		out = copyRental(rt)
		return nil
	})
	return out, err
}

func (r *rentalRepository) FindByRequest(_ context.Context, requestID string) (*domain.Rental, error) {
	var out *domain.Rental
	err := r.store.with(r.tx, func(st *state) error {
		for _, rt := range st.rentals {
			if rt.RentalRequestID == requestID {
				out = copyRental(rt)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *rentalRepository) ListActiveStartingBefore(_ context.Context, listingID string, end time.Time) ([]domain.Rental, error) {
	return r.filter(func(rt domain.Rental) bool {
		return rt.ListingID == listingID && rt.Status == domain.RentalStatusActive && rt.StartDate.Before(end)
	}, func(a, b domain.Rental) int { return a.StartDate.Compare(b.StartDate) }), nil
}

func (r *rentalRepository) UpdateStatus(_ context.Context, rt *domain.Rental, from domain.RentalStatus) (bool, error) {
	var swapped bool
	err := r.store.with(r.tx, func(st *state) error {
		cur, ok := st.rentals[rt.ID]
		if !ok {
			return fmt.Errorf("rental %s: %w", rt.ID, domain.ErrNotFound)
		}
		if cur.Status != from {
			return nil
		}
		cur.Status = rt.Status
		cur.CancelledBy = rt.CancelledBy
		cur.CancellationReason = rt.CancellationReason
		cur.UpdatedOn = time.Now().UTC()
		st.rentals[rt.ID] = *copyRental(cur)
		rt.UpdatedOn = cur.UpdatedOn
		swapped = true
		return nil
	})
	return swapped, err
}

func (r *rentalRepository) List(_ context.Context, userID string, role domain.RentalRole, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	all := r.filter(func(rt domain.Rental) bool {
		if status != "" && rt.Status != status {
			return false
		}
		switch role {
		case domain.RentalRoleBorrower:
			return rt.BorrowerID == userID
		case domain.RentalRoleLender:
			return rt.LenderID == userID
		default:
			return rt.IsParty(userID)
		}
	}, func(a, b domain.Rental) int {
		if c := b.CreatedOn.Compare(a.CreatedOn); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return paginate(all, page, pageSize), int32(len(all)), nil
}

func (r *rentalRepository) ListOverdueActive(_ context.Context, endedBefore time.Time) ([]domain.Rental, error) {
	return r.filter(func(rt domain.Rental) bool {
		return rt.Status == domain.RentalStatusActive && !rt.EndDate.After(endedBefore)
	}, func(a, b domain.Rental) int { return a.EndDate.Compare(b.EndDate) }), nil
}

func (r *rentalRepository) filter(match func(domain.Rental) bool, order func(a, b domain.Rental) int) []domain.Rental {
	var out []domain.Rental
	_ = r.store.with(r.tx, func(st *state) error {
		for _, rt := range st.rentals {
			if match(rt) {
				out = append(out, *copyRental(rt))
			}
		}
		return nil
	})
	slices.SortFunc(out, order)
	return out
}
