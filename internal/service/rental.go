package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"rentlink-backend/internal/domain"
	"rentlink-backend/internal/events"
	"rentlink-backend/internal/logger"
	"rentlink-backend/internal/repository"
)

type rentalService struct {
	repos repository.Repositories
	opts  options
}

func NewRentalService(repos repository.Repositories, opts ...Option) RentalService {
	return &rentalService{repos: repos, opts: buildOptions(opts)}
}

func (s *rentalService) CancelRental(ctx context.Context, rentalID, actorID, reason string) (rental *domain.Rental, err error) {
	const op = "CancelRental"
	started := time.Now()
	logger.EnterMethod(ctx, op, "rentalID", rentalID, "actorID", actorID)
	defer func() { s.opts.finish(ctx, op, started, err, "rentalID", rentalID) }()

	rental, err = s.repos.Rentals.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !rental.IsParty(actorID) {
		return nil, domain.ErrForbidden
	}
	if rental.Status != domain.RentalStatusActive {
		return nil, fmt.Errorf("%w: rental is %s", domain.ErrNotCancellable, rental.Status)
	}
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > domain.MaxReasonLength {
		return nil, fmt.Errorf("%w: reason exceeds %d characters", domain.ErrTooLong, domain.MaxReasonLength)
	}
	if rental.HasEnded(s.opts.now()) {
		return nil, domain.ErrAlreadyEnded
	}

	rental.Status = domain.RentalStatusCancelled
	rental.CancelledBy = &actorID
	rental.CancellationReason = reason
	ok, err := s.repos.Rentals.UpdateStatus(ctx, rental, domain.RentalStatusActive)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotCancellable
	}

	s.opts.publish(ctx, events.RentalEvent(events.RentalCancelled, rental))
	return rental, nil
}

func (s *rentalService) CompleteRental(ctx context.Context, rentalID, actorID string, force bool) (rental *domain.Rental, err error) {
	const op = "CompleteRental"
	started := time.Now()
	logger.EnterMethod(ctx, op, "rentalID", rentalID, "actorID", actorID, "force", force)
	defer func() { s.opts.finish(ctx, op, started, err, "rentalID", rentalID) }()

	rental, err = s.repos.Rentals.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.LenderID != actorID {
		return nil, domain.ErrForbidden
	}
	if rental.Status != domain.RentalStatusActive {
		return nil, fmt.Errorf("%w: rental is %s", domain.ErrNotCompletable, rental.Status)
	}
	if !force && !rental.HasEnded(s.opts.now()) {
		return nil, domain.ErrNotYetEnded
	}

	rental.Status = domain.RentalStatusCompleted
	ok, err := s.repos.Rentals.UpdateStatus(ctx, rental, domain.RentalStatusActive)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotCompletable
	}

	s.opts.publish(ctx, events.RentalEvent(events.RentalCompleted, rental))
	return rental, nil
}

func (s *rentalService) GetRental(ctx context.Context, userID, rentalID string) (*domain.Rental, error) {
	rental, err := s.repos.Rentals.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !rental.IsParty(userID) {
		return nil, domain.ErrForbidden
	}
	return rental, nil
}

func (s *rentalService) ListMyRentals(ctx context.Context, userID, role, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	r := domain.RentalRole(strings.ToLower(role))
	switch r {
	case "":
		r = domain.RentalRoleAll
	case domain.RentalRoleAll, domain.RentalRoleBorrower, domain.RentalRoleLender:
	default:
		return nil, 0, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}

	var st domain.RentalStatus
	if status != "" {
		st = domain.RentalStatus(strings.ToUpper(status))
		if !st.Valid() {
			return nil, 0, fmt.Errorf("%w: unknown rental status %q", domain.ErrInvalidInput, status)
		}
	}
	return s.repos.Rentals.List(ctx, userID, r, st, page, pageSize)
}
