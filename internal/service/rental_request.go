package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"rentlink-backend/internal/domain"
	"rentlink-backend/internal/events"
	"rentlink-backend/internal/logger"
	"rentlink-backend/internal/repository"
	"rentlink-backend/internal/utils"
)

type rentalRequestService struct {
	tx           repository.TxManager
	repos        repository.Repositories
	availability *AvailabilityChecker
	opts         options
}

// NewRentalRequestService wires the request lifecycle. repos is used for reads
// and single-row writes outside a transaction; approval runs through tx.
func NewRentalRequestService(tx repository.TxManager, repos repository.Repositories, opts ...Option) RentalRequestService {
	o := buildOptions(opts)
	return &rentalRequestService{
		tx:           tx,
		repos:        repos,
		availability: NewAvailabilityChecker(repos.Rentals, o.mode),
		opts:         o,
	}
}

func (s *rentalRequestService) CreateRequest(ctx context.Context, in CreateRequestInput) (req *domain.RentalRequest, err error) {
	const op = "CreateRequest"
	started := time.Now()
	logger.EnterMethod(ctx, op, "listingID", in.ListingID, "borrowerID", in.BorrowerID)
	defer func() { s.opts.finish(ctx, op, started, err, "listingID", in.ListingID) }()

	if in.BorrowerID == "" {
		return nil, fmt.Errorf("%w: borrower is required", domain.ErrInvalidInput)
	}
	start, end, err := utils.ParseDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	message := strings.TrimSpace(in.Message)
	if utf8.RuneCountInString(message) > domain.MaxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", domain.ErrTooLong, domain.MaxMessageLength)
	}

	listing, err := s.repos.Listings.GetByID(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != domain.ListingStatusActive {
		return nil, domain.ErrListingUnavailable
	}
	if listing.OwnerID == in.BorrowerID {
		return nil, domain.ErrSelfRequest
	}

	dup, err := s.repos.Requests.ExistsDuplicate(ctx, listing.ID, in.BorrowerID, start, end)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, domain.ErrDuplicateRequest
	}

	overlap, err := s.availability.HasOverlap(ctx, listing.ID, start, end)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, domain.ErrDateConflict
	}

	guests, err := requestGuestCount(listing, in.GuestCount)
	if err != nil {
		return nil, err
	}

	req = &domain.RentalRequest{
		ID:         uuid.NewString(),
		ListingID:  listing.ID,
		LenderID:   listing.OwnerID,
		BorrowerID: in.BorrowerID,
		StartDate:  start,
		EndDate:    end,
		Message:    message,
		GuestCount: &guests,
		Status:     domain.RequestStatusPending,
	}
	if err := s.repos.Requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.opts.publish(ctx, events.RequestEvent(events.RequestCreated, req))
	return req, nil
}

// requestGuestCount resolves the guest count stored on a new request.
// ITEM listings always book a single unit.
func requestGuestCount(listing *domain.Listing, raw *int) (int, error) {
	if listing.Type == domain.ListingTypeItem {
		return 1, nil
	}
	if listing.BillingUnit == domain.BillingUnitPerGuest {
		if raw == nil || *raw < 1 {
			return 0, domain.ErrGuestCountRequired
		}
		return *raw, nil
	}
	if raw == nil {
		return 1, nil
	}
	if *raw < 1 {
		return 0, fmt.Errorf("%w: guest count must be at least 1", domain.ErrInvalidInput)
	}
	return *raw, nil
}

// approvalGuestCount resolves the guest count frozen onto the rental.
func approvalGuestCount(listing *domain.Listing, req *domain.RentalRequest) (int, error) {
	if listing.Type == domain.ListingTypeService && listing.BillingUnit == domain.BillingUnitPerGuest {
		if req.GuestCount == nil || *req.GuestCount < 1 {
			return 0, domain.ErrGuestCountRequired
		}
		return *req.GuestCount, nil
	}
	if listing.Type == domain.ListingTypeItem || req.GuestCount == nil || *req.GuestCount < 1 {
		return 1, nil
	}
	return *req.GuestCount, nil
}

func (s *rentalRequestService) ApproveRequest(ctx context.Context, requestID, approverID string) (rental *domain.Rental, err error) {
	const op = "ApproveRequest"
	started := time.Now()
	logger.EnterMethod(ctx, op, "requestID", requestID, "approverID", approverID)
	defer func() { s.opts.finish(ctx, op, started, err, "requestID", requestID) }()

	var approved *domain.RentalRequest
	err = s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		rental, approved = nil, nil

		req, err := repos.Requests.LockByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.LenderID != approverID {
			return domain.ErrForbidden
		}
		if req.Status != domain.RequestStatusPending {
			return fmt.Errorf("%w: request is %s", domain.ErrAlreadyDecided, req.Status)
		}
		if err := repos.Locks.LockListing(ctx, req.ListingID); err != nil {
			return err
		}

		existing, err := repos.Rentals.FindByRequest(ctx, req.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateApproval
		}

		listing, err := repos.Listings.GetByID(ctx, req.ListingID)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: listing no longer exists", domain.ErrListingUnavailable)
		}
		if err != nil {
			return err
		}
		if listing.Status != domain.ListingStatusActive || listing.OwnerID != req.LenderID {
			return domain.ErrListingUnavailable
		}
		if !listing.SupportsBillingUnit() {
			return fmt.Errorf("%w: %s listing billed per %q", domain.ErrInvalidBillingUnit, listing.Type, listing.BillingUnit)
		}
		guests, err := approvalGuestCount(listing, req)
		if err != nil {
			return err
		}

		overlap, err := s.availability.Within(repos).HasOverlap(ctx, req.ListingID, req.StartDate, req.EndDate)
		if err != nil {
			return err
		}
		if overlap {
			return domain.ErrDateConflict
		}

		cost, err := utils.CalculateRentalCost(listing.PriceCents, listing.BillingUnit, req.StartDate, req.EndDate, &guests)
		if err != nil {
			return err
		}
		logger.Debug("Rental priced", "requestID", req.ID, "unit", cost.BillingUnit, "units", cost.Units, "unitPriceCents", cost.UnitPriceCents, "totalCents", cost.TotalCents)

		rt := &domain.Rental{
			ID:                  uuid.NewString(),
			ListingID:           req.ListingID,
			LenderID:            req.LenderID,
			BorrowerID:          req.BorrowerID,
			RentalRequestID:     req.ID,
			StartDate:           req.StartDate,
			EndDate:             req.EndDate,
			PriceAtBookingCents: listing.PriceCents,
			BillingUnit:         listing.BillingUnit,
			GuestCount:          guests,
			TotalAmountCents:    cost.TotalCents,
			Status:              domain.RentalStatusActive,
		}
		if err := repos.Rentals.Create(ctx, rt); err != nil {
			return err
		}

		req.Status = domain.RequestStatusApproved
		ok, err := repos.Requests.UpdateStatus(ctx, req, domain.RequestStatusPending)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyDecided
		}
		rental, approved = rt, req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.opts.publish(ctx, events.RequestEvent(events.RequestApproved, approved))
	return rental, nil
}

func (s *rentalRequestService) RejectRequest(ctx context.Context, requestID, rejecterID, reason string) (req *domain.RentalRequest, err error) {
	const op = "RejectRequest"
	started := time.Now()
	logger.EnterMethod(ctx, op, "requestID", requestID, "rejecterID", rejecterID)
	defer func() { s.opts.finish(ctx, op, started, err, "requestID", requestID) }()

	req, err = s.repos.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.LenderID != rejecterID {
		return nil, domain.ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > domain.MaxReasonLength {
		return nil, fmt.Errorf("%w: reason exceeds %d characters", domain.ErrTooLong, domain.MaxReasonLength)
	}

	req.Status = domain.RequestStatusRejected
	req.RejectionReason = reason
	if err := s.decide(ctx, req); err != nil {
		return nil, err
	}
	s.opts.publish(ctx, events.RequestEvent(events.RequestRejected, req))
	return req, nil
}

func (s *rentalRequestService) CancelRequest(ctx context.Context, requestID, cancellerID string) (req *domain.RentalRequest, err error) {
	const op = "CancelRequest"
	started := time.Now()
	logger.EnterMethod(ctx, op, "requestID", requestID, "cancellerID", cancellerID)
	defer func() { s.opts.finish(ctx, op, started, err, "requestID", requestID) }()

	req, err = s.repos.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.BorrowerID != cancellerID {
		return nil, domain.ErrForbidden
	}

	req.Status = domain.RequestStatusCancelled
	if err := s.decide(ctx, req); err != nil {
		return nil, err
	}
	s.opts.publish(ctx, events.RequestEvent(events.RequestCancelled, req))
	return req, nil
}

// decide moves a PENDING request to req.Status. A request that already left
// PENDING, before the read or concurrently, fails with ErrAlreadyDecided.
func (s *rentalRequestService) decide(ctx context.Context, req *domain.RentalRequest) error {
	ok, err := s.repos.Requests.UpdateStatus(ctx, req, domain.RequestStatusPending)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAlreadyDecided
	}
	return nil
}

func (s *rentalRequestService) GetRequest(ctx context.Context, userID, requestID string) (*domain.RentalRequest, error) {
	req, err := s.repos.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.IsParty(userID) {
		return nil, domain.ErrForbidden
	}
	return req, nil
}

func (s *rentalRequestService) ListMyRequests(ctx context.Context, borrowerID, status string, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	st, err := parseRequestStatus(status)
	if err != nil {
		return nil, 0, err
	}
	return s.repos.Requests.ListByBorrower(ctx, borrowerID, st, page, pageSize)
}

func (s *rentalRequestService) ListIncomingRequests(ctx context.Context, lenderID, status string, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	st, err := parseRequestStatus(status)
	if err != nil {
		return nil, 0, err
	}
	return s.repos.Requests.ListByLender(ctx, lenderID, st, page, pageSize)
}

func parseRequestStatus(s string) (domain.RequestStatus, error) {
	if s == "" {
		return "", nil
	}
	st := domain.RequestStatus(strings.ToUpper(s))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown request status %q", domain.ErrInvalidInput, s)
	}
	return st, nil
}
