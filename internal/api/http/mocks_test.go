package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rentlink-backend/internal/domain"
	"rentlink-backend/internal/service"
)

// MockRentalRequestService
type MockRentalRequestService struct {
	mock.Mock
}

func (m *MockRentalRequestService) CreateRequest(ctx context.Context, in service.CreateRequestInput) (*domain.RentalRequest, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalRequest), args.Error(1)
}
func (m *MockRentalRequestService) ApproveRequest(ctx context.Context, requestID, approverID string) (*domain.Rental, error) {
	args := m.Called(ctx, requestID, approverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRequestService) RejectRequest(ctx context.Context, requestID, rejecterID, reason string) (*domain.RentalRequest, error) {
	args := m.Called(ctx, requestID, rejecterID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalRequest), args.Error(1)
}
func (m *MockRentalRequestService) CancelRequest(ctx context.Context, requestID, cancellerID string) (*domain.RentalRequest, error) {
	args := m.Called(ctx, requestID, cancellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalRequest), args.Error(1)
}
func (m *MockRentalRequestService) GetRequest(ctx context.Context, userID, requestID string) (*domain.RentalRequest, error) {
	args := m.Called(ctx, userID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalRequest), args.Error(1)
}
func (m *MockRentalRequestService) ListMyRequests(ctx context.Context, borrowerID, status string, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	args := m.Called(ctx, borrowerID, status, page, pageSize)
	return args.Get(0).([]domain.RentalRequest), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRequestService) ListIncomingRequests(ctx context.Context, lenderID, status string, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	args := m.Called(ctx, lenderID, status, page, pageSize)
	return args.Get(0).([]domain.RentalRequest), args.Get(1).(int32), args.Error(2)
}

// MockRentalService
type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) CancelRental(ctx context.Context, rentalID, actorID, reason string) (*domain.Rental, error) {
	args := m.Called(ctx, rentalID, actorID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) CompleteRental(ctx context.Context, rentalID, actorID string, force bool) (*domain.Rental, error) {
	args := m.Called(ctx, rentalID, actorID, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) GetRental(ctx context.Context, userID, rentalID string) (*domain.Rental, error) {
	args := m.Called(ctx, userID, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) ListMyRentals(ctx context.Context, userID, role, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, userID, role, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
