package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rentlink-backend/internal/domain"
	"rentlink-backend/internal/security"
	"rentlink-backend/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type harness struct {
	requests *MockRentalRequestService
	rentals  *MockRentalService
	tokens   security.TokenManager
	handler  http.Handler
}

func newHarness(t *testing.T, ping Pinger) *harness {
	t.Helper()
	h := &harness{
		requests: new(MockRentalRequestService),
		rentals:  new(MockRentalService),
		tokens:   security.NewTokenManager(testSecret, "auth-service", "api-access"),
	}
	h.handler = NewServer(h.requests, h.rentals, h.tokens, prometheus.NewRegistry(), ping).Handler()
	return h
}

func (h *harness) do(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		token, err := h.tokens.GenerateAccessToken(userID, "", nil, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthentication(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodGet, "/api/v1/requests/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := newHarness(t, func(context.Context) error { return errors.New("db down") })
	rec := h.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreateRequest(t *testing.T) {
	h := newHarness(t, nil)
	guests := 3
	want := service.CreateRequestInput{
		ListingID:  "listing-1",
		BorrowerID: "borrower-1",
		StartDate:  "2026-03-01",
		EndDate:    "2026-03-03",
		Message:    "hello",
		GuestCount: &guests,
	}
	h.requests.On("CreateRequest", mock.Anything, want).
		Return(&domain.RentalRequest{ID: "req-1", Status: domain.RequestStatusPending}, nil).Once()

	rec := h.do(t, http.MethodPost, "/api/v1/listings/listing-1/requests", "borrower-1",
		`{"startDate":"2026-03-01","endDate":"2026-03-03","message":"hello","guestCount":3}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got domain.RentalRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "req-1", got.ID)
	h.requests.AssertExpectations(t)

	rec = h.do(t, http.MethodPost, "/api/v1/listings/listing-1/requests", "borrower-1", `{"guestCount":"many"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrAlreadyDecided, http.StatusConflict},
		{domain.ErrDuplicateApproval, http.StatusConflict},
		{domain.ErrDateConflict, http.StatusConflict},
		{fmt.Errorf("%w: bad", domain.ErrInvalidInput), http.StatusBadRequest},
		{domain.ErrGuestCountRequired, http.StatusBadRequest},
		{fmt.Errorf("%w: retries exhausted", domain.ErrUnavailable), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := newHarness(t, nil)
			h.requests.On("ApproveRequest", mock.Anything, "req-1", "lender-1").Return(nil, tt.err).Once()

			rec := h.do(t, http.MethodPatch, "/api/v1/requests/req-1/approve", "lender-1", "")
			assert.Equal(t, tt.want, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, string(domain.KindOf(tt.err)), body.Error)
			if tt.want >= 500 {
				assert.Equal(t, "internal error", body.Message)
			}
		})
	}
}

func TestRequestRoutes(t *testing.T) {
	h := newHarness(t, nil)

	h.requests.On("RejectRequest", mock.Anything, "req-1", "lender-1", "not now").
		Return(&domain.RentalRequest{ID: "req-1", Status: domain.RequestStatusRejected}, nil).Once()
	rec := h.do(t, http.MethodPatch, "/api/v1/requests/req-1/reject", "lender-1", `{"reason":"not now"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	h.requests.On("CancelRequest", mock.Anything, "req-1", "borrower-1").
		Return(nil, domain.ErrAlreadyDecided).Once()
	rec = h.do(t, http.MethodPatch, "/api/v1/requests/req-1/cancel", "borrower-1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	h.requests.On("GetRequest", mock.Anything, "borrower-1", "req-1").
		Return(&domain.RentalRequest{ID: "req-1"}, nil).Once()
	rec = h.do(t, http.MethodGet, "/api/v1/requests/req-1", "borrower-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	h.requests.On("ListMyRequests", mock.Anything, "borrower-1", "PENDING", int32(2), int32(5)).
		Return([]domain.RentalRequest{{ID: "req-1"}}, int32(6), nil).Once()
	rec = h.do(t, http.MethodGet, "/api/v1/requests/me?status=PENDING&page=2&page_size=5", "borrower-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list listResponse[domain.RentalRequest]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, int32(6), list.Total)
	assert.Len(t, list.Items, 1)

	h.requests.On("ListIncomingRequests", mock.Anything, "lender-1", "", int32(1), int32(20)).
		Return([]domain.RentalRequest(nil), int32(0), nil).Once()
	rec = h.do(t, http.MethodGet, "/api/v1/requests/incoming", "lender-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)

	h.requests.AssertExpectations(t)
}

func TestRentalRoutes(t *testing.T) {
	h := newHarness(t, nil)

	h.rentals.On("CancelRental", mock.Anything, "rt-1", "borrower-1", "sick").
		Return(nil, domain.ErrAlreadyEnded).Once()
	rec := h.do(t, http.MethodPatch, "/api/v1/rentals/rt-1/cancel", "borrower-1", `{"reason":"sick"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.rentals.On("CompleteRental", mock.Anything, "rt-1", "lender-1", true).
		Return(&domain.Rental{ID: "rt-1", Status: domain.RentalStatusCompleted}, nil).Once()
	rec = h.do(t, http.MethodPatch, "/api/v1/rentals/rt-1/complete?force=true", "lender-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPatch, "/api/v1/rentals/rt-1/complete?force=maybe", "lender-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.rentals.On("GetRental", mock.Anything, "stranger", "rt-1").Return(nil, domain.ErrForbidden).Once()
	rec = h.do(t, http.MethodGet, "/api/v1/rentals/rt-1", "stranger", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	h.rentals.On("ListMyRentals", mock.Anything, "lender-1", "lender", "ACTIVE", int32(1), int32(20)).
		Return([]domain.Rental{{ID: "rt-1"}}, int32(1), nil).Once()
	rec = h.do(t, http.MethodGet, "/api/v1/rentals/me?role=lender&status=ACTIVE", "lender-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	h.rentals.AssertExpectations(t)
}
