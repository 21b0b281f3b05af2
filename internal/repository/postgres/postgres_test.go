package postgres_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentlink-backend/internal/domain"
	"rentlink-backend/internal/repository"
	"rentlink-backend/internal/repository/postgres"
)

var (
	start = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
)

var rentalCols = []string{"id", "listing_id", "lender_id", "borrower_id", "rental_request_id", "start_date", "end_date",
	"price_at_booking_cents", "billing_unit", "guest_count", "total_amount_cents", "status", "cancelled_by",
	"cancellation_reason", "created_on", "updated_on"}

var requestCols = []string{"id", "listing_id", "lender_id", "borrower_id", "start_date", "end_date", "message",
	"guest_count", "status", "rejection_reason", "created_on", "updated_on"}

func newMock(t *testing.T) (sqlmock.Sqlmock, *postgres.Store) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return mock, postgres.NewStore(db, postgres.Options{MaxRetries: 2, RetryBackoff: time.Millisecond})
}

func TestListingRepository_GetByID(t *testing.T) {
	mock, store := newMock(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM listings WHERE id = \\$1").
			WithArgs("l1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "type", "status", "price_cents", "billing_unit"}).
				AddRow("l1", "owner", "ITEM", "ACTIVE", int64(2000), "DAY"))

		l, err := store.ListingRepository.GetByID(ctx, "l1")
		require.NoError(t, err)
		assert.Equal(t, domain.ListingTypeItem, l.Type)
		assert.Equal(t, domain.BillingUnitDay, l.BillingUnit)
		assert.Equal(t, int64(2000), l.PriceCents)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM listings WHERE id = \\$1").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := store.ListingRepository.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRequestRepository_Create(t *testing.T) {
	mock, store := newMock(t)
	ctx := context.Background()
	guests := 4
	req := &domain.RentalRequest{
		ID: "r1", ListingID: "l1", LenderID: "owner", BorrowerID: "b1",
		StartDate: start, EndDate: end, GuestCount: &guests, Status: domain.RequestStatusPending,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO rental_requests").
			WithArgs("r1", "l1", "owner", "b1", start, end, "", int64(4), "PENDING", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := store.RentalRequestRepository.Create(ctx, req)
		require.NoError(t, err)
		assert.False(t, req.CreatedOn.IsZero())
	})

	t.Run("Duplicate tuple", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO rental_requests").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "rental_requests_listing_borrower_range_key"})

		err := store.RentalRequestRepository.Create(ctx, req)
		assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRequestRepository_GetByID(t *testing.T) {
	mock, store := newMock(t)
	ctx := context.Background()

	t.Run("Success with null guest count", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rental_requests WHERE id = \\$1").
			WithArgs("r1").
			WillReturnRows(sqlmock.NewRows(requestCols).
				AddRow("r1", "l1", "owner", "b1", start, end, "hi", nil, "PENDING", "", start, start))

		req, err := store.RentalRequestRepository.GetByID(ctx, "r1")
		require.NoError(t, err)
		assert.Nil(t, req.GuestCount)
		assert.Equal(t, domain.RequestStatusPending, req.Status)
		assert.Equal(t, "hi", req.Message)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rental_requests WHERE id = \\$1 FOR UPDATE").
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(requestCols))

		_, err := store.RentalRequestRepository.LockByID(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRequestRepository_UpdateStatus(t *testing.T) {
	mock, store := newMock(t)
	ctx := context.Background()
	req := &domain.RentalRequest{ID: "r1", Status: domain.RequestStatusApproved}

	t.Run("Swapped", func(t *testing.T) {
		mock.ExpectExec("UPDATE rental_requests SET status").
			WithArgs("APPROVED", "", sqlmock.AnyArg(), "r1", "PENDING").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := store.RentalRequestRepository.UpdateStatus(ctx, req, domain.RequestStatusPending)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Lost race", func(t *testing.T) {
		mock.ExpectExec("UPDATE rental_requests SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := store.RentalRequestRepository.UpdateStatus(ctx, req, domain.RequestStatusPending)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRequestRepository_ListByLender(t *testing.T) {
	mock, store := newMock(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM rental_requests WHERE lender_id = \\$1 AND status = \\$2").
		WithArgs("owner", "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM rental_requests WHERE lender_id = \\$1 AND status = \\$2 ORDER BY created_on DESC LIMIT \\$3 OFFSET \\$4").
		WithArgs("owner", "PENDING", int32(10), int64(10)).
		WillReturnRows(sqlmock.NewRows(requestCols).
			AddRow("r1", "l1", "owner", "b1", start, end, "", int64(2), "PENDING", "", start, start))

	reqs, count, err := store.RentalRequestRepository.ListByLender(ctx, "owner", domain.RequestStatusPending, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(1), count)
	require.Len(t, reqs, 1)
	assert.Equal(t, 2, *reqs[0].GuestCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_List_LargePage(t *testing.T) {
	mock, store := newMock(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM rentals WHERE \\(borrower_id = \\$1 OR lender_id = \\$1\\)").
		WithArgs("owner").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT (.+) FROM rentals WHERE (.+) ORDER BY created_on DESC LIMIT \\$2 OFFSET \\$3").
		WithArgs("owner", int32(100), int64(math.MaxInt32-1)*100).
		WillReturnRows(sqlmock.NewRows(rentalCols))

	rentals, count, err := store.RentalRepository.List(ctx, "owner", "", "", math.MaxInt32, 100)
	require.NoError(t, err)
	assert.Empty(t, rentals)
	assert.Equal(t, int32(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_Create(t *testing.T) {
	mock, store := newMock(t)
	ctx := context.Background()
	rt := &domain.Rental{
		ID: "rt1", ListingID: "l1", LenderID: "owner", BorrowerID: "b1", RentalRequestID: "r1",
		StartDate: start, EndDate: end, PriceAtBookingCents: 2000, BillingUnit: domain.BillingUnitDay,
		GuestCount: 1, TotalAmountCents: 4000, Status: domain.RentalStatusActive,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO rentals").
			WithArgs("rt1", "l1", "owner", "b1", "r1", start, end, int64(2000), "DAY", int64(1), int64(4000), "ACTIVE", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.RentalRepository.Create(ctx, rt))
	})

	t.Run("Second rental for the same request", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO rentals").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "rentals_rental_request_id_key"})

		err := store.RentalRepository.Create(ctx, rt)
		assert.ErrorIs(t, err, domain.ErrDuplicateApproval)
	})

	t.Run("Other unique violation is not masked", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO rentals").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "rentals_pkey"})

		err := store.RentalRepository.Create(ctx, rt)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrDuplicateApproval)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_FindByRequest(t *testing.T) {
	mock, store := newMock(t)
	ctx := context.Background()

	t.Run("None", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE rental_request_id = \\$1").
			WithArgs("r1").
			WillReturnRows(sqlmock.NewRows(rentalCols))

		rt, err := store.RentalRepository.FindByRequest(ctx, "r1")
		require.NoError(t, err)
		assert.Nil(t, rt)
	})

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE rental_request_id = \\$1").
			WithArgs("r2").
			WillReturnRows(sqlmock.NewRows(rentalCols).
				AddRow("rt2", "l1", "owner", "b1", "r2", start, end, int64(100), "HOUR", int64(1), int64(4800), "CANCELLED", "b1", "changed plans", start, start))

		rt, err := store.RentalRepository.FindByRequest(ctx, "r2")
		require.NoError(t, err)
		require.NotNil(t, rt)
		assert.Equal(t, domain.RentalStatusCancelled, rt.Status)
		require.NotNil(t, rt.CancelledBy)
		assert.Equal(t, "b1", *rt.CancelledBy)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_ListActiveStartingBefore(t *testing.T) {
	mock, store := newMock(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM rentals WHERE listing_id = \\$1 AND status = \\$2 AND start_date < \\$3").
		WithArgs("l1", "ACTIVE", end).
		WillReturnRows(sqlmock.NewRows(rentalCols).
			AddRow("rt1", "l1", "owner", "b1", "r1", start, end, int64(2000), "DAY", int64(1), int64(4000), "ACTIVE", nil, "", start, start))

	rentals, err := store.RentalRepository.ListActiveStartingBefore(ctx, "l1", end)
	require.NoError(t, err)
	require.Len(t, rentals, 1)
	assert.Nil(t, rentals[0].CancelledBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits on success", func(t *testing.T) {
		mock, store := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").WithArgs("l1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			return repos.Locks.LockListing(ctx, "l1")
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back on domain error without retry", func(t *testing.T) {
		mock, store := newMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		calls := 0
		err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			calls++
			return domain.ErrAlreadyDecided
		})
		assert.ErrorIs(t, err, domain.ErrAlreadyDecided)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Retries serialization failures", func(t *testing.T) {
		mock, store := newMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectCommit()

		calls := 0
		err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			calls++
			if calls == 1 {
				return &pq.Error{Code: "40001"}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Exhausted retries surface as unavailable", func(t *testing.T) {
		mock, store := newMock(t)
		for i := 0; i < 3; i++ {
			mock.ExpectBegin()
			mock.ExpectRollback()
		}

		err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			return &pq.Error{Code: "40P01"}
		})
		assert.ErrorIs(t, err, domain.ErrUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIsTransient(t *testing.T) {
	assert.True(t, postgres.IsTransient(driver.ErrBadConn))
	assert.True(t, postgres.IsTransient(&pq.Error{Code: "08006"}))
	assert.False(t, postgres.IsTransient(&pq.Error{Code: "23505"}))
	assert.False(t, postgres.IsTransient(errors.New("boom")))
}
