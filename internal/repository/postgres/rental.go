package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentlink-backend/internal/domain"
	"rentlink-backend/internal/logger"
	"rentlink-backend/internal/repository"
)

const rentalColumns = `id, listing_id, lender_id, borrower_id, rental_request_id, start_date, end_date, price_at_booking_cents, billing_unit, guest_count, total_amount_cents, status, cancelled_by, cancellation_reason, created_on, updated_on`

type rentalRepository struct {
	db DBTX
}

func NewRentalRepository(db DBTX) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	var (
		rt          domain.Rental
		cancelledBy sql.NullString
	)
	err := row.Scan(&rt.ID, &rt.ListingID, &rt.LenderID, &rt.BorrowerID, &rt.RentalRequestID, &rt.StartDate, &rt.EndDate,
		&rt.PriceAtBookingCents, &rt.BillingUnit, &rt.GuestCount, &rt.TotalAmountCents, &rt.Status,
		&cancelledBy, &rt.CancellationReason, &rt.CreatedOn, &rt.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if cancelledBy.Valid {
		rt.CancelledBy = &cancelledBy.String
	}
	return &rt, nil
}

func scanRentals(rows *sql.Rows) ([]domain.Rental, error) {
	defer rows.Close()
	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	now := time.Now().UTC()
	query := `INSERT INTO rentals (id, listing_id, lender_id, borrower_id, rental_request_id, start_date, end_date, price_at_booking_cents, billing_unit, guest_count, total_amount_cents, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	logger.DatabaseCall(ctx, "CreateRental", "rental_request_id", rt.RentalRequestID)
	res, err := r.db.ExecContext(ctx, query, rt.ID, rt.ListingID, rt.LenderID, rt.BorrowerID, rt.RentalRequestID, rt.StartDate, rt.EndDate,
		rt.PriceAtBookingCents, rt.BillingUnit, rt.GuestCount, rt.TotalAmountCents, rt.Status, now, now)
	if err != nil {
		logger.DatabaseResult(ctx, "CreateRental", 0, err)
		if isUniqueViolation(err, constraintRentalRequestUnique) {
			return domain.ErrDuplicateApproval
		}
		return err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult(ctx, "CreateRental", n, nil)
	rt.CreatedOn = now
	rt.UpdatedOn = now
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	rt, err := scanRental(r.db.QueryRowContext(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rental %s: %w", id, domain.ErrNotFound)
	}
	return rt, err
}

func (r *rentalRepository) FindByRequest(ctx context.Context, requestID string) (*domain.Rental, error) {
	rt, err := scanRental(r.db.QueryRowContext(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE rental_request_id = $1`, requestID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rt, err
}

func (r *rentalRepository) ListActiveStartingBefore(ctx context.Context, listingID string, end time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE listing_id = $1 AND status = $2 AND start_date < $3 ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, listingID, domain.RentalStatusActive, end)
	if err != nil {
		return nil, err
	}
	return scanRentals(rows)
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, rt *domain.Rental, from domain.RentalStatus) (bool, error) {
	now := time.Now().UTC()
	query := `UPDATE rentals SET status = $1, cancelled_by = $2, cancellation_reason = $3, updated_on = $4 WHERE id = $5 AND status = $6`
	logger.DatabaseCall(ctx, "UpdateRentalStatus", "id", rt.ID, "from", from, "to", rt.Status)
	res, err := r.db.ExecContext(ctx, query, rt.Status, rt.CancelledBy, rt.CancellationReason, now, rt.ID, from)
	if err != nil {
		logger.DatabaseResult(ctx, "UpdateRentalStatus", 0, err)
		return false, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult(ctx, "UpdateRentalStatus", n, err)
	if err != nil || n == 0 {
		return false, err
	}
	rt.UpdatedOn = now
	return true, nil
}

func (r *rentalRepository) List(ctx context.Context, userID string, role domain.RentalRole, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	limit, offset := normalizePage(page, pageSize)
	var where string
	switch role {
	case domain.RentalRoleBorrower:
		where = ` FROM rentals WHERE borrower_id = $1`
	case domain.RentalRoleLender:
		where = ` FROM rentals WHERE lender_id = $1`
	default:
		where = ` FROM rentals WHERE (borrower_id = $1 OR lender_id = $1)`
	}
	args := []any{userID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*)`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + rentalColumns + where + fmt.Sprintf(` ORDER BY created_on DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	rentals, err := scanRentals(rows)
	if err != nil {
		return nil, 0, err
	}
	return rentals, count, nil
}

func (r *rentalRepository) ListOverdueActive(ctx context.Context, endedBefore time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE status = $1 AND end_date <= $2 ORDER BY end_date`
	rows, err := r.db.QueryContext(ctx, query, domain.RentalStatusActive, endedBefore)
	if err != nil {
		return nil, err
	}
	return scanRentals(rows)
}
