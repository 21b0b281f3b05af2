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

const requestColumns = `id, listing_id, lender_id, borrower_id, start_date, end_date, message, guest_count, status, rejection_reason, created_on, updated_on`

type rentalRequestRepository struct {
	db DBTX
}

func NewRentalRequestRepository(db DBTX) repository.RentalRequestRepository {
	return &rentalRequestRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*domain.RentalRequest, error) {
	var (
		req        domain.RentalRequest
		guestCount sql.NullInt64
	)
	err := row.Scan(&req.ID, &req.ListingID, &req.LenderID, &req.BorrowerID, &req.StartDate, &req.EndDate,
		&req.Message, &guestCount, &req.Status, &req.RejectionReason, &req.CreatedOn, &req.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if guestCount.Valid {
		n := int(guestCount.Int64)
		req.GuestCount = &n
	}
	return &req, nil
}

func (r *rentalRequestRepository) Create(ctx context.Context, req *domain.RentalRequest) error {
	now := time.Now().UTC()
	query := `INSERT INTO rental_requests (id, listing_id, lender_id, borrower_id, start_date, end_date, message, guest_count, status, rejection_reason, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	var guestCount sql.NullInt64
	if req.GuestCount != nil {
		guestCount = sql.NullInt64{Int64: int64(*req.GuestCount), Valid: true}
	}
	logger.DatabaseCall(ctx, "CreateRentalRequest", "listing_id", req.ListingID)
	res, err := r.db.ExecContext(ctx, query, req.ID, req.ListingID, req.LenderID, req.BorrowerID, req.StartDate, req.EndDate,
		req.Message, guestCount, req.Status, req.RejectionReason, now, now)
	if err != nil {
		logger.DatabaseResult(ctx, "CreateRentalRequest", 0, err)
		if isUniqueViolation(err, constraintRequestTupleUnique) {
			return domain.ErrDuplicateRequest
		}
		return err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult(ctx, "CreateRentalRequest", n, nil)
	req.CreatedOn = now
	req.UpdatedOn = now
	return nil
}

func (r *rentalRequestRepository) GetByID(ctx context.Context, id string) (*domain.RentalRequest, error) {
	return r.get(ctx, `SELECT `+requestColumns+` FROM rental_requests WHERE id = $1`, id)
}

func (r *rentalRequestRepository) LockByID(ctx context.Context, id string) (*domain.RentalRequest, error) {
	return r.get(ctx, `SELECT `+requestColumns+` FROM rental_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *rentalRequestRepository) get(ctx context.Context, query, id string) (*domain.RentalRequest, error) {
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rental request %s: %w", id, domain.ErrNotFound)
	}
	return req, err
}

func (r *rentalRequestRepository) ExistsDuplicate(ctx context.Context, listingID, borrowerID string, start, end time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM rental_requests WHERE listing_id = $1 AND borrower_id = $2 AND start_date = $3 AND end_date = $4)`
	err := r.db.QueryRowContext(ctx, query, listingID, borrowerID, start, end).Scan(&exists)
	return exists, err
}

func (r *rentalRequestRepository) UpdateStatus(ctx context.Context, req *domain.RentalRequest, from domain.RequestStatus) (bool, error) {
	now := time.Now().UTC()
	query := `UPDATE rental_requests SET status = $1, rejection_reason = $2, updated_on = $3 WHERE id = $4 AND status = $5`
	logger.DatabaseCall(ctx, "UpdateRentalRequestStatus", "id", req.ID, "from", from, "to", req.Status)
	res, err := r.db.ExecContext(ctx, query, req.Status, req.RejectionReason, now, req.ID, from)
	if err != nil {
		logger.DatabaseResult(ctx, "UpdateRentalRequestStatus", 0, err)
		return false, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult(ctx, "UpdateRentalRequestStatus", n, err)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	req.UpdatedOn = now
	return true, nil
}

func (r *rentalRequestRepository) ListByBorrower(ctx context.Context, borrowerID string, status domain.RequestStatus, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	return r.list(ctx, "borrower_id", borrowerID, status, page, pageSize)
}

func (r *rentalRequestRepository) ListByLender(ctx context.Context, lenderID string, status domain.RequestStatus, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	return r.list(ctx, "lender_id", lenderID, status, page, pageSize)
}

// list pages requests filtered on column, which is always one of the fixed
// column names above and never caller input.
func (r *rentalRequestRepository) list(ctx context.Context, column, userID string, status domain.RequestStatus, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	limit, offset := normalizePage(page, pageSize)
	where := ` FROM rental_requests WHERE ` + column + ` = $1`
	args := []any{userID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*)`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + requestColumns + where + fmt.Sprintf(` ORDER BY created_on DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reqs []domain.RentalRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, count, rows.Err()
}

func (r *rentalRequestRepository) ListStalePending(ctx context.Context, startedBefore time.Time) ([]domain.RentalRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM rental_requests WHERE status = $1 AND start_date < $2 ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, domain.RequestStatusPending, startedBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.RentalRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}
