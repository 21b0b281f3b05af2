package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rentlink-backend/internal/domain"
	"rentlink-backend/internal/repository"
)

type listingRepository struct {
	db DBTX
}

func NewListingRepository(db DBTX) repository.ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	l := &domain.Listing{}
	query := `SELECT id, owner_id, type, status, price_cents, billing_unit FROM listings WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.OwnerID, &l.Type, &l.Status, &l.PriceCents, &l.BillingUnit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}
