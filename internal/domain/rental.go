package domain

import "time"

type RentalStatus string

const (
	RentalStatusActive    RentalStatus = "ACTIVE"
	RentalStatusCompleted RentalStatus = "COMPLETED"
	RentalStatusCancelled RentalStatus = "CANCELLED"
	RentalStatusDisputed  RentalStatus = "DISPUTED"
)

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalStatusActive, RentalStatusCompleted, RentalStatusCancelled, RentalStatusDisputed:
		return true
	}
	return false
}

type Rental struct {
	ID              string    `json:"id"`
	ListingID       string    `json:"listing_id"`
	LenderID        string    `json:"lender_id"`
	BorrowerID      string    `json:"borrower_id"`
	RentalRequestID string    `json:"rental_request_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	// Snapshot fields, captured from the listing at approval time.
	// Later listing price changes never affect an existing rental.
	PriceAtBookingCents int64       `json:"price_at_booking_cents"`
	BillingUnit         BillingUnit `json:"billing_unit"`
	GuestCount          int         `json:"guest_count"`
	TotalAmountCents    int64       `json:"total_amount_cents"`

	Status             RentalStatus `json:"status"`
	CancelledBy        *string      `json:"cancelled_by,omitempty"`
	CancellationReason string       `json:"cancellation_reason,omitempty"`
	CreatedOn          time.Time    `json:"created_on"`
	UpdatedOn          time.Time    `json:"updated_on"`
}

func (r *Rental) IsParty(userID string) bool {
	return userID != "" && (r.LenderID == userID || r.BorrowerID == userID)
}

// HasEnded reports whether now is at or past the rental's end date.
func (r *Rental) HasEnded(now time.Time) bool {
	return !now.Before(r.EndDate)
}

// RentalRole narrows rental listings to one side of the transaction.
type RentalRole string

const (
	RentalRoleAll      RentalRole = "all"
	RentalRoleBorrower RentalRole = "borrower"
	RentalRoleLender   RentalRole = "lender"
)
