package domain

import "time"

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusApproved  RequestStatus = "APPROVED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCancelled RequestStatus = "CANCELLED"
)

const (
	MaxMessageLength = 1000
	MaxReasonLength  = 500
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected, RequestStatusCancelled:
		return true
	}
	return false
}

func (s RequestStatus) Terminal() bool {
	return s != RequestStatusPending
}

type RentalRequest struct {
	ID              string        `json:"id"`
	ListingID       string        `json:"listing_id"`
	LenderID        string        `json:"lender_id"`
	BorrowerID      string        `json:"borrower_id"`
	StartDate       time.Time     `json:"start_date"`
	EndDate         time.Time     `json:"end_date"`
	Message         string        `json:"message,omitempty"`
	GuestCount      *int          `json:"guest_count,omitempty"`
	Status          RequestStatus `json:"status"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	CreatedOn       time.Time     `json:"created_on"`
	UpdatedOn       time.Time     `json:"updated_on"`
}

// IsParty reports whether userID is the lender or the borrower of the request.
func (r *RentalRequest) IsParty(userID string) bool {
	return userID != "" && (r.LenderID == userID || r.BorrowerID == userID)
}
