package domain

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// Validation
	ErrInvalidInput       = errors.New("invalid input")
	ErrMissingGuestCount  = errors.New("guest count is required for per-guest billing")
	ErrGuestCountRequired = errors.New("a positive guest count is required for this listing")
	ErrInvalidBillingUnit = errors.New("invalid billing unit for listing")
	ErrTooLong            = errors.New("text field too long")
	ErrSelfRequest        = errors.New("cannot request your own listing")
	ErrListingUnavailable = errors.New("listing is not available")
	ErrNotYetEnded        = errors.New("rental has not ended yet")
	ErrAlreadyEnded       = errors.New("rental already ended")

	// State conflicts
	ErrDuplicateRequest  = errors.New("duplicate request not allowed")
	ErrDateConflict      = errors.New("dates are already booked")
	ErrAlreadyDecided    = errors.New("request has already been decided")
	ErrDuplicateApproval = errors.New("request already has a rental")
	ErrNotCancellable    = errors.New("rental cannot be cancelled")
	ErrNotCompletable    = errors.New("rental cannot be completed")

	ErrUnavailable = errors.New("storage unavailable")
)

type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindAuthorization  ErrorKind = "authorization"
	KindConflict       ErrorKind = "conflict"
	KindNotFound       ErrorKind = "not_found"
	KindInfrastructure ErrorKind = "infrastructure"
)

// KindOf classifies err for callers mapping outcomes onto a transport.
// Anything not recognised is treated as an infrastructure failure.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindAuthorization
	case errors.Is(err, ErrDuplicateRequest),
		errors.Is(err, ErrDateConflict),
		errors.Is(err, ErrAlreadyDecided),
		errors.Is(err, ErrDuplicateApproval),
		errors.Is(err, ErrNotCancellable),
		errors.Is(err, ErrNotCompletable):
		return KindConflict
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrMissingGuestCount),
		errors.Is(err, ErrGuestCountRequired),
		errors.Is(err, ErrInvalidBillingUnit),
		errors.Is(err, ErrTooLong),
		errors.Is(err, ErrSelfRequest),
		errors.Is(err, ErrListingUnavailable),
		errors.Is(err, ErrNotYetEnded),
		errors.Is(err, ErrAlreadyEnded):
		return KindValidation
	}
	return KindInfrastructure
}
