package postgres

import (
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	classConnectionException = "08"

	constraintRentalRequestUnique = "rentals_rental_request_id_key"
	constraintRequestTupleUnique  = "rental_requests_listing_borrower_range_key"
)

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == codeUniqueViolation && (constraint == "" || pqErr.Constraint == constraint)
}

// IsTransient reports whether err is worth retrying the whole transaction for.
func IsTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	code := string(pqErr.Code)
	return code == codeSerializationFailure ||
		code == codeDeadlockDetected ||
		strings.HasPrefix(code, classConnectionException)
}

type transientClassifier struct{}

func (transientClassifier) Classify(err error) retrier.Action {
	switch {
	case err == nil:
		return retrier.Succeed
	case IsTransient(err):
		return retrier.Retry
	default:
		return retrier.Fail
	}
}
