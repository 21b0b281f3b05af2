package utils

import (
	"fmt"
	"math"
	"time"

	"rentlink-backend/internal/domain"
)

const (
	secondsPerHour = 60 * 60
	secondsPerDay  = 24 * secondsPerHour
)

// RentalCostBreakdown provides detailed cost breakdown
type RentalCostBreakdown struct {
	BillingUnit    domain.BillingUnit
	Units          int64 // hours, days or guests billed; 1 for PER_GROUP
	UnitPriceCents int64
	TotalCents     int64
}

// ComputeTotal returns the total amount in cents for booking a listing priced
// at priceCents per billingUnit over [start, end).
func ComputeTotal(priceCents int64, unit domain.BillingUnit, start, end time.Time, guestCount *int) (int64, error) {
	b, err := CalculateRentalCost(priceCents, unit, start, end, guestCount)
	if err != nil {
		return 0, err
	}
	return b.TotalCents, nil
}

// CalculateRentalCost computes the billed units and total for a booking.
// HOUR and DAY round partial units up; a DAY booking always bills at least one day.
func CalculateRentalCost(priceCents int64, unit domain.BillingUnit, start, end time.Time, guestCount *int) (RentalCostBreakdown, error) {
	if priceCents < 0 {
		return RentalCostBreakdown{}, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	if !start.Before(end) {
		return RentalCostBreakdown{}, fmt.Errorf("%w: start must be before end", domain.ErrInvalidInput)
	}

	var units int64
	switch unit {
	case domain.BillingUnitHour:
		units = ceilUnits(start, end, secondsPerHour)
	case domain.BillingUnitDay:
		units = max(1, ceilUnits(start, end, secondsPerDay))
	case domain.BillingUnitPerGuest:
		if guestCount == nil || *guestCount <= 0 {
			return RentalCostBreakdown{}, domain.ErrMissingGuestCount
		}
		units = int64(*guestCount)
	case domain.BillingUnitPerGroup:
		units = 1
	default:
		return RentalCostBreakdown{}, fmt.Errorf("%w: unrecognized billing unit %q", domain.ErrInvalidInput, unit)
	}

	if units > 0 && priceCents > math.MaxInt64/units {
		return RentalCostBreakdown{}, fmt.Errorf("%w: total amount overflows", domain.ErrInvalidInput)
	}

	return RentalCostBreakdown{
		BillingUnit:    unit,
		Units:          units,
		UnitPriceCents: priceCents,
		TotalCents:     priceCents * units,
	}, nil
}

// ceilUnits counts unitSeconds-long units in [start, end), rounding up.
// It works on whole seconds so ranges longer than time.Duration can hold
// are still billed exactly.
func ceilUnits(start, end time.Time, unitSeconds int64) int64 {
	secs := end.Unix() - start.Unix()
	nanos := end.Nanosecond() - start.Nanosecond()
	if nanos < 0 {
		secs--
		nanos += int(time.Second)
	}
	n := secs / unitSeconds
	if secs%unitSeconds != 0 || nanos > 0 {
		n++
	}
	return n
}
