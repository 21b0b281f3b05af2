package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rentlink-backend/internal/domain"
	"rentlink-backend/internal/repository"
)

type OverlapMode string

const (
	// OverlapSymmetric is the interval test: existing.start < end AND existing.end > start.
	OverlapSymmetric OverlapMode = "symmetric"
	// OverlapStartOnly only compares existing starts with the candidate end.
	// Any booking starting before the candidate ends blocks it, even one that
	// finished long before the candidate starts.
	OverlapStartOnly OverlapMode = "start_only"
)

func ParseOverlapMode(s string) (OverlapMode, error) {
	switch OverlapMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", OverlapSymmetric:
		return OverlapSymmetric, nil
	case OverlapStartOnly:
		return OverlapStartOnly, nil
	}
	return "", fmt.Errorf("%w: unknown overlap mode %q", domain.ErrInvalidInput, s)
}

// AvailabilityChecker answers whether a listing already has an ACTIVE rental
// conflicting with a candidate range.
type AvailabilityChecker struct {
	rentals repository.RentalRepository
	mode    OverlapMode
}

func NewAvailabilityChecker(rentals repository.RentalRepository, mode OverlapMode) *AvailabilityChecker {
	if mode == "" {
		mode = OverlapSymmetric
	}
	return &AvailabilityChecker{rentals: rentals, mode: mode}
}

// Within returns a checker reading through the transaction-scoped repositories.
func (c *AvailabilityChecker) Within(repos repository.Repositories) *AvailabilityChecker {
	return &AvailabilityChecker{rentals: repos.Rentals, mode: c.mode}
}

func (c *AvailabilityChecker) Mode() OverlapMode { return c.mode }

func (c *AvailabilityChecker) HasOverlap(ctx context.Context, listingID string, start, end time.Time) (bool, error) {
	active, err := c.rentals.ListActiveStartingBefore(ctx, listingID, end)
	if err != nil {
		return false, err
	}
	for _, rt := range active {
		if c.mode == OverlapStartOnly || rt.EndDate.After(start) {
			return true, nil
		}
	}
	return false, nil
}
