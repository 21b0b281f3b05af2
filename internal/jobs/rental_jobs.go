package jobs

import (
	"context"

	"rentlink-backend/internal/domain"
	"rentlink-backend/internal/logger"
)

// OverdueRentals lists ACTIVE rentals whose end date has passed. Their lenders
// are expected to complete them.
func (jr *JobRunner) OverdueRentals(ctx context.Context) ([]domain.Rental, error) {
	return jr.repos.Rentals.ListOverdueActive(ctx, jr.now())
}

// StalePendingRequests lists PENDING requests whose start date has passed
// without a decision.
func (jr *JobRunner) StalePendingRequests(ctx context.Context) ([]domain.RentalRequest, error) {
	return jr.repos.Requests.ListStalePending(ctx, jr.now())
}

func (jr *JobRunner) ReportOverdueRentals() {
	jr.runWithRecovery("ReportOverdueRentals", func() {
		ctx := context.Background()
		rentals, err := jr.OverdueRentals(ctx)
		if err != nil {
			logger.Error("Failed to list overdue rentals", "error", err)
			return
		}

		logger.Info("Found overdue rentals", "count", len(rentals))
		for _, rt := range rentals {
			logger.Debug("Rental awaiting completion",
				"rental_id", rt.ID,
				"listing_id", rt.ListingID,
				"lender_id", rt.LenderID,
				"end_date", rt.EndDate)
		}
	})
}

func (jr *JobRunner) ReportStalePendingRequests() {
	jr.runWithRecovery("ReportStalePendingRequests", func() {
		ctx := context.Background()
		reqs, err := jr.StalePendingRequests(ctx)
		if err != nil {
			logger.Error("Failed to list stale pending requests", "error", err)
			return
		}

		logger.Info("Found stale pending requests", "count", len(reqs))
		for _, req := range reqs {
			logger.Debug("Request still pending after start",
				"request_id", req.ID,
				"listing_id", req.ListingID,
				"lender_id", req.LenderID,
				"start_date", req.StartDate)
		}
	})
}
