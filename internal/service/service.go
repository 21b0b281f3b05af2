package service

import (
	"context"
	"time"

	"rentlink-backend/internal/domain"
	"rentlink-backend/internal/events"
	"rentlink-backend/internal/logger"
	"rentlink-backend/internal/metrics"
)

// CreateRequestInput carries a borrower's booking proposal as received from
// the transport. Dates are parsed by the service.
type CreateRequestInput struct {
	ListingID  string
	BorrowerID string
	StartDate  string
	EndDate    string
	Message    string
	GuestCount *int
}

type RentalRequestService interface {
	CreateRequest(ctx context.Context, in CreateRequestInput) (*domain.RentalRequest, error)
	ApproveRequest(ctx context.Context, requestID, approverID string) (*domain.Rental, error)
	RejectRequest(ctx context.Context, requestID, rejecterID, reason string) (*domain.RentalRequest, error)
	CancelRequest(ctx context.Context, requestID, cancellerID string) (*domain.RentalRequest, error)
	GetRequest(ctx context.Context, userID, requestID string) (*domain.RentalRequest, error)
	ListMyRequests(ctx context.Context, borrowerID, status string, page, pageSize int32) ([]domain.RentalRequest, int32, error)
	ListIncomingRequests(ctx context.Context, lenderID, status string, page, pageSize int32) ([]domain.RentalRequest, int32, error)
}

type RentalService interface {
	CancelRental(ctx context.Context, rentalID, actorID, reason string) (*domain.Rental, error)
	CompleteRental(ctx context.Context, rentalID, actorID string, force bool) (*domain.Rental, error)
	GetRental(ctx context.Context, userID, rentalID string) (*domain.Rental, error)
	ListMyRentals(ctx context.Context, userID, role, status string, page, pageSize int32) ([]domain.Rental, int32, error)
}

// Option customises the services built by this package.
type Option func(*options)

type options struct {
	now       func() time.Time
	publisher events.Publisher
	metrics   *metrics.Metrics
	mode      OverlapMode
}

func defaultOptions() options {
	return options{
		now:       func() time.Time { return time.Now().UTC() },
		publisher: events.NewNoop(),
		mode:      OverlapSymmetric,
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithPublisher(p events.Publisher) Option {
	return func(o *options) {
		if p != nil {
			o.publisher = p
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithOverlapMode(mode OverlapMode) Option {
	return func(o *options) { o.mode = mode }
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// publish hands a committed transition to the broker. Failures are logged and
// never surface to the caller.
func (o options) publish(ctx context.Context, ev events.Event) {
	if err := o.publisher.Publish(ctx, ev); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "type", ev.Type, "key", ev.Key, "error", err)
	}
}

// finish records the outcome of a service operation in logs and metrics.
func (o options) finish(ctx context.Context, op string, started time.Time, err error, args ...any) {
	o.metrics.Observe(op, started, err)
	if err != nil {
		logger.ExitMethodWithError(ctx, op, err, domain.KindOf(err) != domain.KindInfrastructure, args...)
		return
	}
	logger.ExitMethod(ctx, op, args...)
}
