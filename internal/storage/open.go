package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"rentlink-backend/internal/config"
	"rentlink-backend/internal/domain"
	"rentlink-backend/internal/logger"
	"rentlink-backend/internal/metrics"
	"rentlink-backend/internal/repository/memory"
	"rentlink-backend/internal/repository/postgres"
)

type postgresBackend struct {
	*postgres.Store
}

func (b postgresBackend) Ping(ctx context.Context) error { return b.DB().PingContext(ctx) }
func (b postgresBackend) Close() error                   { return b.DB().Close() }

type memoryBackend struct {
	*memory.Store
}

func (memoryBackend) Ping(context.Context) error { return nil }
func (memoryBackend) Close() error               { return nil }

// NewMemory returns an empty in-process backend. Listings must be seeded
// through Store().PutListing.
func NewMemory() *MemoryBackend {
	return &MemoryBackend{memoryBackend{memory.NewStore()}}
}

// MemoryBackend exposes the underlying store for seeding.
type MemoryBackend struct {
	memoryBackend
}

func (b *MemoryBackend) Store() *memory.Store { return b.memoryBackend.Store }

// Open connects the backend selected by cfg.Storage.Type.
func Open(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (Backend, error) {
	switch cfg.Storage.Type {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage; data is lost on restart", "seed_listings", len(cfg.Storage.Listings))
		b := NewMemory()
		for _, l := range cfg.Storage.Listings {
			b.Store().PutListing(domain.Listing{
				ID:          l.ID,
				OwnerID:     l.OwnerID,
				Type:        domain.ListingType(l.Type),
				Status:      domain.ListingStatus(l.Status),
				PriceCents:  l.PriceCents,
				BillingUnit: domain.BillingUnit(l.BillingUnit),
			})
		}
		return b, nil
	case config.StoragePostgres, "":
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Database schema migrated")
	}

	store := postgres.NewStore(db, postgres.Options{
		MaxRetries:   cfg.Booking.MaxRetries,
		RetryBackoff: time.Duration(cfg.Booking.RetryBackoffMS) * time.Millisecond,
		Metrics:      m,
	})
	return postgresBackend{store}, nil
}
