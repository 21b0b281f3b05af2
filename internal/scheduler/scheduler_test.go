package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentlink-backend/internal/config"
	"rentlink-backend/internal/jobs"
	"rentlink-backend/internal/repository/memory"
)

func TestNewScheduler(t *testing.T) {
	store := memory.NewStore()

	t.Run("Registers report jobs", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{
			ReportOverdueRentals:       "0 0 2 * * *",
			ReportStalePendingRequests: "0 0 3 * * *",
		}}
		s, err := NewScheduler(jobs.NewJobRunner(store.Repositories(), cfg))
		require.NoError(t, err)
		assert.Equal(t, 2, s.Entries())

		s.Start()
		s.Stop()
	})

	t.Run("Invalid spec", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{
			ReportOverdueRentals:       "every night",
			ReportStalePendingRequests: "0 0 3 * * *",
		}}
		_, err := NewScheduler(jobs.NewJobRunner(store.Repositories(), cfg))
		assert.Error(t, err)
	})
}
