package di

import (
	"fmt"

	"github.com/aristath/etfadvisor/internal/config"
	"github.com/aristath/etfadvisor/internal/modules/sessions"
	"github.com/rs/zerolog"
)

// RegisterJobs registers all background jobs with the scheduler
// Returns JobInstances for manual triggering via API
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{}

	sweep := sessions.NewSweepJob(container.SessionService, log)
	if err := container.Scheduler.AddJob(cfg.SessionSweep, sweep); err != nil {
		return nil, fmt.Errorf("failed to register session sweep job: %w", err)
	}
	instances.SessionSweep = sweep

	return instances, nil
}
