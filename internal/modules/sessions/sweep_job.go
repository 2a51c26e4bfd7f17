package sessions

import (
	"github.com/rs/zerolog"
)

// SweepJob expires idle sessions. It is scheduled by the cron scheduler.
type SweepJob struct {
	service *Service
	log     zerolog.Logger
}

// NewSweepJob creates a new session sweep job
func NewSweepJob(service *Service, log zerolog.Logger) *SweepJob {
	return &SweepJob{
		service: service,
		log:     log.With().Str("job", "session_sweep").Logger(),
	}
}

// Run removes every session idle for longer than the service TTL
func (j *SweepJob) Run() error {
	expired := j.service.ExpireIdle()
	if expired > 0 {
		j.log.Info().
			Int("expired", expired).
			Int("active", j.service.Count()).
			Msg("Session sweep completed")
	}
	return nil
}

// Name returns the job name for scheduling and logging
func (j *SweepJob) Name() string {
	return "session_sweep"
}
