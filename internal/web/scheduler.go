package web

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/hpungsan/plusblocks/internal/logging"
	"github.com/hpungsan/plusblocks/internal/ops"
)

// Maintenance runs periodic cache and journal housekeeping while the server is up.
type Maintenance struct {
	scheduler gocron.Scheduler
	env       *ops.Env
	logger    logging.Logger
}

// NewMaintenance schedules ops.Maintain every interval.
func NewMaintenance(env *ops.Env, interval time.Duration, logger logging.Logger) (*Maintenance, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("maintenance interval must be positive, got %s", interval)
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	m := &Maintenance{scheduler: s, env: env, logger: logging.OrDiscard(logger)}
	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(m.run),
		gocron.WithName("cache-prune"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create cache-prune job: %w", err)
	}
	return m, nil
}

// Start begins the scheduler.
func (m *Maintenance) Start() {
	m.logger.Debug("starting maintenance scheduler")
	m.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for a running job.
func (m *Maintenance) Stop() error {
	return m.scheduler.Shutdown()
}

func (m *Maintenance) run() {
	out, err := ops.Maintain(m.env, ops.DefaultKeepRuns)
	if err != nil {
		m.logger.WithError(err).Warn("scheduled maintenance failed")
		return
	}
	m.logger.WithField("pruned", out.Pruned).WithField("runs_pruned", out.RunsPruned).Info("scheduled maintenance")
}
