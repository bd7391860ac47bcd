// Package janitor periodically clears expired reset tokens. Lookups
// already filter on expiry, so this only keeps stale secrets from
// lingering in the database.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/kundan1729/promptly-server/internal/metrics"
	"github.com/kundan1729/promptly-server/internal/repository"
	"github.com/robfig/cron/v3"
)

const defaultSchedule = "@hourly"

type Janitor struct {
	users    repository.UserRepository
	logger   *slog.Logger
	schedule string
	cron     *cron.Cron
}

func New(users repository.UserRepository, logger *slog.Logger) *Janitor {
	return &Janitor{
		users:    users,
		logger:   logger.With("component", "janitor"),
		schedule: defaultSchedule,
		cron:     cron.New(),
	}
}

// Start schedules the purge job. Returns an error only if the schedule
// expression is invalid.
func (j *Janitor) Start() error {
	_, err := j.cron.AddFunc(j.schedule, j.purge)
	if err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop waits for a running purge to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

func (j *Janitor) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cleared, err := j.users.ClearExpiredResetTokens(ctx)
	if err != nil {
		j.logger.Error("clear expired reset tokens", "error", err)
		return
	}
	if cleared > 0 {
		metrics.ResetTokensPurgedTotal.Add(float64(cleared))
		j.logger.Info("cleared expired reset tokens", "count", cleared)
	}
}
