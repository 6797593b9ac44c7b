// Package scheduler runs the nightly valuation snapshot.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/logger"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
)

// snapshotter is the part of service.SnapshotService the job needs.
type snapshotter interface {
	SnapshotDate(ctx context.Context, date time.Time) (*model.BackfillResult, error)
}

// Scheduler snapshots every account for the previous day on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	snapshots snapshotter
	log       zerolog.Logger
	now       func() time.Time
}

// New parses spec, a standard five field cron expression, and registers the
// snapshot job. The job does not run until Start is called.
func New(spec string, snapshots snapshotter, log zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		snapshots: snapshots,
		log:       log,
		now:       time.Now,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid snapshot schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.log.Info().Time("next_run", e.Next).Msg("snapshot schedule started")
	}
}

// Stop halts the schedule and waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("snapshot job still running at shutdown")
	}
}

// RunOnce snapshots the day before now. Failures are logged.
func (s *Scheduler) RunOnce(ctx context.Context) *model.BackfillResult {
	ctx = logger.WithContext(ctx, s.log)
	yesterday := s.now().UTC().AddDate(0, 0, -1)

	result, err := s.snapshots.SnapshotDate(ctx, yesterday)
	if err != nil {
		s.log.Error().Err(err).Str("date", yesterday.Format("2006-01-02")).Msg("nightly snapshot failed")
		return result
	}
	s.log.Info().
		Str("date", result.To).
		Int("inserted", result.Inserted).
		Int("failed", result.Failed).
		Msg("nightly snapshot complete")
	return result
}
