// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/EstateEmpire/estateempire-backend/internal/logging"
)

const (
	CodeCleanupSpec = "0 0 * * * *" // hourly
	RentSweepSpec   = "0 0 6 * * *" // daily at 06:00
	jobTimeout      = 5 * time.Minute
)

type CodeCleaner interface {
	CleanupExpiredCodes(ctx context.Context) (int64, error)
}

type RentSweeper interface {
	SweepRentDue(ctx context.Context, now time.Time) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	codes   CodeCleaner
	rentals RentSweeper
	now     func() time.Time
}

func NewScheduler(codes CodeCleaner, rentals RentSweeper) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		codes:   codes,
		rentals: rentals,
		now:     time.Now,
	}
}

// Start registers the jobs and starts the cron loop in the background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(CodeCleanupSpec, s.CleanupCodes); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(RentSweepSpec, s.SweepRentDue); err != nil {
		return err
	}

	logging.L().WithFields(logrus.Fields{
		"code_cleanup": CodeCleanupSpec,
		"rent_sweep":   RentSweepSpec,
	}).Info("cron scheduler started")
	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) CleanupCodes() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.codes.CleanupExpiredCodes(ctx)
	if err != nil {
		logging.L().WithError(err).Error("verification code cleanup failed")
		return
	}
	logging.L().WithField("deleted", n).Info("verification code cleanup done")
}

func (s *Scheduler) SweepRentDue() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.rentals.SweepRentDue(ctx, s.now())
	if err != nil {
		logging.L().WithError(err).Error("rent due sweep failed")
		return
	}
	logging.L().WithField("due", n).Info("rent due sweep done")
}
