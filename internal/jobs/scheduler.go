package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"meterhub/internal/models"
	"meterhub/internal/service"
)

// Scheduler runs the daily batch jobs: the recompute run re-derives
// yesterday's metrics for every active meter, and the completeness check
// reminds meter owners about missing readings. Both isolate failures per
// meter: one meter's error logs and the batch continues.
type Scheduler struct {
	cron      *cron.Cron
	ingestion *service.IngestionService
	meters    service.MeterStore
	tx        service.TxRunner
	loc       *time.Location
	logger    *zap.Logger
}

// NewScheduler builds scheduler.
func NewScheduler(
	ingestion *service.IngestionService,
	meters service.MeterStore,
	tx service.TxRunner,
	loc *time.Location,
	logger *zap.Logger,
) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		ingestion: ingestion,
		meters:    meters,
		tx:        tx,
		loc:       loc,
		logger:    logger,
	}
}

// Register adds the daily jobs with the given cron specs.
func (s *Scheduler) Register(recomputeSpec, completenessSpec string) error {
	if _, err := s.cron.AddFunc(recomputeSpec, func() { s.RunRecompute(context.Background()) }); err != nil {
		return fmt.Errorf("jobs: register recompute: %w", err)
	}
	if _, err := s.cron.AddFunc(completenessSpec, func() { s.RunCompletenessCheck(context.Background()) }); err != nil {
		return fmt.Errorf("jobs: register completeness: %w", err)
	}
	return nil
}

// Start begins the cron loop.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunRecompute re-runs the formula engine for yesterday for every active meter.
func (s *Scheduler) RunRecompute(ctx context.Context) {
	yesterday := time.Now().In(s.loc).AddDate(0, 0, -1)

	meters, err := s.meters.ListActive(ctx)
	if err != nil {
		s.logger.Error("recompute run: list meters failed", zap.Error(err))
		return
	}

	var failed int
	for _, m := range meters {
		if _, err := s.ingestion.Recompute(ctx, m.Code, yesterday); err != nil {
			failed++
			s.logger.Warn("recompute failed for meter",
				zap.String("meter", m.Code),
				zap.Error(err),
			)
		}
	}
	s.logger.Info("recompute run finished",
		zap.Int("meters", len(meters)),
		zap.Int("failed", failed),
	)
}

// RunCompletenessCheck notifies owners of active meters with no reading today.
func (s *Scheduler) RunCompletenessCheck(ctx context.Context) {
	today := service.DateOf(time.Now().In(s.loc))

	meters, err := s.meters.ListActive(ctx)
	if err != nil {
		s.logger.Error("completeness check: list meters failed", zap.Error(err))
		return
	}

	var missing, failed int
	for _, m := range meters {
		meter := m
		err := s.tx.WithinTx(ctx, func(stores service.Stores) error {
			latest, err := stores.Readings.LatestSession(ctx, meter.ID)
			if err != nil {
				return err
			}
			if latest != nil && !latest.SessionDate.Before(today) {
				return nil
			}
			missing++
			return stores.Notifications.Create(ctx, &models.Notification{
				UserID:   meter.OwnerUserID,
				Category: models.CategoryCompleteness,
				Severity: models.SeverityWarning,
				Title:    fmt.Sprintf("Missing reading for meter %s", meter.Code),
				Message:  fmt.Sprintf("Meter %s has no reading recorded for %s", meter.Code, today.Format("2006-01-02")),
				RefTable: "meters",
				RefID:    meter.ID,
			})
		})
		if err != nil {
			failed++
			s.logger.Warn("completeness check failed for meter",
				zap.String("meter", meter.Code),
				zap.Error(err),
			)
		}
	}
	s.logger.Info("completeness check finished",
		zap.Int("meters", len(meters)),
		zap.Int("missing", missing),
		zap.Int("failed", failed),
	)
}
