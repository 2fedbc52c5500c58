package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"meterhub/internal/apperrors"
	"meterhub/internal/formula"
	"meterhub/internal/models"
	"meterhub/internal/repository"
)

// IngestState tracks the orchestrator's progress through one ingestion.
type IngestState string

// Pipeline states. Everything after Received happens inside one transaction;
// Rejected rolls the whole sequence back.
const (
	StateReceived  IngestState = "received"
	StateValidated IngestState = "validated"
	StatePersisted IngestState = "persisted"
	StateComputed  IngestState = "computed"
	StateEvaluated IngestState = "evaluated"
	StateDone      IngestState = "done"
	StateRejected  IngestState = "rejected"
)

// IngestInput is one submitted capture event.
type IngestInput struct {
	MeterCode         string
	UserID            int64
	TakenAt           time.Time
	CorrectsSessionID *int64
	Details           []models.ReadingDetailInput
}

// IngestResult reports what one ingestion produced.
type IngestResult struct {
	State   IngestState            `json:"state"`
	Session *models.ReadingSession `json:"session,omitempty"`
	Summary *models.DailySummary   `json:"summary,omitempty"`
}

// IngestionService runs the reading pipeline: validate, persist, compute
// derived metrics, evaluate efficiency. One call, one transaction.
type IngestionService struct {
	tx         TxRunner
	validator  *Validator
	engine     *formula.Engine
	efficiency *EfficiencyEvaluator
	loc        *time.Location
	logger     *zap.Logger
}

// NewIngestionService builds service.
func NewIngestionService(
	tx TxRunner,
	validator *Validator,
	engine *formula.Engine,
	efficiency *EfficiencyEvaluator,
	loc *time.Location,
	logger *zap.Logger,
) *IngestionService {
	if loc == nil {
		loc = time.UTC
	}
	return &IngestionService{
		tx:         tx,
		validator:  validator,
		engine:     engine,
		efficiency: efficiency,
		loc:        loc,
		logger:     logger,
	}
}

// Ingest executes the full state machine for one reading. On any failure
// after Received the transaction rolls back: a reading is never visible
// without its validation having passed, and a summary never without its
// reading.
func (s *IngestionService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if input.MeterCode == "" {
		return nil, apperrors.NewConfiguration("meter code is required")
	}
	if len(input.Details) == 0 {
		return nil, apperrors.NewValidation("empty", "a reading must contain at least one value")
	}
	if input.TakenAt.IsZero() {
		input.TakenAt = time.Now()
	}

	at := NormalizeReadingTime(input.TakenAt, s.loc)
	day := DateOf(at)
	state := StateReceived

	result := &IngestResult{}
	err := s.tx.WithinTx(ctx, func(stores Stores) error {
		mctx, err := stores.Meters.ContextByCode(ctx, input.MeterCode)
		if errors.Is(err, repository.ErrMeterNotFound) {
			return apperrors.NewConfiguration("meter %s not found", input.MeterCode)
		}
		if err != nil {
			return err
		}
		if mctx.Meter.Status != models.MeterStatusActive {
			return apperrors.NewConfiguration("meter %s is %s and does not accept readings", mctx.Meter.Code, mctx.Meter.Status)
		}

		if err := s.validator.Validate(ctx, stores.Readings, mctx, at, input.Details); err != nil {
			return err
		}
		state = StateValidated

		session := &models.ReadingSession{
			MeterID:           mctx.Meter.ID,
			UserID:            input.UserID,
			TakenAt:           at,
			SessionDate:       day,
			CorrectsSessionID: input.CorrectsSessionID,
		}
		for _, d := range input.Details {
			session.Details = append(session.Details, models.ReadingDetail{
				ReadingTypeID: d.ReadingTypeID,
				Value:         d.Value,
			})
		}
		if err := stores.Readings.CreateSession(ctx, session); err != nil {
			if repository.IsForeignKeyViolation(err) {
				return apperrors.NewConfiguration("reading references an unknown record: %v", err)
			}
			return err
		}
		state = StatePersisted
		result.Session = session

		summary, err := s.engine.Run(ctx, stores.Readings, stores.Summaries, mctx, day)
		if err != nil {
			return err
		}
		state = StateComputed
		result.Summary = summary

		if summary != nil {
			if err := s.efficiency.Check(ctx, stores.Targets, stores.Notifications, mctx, summary); err != nil {
				return err
			}
		}
		state = StateEvaluated
		return nil
	})
	if err != nil {
		result.State = StateRejected
		s.logger.Info("reading rejected",
			zap.String("meter", input.MeterCode),
			zap.Time("taken_at", at),
			zap.String("state", string(state)),
			zap.Error(err),
		)
		return result, err
	}

	result.State = StateDone
	s.logger.Info("reading ingested",
		zap.String("meter", input.MeterCode),
		zap.Time("taken_at", at),
		zap.Int("details", len(input.Details)),
		zap.Bool("computed", result.Summary != nil),
	)
	return result, nil
}

// Recompute re-runs the formula engine and efficiency evaluation for a
// (meter, day) without ingesting a new reading. Used after corrections and by
// the daily batch job; upsert keys make it idempotent.
func (s *IngestionService) Recompute(ctx context.Context, meterCode string, day time.Time) (*models.DailySummary, error) {
	day = DateOf(NormalizeReadingTime(day, s.loc))

	var summary *models.DailySummary
	err := s.tx.WithinTx(ctx, func(stores Stores) error {
		mctx, err := stores.Meters.ContextByCode(ctx, meterCode)
		if errors.Is(err, repository.ErrMeterNotFound) {
			return apperrors.NewConfiguration("meter %s not found", meterCode)
		}
		if err != nil {
			return err
		}

		summary, err = s.engine.Run(ctx, stores.Readings, stores.Summaries, mctx, day)
		if err != nil {
			return err
		}
		if summary == nil {
			return nil
		}
		return s.efficiency.Check(ctx, stores.Targets, stores.Notifications, mctx, summary)
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
