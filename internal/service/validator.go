package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"meterhub/internal/apperrors"
	"meterhub/internal/models"
)

// readingHistory is the slice of ReadingStore the validator needs.
type readingHistory interface {
	HasSessionAfter(ctx context.Context, meterID int64, at time.Time) (bool, error)
	LatestSessionBefore(ctx context.Context, meterID int64, at time.Time) (*models.ReadingSession, error)
}

// Validator enforces the ordered ingest checks: no future override, daily
// cadence, monotonicity, alarm thresholds and tank capacity. Each violation
// is a hard stop carrying its own message.
type Validator struct {
	logger *zap.Logger
}

// NewValidator builds validator.
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate checks a submitted reading against the meter's history and
// physical bounds. All lookups go through the handed store so they share the
// ingest transaction.
func (v *Validator) Validate(ctx context.Context, history readingHistory, mctx *models.MeterContext, at time.Time, details []models.ReadingDetailInput) error {
	meter := &mctx.Meter

	hasNewer, err := history.HasSessionAfter(ctx, meter.ID, at)
	if err != nil {
		return err
	}
	if hasNewer {
		return apperrors.NewValidation(apperrors.RuleFutureData,
			"a newer reading already exists for meter %s; readings dated %s or earlier can no longer be submitted",
			meter.Code, at.Format("2006-01-02"))
	}

	prior, err := history.LatestSessionBefore(ctx, meter.ID, at)
	if err != nil {
		return err
	}

	if prior != nil && !meter.AllowGap {
		if gap := DaysBetween(prior.SessionDate, at); gap > 1 {
			return apperrors.NewValidation(apperrors.RuleGap,
				"meter %s requires daily readings: last reading was %s, %d days before %s",
				meter.Code, prior.SessionDate.Format("2006-01-02"), gap, DateOf(at).Format("2006-01-02"))
		}
	}

	// Meters with a rollover limit legitimately wrap back to low values, so
	// the monotonicity check does not apply to them.
	if prior != nil && !meter.AllowDecrease && !meter.RolloverLimit.Valid {
		for _, d := range details {
			prev := prior.DetailFor(d.ReadingTypeID)
			if prev != nil && d.Value.LessThan(prev.Value) {
				return apperrors.NewValidation(apperrors.RuleMonotonic,
					"meter %s does not allow decreasing values: %s for reading type %d is below the previous reading %s",
					meter.Code, d.Value.String(), d.ReadingTypeID, prev.Value.String())
			}
		}
	}

	for _, d := range details {
		cfg := mctx.ConfigFor(d.ReadingTypeID)
		if cfg == nil {
			continue
		}
		if cfg.AlarmMin.Valid && d.Value.LessThan(cfg.AlarmMin.Decimal) {
			return apperrors.NewValidation(apperrors.RuleAlarm,
				"value %s for reading type %d on meter %s is below the alarm minimum %s",
				d.Value.String(), d.ReadingTypeID, meter.Code, cfg.AlarmMin.Decimal.String())
		}
		if cfg.AlarmMax.Valid && d.Value.GreaterThan(cfg.AlarmMax.Decimal) {
			return apperrors.NewValidation(apperrors.RuleAlarm,
				"value %s for reading type %d on meter %s is above the alarm maximum %s",
				d.Value.String(), d.ReadingTypeID, meter.Code, cfg.AlarmMax.Decimal.String())
		}
	}

	if mctx.Tank != nil {
		for _, d := range details {
			rt, ok := mctx.ReadingTypes[d.ReadingTypeID]
			if !ok {
				continue
			}
			if rt.IsHeightUnit() && d.Value.GreaterThan(mctx.Tank.HeightMaxCm) {
				return apperrors.NewValidation(apperrors.RuleCapacity,
					"level %s cm on meter %s exceeds the tank height of %s cm",
					d.Value.String(), meter.Code, mctx.Tank.HeightMaxCm.String())
			}
			if rt.IsVolumeUnit() && d.Value.GreaterThan(mctx.Tank.CapacityLiters) {
				return apperrors.NewValidation(apperrors.RuleCapacity,
					"volume %s l on meter %s exceeds the tank capacity of %s l",
					d.Value.String(), meter.Code, mctx.Tank.CapacityLiters.String())
			}
		}
	}

	return nil
}
