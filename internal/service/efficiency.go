package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"meterhub/internal/models"
)

// EfficiencyEvaluator compares a computed daily total against the active
// efficiency target and emits a notification on breach. It performs no
// de-duplication against earlier notifications; invocation frequency is the
// caller's concern.
type EfficiencyEvaluator struct {
	logger *zap.Logger
}

// NewEfficiencyEvaluator builds evaluator.
func NewEfficiencyEvaluator(logger *zap.Logger) *EfficiencyEvaluator {
	return &EfficiencyEvaluator{logger: logger}
}

// Check is a no-op when the meter has no target active on the summary's date.
// On breach it creates exactly one notification describing the meter, the
// actual value and the limit.
func (e *EfficiencyEvaluator) Check(ctx context.Context, targets TargetStore, sink NotificationStore, mctx *models.MeterContext, summary *models.DailySummary) error {
	target, err := targets.ActiveTarget(ctx, mctx.Meter.ID, summary.Date)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}

	limit := target.Limit()
	if summary.TotalValue.LessThanOrEqual(limit) {
		return nil
	}

	// Over the reduced limit warns; over the unreduced baseline is critical.
	severity := models.SeverityWarning
	if summary.TotalValue.GreaterThan(target.Baseline) {
		severity = models.SeverityCritical
	}

	notification := &models.Notification{
		UserID:   mctx.Meter.OwnerUserID,
		Category: models.CategoryEfficiency,
		Severity: severity,
		Title:    fmt.Sprintf("Efficiency target exceeded on meter %s", mctx.Meter.Code),
		Message: fmt.Sprintf("Usage %s on %s exceeds the efficiency limit %s (baseline %s, target reduction %s%%)",
			summary.TotalValue.String(),
			summary.Date.Format("2006-01-02"),
			limit.String(),
			target.Baseline.String(),
			target.TargetPercentage.Shift(2).String(),
		),
		RefTable: "daily_summaries",
		RefID:    summary.ID,
	}
	if err := sink.Create(ctx, notification); err != nil {
		return err
	}

	e.logger.Info("efficiency target breached",
		zap.String("meter", mctx.Meter.Code),
		zap.Time("date", summary.Date),
		zap.String("usage", summary.TotalValue.String()),
		zap.String("limit", limit.String()),
	)
	return nil
}
