package formula

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"meterhub/internal/apperrors"
	"meterhub/internal/models"
)

// SummarySink persists derived metrics. Upserts are keyed by
// (meter_id, date, metric_name) so recomputation overwrites, never duplicates;
// pruning drops metrics the latest run no longer produced.
type SummarySink interface {
	UpsertSummary(ctx context.Context, summary *models.DailySummary) error
	UpsertSummaryDetail(ctx context.Context, summaryID int64, metricName string, value decimal.Decimal) error
	PruneSummaryDetails(ctx context.Context, summaryID int64, keep []string) error
}

// Engine evaluates a meter's calculation template for one date.
type Engine struct {
	logger *zap.Logger
}

// NewEngine builds engine.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Run resolves and evaluates every formula definition of the meter's template
// and writes the results as a daily summary. Formula computation is opt-in:
// a meter without a template yields (nil, nil).
//
// A reading variable without backing data aborts the run only when it belongs
// to the main definition; for secondary definitions that one definition is
// skipped and logged, the rest of the run continues.
func (e *Engine) Run(ctx context.Context, readings ReadingSource, sink SummarySink, mctx *models.MeterContext, date time.Time) (*models.DailySummary, error) {
	template := mctx.Template
	if template == nil {
		return nil, nil
	}
	if template.MainDefinition() == nil {
		return nil, apperrors.NewConfiguration("template %q has no main definition", template.Name)
	}

	type result struct {
		name  string
		value decimal.Decimal
	}
	var (
		results   []result
		mainValue decimal.Decimal
		mainName  string
	)

	for _, def := range template.Definitions {
		value, err := e.evaluate(ctx, readings, mctx, date, &def)
		if err != nil {
			var unresolved *errUnresolved
			if errors.As(err, &unresolved) && !def.IsMain {
				e.logger.Warn("skipping formula definition with unresolved reading",
					zap.String("meter", mctx.Meter.Code),
					zap.String("definition", def.Name),
					zap.String("variable", unresolved.label),
				)
				continue
			}
			return nil, err
		}
		results = append(results, result{name: def.Name, value: value})
		if def.IsMain {
			mainName = def.Name
			mainValue = value
		}
	}

	summary := &models.DailySummary{
		MeterID:    mctx.Meter.ID,
		Date:       date,
		MainMetric: mainName,
		TotalValue: mainValue,
	}
	if err := sink.UpsertSummary(ctx, summary); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(results))
	for _, res := range results {
		if err := sink.UpsertSummaryDetail(ctx, summary.ID, res.name, res.value); err != nil {
			return nil, err
		}
		summary.Details = append(summary.Details, models.SummaryDetail{
			SummaryID:  summary.ID,
			MetricName: res.name,
			Value:      res.value,
		})
		names = append(names, res.name)
	}
	if err := sink.PruneSummaryDetails(ctx, summary.ID, names); err != nil {
		return nil, err
	}

	e.logger.Debug("formula run complete",
		zap.String("meter", mctx.Meter.Code),
		zap.Time("date", date),
		zap.Int("metrics", len(results)),
		zap.String("main_metric", mainName),
	)
	return summary, nil
}

func (e *Engine) evaluate(ctx context.Context, readings ReadingSource, mctx *models.MeterContext, date time.Time, def *models.FormulaDefinition) (decimal.Decimal, error) {
	expr, err := Parse(def.Expression)
	if err != nil {
		return decimal.Decimal{}, apperrors.NewConfiguration("formula %q: %v", def.Name, err)
	}

	values, err := resolveVariables(ctx, readings, mctx, date, def.Variables)
	if err != nil {
		var unresolved *errUnresolved
		if errors.As(err, &unresolved) {
			if def.IsMain {
				return decimal.Decimal{}, apperrors.NewComputation(def.Name, "%s", unresolved.Error())
			}
			return decimal.Decimal{}, err
		}
		return decimal.Decimal{}, apperrors.NewConfiguration("formula %q: %v", def.Name, err)
	}

	value, err := expr.Eval(values)
	if err != nil {
		if errors.Is(err, ErrDivisionByZero) {
			return decimal.Decimal{}, apperrors.NewComputation(def.Name, "division by zero")
		}
		// Undeclared identifiers are prevented at authoring time; hitting one
		// here means the stored definition drifted.
		var unknown *UnknownVariableError
		if errors.As(err, &unknown) {
			return decimal.Decimal{}, apperrors.NewConfiguration("formula %q references undeclared variable %q", def.Name, unknown.Name)
		}
		return decimal.Decimal{}, apperrors.NewComputation(def.Name, "%v", err)
	}
	return value, nil
}
