package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"meterhub/internal/models"
)

// SummaryRepository persists derived daily summaries. All writes are upserts
// so recomputing a (meter, date) overwrites earlier derived values.
type SummaryRepository struct {
	db DBTX
}

// NewSummaryRepository returns repository.
func NewSummaryRepository(db DBTX) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// UpsertSummary writes the summary head row keyed by (meter_id, summary_date).
func (r *SummaryRepository) UpsertSummary(ctx context.Context, summary *models.DailySummary) error {
	const query = `
		INSERT INTO daily_summaries (meter_id, summary_date, main_metric, total_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (meter_id, summary_date) DO UPDATE SET
			main_metric = EXCLUDED.main_metric,
			total_value = EXCLUDED.total_value,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		summary.MeterID,
		summary.Date,
		summary.MainMetric,
		summary.TotalValue,
	).Scan(&summary.ID, &summary.CreatedAt, &summary.UpdatedAt)
}

// UpsertSummaryDetail writes one named metric keyed by (summary_id, metric_name).
func (r *SummaryRepository) UpsertSummaryDetail(ctx context.Context, summaryID int64, metricName string, value decimal.Decimal) error {
	const query = `
		INSERT INTO summary_details (summary_id, metric_name, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (summary_id, metric_name) DO UPDATE SET
			value = EXCLUDED.value
	`
	_, err := r.db.ExecContext(ctx, query, summaryID, metricName, value)
	return err
}

// PruneSummaryDetails deletes metrics of a summary that the latest engine run
// did not produce, so skipped or removed definitions leave no stale rows.
func (r *SummaryRepository) PruneSummaryDetails(ctx context.Context, summaryID int64, keep []string) error {
	const query = `
		DELETE FROM summary_details
		WHERE summary_id = $1 AND metric_name <> ALL($2)
	`
	_, err := r.db.ExecContext(ctx, query, summaryID, keep)
	return err
}

// SummaryFor returns the summary with details for a (meter, date), nil when absent.
func (r *SummaryRepository) SummaryFor(ctx context.Context, meterID int64, day time.Time) (*models.DailySummary, error) {
	const query = `
		SELECT id, meter_id, summary_date, main_metric, total_value, created_at, updated_at
		FROM daily_summaries
		WHERE meter_id = $1 AND summary_date = $2
	`
	var s models.DailySummary
	err := r.db.QueryRowContext(ctx, query, meterID, day).Scan(
		&s.ID,
		&s.MeterID,
		&s.Date,
		&s.MainMetric,
		&s.TotalValue,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	const detailQuery = `
		SELECT id, summary_id, metric_name, value
		FROM summary_details
		WHERE summary_id = $1
		ORDER BY metric_name
	`
	rows, err := r.db.QueryContext(ctx, detailQuery, s.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d models.SummaryDetail
		if err := rows.Scan(&d.ID, &d.SummaryID, &d.MetricName, &d.Value); err != nil {
			return nil, err
		}
		s.Details = append(s.Details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}
