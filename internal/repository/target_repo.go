package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"meterhub/internal/models"
)

// TargetRepository reads efficiency targets.
type TargetRepository struct {
	db DBTX
}

// NewTargetRepository returns repository.
func NewTargetRepository(db DBTX) *TargetRepository {
	return &TargetRepository{db: db}
}

// ActiveTarget returns the target whose period contains the given day for the
// meter, nil when no target is active. Absence is not an error.
func (r *TargetRepository) ActiveTarget(ctx context.Context, meterID int64, day time.Time) (*models.EfficiencyTarget, error) {
	const query = `
		SELECT id, meter_id, start_date, end_date, baseline, target_percentage
		FROM efficiency_targets
		WHERE meter_id = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY start_date DESC
		LIMIT 1
	`
	var t models.EfficiencyTarget
	err := r.db.QueryRowContext(ctx, query, meterID, day).Scan(
		&t.ID,
		&t.MeterID,
		&t.StartDate,
		&t.EndDate,
		&t.Baseline,
		&t.TargetPercentage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
