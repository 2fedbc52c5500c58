package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"meterhub/internal/models"
)

// ErrMeterNotFound indicates an unknown meter code or id.
var ErrMeterNotFound = errors.New("meter not found")

// MeterRepository reads meter configuration: the meter row, tank profile,
// alarm configs, reading type catalog and the assigned calculation template.
type MeterRepository struct {
	db DBTX
}

// NewMeterRepository returns repository.
func NewMeterRepository(db DBTX) *MeterRepository {
	return &MeterRepository{db: db}
}

// ContextByCode loads the full meter context for the ingest pipeline.
func (r *MeterRepository) ContextByCode(ctx context.Context, code string) (*models.MeterContext, error) {
	const query = `
		SELECT id, code, name, status, energy_type, allow_decrease, allow_gap,
		       rollover_limit, COALESCE(calculation_template_id, 0), owner_user_id,
		       created_at, updated_at
		FROM meters
		WHERE code = $1
	`
	var m models.Meter
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&m.ID,
		&m.Code,
		&m.Name,
		&m.Status,
		&m.EnergyType,
		&m.AllowDecrease,
		&m.AllowGap,
		&m.RolloverLimit,
		&m.TemplateID,
		&m.OwnerUserID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMeterNotFound
	}
	if err != nil {
		return nil, err
	}

	mctx := &models.MeterContext{Meter: m}

	if mctx.Tank, err = r.tankProfile(ctx, m.ID); err != nil {
		return nil, err
	}
	if mctx.Configs, err = r.readingConfigs(ctx, m.ID); err != nil {
		return nil, err
	}
	if mctx.ReadingTypes, err = r.readingTypes(ctx); err != nil {
		return nil, err
	}
	if m.TemplateID != 0 {
		template, err := NewTemplateRepository(r.db).TemplateByID(ctx, m.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("load template for meter %s: %w", m.Code, err)
		}
		mctx.Template = template
	}
	return mctx, nil
}

// ListActive returns every meter accepting readings, for the batch jobs.
func (r *MeterRepository) ListActive(ctx context.Context) ([]models.Meter, error) {
	const query = `
		SELECT id, code, name, status, energy_type, allow_decrease, allow_gap,
		       rollover_limit, COALESCE(calculation_template_id, 0), owner_user_id,
		       created_at, updated_at
		FROM meters
		WHERE status = 'active'
		ORDER BY code
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meters []models.Meter
	for rows.Next() {
		var m models.Meter
		if err := rows.Scan(
			&m.ID,
			&m.Code,
			&m.Name,
			&m.Status,
			&m.EnergyType,
			&m.AllowDecrease,
			&m.AllowGap,
			&m.RolloverLimit,
			&m.TemplateID,
			&m.OwnerUserID,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		meters = append(meters, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return meters, nil
}

func (r *MeterRepository) tankProfile(ctx context.Context, meterID int64) (*models.TankProfile, error) {
	const query = `
		SELECT id, meter_id, shape, height_max_cm, capacity_liters
		FROM tank_profiles
		WHERE meter_id = $1
	`
	var t models.TankProfile
	err := r.db.QueryRowContext(ctx, query, meterID).Scan(
		&t.ID,
		&t.MeterID,
		&t.Shape,
		&t.HeightMaxCm,
		&t.CapacityLiters,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *MeterRepository) readingConfigs(ctx context.Context, meterID int64) ([]models.MeterReadingConfig, error) {
	const query = `
		SELECT id, meter_id, reading_type_id, alarm_min, alarm_max
		FROM meter_reading_configs
		WHERE meter_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, meterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []models.MeterReadingConfig
	for rows.Next() {
		var c models.MeterReadingConfig
		if err := rows.Scan(&c.ID, &c.MeterID, &c.ReadingTypeID, &c.AlarmMin, &c.AlarmMax); err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *MeterRepository) readingTypes(ctx context.Context) (map[int64]models.ReadingType, error) {
	const query = `
		SELECT id, code, name, unit
		FROM reading_types
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make(map[int64]models.ReadingType)
	for rows.Next() {
		var t models.ReadingType
		if err := rows.Scan(&t.ID, &t.Code, &t.Name, &t.Unit); err != nil {
			return nil, err
		}
		types[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return types, nil
}
