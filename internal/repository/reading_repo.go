package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"meterhub/internal/models"
)

// ReadingRepository persists reading sessions and their details.
type ReadingRepository struct {
	db DBTX
}

// NewReadingRepository returns repository.
func NewReadingRepository(db DBTX) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// HasSessionAfter reports whether any session for the meter is dated strictly
// after the given moment. Later data must never be overwritten by backfills.
func (r *ReadingRepository) HasSessionAfter(ctx context.Context, meterID int64, at time.Time) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM reading_sessions
			WHERE meter_id = $1 AND taken_at > $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, meterID, at).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// LatestSessionBefore returns the most recent session taken at or before the
// given moment, details included. Returns (nil, nil) when the meter has none.
func (r *ReadingRepository) LatestSessionBefore(ctx context.Context, meterID int64, at time.Time) (*models.ReadingSession, error) {
	const query = `
		SELECT id, public_id, meter_id, user_id, taken_at, session_date, corrects_session_id, created_at
		FROM reading_sessions
		WHERE meter_id = $1 AND taken_at <= $2
		ORDER BY taken_at DESC
		LIMIT 1
	`
	var s models.ReadingSession
	err := r.db.QueryRowContext(ctx, query, meterID, at).Scan(
		&s.ID,
		&s.PublicID,
		&s.MeterID,
		&s.UserID,
		&s.TakenAt,
		&s.SessionDate,
		&s.CorrectsSessionID,
		&s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.Details, err = r.sessionDetails(ctx, s.ID); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSession inserts a session together with its details.
func (r *ReadingRepository) CreateSession(ctx context.Context, session *models.ReadingSession) error {
	const query = `
		INSERT INTO reading_sessions (public_id, meter_id, user_id, taken_at, session_date, corrects_session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`
	if session.PublicID == uuid.Nil {
		session.PublicID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, query,
		session.PublicID,
		session.MeterID,
		session.UserID,
		session.TakenAt,
		session.SessionDate,
		session.CorrectsSessionID,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return err
	}

	const detailQuery = `
		INSERT INTO reading_details (session_id, reading_type_id, value)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	for i := range session.Details {
		d := &session.Details[i]
		d.SessionID = session.ID
		if err := r.db.QueryRowContext(ctx, detailQuery, d.SessionID, d.ReadingTypeID, d.Value).Scan(&d.ID); err != nil {
			return err
		}
	}
	return nil
}

// ReadingValue returns the detail value for a reading type on the session
// dated day. The bool result is false when no session or detail exists.
func (r *ReadingRepository) ReadingValue(ctx context.Context, meterID int64, day time.Time, readingTypeID int64) (decimal.Decimal, bool, error) {
	const query = `
		SELECT rd.value
		FROM reading_details rd
		JOIN reading_sessions rs ON rs.id = rd.session_id
		WHERE rs.meter_id = $1 AND rs.session_date = $2 AND rd.reading_type_id = $3
		ORDER BY rs.taken_at DESC
		LIMIT 1
	`
	var value decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, meterID, day, readingTypeID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Decimal{}, false, nil
	}
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	return value, true, nil
}

// LatestSession returns the newest session for a meter regardless of date,
// used by the completeness job. Returns (nil, nil) when the meter has none.
func (r *ReadingRepository) LatestSession(ctx context.Context, meterID int64) (*models.ReadingSession, error) {
	const query = `
		SELECT id, public_id, meter_id, user_id, taken_at, session_date, corrects_session_id, created_at
		FROM reading_sessions
		WHERE meter_id = $1
		ORDER BY taken_at DESC
		LIMIT 1
	`
	var s models.ReadingSession
	err := r.db.QueryRowContext(ctx, query, meterID).Scan(
		&s.ID,
		&s.PublicID,
		&s.MeterID,
		&s.UserID,
		&s.TakenAt,
		&s.SessionDate,
		&s.CorrectsSessionID,
		&s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ReadingRepository) sessionDetails(ctx context.Context, sessionID int64) ([]models.ReadingDetail, error) {
	const query = `
		SELECT id, session_id, reading_type_id, value
		FROM reading_details
		WHERE session_id = $1
		ORDER BY reading_type_id
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []models.ReadingDetail
	for rows.Next() {
		var d models.ReadingDetail
		if err := rows.Scan(&d.ID, &d.SessionID, &d.ReadingTypeID, &d.Value); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
