package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReadingSession is one capture event for a meter at a timestamp.
// It becomes immutable once a newer session exists for the same meter.
type ReadingSession struct {
	ID                int64           `db:"id" json:"id"`
	PublicID          uuid.UUID       `db:"public_id" json:"public_id"`
	MeterID           int64           `db:"meter_id" json:"meter_id"`
	UserID            int64           `db:"user_id" json:"user_id"`
	TakenAt           time.Time       `db:"taken_at" json:"taken_at"`
	SessionDate       time.Time       `db:"session_date" json:"session_date"`
	CorrectsSessionID *int64          `db:"corrects_session_id" json:"corrects_session_id,omitempty"`
	Details           []ReadingDetail `json:"details"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}

// ReadingDetail is one (reading type, value) pair inside a session.
type ReadingDetail struct {
	ID            int64           `db:"id" json:"id"`
	SessionID     int64           `db:"session_id" json:"session_id"`
	ReadingTypeID int64           `db:"reading_type_id" json:"reading_type_id"`
	Value         decimal.Decimal `db:"value" json:"value"`
}

// DetailFor returns the detail for a reading type, nil when the session has none.
func (s *ReadingSession) DetailFor(readingTypeID int64) *ReadingDetail {
	for i := range s.Details {
		if s.Details[i].ReadingTypeID == readingTypeID {
			return &s.Details[i]
		}
	}
	return nil
}

// ReadingDetailInput is a submitted (reading type, value) pair before persistence.
type ReadingDetailInput struct {
	ReadingTypeID int64           `json:"reading_type_id"`
	Value         decimal.Decimal `json:"value"`
}
