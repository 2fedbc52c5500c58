package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification severities and categories.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"

	CategoryEfficiency   = "efficiency"
	CategoryCompleteness = "data_completeness"
)

// Notification is a create-only alert record handed to the notification sink.
// Delivery is the sink's responsibility.
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	PublicID  uuid.UUID `db:"public_id" json:"public_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Category  string    `db:"category" json:"category"`
	Severity  string    `db:"severity" json:"severity"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	RefTable  string    `db:"ref_table" json:"ref_table"`
	RefID     int64     `db:"ref_id" json:"ref_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
