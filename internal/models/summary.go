package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySummary is the derived per (meter, date) aggregate written by the
// formula engine. It is rebuildable from the reading sessions at any time.
type DailySummary struct {
	ID         int64           `db:"id" json:"id"`
	MeterID    int64           `db:"meter_id" json:"meter_id"`
	Date       time.Time       `db:"summary_date" json:"summary_date"`
	MainMetric string          `db:"main_metric" json:"main_metric"`
	TotalValue decimal.Decimal `db:"total_value" json:"total_value"`
	Details    []SummaryDetail `json:"details"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// SummaryDetail holds one named metric value of a daily summary.
type SummaryDetail struct {
	ID         int64           `db:"id" json:"id"`
	SummaryID  int64           `db:"summary_id" json:"summary_id"`
	MetricName string          `db:"metric_name" json:"metric_name"`
	Value      decimal.Decimal `db:"value" json:"value"`
}
