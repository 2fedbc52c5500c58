package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EfficiencyTarget defines the usage limit for a meter over an active period:
// limit = baseline - baseline * target_percentage, with the percentage stored
// as a fraction between 0 and 1.
type EfficiencyTarget struct {
	ID               int64           `db:"id" json:"id"`
	MeterID          int64           `db:"meter_id" json:"meter_id"`
	StartDate        time.Time       `db:"start_date" json:"start_date"`
	EndDate          time.Time       `db:"end_date" json:"end_date"`
	Baseline         decimal.Decimal `db:"baseline" json:"baseline"`
	TargetPercentage decimal.Decimal `db:"target_percentage" json:"target_percentage"`
}

// Limit returns baseline - baseline * target_percentage.
func (t *EfficiencyTarget) Limit() decimal.Decimal {
	return t.Baseline.Sub(t.Baseline.Mul(t.TargetPercentage))
}
