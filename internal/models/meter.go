package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MeterStatus gates whether readings may be accepted.
type MeterStatus string

// Meter lifecycle statuses.
const (
	MeterStatusActive      MeterStatus = "active"
	MeterStatusInactive    MeterStatus = "inactive"
	MeterStatusMaintenance MeterStatus = "maintenance"
)

// Meter represents a utility meter (electricity, water, fuel).
type Meter struct {
	ID            int64               `db:"id" json:"id"`
	Code          string              `db:"code" json:"code"`
	Name          string              `db:"name" json:"name"`
	Status        MeterStatus         `db:"status" json:"status"`
	EnergyType    string              `db:"energy_type" json:"energy_type"`
	AllowDecrease bool                `db:"allow_decrease" json:"allow_decrease"`
	AllowGap      bool                `db:"allow_gap" json:"allow_gap"`
	RolloverLimit decimal.NullDecimal `db:"rollover_limit" json:"rollover_limit"`
	TemplateID    int64               `db:"calculation_template_id" json:"calculation_template_id"`
	OwnerUserID   int64               `db:"owner_user_id" json:"owner_user_id"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `db:"updated_at" json:"updated_at"`
}

// TankProfile holds the physical bounds for a volumetric meter, owned 1:1 by a meter.
type TankProfile struct {
	ID             int64           `db:"id" json:"id"`
	MeterID        int64           `db:"meter_id" json:"meter_id"`
	Shape          string          `db:"shape" json:"shape"`
	HeightMaxCm    decimal.Decimal `db:"height_max_cm" json:"height_max_cm"`
	CapacityLiters decimal.Decimal `db:"capacity_liters" json:"capacity_liters"`
}

// Units recognised for tank-bound checks.
const (
	UnitCentimeters = "cm"
	UnitLiters      = "l"
)

// ReadingType is a named sensor channel, e.g. WBP, LWBP or tank-level.
type ReadingType struct {
	ID   int64  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
	Unit string `db:"unit" json:"unit"`
}

// IsHeightUnit reports whether the channel measures height in centimeters.
func (t ReadingType) IsHeightUnit() bool {
	return t.Unit == UnitCentimeters
}

// IsVolumeUnit reports whether the channel measures volume in liters.
func (t ReadingType) IsVolumeUnit() bool {
	return t.Unit == UnitLiters
}

// MeterReadingConfig carries per (meter, reading type) alarm thresholds.
type MeterReadingConfig struct {
	ID            int64               `db:"id" json:"id"`
	MeterID       int64               `db:"meter_id" json:"meter_id"`
	ReadingTypeID int64               `db:"reading_type_id" json:"reading_type_id"`
	AlarmMin      decimal.NullDecimal `db:"alarm_min" json:"alarm_min"`
	AlarmMax      decimal.NullDecimal `db:"alarm_max" json:"alarm_max"`
}

// MeterContext bundles a meter with everything the ingest pipeline needs:
// tank profile, alarm configs, reading type catalog and the assigned template.
type MeterContext struct {
	Meter        Meter                 `json:"meter"`
	Tank         *TankProfile          `json:"tank,omitempty"`
	Configs      []MeterReadingConfig  `json:"configs,omitempty"`
	ReadingTypes map[int64]ReadingType `json:"reading_types"`
	Template     *CalculationTemplate  `json:"template,omitempty"`
}

// ConfigFor returns the alarm config for a reading type, nil when absent.
func (c *MeterContext) ConfigFor(readingTypeID int64) *MeterReadingConfig {
	for i := range c.Configs {
		if c.Configs[i].ReadingTypeID == readingTypeID {
			return &c.Configs[i]
		}
	}
	return nil
}

// SpecValue resolves a named device spec field on the meter or its tank profile.
func (c *MeterContext) SpecValue(field string) (decimal.Decimal, bool) {
	switch field {
	case "rollover_limit":
		if c.Meter.RolloverLimit.Valid {
			return c.Meter.RolloverLimit.Decimal, true
		}
	case "height_max_cm":
		if c.Tank != nil {
			return c.Tank.HeightMaxCm, true
		}
	case "capacity_liters":
		if c.Tank != nil {
			return c.Tank.CapacityLiters, true
		}
	}
	return decimal.Decimal{}, false
}
