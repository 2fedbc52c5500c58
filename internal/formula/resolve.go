package formula

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"meterhub/internal/models"
)

// ReadingSource looks up a persisted detail value for a meter on a calendar
// day. The bool result distinguishes "no data" from a real zero.
type ReadingSource interface {
	ReadingValue(ctx context.Context, meterID int64, day time.Time, readingTypeID int64) (decimal.Decimal, bool, error)
}

// errUnresolved marks a reading variable whose backing session or detail does
// not exist for the shifted date. The engine treats it differently for main
// and secondary definitions.
type errUnresolved struct {
	label string
	day   time.Time
}

func (e *errUnresolved) Error() string {
	return fmt.Sprintf("variable %q: no reading for %s", e.label, e.day.Format("2006-01-02"))
}

// resolveVariables turns a definition's declared variables into concrete
// decimal values for the given meter context and date.
func resolveVariables(ctx context.Context, src ReadingSource, mctx *models.MeterContext, date time.Time, vars []models.Variable) (map[string]decimal.Decimal, error) {
	values := make(map[string]decimal.Decimal, len(vars))
	for _, v := range vars {
		switch v.Kind {
		case models.VariableConstant:
			values[v.Label] = v.Value
		case models.VariableSpec:
			value, ok := mctx.SpecValue(v.Field)
			if !ok {
				return nil, fmt.Errorf("variable %q: meter %s has no spec field %q", v.Label, mctx.Meter.Code, v.Field)
			}
			values[v.Label] = value
		case models.VariableReading:
			meterID := v.MeterID
			if meterID == 0 {
				meterID = mctx.Meter.ID
			}
			day := date.AddDate(0, 0, -v.TimeShift)
			value, ok, err := src.ReadingValue(ctx, meterID, day, v.ReadingTypeID)
			if err != nil {
				return nil, fmt.Errorf("variable %q: %w", v.Label, err)
			}
			if !ok {
				return nil, &errUnresolved{label: v.Label, day: day}
			}
			values[v.Label] = value
		default:
			return nil, fmt.Errorf("variable %q: unknown type %q", v.Label, v.Kind)
		}
	}
	return values, nil
}
