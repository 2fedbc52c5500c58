package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// VariableKind discriminates the formula variable union.
type VariableKind string

// Variable kinds. Unknown tags are rejected at decode time, not at evaluation.
const (
	VariableReading  VariableKind = "reading"
	VariableSpec     VariableKind = "spec"
	VariableConstant VariableKind = "constant"
)

// Variable is a tagged input to a formula expression:
//
//   - reading: a sensor value for ReadingTypeID on the session dated
//     date − TimeShift days, optionally on another meter via MeterID;
//   - spec: a named field on the meter or its tank profile;
//   - constant: a literal value.
type Variable struct {
	Kind          VariableKind    `json:"type"`
	Label         string          `json:"label"`
	ReadingTypeID int64           `json:"reading_type_id,omitempty"`
	MeterID       int64           `json:"meter_id,omitempty"`
	TimeShift     int             `json:"time_shift,omitempty"`
	Field         string          `json:"field,omitempty"`
	Value         decimal.Decimal `json:"value,omitempty"`
}

// UnmarshalJSON decodes and validates a single variable descriptor.
func (v *Variable) UnmarshalJSON(data []byte) error {
	type alias Variable
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Label == "" {
		return fmt.Errorf("variable: missing label")
	}
	switch raw.Kind {
	case VariableReading:
		if raw.ReadingTypeID == 0 {
			return fmt.Errorf("variable %q: reading variable requires reading_type_id", raw.Label)
		}
		if raw.TimeShift < 0 {
			return fmt.Errorf("variable %q: time_shift must not be negative", raw.Label)
		}
	case VariableSpec:
		if raw.Field == "" {
			return fmt.Errorf("variable %q: spec variable requires field", raw.Label)
		}
	case VariableConstant:
		// literal value, nothing more to check
	default:
		return fmt.Errorf("variable %q: unknown type %q", raw.Label, raw.Kind)
	}
	*v = Variable(raw)
	return nil
}

// DecodeVariables parses the stored JSON variable list of a definition.
func DecodeVariables(data []byte) ([]Variable, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var vars []Variable
	if err := json.Unmarshal(data, &vars); err != nil {
		return nil, err
	}
	return vars, nil
}
