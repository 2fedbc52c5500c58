package models

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDecodeVariables(t *testing.T) {
	raw := []byte(`[
		{"type": "reading", "label": "a", "reading_type_id": 5, "time_shift": 1},
		{"type": "spec", "label": "cap", "field": "capacity_liters"},
		{"type": "constant", "label": "k", "value": "2.5"}
	]`)
	vars, err := DecodeVariables(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(vars) != 3 {
		t.Fatalf("expected 3 variables, got %d", len(vars))
	}
	if vars[0].Kind != VariableReading || vars[0].ReadingTypeID != 5 || vars[0].TimeShift != 1 {
		t.Fatalf("unexpected reading variable: %+v", vars[0])
	}
	if vars[1].Kind != VariableSpec || vars[1].Field != "capacity_liters" {
		t.Fatalf("unexpected spec variable: %+v", vars[1])
	}
	if vars[2].Kind != VariableConstant || !vars[2].Value.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected constant variable: %+v", vars[2])
	}
}

func TestDecodeVariablesRejectsUnknownTag(t *testing.T) {
	raw := []byte(`[{"type": "lookup", "label": "x"}]`)
	_, err := DecodeVariables(raw)
	if err == nil {
		t.Fatalf("expected error for unknown tag")
	}
	if !strings.Contains(err.Error(), "unknown type") {
		t.Fatalf("error should mention the unknown type, got %v", err)
	}
}

func TestDecodeVariablesRejectsIncomplete(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing label", `[{"type": "constant"}]`},
		{"reading without type id", `[{"type": "reading", "label": "a"}]`},
		{"negative time shift", `[{"type": "reading", "label": "a", "reading_type_id": 1, "time_shift": -1}]`},
		{"spec without field", `[{"type": "spec", "label": "s"}]`},
	}
	for _, tc := range cases {
		if _, err := DecodeVariables([]byte(tc.raw)); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestSpecValue(t *testing.T) {
	mctx := &MeterContext{
		Meter: Meter{
			ID:            1,
			RolloverLimit: decimal.NewNullDecimal(decimal.NewFromInt(99999)),
		},
		Tank: &TankProfile{
			HeightMaxCm:    decimal.NewFromInt(180),
			CapacityLiters: decimal.NewFromInt(1000),
		},
	}

	for field, want := range map[string]int64{
		"rollover_limit":  99999,
		"height_max_cm":   180,
		"capacity_liters": 1000,
	} {
		got, ok := mctx.SpecValue(field)
		if !ok || !got.Equal(decimal.NewFromInt(want)) {
			t.Fatalf("%s: expected %d, got %s (found %v)", field, want, got, ok)
		}
	}

	if _, ok := mctx.SpecValue("nonsense"); ok {
		t.Fatalf("unknown field must not resolve")
	}

	bare := &MeterContext{Meter: Meter{ID: 2}}
	if _, ok := bare.SpecValue("capacity_liters"); ok {
		t.Fatalf("capacity must not resolve without a tank profile")
	}
}
