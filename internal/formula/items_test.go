package formula

import (
	"testing"

	"meterhub/internal/models"
)

func TestCompileItems(t *testing.T) {
	items := []models.FormulaItem{
		{Kind: models.ItemOperator, Value: "("},
		{Kind: models.ItemVariable, Value: "wbp"},
		{Kind: models.ItemOperator, Value: "+"},
		{Kind: models.ItemVariable, Value: "lwbp"},
		{Kind: models.ItemOperator, Value: ")"},
		{Kind: models.ItemOperator, Value: "*"},
		{Kind: models.ItemConstant, Value: "1.1"},
	}
	expr, err := CompileItems(items)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if expr != "( wbp + lwbp ) * 1.1" {
		t.Fatalf("unexpected expression %q", expr)
	}
	if _, err := Parse(expr); err != nil {
		t.Fatalf("compiled expression must parse: %v", err)
	}
}

func TestCompileItemsRejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		items []models.FormulaItem
	}{
		{"empty", nil},
		{"bad identifier", []models.FormulaItem{{Kind: models.ItemVariable, Value: "1abc"}}},
		{"bad operator", []models.FormulaItem{
			{Kind: models.ItemConstant, Value: "1"},
			{Kind: models.ItemOperator, Value: "%"},
			{Kind: models.ItemConstant, Value: "2"},
		}},
		{"bad constant", []models.FormulaItem{{Kind: models.ItemConstant, Value: "abc"}}},
		{"unknown kind", []models.FormulaItem{{Kind: "function", Value: "sum"}}},
		{"unbalanced", []models.FormulaItem{
			{Kind: models.ItemOperator, Value: "("},
			{Kind: models.ItemVariable, Value: "a"},
		}},
	}
	for _, tc := range cases {
		if _, err := CompileItems(tc.items); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}
