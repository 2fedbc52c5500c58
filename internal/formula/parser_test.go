package formula

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func mustParse(t *testing.T, source string) *Expr {
	t.Helper()
	expr, err := Parse(source)
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}
	return expr
}

func evalNoVars(t *testing.T, source string) decimal.Decimal {
	t.Helper()
	value, err := mustParse(t, source).Eval(nil)
	if err != nil {
		t.Fatalf("eval %q: %v", source, err)
	}
	return value
}

func TestParseAndEvalArithmetic(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"1 + 2", "3"},
		{"2 + 3 * 4", "14"},
		{"(2 + 3) * 4", "20"},
		{"10 - 4 - 3", "3"},
		{"-5 + 8", "3"},
		{"2 * -3", "-6"},
		{"7 / 2", "3.5"},
		{"100 / 4 / 5", "5"},
		{"0.1 + 0.2", "0.3"},
	}
	for _, tc := range cases {
		got := evalNoVars(t, tc.source)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("%q: expected %s, got %s", tc.source, tc.want, got)
		}
	}
}

func TestEvalWithVariables(t *testing.T) {
	expr := mustParse(t, "wbp + lwbp * rate")
	vars := map[string]decimal.Decimal{
		"wbp":  decimal.RequireFromString("10"),
		"lwbp": decimal.RequireFromString("4"),
		"rate": decimal.RequireFromString("0.5"),
	}
	got, err := expr.Eval(vars)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("12")) {
		t.Fatalf("expected 12, got %s", got)
	}
}

func TestEvalDecimalPrecisionStable(t *testing.T) {
	// Repeated evaluation must not drift, which float arithmetic would.
	expr := mustParse(t, "a * b / c")
	vars := map[string]decimal.Decimal{
		"a": decimal.RequireFromString("1234.5678"),
		"b": decimal.RequireFromString("0.0003"),
		"c": decimal.RequireFromString("7"),
	}
	first, err := expr.Eval(vars)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	for i := 0; i < 100; i++ {
		again, err := expr.Eval(vars)
		if err != nil {
			t.Fatalf("eval: %v", err)
		}
		if !again.Equal(first) {
			t.Fatalf("evaluation drifted: %s then %s", first, again)
		}
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	expr := mustParse(t, "a / b")
	vars := map[string]decimal.Decimal{
		"a": decimal.NewFromInt(1),
		"b": decimal.Decimal{},
	}
	if _, err := expr.Eval(vars); err != ErrDivisionByZero {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestEvalUnknownVariable(t *testing.T) {
	expr := mustParse(t, "a + b")
	_, err := expr.Eval(map[string]decimal.Decimal{"a": decimal.NewFromInt(1)})
	if err == nil {
		t.Fatalf("expected error for unknown variable")
	}
	if !strings.Contains(err.Error(), `"b"`) {
		t.Fatalf("error should name the missing variable, got %v", err)
	}
}

func TestIdents(t *testing.T) {
	expr := mustParse(t, "a + b * (a - c) / 2")
	idents := expr.Idents()
	want := []string{"a", "b", "c"}
	if len(idents) != len(want) {
		t.Fatalf("expected %v, got %v", want, idents)
	}
	for i := range want {
		if idents[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, idents)
		}
	}
}

func TestSourcePreservesText(t *testing.T) {
	const src = "(wbp + lwbp) * 1.1"
	if got := mustParse(t, src).Source(); got != src {
		t.Fatalf("source = %q, want %q", got, src)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"1 +",
		"* 2",
		"(1 + 2",
		"a b",
		"1 & 2",
		"1..2 + 3",
	}
	for _, source := range cases {
		if _, err := Parse(source); err == nil {
			t.Fatalf("expected parse error for %q", source)
		}
	}
}
