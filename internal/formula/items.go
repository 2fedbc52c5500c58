package formula

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"meterhub/internal/models"
)

// CompileItems turns an ordered list of primitive authoring descriptors into
// an expression string. Variable and field items must be valid identifiers,
// operator items must be one of + - * / ( ), constant items must be numeric.
func CompileItems(items []models.FormulaItem) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("formula: no items to compile")
	}

	parts := make([]string, 0, len(items))
	for i, item := range items {
		text := strings.TrimSpace(item.Value)
		switch item.Kind {
		case models.ItemVariable, models.ItemField:
			if !isIdentifier(text) {
				return "", fmt.Errorf("formula: item %d: %q is not a valid identifier", i, item.Value)
			}
		case models.ItemOperator:
			switch text {
			case "+", "-", "*", "/", "(", ")":
			default:
				return "", fmt.Errorf("formula: item %d: unsupported operator %q", i, item.Value)
			}
		case models.ItemConstant:
			if _, err := decimal.NewFromString(text); err != nil {
				return "", fmt.Errorf("formula: item %d: %q is not numeric", i, item.Value)
			}
		default:
			return "", fmt.Errorf("formula: item %d: unknown kind %q", i, item.Kind)
		}
		parts = append(parts, text)
	}

	parsed, err := Parse(strings.Join(parts, " "))
	if err != nil {
		return "", fmt.Errorf("formula: compiled items do not parse: %w", err)
	}
	return parsed.Source(), nil
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}
