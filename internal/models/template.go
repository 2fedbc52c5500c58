package models

import "time"

// CalculationTemplate owns an ordered set of formula definitions.
type CalculationTemplate struct {
	ID          int64               `db:"id" json:"id"`
	Name        string              `db:"name" json:"name"`
	Definitions []FormulaDefinition `json:"definitions"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `db:"updated_at" json:"updated_at"`
}

// MainDefinition returns the definition flagged as main, nil when none is set.
func (t *CalculationTemplate) MainDefinition() *FormulaDefinition {
	for i := range t.Definitions {
		if t.Definitions[i].IsMain {
			return &t.Definitions[i]
		}
	}
	return nil
}

// FormulaDefinition is one derived metric: an arithmetic expression over a
// declared variable set. Exactly one definition per template is main; its
// result becomes the headline metric of the daily summary.
type FormulaDefinition struct {
	ID         int64         `db:"id" json:"id"`
	TemplateID int64         `db:"template_id" json:"template_id"`
	Name       string        `db:"name" json:"name"`
	IsMain     bool          `db:"is_main" json:"is_main"`
	Expression string        `db:"expression" json:"expression"`
	Variables  []Variable    `json:"variables"`
	Items      []FormulaItem `json:"items,omitempty"`
	SortOrder  int           `db:"sort_order" json:"sort_order"`
}

// FormulaItem is a primitive authoring descriptor. Builders that do not write
// a literal expression submit an ordered item list instead, which is compiled
// into an expression at definition time.
type FormulaItem struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Item kinds.
const (
	ItemVariable = "variable"
	ItemField    = "field"
	ItemOperator = "operator"
	ItemConstant = "constant"
)
