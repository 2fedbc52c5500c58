package formula

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// divisionScale bounds the precision of non-terminating divisions.
const divisionScale = 16

// ErrDivisionByZero is returned when an expression divides by a zero value.
var ErrDivisionByZero = errors.New("formula: division by zero")

// UnknownVariableError reports an identifier with no resolved value.
type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("formula: unknown variable %q", e.Name)
}

// Eval substitutes variable values and evaluates the expression with
// fixed-precision decimal arithmetic. Every identifier must be present
// in vars; references to missing ones fail rather than defaulting to zero.
func (e *Expr) Eval(vars map[string]decimal.Decimal) (decimal.Decimal, error) {
	return evalNode(e.root, vars)
}

func evalNode(n node, vars map[string]decimal.Decimal) (decimal.Decimal, error) {
	switch t := n.(type) {
	case numberNode:
		return t.value, nil
	case identNode:
		value, ok := vars[string(t)]
		if !ok {
			return decimal.Decimal{}, &UnknownVariableError{Name: string(t)}
		}
		return value, nil
	case unaryNode:
		value, err := evalNode(t.operand, vars)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return value.Neg(), nil
	case binaryNode:
		left, err := evalNode(t.left, vars)
		if err != nil {
			return decimal.Decimal{}, err
		}
		right, err := evalNode(t.right, vars)
		if err != nil {
			return decimal.Decimal{}, err
		}
		switch t.op {
		case '+':
			return left.Add(right), nil
		case '-':
			return left.Sub(right), nil
		case '*':
			return left.Mul(right), nil
		case '/':
			if right.IsZero() {
				return decimal.Decimal{}, ErrDivisionByZero
			}
			return left.DivRound(right, divisionScale), nil
		}
		return decimal.Decimal{}, fmt.Errorf("formula: unknown operator %q", string(t.op))
	}
	return decimal.Decimal{}, fmt.Errorf("formula: malformed expression tree")
}
