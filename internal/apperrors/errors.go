package apperrors

import (
	"errors"
	"fmt"
)

// Validation rule identifiers. Each maps to one of the ordered ingest checks
// and carries its own human-readable message.
const (
	RuleFutureData = "future_data"
	RuleGap        = "gap"
	RuleMonotonic  = "monotonic"
	RuleAlarm      = "alarm_threshold"
	RuleCapacity   = "tank_capacity"
)

// ValidationError is a client-correctable rejection of an incoming reading.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation builds a validation error for the given rule.
func NewValidation(rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// ConfigurationError signals a data or setup problem rather than bad input:
// missing meter, inactive meter, formula referencing an undeclared variable.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// NewConfiguration builds a configuration error.
func NewConfiguration(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// ComputationError identifies a failure while evaluating a formula definition.
type ComputationError struct {
	Definition string
	Message    string
}

func (e *ComputationError) Error() string {
	if e.Definition == "" {
		return e.Message
	}
	return fmt.Sprintf("formula %q: %s", e.Definition, e.Message)
}

// NewComputation builds a computation error attributed to a definition.
func NewComputation(definition, format string, args ...interface{}) *ComputationError {
	return &ComputationError{Definition: definition, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsComputation reports whether err is a ComputationError.
func IsComputation(err error) bool {
	var ce *ComputationError
	return errors.As(err, &ce)
}
