package pumpstation

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("invalid input")

// ValidationError reports an input rejected before any computation starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Warning codes attached to a Result.
const (
	WarnNonPhysicalPower = "non_physical_power"
	WarnTransitional     = "transitional_flow"
	WarnLowVelocity      = "low_velocity"
	WarnHighVelocity     = "high_velocity"
	WarnDefaultRoughness = "default_roughness"
)

// PhysicalWarning flags a computable but questionable result. It never aborts
// a calculation.
type PhysicalWarning struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}
