package gas

import (
	"errors"
	"fmt"
	"math"
)

// InvalidInputError rejects a non-positive or out-of-domain geometry,
// property or boundary value.
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid input %s=%g: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid input %s=%g: must be positive", e.Field, e.Value)
}

// InvalidGasPropertyError is returned by the state model for γ ≤ 1 or T ≤ 0.
type InvalidGasPropertyError struct {
	Property string
	Value    float64
}

func (e *InvalidGasPropertyError) Error() string {
	return fmt.Sprintf("invalid gas property %s=%g", e.Property, e.Value)
}

// InvalidModelParameterError means the selected model cannot run with the
// supplied parameters, e.g. adiabatic flow without a valid γ.
type InvalidModelParameterError struct {
	Model     Model
	Parameter string
	Reason    string
}

func (e *InvalidModelParameterError) Error() string {
	return fmt.Sprintf("%s model: invalid %s: %s", e.Model, e.Parameter, e.Reason)
}

type SupersonicInitialConditionError struct {
	Mode       MarchMode
	MachNumber float64
}

func (e *SupersonicInitialConditionError) Error() string {
	return fmt.Sprintf("%s march requires subsonic inflow, got M=%g", e.Mode, e.MachNumber)
}

// ErrorType names the error class for transport layers.
func ErrorType(err error) string {
	var (
		in  *InvalidInputError
		gp  *InvalidGasPropertyError
		mp  *InvalidModelParameterError
		sup *SupersonicInitialConditionError
	)
	switch {
	case errors.As(err, &in):
		return "InvalidInputError"
	case errors.As(err, &gp):
		return "InvalidGasPropertyError"
	case errors.As(err, &mp):
		return "InvalidModelParameterError"
	case errors.As(err, &sup):
		return "SupersonicInitialConditionError"
	default:
		return ""
	}
}

// IsInputError reports whether err is one of the engine's rejection errors.
func IsInputError(err error) bool {
	return ErrorType(err) != ""
}

func positive(field string, v float64) error {
	if !(v > 0) || math.IsInf(v, 1) {
		return &InvalidInputError{Field: field, Value: v}
	}
	return nil
}
