package pricing

import (
	"errors"
	"fmt"
)

// PricingError annotates an engine failure with the stage that produced it.
type PricingError struct {
	Stage   string // "input", "catalog", "solve", "evaluate"
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *PricingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Stage, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Stage, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *PricingError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for PricingError.
func (e *PricingError) Is(target error) bool {
	t, ok := target.(*PricingError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewPricingError creates a new PricingError.
func NewPricingError(stage, code, message string) *PricingError {
	return &PricingError{
		Stage:   stage,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *PricingError) WithCause(err error) *PricingError {
	e.Cause = err
	return e
}

// Sentinel errors for the engine's failure taxonomy.
var (
	// ErrInvalidInput indicates a non-positive cost/weight/exchange rate or
	// an empty zone or policy list. The caller must not fall back to
	// defaults.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInfeasibleMargin indicates variableRate + targetMargin >= 1: no
	// finite price can satisfy the target. Distinct from a reachable price
	// that merely loses money, which is a valid danger-tier result.
	ErrInfeasibleMargin = errors.New("target margin is infeasible")

	// ErrMissingRateData indicates a catalog miss for a tariff rule or fee
	// schedule. Never defaulted to zero: a silent zero tariff would
	// understate landed cost and mislead the solver.
	ErrMissingRateData = errors.New("missing rate data")

	// ErrNoZones indicates a policy with an empty zone list.
	ErrNoZones = errors.New("policy has no zones")

	// ErrNoPolicies indicates no candidate policy covers the item.
	ErrNoPolicies = errors.New("no candidate policies")

	// ErrNoReferenceZone indicates a policy without a zone usable as the
	// pricing reference.
	ErrNoReferenceZone = errors.New("no reference zone")
)

// IsInfeasibleMargin returns true if the error is an infeasible-margin
// rejection.
func IsInfeasibleMargin(err error) bool {
	return errors.Is(err, ErrInfeasibleMargin)
}

// IsMissingRateData returns true if the error is a catalog lookup miss.
func IsMissingRateData(err error) bool {
	return errors.Is(err, ErrMissingRateData)
}

// IsInvalidInput returns true if the error is an input validation failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNoZones) ||
		errors.Is(err, ErrNoPolicies) ||
		errors.Is(err, ErrNoReferenceZone)
}
